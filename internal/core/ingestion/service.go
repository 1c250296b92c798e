package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jinford/mail-rag/internal/core/ingestion/chunk"
	"github.com/jinford/mail-rag/internal/core/mail"
)

// DefaultBatchDelay は一括取り込み時のメール間待機時間。
// 外部プロバイダのレート制限を避けるためのバックプレッシャで、
// 正しさの要件ではない
const DefaultBatchDelay = 5 * time.Second

// IngestService はメール取り込みのユースケースを提供する。
// 分類・アクション抽出と埋め込みは独立したベストエフォートの段階で、
// 片方の失敗はもう片方を妨げない
type IngestService struct {
	emails     mail.EmailRepository
	prompts    mail.PromptRepository
	llm        Generator
	embedder   Embedder
	index      VectorWriter
	splitter   *chunk.Splitter
	batchDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *slog.Logger
}

type ingestServiceOptions struct {
	splitter   *chunk.Splitter
	batchDelay time.Duration
	logger     *slog.Logger
}

// IngestServiceOption は IngestService のオプション設定
type IngestServiceOption func(*ingestServiceOptions)

// WithIngestLogger はロガーを設定する
func WithIngestLogger(logger *slog.Logger) IngestServiceOption {
	return func(o *ingestServiceOptions) {
		o.logger = logger
	}
}

// WithSplitter はチャンク分割器を差し替える
func WithSplitter(splitter *chunk.Splitter) IngestServiceOption {
	return func(o *ingestServiceOptions) {
		o.splitter = splitter
	}
}

// WithBatchDelay はメール間の待機時間を上書きする。0以下で待機なし
func WithBatchDelay(delay time.Duration) IngestServiceOption {
	return func(o *ingestServiceOptions) {
		o.batchDelay = delay
	}
}

// NewIngestService は新しい IngestService を作成する
func NewIngestService(
	emails mail.EmailRepository,
	prompts mail.PromptRepository,
	llm Generator,
	embedder Embedder,
	index VectorWriter,
	opts ...IngestServiceOption,
) *IngestService {
	options := ingestServiceOptions{
		splitter:   chunk.NewSplitter(chunk.DefaultChunkSize),
		batchDelay: DefaultBatchDelay,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.splitter == nil {
		options.splitter = chunk.NewSplitter(chunk.DefaultChunkSize)
	}

	return &IngestService{
		emails:     emails,
		prompts:    prompts,
		llm:        llm,
		embedder:   embedder,
		index:      index,
		splitter:   options.splitter,
		batchDelay: options.batchDelay,
		sleep:      sleepContext,
		logger:     options.logger,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// ReceiveEmail は新着メールを保存し、そのまま取り込み処理にかける
func (s *IngestService) ReceiveEmail(ctx context.Context, sender, subject, body string) (*mail.Email, error) {
	if sender == "" || subject == "" || body == "" {
		return nil, fmt.Errorf("sender, subject and body are required")
	}

	email, err := s.emails.CreateEmail(ctx, sender, subject, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create email: %w", err)
	}

	if err := s.ProcessEmail(ctx, email); err != nil {
		return nil, err
	}

	return s.emails.GetEmailByID(ctx, email.ID)
}

// ProcessEmail は1通のメールを分類し、アクションを抽出し、
// チャンク化・埋め込み・インデックス登録を行う
func (s *IngestService) ProcessEmail(ctx context.Context, email *mail.Email) error {
	catPrompt, err := s.prompts.GetPromptByType(ctx, mail.PromptCategorization)
	if err != nil {
		return fmt.Errorf("categorization prompt not available: %w", err)
	}
	actionPrompt, err := s.prompts.GetPromptByType(ctx, mail.PromptActionExtraction)
	if err != nil {
		return fmt.Errorf("action extraction prompt not available: %w", err)
	}

	category, err := s.categorize(ctx, email, catPrompt)
	if err != nil {
		return err
	}

	actionItems := []mail.ActionItem{}
	if isSpamCategory(category) {
		s.logger.Info("email classified as spam, skipping action extraction", "emailId", email.ID)
	} else {
		actionItems = s.extractActionItems(ctx, email, actionPrompt)

		// 埋め込みの失敗は取り込み全体を失敗させない
		if err := s.embedEmail(ctx, email); err != nil {
			s.logger.Error("failed to embed email", "emailId", email.ID, "error", err)
		}
	}

	processed := true
	_, err = s.emails.UpdateEmail(ctx, email.ID, mail.EmailUpdate{
		Category:    &category,
		ActionItems: actionItems,
		IsProcessed: &processed,
	})
	if err != nil {
		return fmt.Errorf("failed to update email %s: %w", email.ID, err)
	}

	return nil
}

// IngestBatch は未処理メールを順番に取り込む。1通の失敗は記録して
// 次のメールへ進む。メール間には設定された待機を挟む
func (s *IngestService) IngestBatch(ctx context.Context) (*BatchResult, error) {
	unprocessed, err := s.emails.ListUnprocessedEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed emails: %w", err)
	}

	result := &BatchResult{Total: len(unprocessed)}
	if len(unprocessed) == 0 {
		return result, nil
	}

	s.logger.Info("batch ingestion started", "count", len(unprocessed))

	for i, email := range unprocessed {
		if err := s.ProcessEmail(ctx, email); err != nil {
			result.Failed++
			s.logger.Error("failed to process email, continuing batch", "emailId", email.ID, "error", err)
		} else {
			result.Processed++
		}

		if s.batchDelay > 0 && i < len(unprocessed)-1 {
			if err := s.sleep(ctx, s.batchDelay); err != nil {
				return result, err
			}
		}
	}

	s.logger.Info("batch ingestion finished",
		"total", result.Total,
		"processed", result.Processed,
		"failed", result.Failed,
	)

	return result, nil
}

// categorize はメールをカテゴリ1語に分類する
func (s *IngestService) categorize(ctx context.Context, email *mail.Email, prompt *mail.PromptConfig) (string, error) {
	rendered := RenderTemplate(prompt.TemplateContent, email.Subject, email.Body)

	response, err := s.llm.GenerateResponse(ctx, rendered, "")
	if err != nil {
		return "", fmt.Errorf("categorization failed for email %s: %w", email.ID, err)
	}

	return strings.TrimSpace(response), nil
}

// extractActionItems はアクション項目を抽出する。パース失敗は空扱い
func (s *IngestService) extractActionItems(ctx context.Context, email *mail.Email, prompt *mail.PromptConfig) []mail.ActionItem {
	rendered := RenderTemplate(prompt.TemplateContent, email.Subject, email.Body)

	response, err := s.llm.GenerateResponse(ctx, rendered, "")
	if err != nil {
		s.logger.Warn("action extraction failed", "emailId", email.ID, "error", err)
		return []mail.ActionItem{}
	}

	var items []mail.ActionItem
	if err := json.Unmarshal([]byte(CleanJSONResponse(response)), &items); err != nil {
		s.logger.Warn("failed to parse action items", "emailId", email.ID, "error", err)
		return []mail.ActionItem{}
	}
	return items
}

// embedEmail は本文をチャンク化して埋め込み、インデックスへ登録する
func (s *IngestService) embedEmail(ctx context.Context, email *mail.Email) error {
	plainText := chunk.StripHTML(email.Body)

	var points []*VectorPoint
	index := 0
	for c := range s.splitter.Split(plainText) {
		chunkIndex := index
		index++

		if chunk.IsBlank(c) {
			continue
		}

		vector, err := s.embedder.Embed(ctx, c)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", chunkIndex, err)
		}

		points = append(points, &VectorPoint{
			ID:         PointID(email.ID, chunkIndex),
			Vector:     vector,
			EmailID:    email.ID,
			Subject:    email.Subject,
			Sender:     email.Sender,
			Text:       c,
			ReceivedAt: email.ReceivedAt,
		})
	}

	if len(points) == 0 {
		return nil
	}

	if err := s.index.Upsert(ctx, points); err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}

	s.logger.Info("embedded email chunks", "emailId", email.ID, "chunks", len(points))
	return nil
}

// isSpamCategory は分類結果がスパム扱いかどうかを返す
func isSpamCategory(category string) bool {
	return strings.Contains(strings.ToLower(category), "spam")
}
