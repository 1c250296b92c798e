package reply

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jinford/mail-rag/internal/core/ingestion"
	"github.com/jinford/mail-rag/internal/core/mail"
)

// ReplyService は返信案の生成・下書き保存・送信のビジネスロジックを提供する
type ReplyService struct {
	emails  EmailStore
	prompts PromptReader
	drafts  mail.DraftRepository
	llm     Generator
	mailer  MailSender
	logger  *slog.Logger
}

type ReplyServiceOption func(*ReplyService)

// WithReplyLogger は ReplyService にロガーを設定する
func WithReplyLogger(logger *slog.Logger) ReplyServiceOption {
	return func(s *ReplyService) {
		s.logger = logger
	}
}

// NewReplyService は新しいReplyServiceを作成する
func NewReplyService(
	emails EmailStore,
	prompts PromptReader,
	drafts mail.DraftRepository,
	llm Generator,
	mailer MailSender,
	opts ...ReplyServiceOption,
) *ReplyService {
	svc := &ReplyService{
		emails:  emails,
		prompts: prompts,
		drafts:  drafts,
		llm:     llm,
		mailer:  mailer,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	return svc
}

// GenerateReplies は対象メールに対して3種類の返信案を生成し、
// それぞれを未送信の下書きとして保存する。メールのステータスはDraftedになる
func (s *ReplyService) GenerateReplies(ctx context.Context, emailID uuid.UUID) (*ReplyOptions, error) {
	email, err := s.emails.GetEmailByID(ctx, emailID)
	if err != nil {
		return nil, fmt.Errorf("failed to load email %s: %w", emailID, err)
	}

	prompt, err := s.prompts.GetPromptByType(ctx, mail.PromptReplyGeneration)
	if err != nil {
		return nil, fmt.Errorf("reply generation prompt not available: %w", err)
	}

	rendered := ingestion.RenderTemplate(prompt.TemplateContent, email.Subject, email.Body)

	response, err := s.llm.GenerateResponse(ctx, rendered, "")
	if err != nil {
		return nil, fmt.Errorf("reply generation failed for email %s: %w", emailID, err)
	}

	var options ReplyOptions
	if err := json.Unmarshal([]byte(ingestion.CleanJSONResponse(response)), &options); err != nil {
		return nil, fmt.Errorf("failed to parse reply options for email %s: %w", emailID, err)
	}

	for _, body := range []string{options.Professional, options.Casual, options.Concise} {
		if body == "" {
			continue
		}
		if _, err := s.drafts.CreateDraft(ctx, emailID, body); err != nil {
			return nil, fmt.Errorf("failed to save draft for email %s: %w", emailID, err)
		}
	}

	status := mail.StatusDrafted
	if _, err := s.emails.UpdateEmail(ctx, emailID, mail.EmailUpdate{Status: &status}); err != nil {
		return nil, fmt.Errorf("failed to update email status: %w", err)
	}

	s.logger.Info("generated reply options", "emailId", emailID)

	return &options, nil
}

// Send は返信メールを送信する。EmailIDが指定されていれば
// 送信後にそのメールのステータスをRepliedに更新する
func (s *ReplyService) Send(ctx context.Context, params SendParams) error {
	if params.To == "" || params.Subject == "" || params.Body == "" {
		return fmt.Errorf("to, subject and body are required")
	}

	if err := s.mailer.Send(ctx, params.To, params.Subject, params.Body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if emailID, ok := params.EmailID.Get(); ok {
		status := mail.StatusReplied
		if _, err := s.emails.UpdateEmail(ctx, emailID, mail.EmailUpdate{Status: &status}); err != nil {
			return fmt.Errorf("failed to update email status: %w", err)
		}
	}

	s.logger.Info("email sent", "to", params.To, "subject", params.Subject)

	return nil
}
