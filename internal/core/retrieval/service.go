package retrieval

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	// DefaultSearchLimit は近傍検索の取得件数。重複排除と閾値での
	// 脱落を見込み、最終的に欲しい件数より大きめに取る
	DefaultSearchLimit = 5

	// DefaultScoreThreshold はコサイン類似度の採用閾値
	DefaultScoreThreshold = 0.45

	// DefaultMaxContextTokens は組み立てるコンテキストのトークン上限
	DefaultMaxContextTokens = 6000
)

// RetrieveService は横断検索と回答生成のユースケースを提供する
type RetrieveService struct {
	embedder    Embedder
	index       Searcher
	emails      EmailReader
	llm         Generator
	limiter     ContextLimiter
	searchLimit int
	threshold   float64
	maxTokens   int
	logger      *slog.Logger
}

type retrieveServiceOptions struct {
	limiter     ContextLimiter
	searchLimit int
	threshold   float64
	maxTokens   int
	logger      *slog.Logger
}

// RetrieveServiceOption は RetrieveService のオプション設定
type RetrieveServiceOption func(*retrieveServiceOptions)

// WithRetrieveLogger はロガーを設定する
func WithRetrieveLogger(logger *slog.Logger) RetrieveServiceOption {
	return func(o *retrieveServiceOptions) {
		o.logger = logger
	}
}

// WithSearchLimit は近傍検索の取得件数を上書きする
func WithSearchLimit(limit int) RetrieveServiceOption {
	return func(o *retrieveServiceOptions) {
		o.searchLimit = limit
	}
}

// WithScoreThreshold は採用閾値を上書きする
func WithScoreThreshold(threshold float64) RetrieveServiceOption {
	return func(o *retrieveServiceOptions) {
		o.threshold = threshold
	}
}

// WithContextLimiter はコンテキストのトークン制限を設定する
func WithContextLimiter(limiter ContextLimiter, maxTokens int) RetrieveServiceOption {
	return func(o *retrieveServiceOptions) {
		o.limiter = limiter
		if maxTokens > 0 {
			o.maxTokens = maxTokens
		}
	}
}

// NewRetrieveService は新しい RetrieveService を作成する
func NewRetrieveService(
	embedder Embedder,
	index Searcher,
	emails EmailReader,
	llm Generator,
	opts ...RetrieveServiceOption,
) *RetrieveService {
	options := retrieveServiceOptions{
		searchLimit: DefaultSearchLimit,
		threshold:   DefaultScoreThreshold,
		maxTokens:   DefaultMaxContextTokens,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.searchLimit <= 0 {
		options.searchLimit = DefaultSearchLimit
	}

	return &RetrieveService{
		embedder:    embedder,
		index:       index,
		emails:      emails,
		llm:         llm,
		limiter:     options.limiter,
		searchLimit: options.searchLimit,
		threshold:   options.threshold,
		maxTokens:   options.maxTokens,
		logger:      options.logger,
	}
}

// Retrieve はクエリに関連するメールを検索し、コンテキストと引用元を組み立てる。
// 検索パス内のいずれかの失敗は呼び出し全体を失敗させる
func (s *RetrieveService) Retrieve(ctx context.Context, query string) (*Context, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.index.Search(ctx, vector, s.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	filtered := FilterByScore(results, s.threshold)
	deduped := DedupBySource(filtered)

	s.logger.Info("vector search completed",
		"hits", len(results),
		"aboveThreshold", len(filtered),
		"distinctEmails", len(deduped),
	)

	return s.assembleContext(ctx, deduped), nil
}

// assembleContext は生き残った結果ごとにメール本体を取得してブロックを連結する。
// チャンクの切れ端ではなくレコードストア上の全文を優先する
func (s *RetrieveService) assembleContext(ctx context.Context, results []*SearchResult) *Context {
	var sb []byte
	sources := make([]Source, 0, len(results))
	seenSubjects := make(map[string]struct{}, len(results))

	for _, r := range results {
		email, err := s.emails.GetEmailByID(ctx, r.EmailID)
		if err != nil {
			// メールが削除済みなどで取得できない場合は、コンテキストと
			// 引用元リストの両方から落とす
			s.logger.Warn("skipping stale search result", "emailId", r.EmailID, "error", err)
			continue
		}

		if _, ok := seenSubjects[email.Subject]; ok {
			continue
		}
		seenSubjects[email.Subject] = struct{}{}

		sb = append(sb, FormatContextBlock(email)...)
		sources = append(sources, Source{
			EmailID: email.ID,
			Subject: email.Subject,
			Sender:  email.Sender,
		})
	}

	text := string(sb)
	if s.limiter != nil && s.maxTokens > 0 {
		text = s.limiter.TrimToTokenLimit(text, s.maxTokens)
	}

	return &Context{Text: text, Sources: sources}
}

// RetrieveAndAnswer は検索コンテキストに基づいて回答を生成する。
// コンテキストが空でもモデルには定型文で答えるよう指示した上で呼び出す
func (s *RetrieveService) RetrieveAndAnswer(ctx context.Context, query string) (*AnswerResult, error) {
	rctx, err := s.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	systemPrompt := BuildGeneralChatPrompt(rctx.Text)

	answer, err := s.llm.GenerateResponse(ctx, systemPrompt, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	s.logger.Info("answer generated",
		"answerLength", len(answer),
		"sources", len(rctx.Sources),
	)

	return &AnswerResult{Answer: answer, Sources: rctx.Sources}, nil
}
