package container

import (
	"context"
	"fmt"
	"log/slog"

	corechat "github.com/jinford/mail-rag/internal/core/chat"
	coreingestion "github.com/jinford/mail-rag/internal/core/ingestion"
	"github.com/jinford/mail-rag/internal/core/ingestion/chunk"
	"github.com/jinford/mail-rag/internal/core/mail"
	coreretrieval "github.com/jinford/mail-rag/internal/core/retrieval"
	corereply "github.com/jinford/mail-rag/internal/core/reply"
	"github.com/jinford/mail-rag/internal/infra/openai"
	"github.com/jinford/mail-rag/internal/infra/postgres"
	"github.com/jinford/mail-rag/internal/infra/smtp"
	"github.com/jinford/mail-rag/internal/platform/config"
	"github.com/jinford/mail-rag/internal/platform/database"
)

// Generator は全サービス共通のLLM応答生成インターフェース
type Generator interface {
	GenerateResponse(ctx context.Context, systemPrompt, userContent string) (string, error)
}

// Embedder はテキストをベクトルに変換するインターフェース
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex はベクトルインデックスへの読み書きインターフェース
type VectorIndex interface {
	Upsert(ctx context.Context, points []*coreingestion.VectorPoint) error
	Search(ctx context.Context, vector []float32, limit int) ([]*coreretrieval.SearchResult, error)
}

// ServiceContainer はアプリケーションの依存関係を保持する。
// 全ての外部クライアントはここで組み立てられ、オプションで差し替えられる
type ServiceContainer struct {
	IngestService   *coreingestion.IngestService
	RetrieveService *coreretrieval.RetrieveService
	ChatService     *corechat.ChatService
	ReplyService    *corereply.ReplyService

	Emails  mail.EmailRepository
	Prompts mail.PromptRepository
	Drafts  mail.DraftRepository

	logger   *slog.Logger
	database *database.Database
	tx       *database.TransactionProvider
}

type containerOptions struct {
	logger   *slog.Logger
	embedder Embedder
	llm      Generator
	index    VectorIndex
	mailer   corereply.MailSender
	limiter  coreretrieval.ContextLimiter
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerEmbedder はカスタム Embedder を注入する
func WithContainerEmbedder(embedder Embedder) ContainerOption {
	return func(opts *containerOptions) {
		opts.embedder = embedder
	}
}

// WithContainerLLMClient は LLM クライアントを差し替える
func WithContainerLLMClient(llm Generator) ContainerOption {
	return func(opts *containerOptions) {
		opts.llm = llm
	}
}

// WithContainerVectorIndex はベクトルインデックスを差し替える
func WithContainerVectorIndex(index VectorIndex) ContainerOption {
	return func(opts *containerOptions) {
		opts.index = index
	}
}

// WithContainerMailSender はメール送信実装を差し替える
func WithContainerMailSender(mailer corereply.MailSender) ContainerOption {
	return func(opts *containerOptions) {
		opts.mailer = mailer
	}
}

// WithContainerContextLimiter はコンテキストのトークン制限実装を差し替える
func WithContainerContextLimiter(limiter coreretrieval.ContextLimiter) ContainerOption {
	return func(opts *containerOptions) {
		opts.limiter = limiter
	}
}

// NewContainer は設定からコンテナを生成する。
func NewContainer(ctx context.Context, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	db, err := database.New(ctx, database.ConnectionParams{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("データベース初期化に失敗しました: %w", err)
	}

	return NewContainerWithDB(ctx, cfg, db, opts...)
}

// NewContainerWithDB は既存の Database を受け取りコンテナを生成する。
// スキーマとベクトルインデックスをこの時点で冪等に初期化する。
// ベクトルインデックスの初期化失敗は起動を止めず、警告ログに落とす
func NewContainerWithDB(ctx context.Context, cfg *config.Config, db *database.Database, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	if err := postgres.EnsureRecordStore(ctx, db.Pool); err != nil {
		return nil, err
	}

	// Embedder (OpenAI)
	embedder := options.embedder
	if embedder == nil {
		embedderOpts := []openai.EmbedderOption{
			openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
			openai.WithEmbeddingDimension(cfg.OpenAI.EmbeddingDimension),
			openai.WithEmbedderLogger(options.logger),
		}
		if cfg.OpenAI.BaseURL != "" {
			embedderOpts = append(embedderOpts, openai.WithEmbeddingBaseURL(cfg.OpenAI.BaseURL))
		}
		embedder = openai.NewEmbedder(cfg.OpenAI.APIKey, embedderOpts...)
	}

	// LLMClient (OpenAI)
	llm := options.llm
	if llm == nil {
		clientOpts := []openai.ClientOption{
			openai.WithModel(cfg.OpenAI.LLMModel),
			openai.WithClientLogger(options.logger),
		}
		if cfg.OpenAI.BaseURL != "" {
			clientOpts = append(clientOpts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		llm = openai.NewClient(cfg.OpenAI.APIKey, clientOpts...)
	}

	// VectorIndex (pgvector)
	index := options.index
	if index == nil {
		vectorRepo := postgres.NewVectorRepository(db.Pool, cfg.OpenAI.EmbeddingDimension)
		status, err := vectorRepo.EnsureCollection(ctx)
		if status == postgres.IndexDegraded {
			options.logger.Warn("vector index initialization failed, search and ingestion may fail",
				"error", err)
		}
		index = vectorRepo
	}

	// MailSender (SMTP)
	mailer := options.mailer
	if mailer == nil {
		mailer = smtp.NewSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	}

	// ContextLimiter (tiktoken)
	limiter := options.limiter
	if limiter == nil {
		counter, err := newTokenCounter()
		if err != nil {
			return nil, fmt.Errorf("TokenCounter 初期化に失敗しました: %w", err)
		}
		limiter = counter
	}

	// Repository (PostgreSQL)
	emailRepo := postgres.NewEmailRepository(db.Pool)
	promptRepo := postgres.NewPromptRepository(db.Pool)
	draftRepo := postgres.NewDraftRepository(db.Pool)

	// IngestService
	ingestService := coreingestion.NewIngestService(
		emailRepo,
		promptRepo,
		llm,
		embedder,
		index,
		coreingestion.WithIngestLogger(options.logger),
		coreingestion.WithSplitter(chunk.NewSplitter(cfg.Ingest.ChunkSize)),
		coreingestion.WithBatchDelay(cfg.Ingest.BatchDelay),
	)

	// RetrieveService
	retrieveService := coreretrieval.NewRetrieveService(
		embedder,
		index,
		emailRepo,
		llm,
		coreretrieval.WithRetrieveLogger(options.logger),
		coreretrieval.WithSearchLimit(cfg.Retrieval.SearchLimit),
		coreretrieval.WithScoreThreshold(cfg.Retrieval.ScoreThreshold),
		coreretrieval.WithContextLimiter(limiter, cfg.Retrieval.MaxContextTokens),
	)

	// ChatService
	chatService := corechat.NewChatService(
		emailRepo,
		llm,
		corechat.WithChatLogger(options.logger),
	)

	// ReplyService
	replyService := corereply.NewReplyService(
		emailRepo,
		promptRepo,
		draftRepo,
		llm,
		mailer,
		corereply.WithReplyLogger(options.logger),
	)

	return &ServiceContainer{
		IngestService:   ingestService,
		RetrieveService: retrieveService,
		ChatService:     chatService,
		ReplyService:    replyService,
		Emails:          emailRepo,
		Prompts:         promptRepo,
		Drafts:          draftRepo,
		logger:          options.logger,
		database:        db,
		tx:              database.NewTransactionProvider(db.Pool),
	}, nil
}

// Close は内部リソースを解放する。
func (c *ServiceContainer) Close() {
	if c != nil && c.database != nil {
		c.database.Close()
	}
}

// Logger はロガーを返す。
func (c *ServiceContainer) Logger() *slog.Logger {
	if c == nil || c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Database はデータベースを返す。
func (c *ServiceContainer) Database() *database.Database {
	if c == nil {
		return nil
	}
	return c.database
}
