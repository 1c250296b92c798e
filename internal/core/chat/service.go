package chat

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultInboxLimit は受信箱コンテキストに含める直近メールの件数
const DefaultInboxLimit = 5

// ChatService はメールを踏まえた対話のビジネスロジックを提供する
type ChatService struct {
	emails     EmailReader
	llm        Generator
	inboxLimit int
	logger     *slog.Logger
}

type ChatServiceOption func(*ChatService)

// WithChatLogger は ChatService にロガーを設定する
func WithChatLogger(logger *slog.Logger) ChatServiceOption {
	return func(s *ChatService) {
		s.logger = logger
	}
}

// WithInboxLimit は受信箱コンテキストの件数上限を設定する
func WithInboxLimit(limit int) ChatServiceOption {
	return func(s *ChatService) {
		s.inboxLimit = limit
	}
}

// NewChatService は新しいChatServiceを作成する
func NewChatService(emails EmailReader, llm Generator, opts ...ChatServiceOption) *ChatService {
	svc := &ChatService{
		emails:     emails,
		llm:        llm,
		inboxLimit: DefaultInboxLimit,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	return svc
}

// Chat は質問に回答する。EmailIDが指定されていればそのメールの内容を、
// 指定がなければ直近の受信メール一覧をコンテキストとして使う
func (s *ChatService) Chat(ctx context.Context, params ChatParams) (*ChatResult, error) {
	if params.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	var (
		systemPrompt string
		contextBlock string
	)

	if emailID, ok := params.EmailID.Get(); ok {
		email, err := s.emails.GetEmailByID(ctx, emailID)
		if err != nil {
			return nil, fmt.Errorf("failed to load email %s: %w", emailID, err)
		}
		systemPrompt = BuildEmailSystemPrompt()
		contextBlock = BuildEmailContext(email)
	} else {
		recent, err := s.emails.ListRecentEmails(ctx, s.inboxLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to list recent emails: %w", err)
		}
		systemPrompt = BuildInboxSystemPrompt()
		contextBlock = BuildInboxContext(recent)
	}

	response, err := s.llm.GenerateResponse(ctx, systemPrompt, BuildUserContent(contextBlock, params.Query))
	if err != nil {
		return nil, err
	}

	s.logger.Info("chat answered", "emailScoped", params.EmailID.IsPresent())

	return &ChatResult{Response: response}, nil
}
