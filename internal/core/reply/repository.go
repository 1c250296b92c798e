package reply

import (
	"context"

	"github.com/google/uuid"

	"github.com/jinford/mail-rag/internal/core/mail"
)

// EmailStore は返信処理に必要なメール操作
type EmailStore interface {
	GetEmailByID(ctx context.Context, id uuid.UUID) (*mail.Email, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, update mail.EmailUpdate) (*mail.Email, error)
}

// PromptReader は返信テンプレートの参照操作
type PromptReader interface {
	GetPromptByType(ctx context.Context, promptType mail.PromptType) (*mail.PromptConfig, error)
}

// Generator はLLM応答生成インターフェース
type Generator interface {
	GenerateResponse(ctx context.Context, systemPrompt, userContent string) (string, error)
}

// MailSender はメール送信インターフェース
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
