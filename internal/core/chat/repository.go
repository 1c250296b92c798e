package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/jinford/mail-rag/internal/core/mail"
)

// EmailReader はチャットコンテキストの組み立てに必要なメール参照操作
type EmailReader interface {
	GetEmailByID(ctx context.Context, id uuid.UUID) (*mail.Email, error)
	ListRecentEmails(ctx context.Context, limit int) ([]*mail.Email, error)
}

// Generator はLLM応答生成インターフェース
type Generator interface {
	GenerateResponse(ctx context.Context, systemPrompt, userContent string) (string, error)
}
