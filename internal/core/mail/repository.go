package mail

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound はレコードが存在しない場合に返される
var ErrNotFound = errors.New("record not found")

// EmailRepository はメールレコードの永続化境界
type EmailRepository interface {
	GetEmailByID(ctx context.Context, id uuid.UUID) (*Email, error)
	ListEmails(ctx context.Context) ([]*Email, error)
	ListRecentEmails(ctx context.Context, limit int) ([]*Email, error)
	ListUnprocessedEmails(ctx context.Context) ([]*Email, error)
	CreateEmail(ctx context.Context, sender, subject, body string) (*Email, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, update EmailUpdate) (*Email, error)
}

// PromptRepository はプロンプトテンプレートの永続化境界
type PromptRepository interface {
	GetPromptByType(ctx context.Context, promptType PromptType) (*PromptConfig, error)
	ListPrompts(ctx context.Context) ([]*PromptConfig, error)
	UpdatePrompt(ctx context.Context, id uuid.UUID, templateContent string) (*PromptConfig, error)
	UpsertPrompt(ctx context.Context, promptType PromptType, templateContent string) (*PromptConfig, error)
}

// DraftRepository は返信下書きの永続化境界
type DraftRepository interface {
	CreateDraft(ctx context.Context, emailID uuid.UUID, draftBody string) (*Draft, error)
	ListDraftsByEmail(ctx context.Context, emailID uuid.UUID) ([]*Draft, error)
	MarkDraftSent(ctx context.Context, id uuid.UUID) error
}
