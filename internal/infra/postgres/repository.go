package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jinford/mail-rag/internal/core/mail"
)

// EmailRepository は mail.EmailRepository を実装する PostgreSQL リポジトリ
type EmailRepository struct {
	db DBTX
}

// NewEmailRepository は新しい EmailRepository を作成する
func NewEmailRepository(db DBTX) *EmailRepository {
	return &EmailRepository{db: db}
}

// コンパイル時の型チェック
var _ mail.EmailRepository = (*EmailRepository)(nil)

const emailColumns = `id, sender, subject, body, received_at, is_processed, category, action_items, summary, status, created_at, updated_at`

func (r *EmailRepository) GetEmailByID(ctx context.Context, id uuid.UUID) (*mail.Email, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+emailColumns+` FROM emails WHERE id = $1`, id)

	email, err := scanEmail(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mail.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get email: %w", err)
	}
	return email, nil
}

func (r *EmailRepository) ListEmails(ctx context.Context) ([]*mail.Email, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+emailColumns+` FROM emails ORDER BY received_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	defer rows.Close()

	return scanEmails(rows)
}

func (r *EmailRepository) ListRecentEmails(ctx context.Context, limit int) ([]*mail.Email, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+emailColumns+` FROM emails ORDER BY received_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent emails: %w", err)
	}
	defer rows.Close()

	return scanEmails(rows)
}

func (r *EmailRepository) ListUnprocessedEmails(ctx context.Context) ([]*mail.Email, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+emailColumns+` FROM emails WHERE NOT is_processed ORDER BY received_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed emails: %w", err)
	}
	defer rows.Close()

	return scanEmails(rows)
}

func (r *EmailRepository) CreateEmail(ctx context.Context, sender, subject, body string) (*mail.Email, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO emails (id, sender, subject, body, received_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+emailColumns,
		uuid.New(), sender, subject, body, time.Now())

	email, err := scanEmail(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create email: %w", err)
	}
	return email, nil
}

func (r *EmailRepository) UpdateEmail(ctx context.Context, id uuid.UUID, update mail.EmailUpdate) (*mail.Email, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	argIdx := 2

	appendSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if update.Category != nil {
		appendSet("category", *update.Category)
	}
	if update.ActionItems != nil {
		appendSet("action_items", actionItemsToJSONB(update.ActionItems))
	}
	if update.Summary != nil {
		appendSet("summary", *update.Summary)
	}
	if update.Status != nil {
		appendSet("status", string(*update.Status))
	}
	if update.IsProcessed != nil {
		appendSet("is_processed", *update.IsProcessed)
	}

	query := fmt.Sprintf(
		`UPDATE emails SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), emailColumns)

	email, err := scanEmail(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mail.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update email: %w", err)
	}
	return email, nil
}

// PromptRepository は mail.PromptRepository を実装する PostgreSQL リポジトリ
type PromptRepository struct {
	db DBTX
}

// NewPromptRepository は新しい PromptRepository を作成する
func NewPromptRepository(db DBTX) *PromptRepository {
	return &PromptRepository{db: db}
}

var _ mail.PromptRepository = (*PromptRepository)(nil)

const promptColumns = `id, prompt_type, template_content, created_at, updated_at`

func (r *PromptRepository) GetPromptByType(ctx context.Context, promptType mail.PromptType) (*mail.PromptConfig, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+promptColumns+` FROM prompt_configs WHERE prompt_type = $1`, string(promptType))

	prompt, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mail.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get prompt: %w", err)
	}
	return prompt, nil
}

func (r *PromptRepository) ListPrompts(ctx context.Context) ([]*mail.PromptConfig, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+promptColumns+` FROM prompt_configs ORDER BY prompt_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	defer rows.Close()

	var prompts []*mail.PromptConfig
	for rows.Next() {
		prompt, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, prompt)
	}
	return prompts, rows.Err()
}

func (r *PromptRepository) UpdatePrompt(ctx context.Context, id uuid.UUID, templateContent string) (*mail.PromptConfig, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE prompt_configs SET template_content = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+promptColumns,
		id, templateContent)

	prompt, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mail.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update prompt: %w", err)
	}
	return prompt, nil
}

func (r *PromptRepository) UpsertPrompt(ctx context.Context, promptType mail.PromptType, templateContent string) (*mail.PromptConfig, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO prompt_configs (id, prompt_type, template_content)
		VALUES ($1, $2, $3)
		ON CONFLICT (prompt_type) DO UPDATE SET
			template_content = EXCLUDED.template_content,
			updated_at = now()
		RETURNING `+promptColumns,
		uuid.New(), string(promptType), templateContent)

	prompt, err := scanPrompt(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert prompt: %w", err)
	}
	return prompt, nil
}

// DraftRepository は mail.DraftRepository を実装する PostgreSQL リポジトリ
type DraftRepository struct {
	db DBTX
}

// NewDraftRepository は新しい DraftRepository を作成する
func NewDraftRepository(db DBTX) *DraftRepository {
	return &DraftRepository{db: db}
}

var _ mail.DraftRepository = (*DraftRepository)(nil)

func (r *DraftRepository) CreateDraft(ctx context.Context, emailID uuid.UUID, draftBody string) (*mail.Draft, error) {
	draft := &mail.Draft{}
	err := r.db.QueryRow(ctx, `
		INSERT INTO drafts (id, email_id, draft_body)
		VALUES ($1, $2, $3)
		RETURNING id, email_id, draft_body, is_sent, created_at`,
		uuid.New(), emailID, draftBody,
	).Scan(&draft.ID, &draft.EmailID, &draft.DraftBody, &draft.IsSent, &draft.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return draft, nil
}

func (r *DraftRepository) ListDraftsByEmail(ctx context.Context, emailID uuid.UUID) ([]*mail.Draft, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, email_id, draft_body, is_sent, created_at
		FROM drafts WHERE email_id = $1 ORDER BY created_at ASC`, emailID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*mail.Draft
	for rows.Next() {
		draft := &mail.Draft{}
		if err := rows.Scan(&draft.ID, &draft.EmailID, &draft.DraftBody, &draft.IsSent, &draft.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

func (r *DraftRepository) MarkDraftSent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE drafts SET is_sent = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark draft sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return mail.ErrNotFound
	}
	return nil
}
