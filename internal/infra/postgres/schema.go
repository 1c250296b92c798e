package postgres

import (
	"context"
	"fmt"
)

// recordStoreDDL はメール・プロンプト・下書きのスキーマ。
// 起動のたびに実行しても安全なように IF NOT EXISTS で揃えている
const recordStoreDDL = `
CREATE TABLE IF NOT EXISTS emails (
    id           uuid PRIMARY KEY,
    sender       text NOT NULL,
    subject      text NOT NULL,
    body         text NOT NULL,
    received_at  timestamptz NOT NULL,
    is_processed boolean NOT NULL DEFAULT false,
    category     text,
    action_items jsonb NOT NULL DEFAULT '[]'::jsonb,
    summary      text,
    status       text NOT NULL DEFAULT 'Unread',
    created_at   timestamptz NOT NULL DEFAULT now(),
    updated_at   timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS emails_received_at_idx ON emails (received_at DESC);
CREATE INDEX IF NOT EXISTS emails_unprocessed_idx ON emails (received_at) WHERE NOT is_processed;

CREATE TABLE IF NOT EXISTS prompt_configs (
    id               uuid PRIMARY KEY,
    prompt_type      text NOT NULL UNIQUE,
    template_content text NOT NULL,
    created_at       timestamptz NOT NULL DEFAULT now(),
    updated_at       timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS drafts (
    id         uuid PRIMARY KEY,
    email_id   uuid NOT NULL REFERENCES emails(id) ON DELETE CASCADE,
    draft_body text NOT NULL,
    is_sent    boolean NOT NULL DEFAULT false,
    created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS drafts_email_id_idx ON drafts (email_id);
`

// EnsureRecordStore はレコードストアのテーブル群を作成する
func EnsureRecordStore(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, recordStoreDDL); err != nil {
		return fmt.Errorf("failed to ensure record store schema: %w", err)
	}
	return nil
}
