package postgres

import (
	"context"
	"errors"
	"fmt"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/jinford/mail-rag/internal/core/ingestion"
	"github.com/jinford/mail-rag/internal/core/retrieval"
)

// ErrDimensionMismatch はベクトルの次元がインデックスの定義と一致しない場合に返される
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// IndexStatus はベクトルインデックスの初期化結果を表す
type IndexStatus string

const (
	// IndexReady はインデックスが検索・書き込み可能な状態
	IndexReady IndexStatus = "ready"
	// IndexDegraded は初期化に失敗し、検索・書き込みが失敗しうる状態
	IndexDegraded IndexStatus = "degraded"
)

// VectorRepository はメールチャンクのベクトルインデックスを
// pgvector 上に実装する。スコアはコサイン類似度(1 - 距離)
type VectorRepository struct {
	db        DBTX
	dimension int
}

// NewVectorRepository は新しい VectorRepository を作成する
func NewVectorRepository(db DBTX, dimension int) *VectorRepository {
	return &VectorRepository{db: db, dimension: dimension}
}

// コンパイル時の型チェック
var (
	_ ingestion.VectorWriter = (*VectorRepository)(nil)
	_ retrieval.Searcher     = (*VectorRepository)(nil)
)

// EnsureCollection は拡張・テーブル・インデックスを冪等に作成する。
// 失敗してもエラーと共に IndexDegraded を返すだけで、呼び出し側が
// 起動を続けるかどうかを決める
func (r *VectorRepository) EnsureCollection(ctx context.Context) (IndexStatus, error) {
	ddl := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS email_chunks (
    id          uuid PRIMARY KEY,
    email_id    uuid NOT NULL,
    subject     text NOT NULL,
    sender      text NOT NULL,
    chunk_text  text NOT NULL,
    received_at timestamptz NOT NULL,
    embedding   vector(%d) NOT NULL,
    updated_at  timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS email_chunks_email_id_idx ON email_chunks (email_id);
CREATE INDEX IF NOT EXISTS email_chunks_embedding_idx ON email_chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);
`, r.dimension)

	if _, err := r.db.Exec(ctx, ddl); err != nil {
		return IndexDegraded, fmt.Errorf("failed to ensure vector index: %w", err)
	}
	return IndexReady, nil
}

// Upsert はポイントIDをキーに冪等な挿入・置換を行う
func (r *VectorRepository) Upsert(ctx context.Context, points []*ingestion.VectorPoint) error {
	for _, point := range points {
		if len(point.Vector) != r.dimension {
			return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(point.Vector), r.dimension)
		}
	}

	for _, point := range points {
		_, err := r.db.Exec(ctx, `
			INSERT INTO email_chunks (id, email_id, subject, sender, chunk_text, received_at, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				email_id    = EXCLUDED.email_id,
				subject     = EXCLUDED.subject,
				sender      = EXCLUDED.sender,
				chunk_text  = EXCLUDED.chunk_text,
				received_at = EXCLUDED.received_at,
				embedding   = EXCLUDED.embedding,
				updated_at  = now()`,
			point.ID, point.EmailID, point.Subject, point.Sender, point.Text, point.ReceivedAt,
			pgvector.NewVector(point.Vector),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert point %s: %w", point.ID, err)
		}
	}
	return nil
}

// Search はコサイン類似度の降順で上位 limit 件を返す
func (r *VectorRepository) Search(ctx context.Context, vector []float32, limit int) ([]*retrieval.SearchResult, error) {
	if len(vector) != r.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), r.dimension)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, email_id, subject, sender, chunk_text, received_at,
		       1 - (embedding <=> $1) AS score
		FROM email_chunks
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector index: %w", err)
	}
	defer rows.Close()

	var results []*retrieval.SearchResult
	for rows.Next() {
		result := &retrieval.SearchResult{}
		err := rows.Scan(
			&result.PointID,
			&result.EmailID,
			&result.Subject,
			&result.Sender,
			&result.Text,
			&result.ReceivedAt,
			&result.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
