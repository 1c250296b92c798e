package retrieval

import (
	"context"

	"github.com/google/uuid"

	"github.com/jinford/mail-rag/internal/core/mail"
)

// Embedder はクエリ文字列をベクトルに変換する
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher はベクトルインデックスの近傍検索境界。
// 結果はスコア降順で返される
type Searcher interface {
	Search(ctx context.Context, vector []float32, limit int) ([]*SearchResult, error)
}

// Generator は回答生成モデルとの通信境界
type Generator interface {
	GenerateResponse(ctx context.Context, systemPrompt, userContent string) (string, error)
}

// EmailReader はコンテキスト組み立て時にメール本体を取得する境界
type EmailReader interface {
	GetEmailByID(ctx context.Context, id uuid.UUID) (*mail.Email, error)
}

// ContextLimiter は組み立てたコンテキストをトークン上限内に収める
type ContextLimiter interface {
	TrimToTokenLimit(text string, maxTokens int) string
}
