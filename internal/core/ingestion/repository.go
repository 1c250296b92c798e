package ingestion

import "context"

// Embedder はチャンクをベクトルに変換する
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorWriter はベクトルインデックスへの書き込み境界。
// ポイントIDによる冪等な挿入・置換を行う
type VectorWriter interface {
	Upsert(ctx context.Context, points []*VectorPoint) error
}

// Generator は分類・抽出に使う生成モデルとの通信境界
type Generator interface {
	GenerateResponse(ctx context.Context, systemPrompt, userContent string) (string, error)
}
