package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// DefaultEmbeddingModel はモデル未指定時のデフォルトモデル
	DefaultEmbeddingModel = "text-embedding-3-small"

	// DefaultEmbeddingDimension はベクトル次元のデフォルト値。
	// インデックス側のコレクション次元と一致している必要がある
	DefaultEmbeddingDimension = 768
)

// Embedder はテキストを固定次元のベクトルに変換する。
// リトライ方針は Embedder 自身が持つ
type Embedder struct {
	client    openai.Client
	model     string
	dimension int
	retry     retryPolicy
}

type embedderOptions struct {
	model     string
	dimension int
	baseURL   string
	logger    *slog.Logger
}

// EmbedderOption は Embedder のオプション設定
type EmbedderOption func(*embedderOptions)

// WithEmbeddingModel はモデル名を上書きする
func WithEmbeddingModel(model string) EmbedderOption {
	return func(o *embedderOptions) {
		o.model = model
	}
}

// WithEmbeddingDimension はベクトル次元を上書きする
func WithEmbeddingDimension(dimension int) EmbedderOption {
	return func(o *embedderOptions) {
		o.dimension = dimension
	}
}

// WithEmbeddingBaseURL はAPIエンドポイントを上書きする（プロキシ・テスト用）
func WithEmbeddingBaseURL(url string) EmbedderOption {
	return func(o *embedderOptions) {
		o.baseURL = url
	}
}

// WithEmbedderLogger はロガーを設定する
func WithEmbedderLogger(logger *slog.Logger) EmbedderOption {
	return func(o *embedderOptions) {
		o.logger = logger
	}
}

// NewEmbedder は新しい Embedder を作成する
func NewEmbedder(apiKey string, opts ...EmbedderOption) *Embedder {
	options := embedderOptions{
		model:     DefaultEmbeddingModel,
		dimension: DefaultEmbeddingDimension,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	// SDK側の自動リトライは無効化し、リトライ方針はこちらで管理する
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if options.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(options.baseURL))
	}

	return &Embedder{
		client:    openai.NewClient(reqOpts...),
		model:     options.model,
		dimension: options.dimension,
		retry:     defaultRetryPolicy(options.logger),
	}
}

// Embed はテキスト1件の埋め込みベクトルを生成する。
// 一時的過負荷はリトライし、上限到達で ErrEmbeddingUnavailable を返す
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	}
	if e.dimension > 0 {
		params.Dimensions = openai.Int(int64(e.dimension))
	}

	var vector []float32
	err := e.retry.do(ctx, "embed", ErrEmbeddingUnavailable, func() error {
		resp, err := e.client.Embeddings.New(ctx, params)
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("no embeddings returned")
		}

		raw := resp.Data[0].Embedding
		vector = make([]float32, len(raw))
		for i, v := range raw {
			vector[i] = float32(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if e.dimension > 0 && len(vector) != e.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vector), e.dimension)
	}

	return vector, nil
}

// ModelName はモデル名を返す
func (e *Embedder) ModelName() string {
	return e.model
}

// Dimension はベクトル次元数を返す
func (e *Embedder) Dimension() int {
	return e.dimension
}
