package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// DefaultModel はデフォルトで使用する回答生成モデル
const DefaultModel = "gpt-4o-mini"

// Client は回答生成モデルとの通信クライアント。
// リトライ方針は Embedder と同一（固定間隔・過負荷のみ再試行）
type Client struct {
	client openai.Client
	model  string
	retry  retryPolicy
}

type clientOptions struct {
	model   string
	baseURL string
	logger  *slog.Logger
}

// ClientOption は Client のオプション設定
type ClientOption func(*clientOptions)

// WithModel は生成モデル名を上書きする
func WithModel(model string) ClientOption {
	return func(o *clientOptions) {
		o.model = model
	}
}

// WithBaseURL はAPIエンドポイントを上書きする（プロキシ・テスト用）
func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

// WithClientLogger はロガーを設定する
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// NewClient は新しい Client を作成する
func NewClient(apiKey string, opts ...ClientOption) *Client {
	options := clientOptions{
		model:  DefaultModel,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if options.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(options.baseURL))
	}

	return &Client{
		client: openai.NewClient(reqOpts...),
		model:  options.model,
		retry:  defaultRetryPolicy(options.logger),
	}
}

// GenerateResponse はシステム指示とユーザー入力から回答テキストを生成する。
// 一時的過負荷はリトライし、上限到達で ErrGenerationUnavailable を返す
func (c *Client) GenerateResponse(ctx context.Context, systemPrompt, userContent string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userContent))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
	}

	var answer string
	err := c.retry.do(ctx, "generate", ErrGenerationUnavailable, func() error {
		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return err
		}
		if len(completion.Choices) == 0 {
			return fmt.Errorf("no completion choices returned")
		}
		answer = completion.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}

	return answer, nil
}

// ModelName はモデル名を返す
func (c *Client) ModelName() string {
	return c.model
}
