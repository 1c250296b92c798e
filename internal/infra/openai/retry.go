package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
)

const (
	// MaxAttempts は1回の呼び出しにおける総試行回数
	MaxAttempts = 3

	// RetryDelay は試行間の固定待機時間
	RetryDelay = 2 * time.Second
)

var (
	// ErrEmbeddingUnavailable は埋め込みプロバイダが過負荷のままリトライ上限に達した場合のエラー
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrGenerationUnavailable は生成プロバイダが過負荷のままリトライ上限に達した場合のエラー
	ErrGenerationUnavailable = errors.New("completion provider unavailable")
)

// isTransientOverload は一時的な過負荷（503系あるいは"overloaded"シグナル）かどうかを判定する。
// これ以外の失敗はリトライせず即座に呼び出し元へ返す
func isTransientOverload(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusServiceUnavailable, http.StatusTooManyRequests:
			return true
		}
	}

	return strings.Contains(strings.ToLower(err.Error()), "overloaded")
}

// retryPolicy は固定間隔リトライの設定。sleep はテストから差し替えられる
type retryPolicy struct {
	maxAttempts int
	delay       time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *slog.Logger
}

func defaultRetryPolicy(logger *slog.Logger) retryPolicy {
	return retryPolicy{
		maxAttempts: MaxAttempts,
		delay:       RetryDelay,
		sleep:       sleepContext,
		logger:      logger,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// do は fn を実行し、一時的過負荷の間のみ固定間隔で再試行する。
// リトライ上限まで過負荷が続いた場合は unavailable を返し、
// それ以外の失敗はそのまま返す
func (p retryPolicy) do(ctx context.Context, op string, unavailable error, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isTransientOverload(err) {
			return fmt.Errorf("%s failed: %w", op, err)
		}
		if attempt == p.maxAttempts {
			break
		}

		p.logger.Warn("provider overloaded, retrying",
			"op", op,
			"attempt", attempt,
			"maxAttempts", p.maxAttempts,
			"delay", p.delay,
		)

		if err := p.sleep(ctx, p.delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: %s failed after %d attempts: %v", unavailable, op, p.maxAttempts, lastErr)
}
