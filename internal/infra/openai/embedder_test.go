package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedderOptionsOverrideDefaults(t *testing.T) {
	embedder := NewEmbedder("dummy-key",
		WithEmbeddingModel("custom-model"),
		WithEmbeddingDimension(42),
	)

	assert.Equal(t, "custom-model", embedder.ModelName())
	assert.Equal(t, 42, embedder.Dimension())
}

// overloadedServer は常に503を返すスタブプロバイダ
func overloadedServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error": {"message": "the model is overloaded", "type": "server_error"}}`)
	}))
}

// sleepRecorder は待機せずに待機時間だけ記録する
func sleepRecorder(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestEmbedRetriesOnOverloadThenFails(t *testing.T) {
	var calls atomic.Int32
	server := overloadedServer(t, &calls)
	defer server.Close()

	embedder := NewEmbedder("dummy-key",
		WithEmbeddingBaseURL(server.URL),
		WithEmbeddingDimension(3),
	)

	var delays []time.Duration
	embedder.retry.sleep = sleepRecorder(&delays)

	_, err := embedder.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)

	// 3回試行し、間に2回だけ固定の待機が入る
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, delays, 2)
	assert.Equal(t, RetryDelay, delays[0])
	assert.Equal(t, RetryDelay, delays[1])
}

func TestEmbedDoesNotRetryNonTransientFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "invalid input", "type": "invalid_request_error"}}`)
	}))
	defer server.Close()

	embedder := NewEmbedder("dummy-key",
		WithEmbeddingBaseURL(server.URL),
		WithEmbeddingDimension(3),
	)

	var delays []time.Duration
	embedder.retry.sleep = sleepRecorder(&delays)

	_, err := embedder.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmbeddingUnavailable)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, delays)
}

func TestEmbedReturnsVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "text-embedding-3-small",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": []float64{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer server.Close()

	embedder := NewEmbedder("dummy-key",
		WithEmbeddingBaseURL(server.URL),
		WithEmbeddingDimension(3),
	)

	vector, err := embedder.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
}

func TestEmbedRejectsDimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "text-embedding-3-small",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": []float64{0.1, 0.2}},
			},
		})
	}))
	defer server.Close()

	embedder := NewEmbedder("dummy-key",
		WithEmbeddingBaseURL(server.URL),
		WithEmbeddingDimension(3),
	)

	_, err := embedder.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestIsTransientOverload(t *testing.T) {
	assert.False(t, isTransientOverload(nil))
	assert.False(t, isTransientOverload(errors.New("connection refused")))
	assert.True(t, isTransientOverload(errors.New("model is Overloaded, try again")))
}
