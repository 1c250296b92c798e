package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateResponseReturnsAnswer(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": "The report is due Friday.",
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient("dummy-key", WithBaseURL(server.URL))

	answer, err := client.GenerateResponse(context.Background(), "You are a helpful email assistant.", "When is the report due?")
	require.NoError(t, err)
	assert.Equal(t, "The report is due Friday.", answer)

	// system指示とユーザー入力が別メッセージとして送られる
	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
}

func TestGenerateResponseRetriesOnOverloadThenFails(t *testing.T) {
	var calls atomic.Int32
	server := overloadedServer(t, &calls)
	defer server.Close()

	client := NewClient("dummy-key", WithBaseURL(server.URL))

	var delays []time.Duration
	client.retry.sleep = sleepRecorder(&delays)

	_, err := client.GenerateResponse(context.Background(), "system", "user")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, delays, 2)
	assert.Equal(t, RetryDelay, delays[0])
	assert.Equal(t, RetryDelay, delays[1])
}

func TestGenerateResponseOmitsEmptySystemPrompt(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": "ok"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient("dummy-key", WithBaseURL(server.URL))

	_, err := client.GenerateResponse(context.Background(), "", "categorize this")
	require.NoError(t, err)

	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
}
