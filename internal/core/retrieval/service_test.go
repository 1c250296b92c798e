package retrieval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/mail-rag/internal/core/mail"
)

type stubEmbedder struct {
	err    error
	called bool
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.called = true
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type stubSearcher struct {
	results   []*SearchResult
	err       error
	lastLimit int
}

func (s *stubSearcher) Search(ctx context.Context, vector []float32, limit int) ([]*SearchResult, error) {
	s.lastLimit = limit
	return s.results, s.err
}

type stubEmailReader struct {
	emails map[uuid.UUID]*mail.Email
}

func (r *stubEmailReader) GetEmailByID(ctx context.Context, id uuid.UUID) (*mail.Email, error) {
	email, ok := r.emails[id]
	if !ok {
		return nil, mail.ErrNotFound
	}
	return email, nil
}

type stubGenerator struct {
	answer           string
	err              error
	lastSystemPrompt string
	lastUserContent  string
}

func (g *stubGenerator) GenerateResponse(ctx context.Context, systemPrompt, userContent string) (string, error) {
	g.lastSystemPrompt = systemPrompt
	g.lastUserContent = userContent
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEmail(id uuid.UUID, subject, sender, body string) *mail.Email {
	return &mail.Email{
		ID:         id,
		Sender:     sender,
		Subject:    subject,
		Body:       body,
		ReceivedAt: time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC),
		Status:     mail.StatusUnread,
	}
}

func TestRetrieveRequiresQuery(t *testing.T) {
	svc := NewRetrieveService(&stubEmbedder{}, &stubSearcher{}, &stubEmailReader{}, &stubGenerator{}, WithRetrieveLogger(testLogger()))

	_, err := svc.Retrieve(context.Background(), "")
	assert.Error(t, err)
}

func TestRetrieveUsesDefaultSearchLimit(t *testing.T) {
	searcher := &stubSearcher{}
	svc := NewRetrieveService(&stubEmbedder{}, searcher, &stubEmailReader{}, &stubGenerator{}, WithRetrieveLogger(testLogger()))

	_, err := svc.Retrieve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, DefaultSearchLimit, searcher.lastLimit)
}

func TestRetrieveAndAnswerEmptyContextStillInstructsFallback(t *testing.T) {
	// 閾値0.45を超えるヒットがない場合、コンテキストは空になる
	searcher := &stubSearcher{results: resultsWithScores(0.2, 0.1)}
	gen := &stubGenerator{answer: FallbackSentence}
	svc := NewRetrieveService(&stubEmbedder{}, searcher, &stubEmailReader{}, gen, WithRetrieveLogger(testLogger()))

	result, err := svc.RetrieveAndAnswer(context.Background(), "What is the meaning of life?")
	require.NoError(t, err)

	assert.Empty(t, result.Sources)
	assert.Contains(t, gen.lastSystemPrompt, FallbackSentence)
	assert.True(t, strings.HasSuffix(gen.lastSystemPrompt, "Context:\n"))
	assert.Equal(t, "What is the meaning of life?", gen.lastUserContent)
}

func TestRetrieveSingleSourceMultiChunkYieldsOneSource(t *testing.T) {
	emailID := uuid.New()
	reader := &stubEmailReader{emails: map[uuid.UUID]*mail.Email{
		emailID: newTestEmail(emailID, "Budget Q3", "cfo@example.com", "Full budget discussion body."),
	}}
	searcher := &stubSearcher{results: []*SearchResult{
		{PointID: uuid.New(), EmailID: emailID, Subject: "Budget Q3", Score: 0.9, Text: "chunk one"},
		{PointID: uuid.New(), EmailID: emailID, Subject: "Budget Q3", Score: 0.8, Text: "chunk two"},
		{PointID: uuid.New(), EmailID: emailID, Subject: "Budget Q3", Score: 0.7, Text: "chunk three"},
	}}
	svc := NewRetrieveService(&stubEmbedder{}, searcher, reader, &stubGenerator{}, WithRetrieveLogger(testLogger()))

	rctx, err := svc.Retrieve(context.Background(), "how is the budget")
	require.NoError(t, err)

	require.Len(t, rctx.Sources, 1)
	assert.Equal(t, emailID, rctx.Sources[0].EmailID)
	assert.Equal(t, "Budget Q3", rctx.Sources[0].Subject)
	// コンテキストにはチャンク断片ではなくレコードストアの全文が載る
	assert.Contains(t, rctx.Text, "Full budget discussion body.")
	assert.Equal(t, 1, strings.Count(rctx.Text, "Subject: Budget Q3"))
}

func TestRetrieveDropsStaleSourcesEntirely(t *testing.T) {
	liveID := uuid.New()
	deletedID := uuid.New()
	reader := &stubEmailReader{emails: map[uuid.UUID]*mail.Email{
		liveID: newTestEmail(liveID, "Standup notes", "lead@example.com", "Notes body."),
	}}
	searcher := &stubSearcher{results: []*SearchResult{
		{PointID: uuid.New(), EmailID: deletedID, Subject: "Gone", Score: 0.95},
		{PointID: uuid.New(), EmailID: liveID, Subject: "Standup notes", Score: 0.8},
	}}
	svc := NewRetrieveService(&stubEmbedder{}, searcher, reader, &stubGenerator{}, WithRetrieveLogger(testLogger()))

	rctx, err := svc.Retrieve(context.Background(), "standup")
	require.NoError(t, err)

	// 削除済みメールはコンテキストにも引用元リストにも残らない
	require.Len(t, rctx.Sources, 1)
	assert.Equal(t, liveID, rctx.Sources[0].EmailID)
	assert.NotContains(t, rctx.Text, "Gone")
}

func TestRetrieveSkipsDuplicateSubjects(t *testing.T) {
	firstID := uuid.New()
	secondID := uuid.New()
	reader := &stubEmailReader{emails: map[uuid.UUID]*mail.Email{
		firstID:  newTestEmail(firstID, "Re: Invoice", "a@example.com", "First body."),
		secondID: newTestEmail(secondID, "Re: Invoice", "b@example.com", "Second body."),
	}}
	searcher := &stubSearcher{results: []*SearchResult{
		{PointID: uuid.New(), EmailID: firstID, Score: 0.9},
		{PointID: uuid.New(), EmailID: secondID, Score: 0.7},
	}}
	svc := NewRetrieveService(&stubEmbedder{}, searcher, reader, &stubGenerator{}, WithRetrieveLogger(testLogger()))

	rctx, err := svc.Retrieve(context.Background(), "invoice")
	require.NoError(t, err)

	require.Len(t, rctx.Sources, 1)
	assert.Equal(t, firstID, rctx.Sources[0].EmailID)
	assert.NotContains(t, rctx.Text, "Second body.")
}

func TestRetrieveAndAnswerPropagatesFailures(t *testing.T) {
	t.Run("embed failure", func(t *testing.T) {
		embedder := &stubEmbedder{err: errors.New("provider down")}
		svc := NewRetrieveService(embedder, &stubSearcher{}, &stubEmailReader{}, &stubGenerator{}, WithRetrieveLogger(testLogger()))

		_, err := svc.RetrieveAndAnswer(context.Background(), "q")
		assert.ErrorContains(t, err, "failed to embed query")
	})

	t.Run("search failure", func(t *testing.T) {
		searcher := &stubSearcher{err: errors.New("index unreachable")}
		svc := NewRetrieveService(&stubEmbedder{}, searcher, &stubEmailReader{}, &stubGenerator{}, WithRetrieveLogger(testLogger()))

		_, err := svc.RetrieveAndAnswer(context.Background(), "q")
		assert.ErrorContains(t, err, "vector search failed")
	})

	t.Run("generation failure", func(t *testing.T) {
		gen := &stubGenerator{err: errors.New("llm down")}
		svc := NewRetrieveService(&stubEmbedder{}, &stubSearcher{}, &stubEmailReader{}, gen, WithRetrieveLogger(testLogger()))

		_, err := svc.RetrieveAndAnswer(context.Background(), "q")
		assert.ErrorContains(t, err, "failed to generate answer")
	})
}

type stubLimiter struct {
	maxChars int
}

func (l *stubLimiter) TrimToTokenLimit(text string, maxTokens int) string {
	if len(text) > l.maxChars {
		return text[:l.maxChars]
	}
	return text
}

func TestRetrieveBoundsContextLength(t *testing.T) {
	emailID := uuid.New()
	reader := &stubEmailReader{emails: map[uuid.UUID]*mail.Email{
		emailID: newTestEmail(emailID, "Long", "x@example.com", strings.Repeat("word ", 500)),
	}}
	searcher := &stubSearcher{results: []*SearchResult{
		{PointID: uuid.New(), EmailID: emailID, Score: 0.9},
	}}
	svc := NewRetrieveService(&stubEmbedder{}, searcher, reader, &stubGenerator{},
		WithRetrieveLogger(testLogger()),
		WithContextLimiter(&stubLimiter{maxChars: 100}, 100),
	)

	rctx, err := svc.Retrieve(context.Background(), "long")
	require.NoError(t, err)
	assert.Len(t, rctx.Text, 100)
}
