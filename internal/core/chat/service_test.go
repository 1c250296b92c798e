package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/mail-rag/internal/core/mail"
)

type stubEmailReader struct {
	emails map[uuid.UUID]*mail.Email
	recent []*mail.Email

	lastLimit int
}

func (r *stubEmailReader) GetEmailByID(ctx context.Context, id uuid.UUID) (*mail.Email, error) {
	email, ok := r.emails[id]
	if !ok {
		return nil, mail.ErrNotFound
	}
	return email, nil
}

func (r *stubEmailReader) ListRecentEmails(ctx context.Context, limit int) ([]*mail.Email, error) {
	r.lastLimit = limit
	return r.recent, nil
}

type stubGenerator struct {
	answer string
	err    error

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

func testEmail(sender, subject, body, category string) *mail.Email {
	email := &mail.Email{
		ID:         uuid.New(),
		Sender:     sender,
		Subject:    subject,
		Body:       body,
		ReceivedAt: time.Now(),
	}
	if category != "" {
		email.Category = &category
	}
	return email
}

func TestChatRequiresQuery(t *testing.T) {
	svc := NewChatService(&stubEmailReader{}, &stubGenerator{})

	_, err := svc.Chat(context.Background(), ChatParams{})
	assert.Error(t, err)
}

func TestChatWithEmailIDUsesEmailContext(t *testing.T) {
	email := testEmail("boss@example.com", "Budget review", "Please check Q3 numbers.", "Work")
	email.ActionItems = []mail.ActionItem{{Task: "Check Q3 numbers", Deadline: "Friday"}}

	reader := &stubEmailReader{emails: map[uuid.UUID]*mail.Email{email.ID: email}}
	gen := &stubGenerator{answer: "The deadline is Friday."}
	svc := NewChatService(reader, gen)

	result, err := svc.Chat(context.Background(), ChatParams{
		Query:   "When is the deadline?",
		EmailID: mo.Some(email.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, "The deadline is Friday.", result.Response)

	assert.Contains(t, gen.lastSystemPrompt, "based on the email context")
	assert.Contains(t, gen.lastUserContent, "Sender: boss@example.com")
	assert.Contains(t, gen.lastUserContent, "Subject: Budget review")
	assert.Contains(t, gen.lastUserContent, "Category: Work")
	assert.Contains(t, gen.lastUserContent, "Check Q3 numbers")
	assert.True(t, strings.HasSuffix(gen.lastUserContent, "User Query: When is the deadline?"))
}

func TestChatWithUnknownEmailIDFails(t *testing.T) {
	svc := NewChatService(&stubEmailReader{emails: map[uuid.UUID]*mail.Email{}}, &stubGenerator{})

	_, err := svc.Chat(context.Background(), ChatParams{
		Query:   "anything",
		EmailID: mo.Some(uuid.New()),
	})
	assert.ErrorIs(t, err, mail.ErrNotFound)
}

func TestChatWithoutEmailIDUsesInboxContext(t *testing.T) {
	reader := &stubEmailReader{recent: []*mail.Email{
		testEmail("a@example.com", "Standup notes", "...", "Work"),
		testEmail("b@example.com", "Lunch?", "...", ""),
	}}
	gen := &stubGenerator{answer: "You have two recent emails."}
	svc := NewChatService(reader, gen)

	result, err := svc.Chat(context.Background(), ChatParams{Query: "What's in my inbox?"})
	require.NoError(t, err)
	assert.Equal(t, "You have two recent emails.", result.Response)

	assert.Equal(t, DefaultInboxLimit, reader.lastLimit)
	assert.Contains(t, gen.lastSystemPrompt, "recent emails")
	assert.Contains(t, gen.lastUserContent, "- From: a@example.com, Subject: Standup notes, Category: Work")
	assert.Contains(t, gen.lastUserContent, "Category: (uncategorized)")
}

func TestChatInboxLimitOption(t *testing.T) {
	reader := &stubEmailReader{}
	svc := NewChatService(reader, &stubGenerator{}, WithInboxLimit(3))

	_, err := svc.Chat(context.Background(), ChatParams{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, 3, reader.lastLimit)
}

func TestChatPropagatesGenerationError(t *testing.T) {
	wantErr := errors.New("generation unavailable")
	svc := NewChatService(&stubEmailReader{}, &stubGenerator{err: wantErr})

	_, err := svc.Chat(context.Background(), ChatParams{Query: "q"})
	assert.ErrorIs(t, err, wantErr)
}
