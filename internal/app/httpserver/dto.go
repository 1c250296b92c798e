package httpserver

import (
	"time"

	"github.com/google/uuid"

	"github.com/jinford/mail-rag/internal/core/mail"
)

// emailResponse は Email のAPI表現
type emailResponse struct {
	ID          uuid.UUID         `json:"id"`
	Sender      string            `json:"sender"`
	Subject     string            `json:"subject"`
	Body        string            `json:"body"`
	ReceivedAt  time.Time         `json:"receivedAt"`
	IsProcessed bool              `json:"isProcessed"`
	Category    *string           `json:"category"`
	ActionItems []mail.ActionItem `json:"actionItems"`
	Summary     *string           `json:"summary"`
	Status      string            `json:"status"`
}

func toEmailResponse(email *mail.Email) emailResponse {
	actionItems := email.ActionItems
	if actionItems == nil {
		actionItems = []mail.ActionItem{}
	}
	return emailResponse{
		ID:          email.ID,
		Sender:      email.Sender,
		Subject:     email.Subject,
		Body:        email.Body,
		ReceivedAt:  email.ReceivedAt,
		IsProcessed: email.IsProcessed,
		Category:    email.Category,
		ActionItems: actionItems,
		Summary:     email.Summary,
		Status:      string(email.Status),
	}
}

func toEmailResponses(emails []*mail.Email) []emailResponse {
	responses := make([]emailResponse, 0, len(emails))
	for _, email := range emails {
		responses = append(responses, toEmailResponse(email))
	}
	return responses
}

// promptResponse は PromptConfig のAPI表現
type promptResponse struct {
	ID              uuid.UUID `json:"id"`
	PromptType      string    `json:"promptType"`
	TemplateContent string    `json:"templateContent"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toPromptResponse(prompt *mail.PromptConfig) promptResponse {
	return promptResponse{
		ID:              prompt.ID,
		PromptType:      string(prompt.PromptType),
		TemplateContent: prompt.TemplateContent,
		UpdatedAt:       prompt.UpdatedAt,
	}
}

// generalChatRequest は POST /api/general-chat のリクエスト
type generalChatRequest struct {
	Query string `json:"query"`
}

// chatRequest は POST /api/chat のリクエスト
type chatRequest struct {
	Query   string     `json:"query"`
	EmailID *uuid.UUID `json:"emailId"`
}

// receiveEmailRequest は POST /api/emails/receive のリクエスト
type receiveEmailRequest struct {
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// updateEmailRequest は PATCH /api/emails/{id} のリクエスト。
// 省略されたフィールドは変更されない
type updateEmailRequest struct {
	Category    *string           `json:"category"`
	ActionItems []mail.ActionItem `json:"actionItems"`
	Summary     *string           `json:"summary"`
	Status      *string           `json:"status"`
}

// generateRepliesRequest は POST /api/emails/generate-replies のリクエスト
type generateRepliesRequest struct {
	EmailID uuid.UUID `json:"emailId"`
}

// sendEmailRequest は POST /api/emails/send のリクエスト
type sendEmailRequest struct {
	To      string     `json:"to"`
	Subject string     `json:"subject"`
	Body    string     `json:"body"`
	EmailID *uuid.UUID `json:"emailId"`
}

// updatePromptRequest は PUT /api/prompts/{id} のリクエスト
type updatePromptRequest struct {
	TemplateContent string `json:"templateContent"`
}
