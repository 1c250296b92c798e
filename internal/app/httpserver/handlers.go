package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/samber/mo"

	corechat "github.com/jinford/mail-rag/internal/core/chat"
	"github.com/jinford/mail-rag/internal/core/mail"
	corereply "github.com/jinford/mail-rag/internal/core/reply"
)

func (s *Server) handleGeneralChat(w http.ResponseWriter, r *http.Request) {
	var req generalChatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	result, err := s.retrieve.RetrieveAndAnswer(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("general chat failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to process chat request")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	params := corechat.ChatParams{Query: req.Query}
	if req.EmailID != nil {
		params.EmailID = mo.Some(*req.EmailID)
	}

	result, err := s.chat.Chat(r.Context(), params)
	if err != nil {
		if errors.Is(err, mail.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Email not found")
			return
		}
		s.logger.Error("chat failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Chat failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	result, err := s.ingest.IngestBatch(r.Context())
	if err != nil {
		s.logger.Error("batch ingestion failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Ingestion failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request) {
	emails, err := s.emails.ListEmails(r.Context())
	if err != nil {
		s.logger.Error("failed to list emails", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch emails")
		return
	}

	s.writeJSON(w, http.StatusOK, toEmailResponses(emails))
}

func (s *Server) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid email id")
		return
	}

	email, err := s.emails.GetEmailByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, mail.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Email not found")
			return
		}
		s.logger.Error("failed to get email", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch email")
		return
	}

	s.writeJSON(w, http.StatusOK, toEmailResponse(email))
}

func (s *Server) handleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid email id")
		return
	}

	var req updateEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := mail.EmailUpdate{
		Category:    req.Category,
		ActionItems: req.ActionItems,
		Summary:     req.Summary,
	}
	if req.Status != nil {
		status := mail.EmailStatus(*req.Status)
		update.Status = &status
	}

	email, err := s.emails.UpdateEmail(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, mail.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Email not found")
			return
		}
		s.logger.Error("failed to update email", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to update email")
		return
	}

	s.writeJSON(w, http.StatusOK, toEmailResponse(email))
}

func (s *Server) handleReceiveEmail(w http.ResponseWriter, r *http.Request) {
	var req receiveEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Sender == "" || req.Subject == "" || req.Body == "" {
		s.writeError(w, http.StatusBadRequest, "Missing required fields: sender, subject, body")
		return
	}

	email, err := s.ingest.ReceiveEmail(r.Context(), req.Sender, req.Subject, req.Body)
	if err != nil {
		s.logger.Error("failed to receive email", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to receive and process email")
		return
	}

	s.writeJSON(w, http.StatusOK, toEmailResponse(email))
}

func (s *Server) handleGenerateReplies(w http.ResponseWriter, r *http.Request) {
	var req generateRepliesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EmailID == uuid.Nil {
		s.writeError(w, http.StatusBadRequest, "emailId is required")
		return
	}

	options, err := s.reply.GenerateReplies(r.Context(), req.EmailID)
	if err != nil {
		if errors.Is(err, mail.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Email not found")
			return
		}
		s.logger.Error("reply generation failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to generate replies")
		return
	}

	s.writeJSON(w, http.StatusOK, options)
}

func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.To == "" || req.Subject == "" || req.Body == "" {
		s.writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	params := corereply.SendParams{
		To:      req.To,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if req.EmailID != nil {
		params.EmailID = mo.Some(*req.EmailID)
	}

	if err := s.reply.Send(r.Context(), params); err != nil {
		s.logger.Error("failed to send email", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to send email")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Email sent successfully"})
}

func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	prompts, err := s.prompts.ListPrompts(r.Context())
	if err != nil {
		s.logger.Error("failed to list prompts", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch prompts")
		return
	}

	responses := make([]promptResponse, 0, len(prompts))
	for _, prompt := range prompts {
		responses = append(responses, toPromptResponse(prompt))
	}
	s.writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid prompt id")
		return
	}

	var req updatePromptRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TemplateContent == "" {
		s.writeError(w, http.StatusBadRequest, "templateContent is required")
		return
	}

	prompt, err := s.prompts.UpdatePrompt(r.Context(), id, req.TemplateContent)
	if err != nil {
		if errors.Is(err, mail.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Prompt not found")
			return
		}
		s.logger.Error("failed to update prompt", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to update prompt")
		return
	}

	s.writeJSON(w, http.StatusOK, toPromptResponse(prompt))
}
