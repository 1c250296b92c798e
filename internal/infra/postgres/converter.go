package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jinford/mail-rag/internal/core/mail"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEmail は emailColumns の並びで1行を読み取る
func scanEmail(row rowScanner) (*mail.Email, error) {
	var (
		email       mail.Email
		category    pgtype.Text
		actionItems []byte
		summary     pgtype.Text
		status      string
	)

	err := row.Scan(
		&email.ID,
		&email.Sender,
		&email.Subject,
		&email.Body,
		&email.ReceivedAt,
		&email.IsProcessed,
		&category,
		&actionItems,
		&summary,
		&status,
		&email.CreatedAt,
		&email.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	email.Category = PgtextToStringPtr(category)
	email.Summary = PgtextToStringPtr(summary)
	email.Status = mail.EmailStatus(status)
	email.ActionItems = jsonbToActionItems(actionItems)
	return &email, nil
}

func scanEmails(rows pgx.Rows) ([]*mail.Email, error) {
	var emails []*mail.Email
	for rows.Next() {
		email, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// scanPrompt は promptColumns の並びで1行を読み取る
func scanPrompt(row rowScanner) (*mail.PromptConfig, error) {
	var (
		prompt     mail.PromptConfig
		promptType string
	)

	err := row.Scan(
		&prompt.ID,
		&promptType,
		&prompt.TemplateContent,
		&prompt.CreatedAt,
		&prompt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	prompt.PromptType = mail.PromptType(promptType)
	return &prompt, nil
}

// PgtextToStringPtr converts pgtype.Text to *string
func PgtextToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

// actionItemsToJSONB converts []mail.ActionItem to []byte (JSONB)
func actionItemsToJSONB(items []mail.ActionItem) []byte {
	if items == nil {
		items = []mail.ActionItem{}
	}
	b, _ := json.Marshal(items)
	return b
}

// jsonbToActionItems converts []byte (JSONB) to []mail.ActionItem
func jsonbToActionItems(b []byte) []mail.ActionItem {
	if len(b) == 0 {
		return nil
	}
	var items []mail.ActionItem
	_ = json.Unmarshal(b, &items)
	return items
}
