package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jinford/mail-rag/internal/core/mail"
)

const baseSystemPrompt = "You are a helpful email productivity assistant."

// BuildEmailSystemPrompt は単一メールに対する質問用のシステムプロンプトを構築する
func BuildEmailSystemPrompt() string {
	return baseSystemPrompt + " Answer the user's question based on the email context provided."
}

// BuildInboxSystemPrompt は受信箱全体に対する質問用のシステムプロンプトを構築する
func BuildInboxSystemPrompt() string {
	return baseSystemPrompt + " You have access to the user's recent emails. Answer questions about the inbox."
}

// BuildEmailContext は1通のメールの内容をコンテキストブロックとして整形する
func BuildEmailContext(email *mail.Email) string {
	category := "(uncategorized)"
	if email.Category != nil {
		category = *email.Category
	}

	actionItems := "[]"
	if len(email.ActionItems) > 0 {
		if encoded, err := json.Marshal(email.ActionItems); err == nil {
			actionItems = string(encoded)
		}
	}

	var sb strings.Builder
	sb.WriteString("Current Email Context:\n")
	sb.WriteString(fmt.Sprintf("Sender: %s\n", email.Sender))
	sb.WriteString(fmt.Sprintf("Subject: %s\n", email.Subject))
	sb.WriteString(fmt.Sprintf("Body: %s\n", email.Body))
	sb.WriteString(fmt.Sprintf("Category: %s\n", category))
	sb.WriteString(fmt.Sprintf("Action Items: %s\n", actionItems))
	return sb.String()
}

// BuildInboxContext は直近のメール一覧を1行ずつの要約として整形する
func BuildInboxContext(emails []*mail.Email) string {
	var sb strings.Builder
	sb.WriteString("Recent Emails in Inbox:\n")
	for _, email := range emails {
		category := "(uncategorized)"
		if email.Category != nil {
			category = *email.Category
		}
		sb.WriteString(fmt.Sprintf("- From: %s, Subject: %s, Category: %s\n", email.Sender, email.Subject, category))
	}
	return sb.String()
}

// BuildUserContent はコンテキストと質問を1つのユーザーメッセージにまとめる
func BuildUserContent(context, query string) string {
	return fmt.Sprintf("Context:\n%s\n\nUser Query: %s", context, query)
}
