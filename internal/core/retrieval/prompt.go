package retrieval

import (
	"fmt"
	"strings"

	"github.com/jinford/mail-rag/internal/core/mail"
)

// FallbackSentence はコンテキストに回答がない場合にモデルへ指示する定型文
const FallbackSentence = "I couldn't find that information in your emails."

// BuildGeneralChatPrompt は横断検索用のシステムプロンプトを構築する。
// コンテキスト外の知識を使わないこと、見つからない場合は定型文で
// 答えることをモデルに課す
func BuildGeneralChatPrompt(contextText string) string {
	var sb strings.Builder

	sb.WriteString("You are a helpful email assistant. Answer the user's question based ONLY on the provided email context.\n")
	sb.WriteString(fmt.Sprintf("If the answer is not in the context, say %q.\n", FallbackSentence))
	sb.WriteString("Cite the email subject or sender if relevant.\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(contextText)

	return sb.String()
}

// FormatContextBlock はメール1通分のコンテキストブロックを整形する
func FormatContextBlock(email *mail.Email) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Subject: %s\n", email.Subject))
	sb.WriteString(fmt.Sprintf("Sender: %s\n", email.Sender))
	sb.WriteString(fmt.Sprintf("Date: %s\n", email.ReceivedAt.Format("2006-01-02 15:04")))
	sb.WriteString(fmt.Sprintf("Content: %s\n", email.Body))
	sb.WriteString("\n---\n\n")

	return sb.String()
}
