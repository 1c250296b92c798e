package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jinford/mail-rag/internal/core/reply"
)

// Sender は net/smtp を使った reply.MailSender の実装
type Sender struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSender は新しい Sender を作成する。
// username が空の場合は認証なしで送信する(ローカルのテスト用SMTPなど)
func NewSender(host string, port int, username, password, from string) *Sender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Sender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: auth,
	}
}

// コンパイル時の型チェック
var _ reply.MailSender = (*Sender)(nil)

// Send はメールを1通送信する
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(s.from, to, subject, body)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", s.addr, err)
	}
	return nil
}

// buildMessage はヘッダ付きのメッセージを組み立てる
func buildMessage(from, to, subject, body string) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}
