package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// EmailListAction はメール一覧を表示するコマンドのアクション
func EmailListAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	emails, err := appCtx.Container.Emails.ListEmails(ctx)
	if err != nil {
		return fmt.Errorf("メール一覧の取得に失敗: %w", err)
	}

	if len(emails) == 0 {
		fmt.Println("メールがありません")
		return nil
	}

	for _, email := range emails {
		category := "-"
		if email.Category != nil {
			category = *email.Category
		}
		processed := " "
		if email.IsProcessed {
			processed = "*"
		}
		fmt.Printf("[%s] %s  %-10s  %-10s  %s (from: %s)\n",
			processed,
			email.ReceivedAt.Format("2006-01-02 15:04"),
			email.Status,
			category,
			email.Subject,
			email.Sender,
		)
	}

	return nil
}
