package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// PromptListAction はプロンプトテンプレート一覧を表示するコマンドのアクション
func PromptListAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	prompts, err := appCtx.Container.Prompts.ListPrompts(ctx)
	if err != nil {
		return fmt.Errorf("プロンプト一覧の取得に失敗: %w", err)
	}

	if len(prompts) == 0 {
		fmt.Println("プロンプトが登録されていません。seed コマンドで初期投入できます")
		return nil
	}

	for _, prompt := range prompts {
		fmt.Printf("=== %s (%s) ===\n%s\n\n", prompt.PromptType, prompt.ID, prompt.TemplateContent)
	}

	return nil
}
