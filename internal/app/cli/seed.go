package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
)

// SeedAction はデフォルトのプロンプトテンプレートを投入するコマンドのアクション
func SeedAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if err := appCtx.Container.SeedPrompts(ctx); err != nil {
		slog.Error("初期データの投入に失敗しました", "error", err)
		return err
	}

	fmt.Println("デフォルトのプロンプトテンプレートを投入しました")
	return nil
}
