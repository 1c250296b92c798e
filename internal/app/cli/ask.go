package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
)

// AskAction はメール横断の質問応答コマンドのアクション
func AskAction(ctx context.Context, cmd *cli.Command) error {
	showSources := cmd.Bool("show-sources")
	envFile := cmd.String("env")

	// 質問文の取得
	question := cmd.Args().First()
	if question == "" {
		return fmt.Errorf("質問文を指定してください")
	}

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	slog.Info("質問応答を開始", "question", question)

	result, err := appCtx.Container.RetrieveService.RetrieveAndAnswer(ctx, question)
	if err != nil {
		slog.Error("質問応答に失敗しました", "error", err)
		return err
	}

	// 結果出力
	fmt.Println(result.Answer)

	// --show-sourcesフラグが指定されている場合、参照メールも出力
	if showSources && len(result.Sources) > 0 {
		fmt.Println("\n--- 参照メール ---")
		for i, source := range result.Sources {
			fmt.Printf("[%d] %s (from: %s)\n", i+1, source.Subject, source.Sender)
		}
	}

	return nil
}
