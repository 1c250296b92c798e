package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
)

// IngestRunAction は未処理メールの一括取り込みコマンドのアクション
func IngestRunAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	slog.Info("一括取り込みを開始します")

	result, err := appCtx.Container.IngestService.IngestBatch(ctx)
	if err != nil {
		slog.Error("一括取り込みに失敗しました", "error", err)
		return err
	}

	fmt.Printf("取り込み完了: 対象 %d 件 / 成功 %d 件 / 失敗 %d 件\n",
		result.Total, result.Processed, result.Failed)

	return nil
}
