package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	appcli "github.com/jinford/mail-rag/internal/app/cli"
)

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "環境変数ファイルパス",
		Value: ".env",
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	app := &cli.Command{
		Name:  "mail-rag",
		Usage: "受信メールを知識源とするメールアシスタントAPIおよび管理ツール",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "HTTP APIサーバを起動",
				Flags:  []cli.Flag{envFlag()},
				Action: appcli.ServeAction,
			},
			{
				Name:  "ingest",
				Usage: "取り込みコマンド",
				Commands: []*cli.Command{
					{
						Name:   "run",
						Usage:  "未処理メールを一括で分類・埋め込みする",
						Flags:  []cli.Flag{envFlag()},
						Action: appcli.IngestRunAction,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "メール横断で質問に回答する",
				ArgsUsage: "<質問文>",
				Flags: []cli.Flag{
					envFlag(),
					&cli.BoolFlag{
						Name:  "show-sources",
						Usage: "参照したメールも表示する",
					},
				},
				Action: appcli.AskAction,
			},
			{
				Name:  "email",
				Usage: "メール管理コマンド",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "メール一覧を表示",
						Flags:  []cli.Flag{envFlag()},
						Action: appcli.EmailListAction,
					},
				},
			},
			{
				Name:  "prompt",
				Usage: "プロンプト管理コマンド",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "プロンプトテンプレート一覧を表示",
						Flags:  []cli.Flag{envFlag()},
						Action: appcli.PromptListAction,
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "デフォルトのプロンプトテンプレートを投入",
				Flags:  []cli.Flag{envFlag()},
				Action: appcli.SeedAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
