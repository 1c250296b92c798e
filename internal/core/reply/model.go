package reply

import (
	"github.com/google/uuid"
	"github.com/samber/mo"
)

// ReplyOptions は1通のメールに対する3種類の返信案を表す
type ReplyOptions struct {
	Professional string `json:"professional"` // 丁寧でフォーマルな返信
	Casual       string `json:"casual"`       // 気さくで短めの返信
	Concise      string `json:"concise"`      // 要点のみの最短返信
}

// SendParams は返信メール送信のパラメータを表す
type SendParams struct {
	To      string               // 宛先アドレス
	Subject string               // 件名
	Body    string               // 本文
	EmailID mo.Option[uuid.UUID] // 返信元メールのID（あればステータスを更新する）
}
