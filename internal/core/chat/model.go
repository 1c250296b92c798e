package chat

import (
	"github.com/google/uuid"
	"github.com/samber/mo"
)

// ChatParams はチャットのパラメータを表す
type ChatParams struct {
	Query   string               // ユーザーの質問文
	EmailID mo.Option[uuid.UUID] // 指定されたメールに限定して回答する場合のID
}

// ChatResult はチャットの結果を表す
type ChatResult struct {
	Response string `json:"response"` // アシスタントの応答
}
