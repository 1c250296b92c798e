package retrieval

import (
	"time"

	"github.com/google/uuid"
)

// SearchResult はベクトル検索1件の結果を表す。
// ペイロードは取り込み時にチャンクへ付与したメール属性の写し
type SearchResult struct {
	PointID    uuid.UUID
	EmailID    uuid.UUID
	Subject    string
	Sender     string
	Text       string
	ReceivedAt time.Time
	Score      float64
}

// Source は回答の引用元となったメールを表す
type Source struct {
	EmailID uuid.UUID `json:"emailId"`
	Subject string    `json:"subject"`
	Sender  string    `json:"sender"`
}

// Context は1クエリ分の検索コンテキスト。クエリごとに組み立てられ、永続化されない
type Context struct {
	Text    string
	Sources []Source
}

// AnswerResult は検索拡張生成の最終結果を表す
type AnswerResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}
