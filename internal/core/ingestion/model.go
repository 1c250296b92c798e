package ingestion

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// pointNamespace はポイントID導出用のUUID v5名前空間
var pointNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

// VectorPoint はインデックスへ登録する1チャンク分のベクトルとペイロード
type VectorPoint struct {
	ID         uuid.UUID
	Vector     []float32
	EmailID    uuid.UUID
	Subject    string
	Sender     string
	Text       string
	ReceivedAt time.Time
}

// PointID はメールIDとチャンク位置からポイントIDを決定論的に導出する。
// 同じメールを再取り込みしても同じIDになり、追記ではなく上書きになる
func PointID(emailID uuid.UUID, chunkIndex int) uuid.UUID {
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("%s:%d", emailID, chunkIndex)))
}

// BatchResult は一括取り込みの結果を表す
type BatchResult struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}
