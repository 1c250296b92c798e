package mail

import (
	"time"

	"github.com/google/uuid"
)

// EmailStatus はメールの対応状況を表す
type EmailStatus string

const (
	StatusUnread  EmailStatus = "Unread"
	StatusDrafted EmailStatus = "Drafted"
	StatusReplied EmailStatus = "Replied"
)

// Email は受信メール1通を表す
type Email struct {
	ID          uuid.UUID
	Sender      string
	Subject     string
	Body        string
	ReceivedAt  time.Time
	IsProcessed bool
	Category    *string
	ActionItems []ActionItem
	Summary     *string
	Status      EmailStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ActionItem はメール本文から抽出されたタスクを表す
type ActionItem struct {
	Task      string `json:"task"`
	Deadline  string `json:"deadline"`
	Completed bool   `json:"completed"`
}

// PromptType はプロンプトテンプレートの用途を表す
type PromptType string

const (
	PromptCategorization   PromptType = "categorization"
	PromptActionExtraction PromptType = "action_extraction"
	PromptReplyGeneration  PromptType = "reply_generation"
	PromptAutoReply        PromptType = "auto_reply"
)

// PromptConfig は編集可能なプロンプトテンプレートを表す
type PromptConfig struct {
	ID              uuid.UUID
	PromptType      PromptType
	TemplateContent string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Draft は送信前の返信下書きを表す。IsSent は送信時のみ true になる
type Draft struct {
	ID        uuid.UUID
	EmailID   uuid.UUID
	DraftBody string
	IsSent    bool
	CreatedAt time.Time
}

// EmailUpdate は PATCH 相当の部分更新を表す。nil のフィールドは変更しない
type EmailUpdate struct {
	Category    *string
	ActionItems []ActionItem
	Summary     *string
	Status      *EmailStatus
	IsProcessed *bool
}
