package container

import (
	"context"
	"fmt"

	"github.com/jinford/mail-rag/internal/core/mail"
	"github.com/jinford/mail-rag/internal/platform/database"
)

// defaultPromptTemplates は初期投入するプロンプトテンプレート
var defaultPromptTemplates = map[mail.PromptType]string{
	mail.PromptCategorization: `Analyze the following email and categorize it into ONE of these categories: Important, Work, Personal, Newsletter, Spam.

Subject: {{subject}}
Body: {{body}}

Return ONLY the category name.`,

	mail.PromptActionExtraction: `Extract action items and deadlines from the following email.

Subject: {{subject}}
Body: {{body}}

Return a JSON array of objects with keys "task" and "deadline". If no deadline, use "None".
Example: [{"task": "Submit report", "deadline": "Friday 5pm"}]
Return ONLY the JSON array.`,

	mail.PromptReplyGeneration: `Generate 3 distinct reply options for the following email:
1. Professional: Formal and polite.
2. Casual: Friendly and brief.
3. Concise: Very short, straight to the point.

Subject: {{subject}}
Body: {{body}}

Return a JSON object with keys "professional", "casual", and "concise".
Example:
{
  "professional": "Dear...",
  "casual": "Hey...",
  "concise": "Yes..."
}
Return ONLY the JSON object.`,
}

// SeedPrompts はデフォルトのプロンプトテンプレートを1トランザクションで投入する。
// 既存のテンプレートは上書きされる
func (c *ServiceContainer) SeedPrompts(ctx context.Context) error {
	_, err := database.Transact(ctx, c.tx, func(a *database.Adapter) (struct{}, error) {
		for promptType, template := range defaultPromptTemplates {
			if _, err := a.Prompts.UpsertPrompt(ctx, promptType, template); err != nil {
				return struct{}{}, fmt.Errorf("failed to seed prompt %s: %w", promptType, err)
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("seeded default prompts", "count", len(defaultPromptTemplates))
	return nil
}
