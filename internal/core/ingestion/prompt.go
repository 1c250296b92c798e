package ingestion

import "strings"

// RenderTemplate はプロンプトテンプレートの {{subject}} / {{body}} を
// 実際のメール内容で置き換える
func RenderTemplate(template, subject, body string) string {
	return strings.NewReplacer(
		"{{subject}}", subject,
		"{{body}}", body,
	).Replace(template)
}

// CleanJSONResponse はモデルの応答からマークダウンのコードフェンスを剥がす。
// JSONを要求してもフェンス付きで返すモデルがある
func CleanJSONResponse(response string) string {
	cleaned := strings.ReplaceAll(response, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
