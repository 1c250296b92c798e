package retrieval

import "github.com/google/uuid"

// FilterByScore は閾値未満のスコアを持つ結果を捨てる。
// 低スコアのヒットは回答生成をミスリードするノイズとして扱う
func FilterByScore(results []*SearchResult, threshold float64) []*SearchResult {
	filtered := make([]*SearchResult, 0, len(results))
	for _, r := range results {
		if r.Score >= threshold {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// DedupBySource は同一メール由来のチャンクを1件に絞る。
// 入力はスコア降順のため、メールごとに最初の（最高スコアの）結果が残る
func DedupBySource(results []*SearchResult) []*SearchResult {
	seen := make(map[uuid.UUID]struct{}, len(results))
	deduped := make([]*SearchResult, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.EmailID]; ok {
			continue
		}
		seen[r.EmailID] = struct{}{}
		deduped = append(deduped, r)
	}
	return deduped
}
