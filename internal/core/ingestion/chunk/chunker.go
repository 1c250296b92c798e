package chunk

import (
	"iter"
	"regexp"
	"strings"
)

// DefaultChunkSize は1チャンクあたりの最大文字数（rune単位）
const DefaultChunkSize = 2000

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// Splitter はメール本文を埋め込み可能な固定幅のチャンクに分割する。
// 文境界は考慮しない。埋め込みモデルは任意の境界を許容するため、
// 単純さを優先している。
type Splitter struct {
	size int
}

// NewSplitter は最大チャンク長 size の Splitter を作成する。
// size が 0 以下の場合は DefaultChunkSize を使用する
func NewSplitter(size int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &Splitter{size: size}
}

// Size は最大チャンク長を返す
func (s *Splitter) Size() int {
	return s.size
}

// Split は text を先頭から size 文字ずつ、元の順序のまま重複なく区切る。
// 返されるシーケンスは遅延評価され、何度でも走査できる。
// 最後のチャンクは size より短いことがある
func (s *Splitter) Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		runes := []rune(text)
		for i := 0; i < len(runes); i += s.size {
			end := i + s.size
			if end > len(runes) {
				end = len(runes)
			}
			if !yield(string(runes[i:end])) {
				return
			}
		}
	}
}

// IsBlank は埋め込む価値のない空白のみのチャンクかどうかを返す
func IsBlank(chunk string) bool {
	return strings.TrimSpace(chunk) == ""
}

// StripHTML はHTMLタグを取り除きプレーンテキストを返す
func StripHTML(body string) string {
	return htmlTagPattern.ReplaceAllString(body, "")
}
