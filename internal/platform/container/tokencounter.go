package container

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	coreretrieval "github.com/jinford/mail-rag/internal/core/retrieval"
)

// tokenCounter は tiktoken を使って retrieval.ContextLimiter を実装する
type tokenCounter struct {
	encoding *tiktoken.Tiktoken
}

var _ coreretrieval.ContextLimiter = (*tokenCounter)(nil)

func newTokenCounter() (*tokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding: %w", err)
	}
	return &tokenCounter{encoding: enc}, nil
}

// TrimToTokenLimit はテキストを maxTokens トークン以内に切り詰める
func (t *tokenCounter) TrimToTokenLimit(text string, maxTokens int) string {
	if t.encoding == nil {
		return text
	}
	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.encoding.Decode(tokens[:maxTokens])
}
