package llm

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"hairalyzer-backend/internal/shared/telemetry"
)

const encodingName = "cl100k_base"

// perMessageOverhead approximates the role and separator tokens the chat API adds.
const perMessageOverhead = 4

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// TokenCounter counts prompt tokens with tiktoken, or estimates four runes per
// token when the encoding cannot be loaded.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter loads the shared encoding once per process.
func NewTokenCounter() TokenCounter {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			telemetry.Warn("llm.tokenizer_unavailable", map[string]any{"err": err})
			return
		}
		enc = e
	})
	return TokenCounter{enc: enc}
}

// Count returns the token count of s.
func (t TokenCounter) Count(s string) int {
	if s == "" {
		return 0
	}
	if t.enc != nil {
		return len(t.enc.Encode(s, nil, nil))
	}
	return (utf8.RuneCountInString(s) + 3) / 4
}

// TrimHistory keeps the newest messages whose combined size fits budget. The
// result is in the original order; a single oversized newest message is kept.
func (t TokenCounter) TrimHistory(history []Message, budget int) []Message {
	if len(history) == 0 {
		return nil
	}
	used := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := t.Count(history[i].Content) + perMessageOverhead
		if used+cost > budget && start < len(history) {
			break
		}
		used += cost
		start = i
	}
	out := make([]Message, len(history)-start)
	copy(out, history[start:])
	return out
}
