// Package memory keeps per-conversation chat history for the assistants.
package memory

import (
	"context"

	"costumedesk/internal/assistant/llm"
)

// Store holds conversation history keyed by memory id. Histories are
// isolated: nothing written under one id is visible under another.
type Store interface {
	Load(ctx context.Context, memoryID string) ([]llm.Message, error)
	Append(ctx context.Context, memoryID string, msgs ...llm.Message) error
	Clear(ctx context.Context, memoryID string) error
}

// window keeps at most max trailing messages and drops leading model turns so
// a history always opens with the user.
func window(msgs []llm.Message, max int) []llm.Message {
	if max > 0 && len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}
	for len(msgs) > 0 && msgs[0].Role != llm.RoleUser {
		msgs = msgs[1:]
	}
	return msgs
}

// pairCap rounds a message cap down to whole question/answer pairs so a trimmed
// history never opens with a model turn. Zero or less means unbounded.
func pairCap(max int) int {
	switch {
	case max <= 0:
		return 0
	case max < 2:
		return 2
	default:
		return max - max%2
	}
}
