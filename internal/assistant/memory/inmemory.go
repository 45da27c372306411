package memory

import (
	"context"
	"sync"
	"time"

	"costumedesk/internal/assistant/llm"
)

type entry struct {
	messages  []llm.Message
	expiresAt time.Time
}

// InMemory is the process-local Store used when Redis is not configured.
type InMemory struct {
	mu          sync.Mutex
	entries     map[string]*entry
	maxMessages int
	ttl         time.Duration
	now         func() time.Time
}

type InMemoryOption func(*InMemory)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) InMemoryOption {
	return func(m *InMemory) { m.now = now }
}

// NewInMemory bounds each history to maxMessages (rounded down to whole pairs) and expires it ttl after its
// last write. Zero disables either bound.
func NewInMemory(maxMessages int, ttl time.Duration, opts ...InMemoryOption) *InMemory {
	m := &InMemory{
		entries:     make(map[string]*entry),
		maxMessages: pairCap(maxMessages),
		ttl:         ttl,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *InMemory) Load(_ context.Context, memoryID string) ([]llm.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[memoryID]
	if !ok {
		return nil, nil
	}
	if m.expired(e) {
		delete(m.entries, memoryID)
		return nil, nil
	}
	return append([]llm.Message(nil), e.messages...), nil
}

func (m *InMemory) Append(_ context.Context, memoryID string, msgs ...llm.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[memoryID]
	if !ok || m.expired(e) {
		e = &entry{}
		m.entries[memoryID] = e
	}
	e.messages = window(append(e.messages, msgs...), m.maxMessages)
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	return nil
}

func (m *InMemory) Clear(_ context.Context, memoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, memoryID)
	return nil
}

func (m *InMemory) expired(e *entry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}
