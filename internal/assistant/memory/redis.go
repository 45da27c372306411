package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"costumedesk/internal/assistant/llm"
	"costumedesk/pkg/platform/sentinel"
)

const keyPrefix = "costumedesk:chat:memory:"

// Redis stores each history as a capped list of JSON messages with a TTL
// refreshed on every write.
type Redis struct {
	client      redis.UniversalClient
	maxMessages int
	ttl         time.Duration
}

func NewRedis(client redis.UniversalClient, maxMessages int, ttl time.Duration) *Redis {
	return &Redis{client: client, maxMessages: pairCap(maxMessages), ttl: ttl}
}

func key(memoryID string) string {
	return keyPrefix + memoryID
}

func (r *Redis) Load(ctx context.Context, memoryID string) ([]llm.Message, error) {
	raw, err := r.client.LRange(ctx, key(memoryID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load chat memory: %w: %w", sentinel.ErrUnavailable, err)
	}
	msgs := make([]llm.Message, 0, len(raw))
	for _, item := range raw {
		var m llm.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("decode chat memory: %w", err)
		}
		msgs = append(msgs, m)
	}
	return window(msgs, r.maxMessages), nil
}

func (r *Redis) Append(ctx context.Context, memoryID string, msgs ...llm.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode chat memory: %w", err)
		}
		values = append(values, b)
	}

	k := key(memoryID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, k, values...)
		if r.maxMessages > 0 {
			pipe.LTrim(ctx, k, int64(-r.maxMessages), -1)
		}
		if r.ttl > 0 {
			pipe.Expire(ctx, k, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append chat memory: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context, memoryID string) error {
	if err := r.client.Del(ctx, key(memoryID)).Err(); err != nil {
		return fmt.Errorf("clear chat memory: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
