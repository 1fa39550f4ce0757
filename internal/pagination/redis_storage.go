package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const chatPagesKeyPattern = "chat:pages:%d"

// RedisStorage persists page state in Redis as JSON with a sliding TTL.
type RedisStorage struct {
	client redis.Cmdable
	ttl    time.Duration
	log    *slog.Logger
}

// NewRedisStorage initializes a Redis-backed Storage implementation.
func NewRedisStorage(client redis.Cmdable, ttl time.Duration, log *slog.Logger) *RedisStorage {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisStorage{client: client, ttl: ttl, log: log}
}

// GetState returns the stored page state or ErrStateNotFound when absent.
func (s *RedisStorage) GetState(ctx context.Context, chatID int64) (*ChatPageState, error) {
	data, err := s.client.Get(ctx, chatPagesKey(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}

		s.log.Error("failed to get pages from redis", "chat_id", chatID, "error", err)
		return nil, err
	}

	var state ChatPageState
	if err := json.Unmarshal(data, &state); err != nil {
		s.log.Error("failed to decode page state", "chat_id", chatID, "error", err)
		return nil, err
	}

	return &state, nil
}

// SetState saves state and refreshes its TTL.
func (s *RedisStorage) SetState(ctx context.Context, chatID int64, state *ChatPageState) error {
	stored := cloneState(state)
	stored.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode page state: %w", err)
	}

	if err := s.client.Set(ctx, chatPagesKey(chatID), data, s.ttl).Err(); err != nil {
		s.log.Error("failed to save pages in redis", "chat_id", chatID, "error", err)
		return err
	}

	return nil
}

// ClearState removes the stored state for chatID.
func (s *RedisStorage) ClearState(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, chatPagesKey(chatID)).Err(); err != nil {
		s.log.Error("failed to clear page state", "chat_id", chatID, "error", err)
		return err
	}

	return nil
}

func chatPagesKey(chatID int64) string {
	return fmt.Sprintf(chatPagesKeyPattern, chatID)
}
