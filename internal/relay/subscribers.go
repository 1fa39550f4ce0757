package relay

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

// SubscriberSet stores the chats receiving the forwarded feed.
type SubscriberSet interface {
	// Add reports whether chatID was newly added.
	Add(ctx context.Context, chatID int64) (bool, error)
	// Remove reports whether chatID was a member.
	Remove(ctx context.Context, chatID int64) (bool, error)
	Members(ctx context.Context) ([]int64, error)
}

// MemorySubscribers keeps subscriptions in process memory.
type MemorySubscribers struct {
	mu      sync.RWMutex
	members map[int64]struct{}
}

func NewMemorySubscribers() *MemorySubscribers {
	return &MemorySubscribers{members: make(map[int64]struct{})}
}

func (s *MemorySubscribers) Add(_ context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[chatID]; ok {
		return false, nil
	}
	s.members[chatID] = struct{}{}
	return true, nil
}

func (s *MemorySubscribers) Remove(_ context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[chatID]; !ok {
		return false, nil
	}
	delete(s.members, chatID)
	return true, nil
}

func (s *MemorySubscribers) Members(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	members := lo.Keys(s.members)
	s.mu.RUnlock()

	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	return members, nil
}

const subscribersKey = "relay:subscribers"

// RedisSubscribers keeps subscriptions in a Redis set.
type RedisSubscribers struct {
	client redis.Cmdable
	key    string
}

func NewRedisSubscribers(client redis.Cmdable) *RedisSubscribers {
	return &RedisSubscribers{client: client, key: subscribersKey}
}

func (s *RedisSubscribers) Add(ctx context.Context, chatID int64) (bool, error) {
	added, err := s.client.SAdd(ctx, s.key, chatID).Result()
	if err != nil {
		return false, fmt.Errorf("add subscriber: %w", err)
	}
	return added > 0, nil
}

func (s *RedisSubscribers) Remove(ctx context.Context, chatID int64) (bool, error) {
	removed, err := s.client.SRem(ctx, s.key, chatID).Result()
	if err != nil {
		return false, fmt.Errorf("remove subscriber: %w", err)
	}
	return removed > 0, nil
}

func (s *RedisSubscribers) Members(ctx context.Context) ([]int64, error) {
	raw, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	members := make([]int64, 0, len(raw))
	for _, item := range raw {
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			continue
		}
		members = append(members, id)
	}

	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	return members, nil
}
