package pagination

import (
	"context"
	"sync"
	"time"
)

// Storage defines the persistence contract for per-chat page state.
type Storage interface {
	// GetState returns the state of chatID or ErrStateNotFound.
	GetState(ctx context.Context, chatID int64) (*ChatPageState, error)
	// SetState replaces the state of chatID.
	SetState(ctx context.Context, chatID int64, state *ChatPageState) error
	// ClearState removes the state of chatID.
	ClearState(ctx context.Context, chatID int64) error
}

// MemoryStorage keeps page state in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	states map[int64]*ChatPageState
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{states: make(map[int64]*ChatPageState)}
}

func (s *MemoryStorage) GetState(_ context.Context, chatID int64) (*ChatPageState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[chatID]
	if !ok {
		return nil, ErrStateNotFound
	}
	return cloneState(state), nil
}

func (s *MemoryStorage) SetState(_ context.Context, chatID int64, state *ChatPageState) error {
	stored := cloneState(state)
	stored.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.states[chatID] = stored
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) ClearState(_ context.Context, chatID int64) error {
	s.mu.Lock()
	delete(s.states, chatID)
	s.mu.Unlock()
	return nil
}
