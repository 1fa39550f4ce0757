package pagination

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestRedisStorage_SetAndGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	storage := NewRedisStorage(client, time.Hour, testLogger())
	ctx := context.Background()

	err := storage.SetState(ctx, 42, &ChatPageState{ChatID: 42, Pages: [][]string{{"a", "b"}, {"c"}}, CurrentPage: 1})
	require.NoError(t, err)

	state, err := storage.GetState(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), state.ChatID)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, state.Pages)
	assert.Equal(t, 1, state.CurrentPage)
	assert.False(t, state.UpdatedAt.IsZero())
}

func TestRedisStorage_GetNotFound(t *testing.T) {
	client, _ := setupTestRedis(t)
	storage := NewRedisStorage(client, time.Hour, testLogger())

	state, err := storage.GetState(context.Background(), 999)
	assert.Nil(t, state)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStorage_TTLExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	storage := NewRedisStorage(client, time.Minute, testLogger())
	ctx := context.Background()

	require.NoError(t, storage.SetState(ctx, 1, &ChatPageState{ChatID: 1, Pages: [][]string{{"x"}}}))
	mr.FastForward(2 * time.Minute)

	_, err := storage.GetState(ctx, 1)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStorage_ClearState(t *testing.T) {
	client, _ := setupTestRedis(t)
	storage := NewRedisStorage(client, time.Hour, testLogger())
	ctx := context.Background()

	require.NoError(t, storage.SetState(ctx, 1, &ChatPageState{ChatID: 1, Pages: [][]string{{"x"}}}))
	require.NoError(t, storage.ClearState(ctx, 1))

	_, err := storage.GetState(ctx, 1)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestStoreOverRedis(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewStore(NewRedisStorage(client, time.Hour, testLogger()), nil, testLogger())
	ctx := context.Background()

	mustSetPages(t, store, ctx, 7, Chunk(lines(6), 5))

	view, err := store.Advance(ctx, 7)
	require.NoError(t, err)
	assert.True(t, view.Moved)
	assert.Equal(t, 1, view.Page)

	view, err = store.Advance(ctx, 7)
	require.NoError(t, err)
	assert.False(t, view.Moved)
}
