package pagination

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func lines(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Venue%d: %d USD", i, i)
	}
	return out
}

func mustSetPages(t *testing.T, store *Store, ctx context.Context, chatID int64, pages [][]string) View {
	t.Helper()
	view, err := store.SetPages(ctx, chatID, pages)
	require.NoError(t, err)
	return view
}

func TestChunk(t *testing.T) {
	for _, n := range []int{0, 1, 4, 5, 6, 10, 11, 23} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			input := lines(n)
			pages := Chunk(input, 5)

			assert.Len(t, pages, (n+4)/5)

			var joined []string
			for i, page := range pages {
				if i < len(pages)-1 {
					assert.Len(t, page, 5)
				} else {
					assert.NotEmpty(t, page)
					assert.LessOrEqual(t, len(page), 5)
				}
				joined = append(joined, page...)
			}
			if n == 0 {
				assert.Empty(t, joined)
			} else {
				assert.Equal(t, input, joined)
			}
		})
	}
}

func TestRenderPageWithoutState(t *testing.T) {
	store := NewStore(NewMemoryStorage(), nil, testLogger())

	text, err := store.RenderPage(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "No data available.", text)
}

func TestRenderPageOutOfRange(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), nil, testLogger())
	mustSetPages(t, store, ctx, 1, Chunk(lines(7), 5))

	for _, idx := range []int{-1, 2, 10} {
		text, err := store.RenderPage(ctx, 1, idx)
		require.NoError(t, err)
		assert.Equal(t, "No data available.", text)
	}
}

func TestRenderPageFormat(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), nil, testLogger())
	mustSetPages(t, store, ctx, 1, [][]string{{"Binance: 1 USD", "Kraken: 2 USD"}, {"Coinbase: 3 USD"}})

	text, err := store.RenderPage(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Prices for Page 2:\nCoinbase: 3 USD\n\nUse /next or /prev to navigate pages.", text)
}

func TestAdvanceAndRetreatStayInBounds(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), nil, testLogger())
	mustSetPages(t, store, ctx, 9, Chunk(lines(12), 5))

	view, err := store.Retreat(ctx, 9)
	require.NoError(t, err)
	assert.False(t, view.Moved)
	assert.Equal(t, "You are on the first page.", view.Text)
	assert.Equal(t, 0, view.Page)

	for want := 1; want <= 2; want++ {
		view, err = store.Advance(ctx, 9)
		require.NoError(t, err)
		assert.True(t, view.Moved)
		assert.Equal(t, want, view.Page)
		assert.Contains(t, view.Text, fmt.Sprintf("Prices for Page %d:", want+1))
	}

	view, err = store.Advance(ctx, 9)
	require.NoError(t, err)
	assert.False(t, view.Moved)
	assert.Equal(t, "You are on the last page.", view.Text)
	assert.Equal(t, 2, view.Page)

	current, err := store.Current(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, current.Page)
	assert.Equal(t, 3, current.Total)

	view, err = store.Retreat(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Page)
}

func TestAdvanceWithoutState(t *testing.T) {
	store := NewStore(NewMemoryStorage(), nil, testLogger())

	view, err := store.Advance(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "You are on the last page.", view.Text)

	view, err = store.Retreat(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "You are on the first page.", view.Text)
}

func TestSetPagesResetsCurrentPage(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), nil, testLogger())
	mustSetPages(t, store, ctx, 3, Chunk(lines(10), 5))
	_, err := store.Advance(ctx, 3)
	require.NoError(t, err)

	mustSetPages(t, store, ctx, 3, Chunk(lines(3), 5))

	view, err := store.Current(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Page)
	assert.Equal(t, 1, view.Total)
}

func TestSetPagesReturnsFirstPage(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), nil, testLogger())

	view := mustSetPages(t, store, ctx, 3, Chunk(lines(12), 5))
	assert.Equal(t, 0, view.Page)
	assert.Equal(t, 3, view.Total)
	assert.True(t, view.Moved)
	assert.True(t, strings.HasPrefix(view.Text, "Prices for Page 1:\nVenue0: 0 USD"), view.Text)

	empty := mustSetPages(t, store, ctx, 3, nil)
	assert.Equal(t, "No data available.", empty.Text)
	assert.Zero(t, empty.Total)
}

func TestSetPagesViewIsNotAffectedByConcurrentSteps(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), nil, testLogger())
	pages := Chunk(lines(15), 5)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_, _ = store.Advance(ctx, 4)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		view, err := store.SetPages(ctx, 4, pages)
		require.NoError(t, err)
		require.Equal(t, 0, view.Page)
		require.True(t, strings.HasPrefix(view.Text, "Prices for Page 1:"), view.Text)
	}
	close(stop)
	wg.Wait()
}

func TestSetPagesEmptyClearsState(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), nil, testLogger())
	mustSetPages(t, store, ctx, 3, Chunk(lines(3), 5))
	mustSetPages(t, store, ctx, 3, nil)

	view, err := store.Current(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "No data available.", view.Text)
	assert.Zero(t, view.Total)
}

func TestChatsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage(), nil, testLogger())
	mustSetPages(t, store, ctx, 1, Chunk(lines(10), 5))
	mustSetPages(t, store, ctx, 2, Chunk(lines(10), 5))

	_, err := store.Advance(ctx, 1)
	require.NoError(t, err)

	view, err := store.Current(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Page)
}
