package history

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/pricerelay-bot/internal/price"
)

var now = time.Date(2024, time.March, 31, 15, 30, 0, 0, time.UTC)

func TestPriceAtPicksFirstPointInsideWindow(t *testing.T) {
	target := time.Date(2024, time.March, 30, 0, 0, 0, 0, time.UTC)
	points := []price.Point{
		{Time: target.Add(-48 * time.Hour), Price: 1},
		{Time: target.Add(-23 * time.Hour), Price: 2.345},
		{Time: target, Price: 3},
	}

	value, ok := PriceAt(points, target)
	require.True(t, ok)
	assert.InDelta(t, 2.345, value, 1e-9)
}

func TestPriceAtWindowIsInclusive(t *testing.T) {
	target := time.Date(2024, time.March, 30, 0, 0, 0, 0, time.UTC)

	_, ok := PriceAt([]price.Point{{Time: target.Add(24 * time.Hour), Price: 5}}, target)
	assert.True(t, ok)

	_, ok = PriceAt([]price.Point{{Time: target.Add(24*time.Hour + time.Millisecond), Price: 5}}, target)
	assert.False(t, ok)
}

func TestPriceAtRejectsNaN(t *testing.T) {
	target := time.Date(2024, time.March, 30, 0, 0, 0, 0, time.UTC)

	_, ok := PriceAt([]price.Point{{Time: target, Price: math.NaN()}}, target)
	assert.False(t, ok)
}

func TestLookupTargets(t *testing.T) {
	entries := Lookup(nil, now, time.UTC)
	require.Len(t, entries, len(Intervals))

	want := []string{"30/03/2024", "24/03/2024", "17/03/2024", "01/03/2024", "01/01/2024"}
	for i, e := range entries {
		assert.Equal(t, want[i], e.Target.Format(dateLayout), e.Interval.Label)
		assert.False(t, e.Found)
	}
}

func TestLookupUsesLocationMidnight(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// 15:30 UTC is already April 1st in Tokyo
	entries := Lookup(nil, now, tokyo)
	assert.Equal(t, "31/03/2024", entries[0].Target.Format(dateLayout))
}

func TestFormat(t *testing.T) {
	midnight := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	points := []price.Point{
		{Time: midnight.AddDate(0, 0, -90), Price: 42000.126},
		{Time: midnight.AddDate(0, 0, -7).Add(2 * time.Hour), Price: 65000},
		{Time: midnight.AddDate(0, 0, -1), Price: 0},
	}

	msg := Format(nil, "bitcoin", "UTC", Lookup(points, now, time.UTC))

	lines := strings.Split(strings.TrimSuffix(msg, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Price history for bitcoin (Timezone: UTC):", lines[0])
	assert.Equal(t, "- 24h (30/03/2024): $0.00", lines[1])
	assert.Equal(t, "- 7d (24/03/2024): $65000.00", lines[2])
	assert.Equal(t, "- 14d (17/03/2024): Data not available", lines[3])
	assert.Equal(t, "- 30d (01/03/2024): Data not available", lines[4])
	assert.Equal(t, "- 90d (01/01/2024): $42000.13", lines[5])
}
