// Package history turns a provider price series into the price-on-date summary sent for /pricehistory.
package history

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Proton-105/pricerelay-bot/internal/i18n"
	"github.com/Proton-105/pricerelay-bot/internal/price"
)

// Window is how far a sample may lie from a target date and still count for it.
const Window = 24 * time.Hour

const dateLayout = "02/01/2006"

// Interval is a lookback distance in whole days.
type Interval struct {
	Label string
	Days  int
}

// Intervals are reported in this order.
var Intervals = []Interval{
	{Label: "24h", Days: 1},
	{Label: "7d", Days: 7},
	{Label: "14d", Days: 14},
	{Label: "30d", Days: 30},
	{Label: "90d", Days: 90},
}

// Entry is the resolved price for one interval.
type Entry struct {
	Interval Interval
	Target   time.Time
	Price    float64
	Found    bool
}

// Lookup resolves every interval against points. Targets are counted back from
// the start of today in loc.
func Lookup(points []price.Point, now time.Time, loc *time.Location) []Entry {
	if loc == nil {
		loc = time.UTC
	}

	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	entries := make([]Entry, 0, len(Intervals))
	for _, interval := range Intervals {
		target := midnight.AddDate(0, 0, -interval.Days)
		value, ok := PriceAt(points, target)
		entries = append(entries, Entry{
			Interval: interval,
			Target:   target,
			Price:    value,
			Found:    ok,
		})
	}

	return entries
}

// PriceAt returns the first sample within Window of target.
func PriceAt(points []price.Point, target time.Time) (float64, bool) {
	for _, p := range points {
		diff := p.Time.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		if diff > Window {
			continue
		}
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			return 0, false
		}
		return p.Price, true
	}
	return 0, false
}

// Format renders the summary message for asset. zone is the label shown in the header.
func Format(t i18n.Translator, asset, zone string, entries []Entry) string {
	var b strings.Builder

	b.WriteString(i18n.Text(t, "history.header", "Price history for {{.Asset}} (Timezone: {{.Zone}}):\n", map[string]string{
		"Asset": asset,
		"Zone":  zone,
	}))

	unavailable := i18n.Text(t, "history.unavailable", "Data not available", nil)
	for _, e := range entries {
		value := unavailable
		if e.Found {
			value = "$" + decimal.NewFromFloat(e.Price).StringFixed(2)
		}

		b.WriteString(i18n.Text(t, "history.line", "- {{.Interval}} ({{.Date}}): {{.Price}}\n", map[string]string{
			"Interval": e.Interval.Label,
			"Date":     e.Target.Format(dateLayout),
			"Price":    value,
		}))
	}

	return b.String()
}
