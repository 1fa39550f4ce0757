// Package alert keeps per-chat price alert rules and re-evaluates them on a fixed cadence.
package alert

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rule is an armed alert. It fires once when the price of AssetID has moved
// by at least ThresholdPercent from InitialPrice, and is removed afterwards.
type Rule struct {
	ID               uuid.UUID
	ChatID           int64
	AssetID          string
	ThresholdPercent float64
	WindowMinutes    int
	InitialPrice     float64
	CreatedAt        time.Time
}

// MaxWindowMinutes is the longest window that still fits in a time.Duration.
const MaxWindowMinutes int64 = math.MaxInt64 / int64(time.Minute)

// Window is the evaluation period of the rule.
func (r Rule) Window() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

// Change returns the percent move from the initial price to current.
func (r Rule) Change(current float64) decimal.Decimal {
	initial := decimal.NewFromFloat(r.InitialPrice)
	return decimal.NewFromFloat(current).Sub(initial).Div(initial).Mul(decimal.NewFromInt(100))
}

// Reached reports whether change has met the rule threshold in either direction.
func (r Rule) Reached(change decimal.Decimal) bool {
	return change.Abs().GreaterThanOrEqual(decimal.NewFromFloat(r.ThresholdPercent))
}

type groupKey struct {
	chatID int64
	window int
}

func (r Rule) group() groupKey {
	return groupKey{chatID: r.ChatID, window: r.WindowMinutes}
}
