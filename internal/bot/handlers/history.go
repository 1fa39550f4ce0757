package handlers

import (
	"time"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/pricerelay-bot/internal/errors"
	"github.com/Proton-105/pricerelay-bot/internal/history"
	"github.com/Proton-105/pricerelay-bot/internal/i18n"
)

// NewHistoryHandler returns the /pricehistory command handler. Target dates
// are midnights in loc.
func NewHistoryHandler(prices PriceService, loc *time.Location, t i18n.Translator) Handler {
	if loc == nil {
		loc = time.UTC
	}

	return func(c telebot.Context) error {
		inv, _ := InvocationFrom(c)
		ctx := RequestContext(c)

		points, err := prices.MarketHistory(ctx, inv.Asset)
		if err != nil {
			return apperrors.WithUserMessage(err, i18n.Text(t, "history.error", "Error fetching historical data for \"{{.Asset}}\". Please try again.", map[string]string{
				"Asset": inv.Asset,
			}))
		}

		entries := history.Lookup(points, time.Now(), loc)
		return c.Send(history.Format(t, inv.Asset, loc.String(), entries))
	}
}
