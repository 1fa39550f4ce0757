package handlers

import (
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/pricerelay-bot/internal/bot/keyboard"
	apperrors "github.com/Proton-105/pricerelay-bot/internal/errors"
	"github.com/Proton-105/pricerelay-bot/internal/i18n"
	"github.com/Proton-105/pricerelay-bot/internal/pagination"
	"github.com/Proton-105/pricerelay-bot/internal/price"
)

// NewPriceHandler returns the /price command handler.
func NewPriceHandler(prices PriceService, t i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		inv, _ := InvocationFrom(c)
		ctx := RequestContext(c)

		value, err := prices.SpotPrice(ctx, inv.Asset)
		if err != nil {
			return apperrors.WithUserMessage(err, i18n.Text(t, "price.error", "Sorry, something went wrong.", nil))
		}

		log.DebugContext(ctx, "spot price served", slog.String("asset", inv.Asset), slog.Float64("price", value))

		return c.Send(i18n.Text(t, "price.spot", "The current price of {{.Asset}} is: ${{.Price}} \n\nData provided by CoinGecko", map[string]string{
			"Asset": inv.Asset,
			"Price": decimal.NewFromFloat(value).String(),
		}))
	}
}

// NewExchangesHandler returns the /priceexchanges command handler. Venues are split
// into pages of pageSize and the first page is sent with navigation buttons.
func NewExchangesHandler(prices PriceService, pager Pager, pageSize int, t i18n.Translator) Handler {
	return func(c telebot.Context) error {
		inv, _ := InvocationFrom(c)
		ctx := RequestContext(c)
		chatID := ChatID(c)

		failure := i18n.Text(t, "exchanges.error", "Error fetching data for \"{{.Asset}}\". Please try again.", map[string]string{
			"Asset": inv.Asset,
		})

		tickers, err := prices.Tickers(ctx, inv.Asset)
		if err != nil {
			return apperrors.WithUserMessage(err, failure)
		}

		quote := strings.ToUpper(prices.QuoteCurrency())
		lines := lo.Map(tickers, func(tk price.Ticker, _ int) string {
			return i18n.Text(t, "exchanges.line", "{{.Venue}}: {{.Price}} {{.Quote}}", map[string]string{
				"Venue": tk.Venue,
				"Price": decimal.NewFromFloat(tk.ConvertedPrice).String(),
				"Quote": quote,
			})
		})

		view, err := pager.SetPages(ctx, chatID, pagination.Chunk(lines, pageSize))
		if err != nil {
			return apperrors.WithUserMessage(err, failure)
		}

		return sendWithMarkup(c, view.Text, keyboard.PaginationMarkup(t, view.Page, view.Total))
	}
}
