package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/pricerelay-bot/internal/alert"
	"github.com/Proton-105/pricerelay-bot/internal/pagination"
	"github.com/Proton-105/pricerelay-bot/internal/price"
)

// Handler processes bot commands.
type Handler func(c telebot.Context) error

// CallbackHandler processes inline callback events.
type CallbackHandler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// PriceService is the part of the price client the handlers use.
type PriceService interface {
	QuoteCurrency() string
	SpotPrice(ctx context.Context, assetID string) (float64, error)
	Tickers(ctx context.Context, assetID string) ([]price.Ticker, error)
	MarketHistory(ctx context.Context, assetID string) ([]price.Point, error)
}

// Pager holds the paginated result set of each chat.
type Pager interface {
	SetPages(ctx context.Context, chatID int64, pages [][]string) (pagination.View, error)
	Advance(ctx context.Context, chatID int64) (pagination.View, error)
	Retreat(ctx context.Context, chatID int64) (pagination.View, error)
}

// AlertRegistry arms and lists price alerts.
type AlertRegistry interface {
	Register(ctx context.Context, chatID int64, assetID string, thresholdPercent float64, windowMinutes int) (alert.Rule, error)
	Rules(chatID int64) []alert.Rule
}

// Subscriptions toggles relay feed membership.
type Subscriptions interface {
	Subscribe(ctx context.Context, chatID int64) (bool, error)
	Unsubscribe(ctx context.Context, chatID int64) (bool, error)
}
