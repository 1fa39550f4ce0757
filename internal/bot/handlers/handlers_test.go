package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/pricerelay-bot/internal/alert"
	"github.com/Proton-105/pricerelay-bot/internal/command"
	apperrors "github.com/Proton-105/pricerelay-bot/internal/errors"
	"github.com/Proton-105/pricerelay-bot/internal/i18n"
	"github.com/Proton-105/pricerelay-bot/internal/pagination"
	"github.com/Proton-105/pricerelay-bot/internal/price"
	"github.com/Proton-105/pricerelay-bot/internal/relay"
	"github.com/Proton-105/pricerelay-bot/internal/testutil"
)

const chatID int64 = 10

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func translator(t *testing.T) i18n.Translator {
	t.Helper()
	manager, err := i18n.Load("en")
	require.NoError(t, err)
	return manager.Translator("en")
}

func commandContext(t *testing.T, text string) *testutil.FakeContext {
	t.Helper()
	c := testutil.NewFakeContext(chatID, text)
	inv, ok := command.Parse(text)
	require.True(t, ok, text)
	SetInvocation(c, inv)
	return c
}

type fakePrices struct {
	spot    map[string]float64
	tickers map[string][]price.Ticker
	points  []price.Point
	err     error
}

func (f *fakePrices) QuoteCurrency() string { return "usd" }

func (f *fakePrices) SpotPrice(_ context.Context, asset string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	p, ok := f.spot[asset]
	if !ok {
		return 0, apperrors.NewNotFoundError(asset)
	}
	return p, nil
}

func (f *fakePrices) Tickers(_ context.Context, asset string) ([]price.Ticker, error) {
	if f.err != nil {
		return nil, f.err
	}
	tickers, ok := f.tickers[asset]
	if !ok {
		return nil, apperrors.NewNotFoundError(asset)
	}
	return tickers, nil
}

func (f *fakePrices) MarketHistory(context.Context, string) ([]price.Point, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.points, nil
}

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) Register(ctx context.Context, chatID int64, assetID string, thresholdPercent float64, windowMinutes int) (alert.Rule, error) {
	args := m.Called(ctx, chatID, assetID, thresholdPercent, windowMinutes)
	return args.Get(0).(alert.Rule), args.Error(1)
}

func (m *mockRegistry) Rules(chatID int64) []alert.Rule {
	args := m.Called(chatID)
	return args.Get(0).([]alert.Rule)
}

func venues(n int) []price.Ticker {
	out := make([]price.Ticker, n)
	for i := range out {
		out[i] = price.Ticker{Venue: fmt.Sprintf("Venue%d", i+1), ConvertedPrice: float64(i + 1)}
	}
	return out
}

func TestStartAndHelp(t *testing.T) {
	tr := translator(t)

	c := commandContext(t, "/start")
	require.NoError(t, NewStartHandler(tr)(c))
	require.Len(t, c.Sent(), 1)
	assert.True(t, strings.HasPrefix(c.LastText(), "Welcome! I'm your Crypto Tracker Bot."))
	markup := c.Sent()[0].Markup()
	require.NotNil(t, markup)
	assert.Len(t, markup.ReplyKeyboard, 3)

	c = commandContext(t, "/help")
	require.NoError(t, NewHelpHandler(tr)(c))
	assert.Contains(t, c.LastText(), "/setalert [crypto] [change%] [time in minutes]")
}

func TestPriceHandler(t *testing.T) {
	tr := translator(t)
	prices := &fakePrices{spot: map[string]float64{"bitcoin": 65000.5}}
	handler := NewPriceHandler(prices, tr, testLogger())

	c := commandContext(t, "/price Bitcoin")
	require.NoError(t, handler(c))
	assert.Equal(t, "The current price of bitcoin is: $65000.5 \n\nData provided by CoinGecko", c.LastText())

	c = commandContext(t, "/price nope")
	err := handler(c)
	require.Error(t, err)
	assert.Empty(t, c.Sent())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "Sorry, something went wrong.", apperrors.UserMessage(err, ""))
}

func TestExchangesPaginationFlow(t *testing.T) {
	tr := translator(t)
	prices := &fakePrices{tickers: map[string][]price.Ticker{"ethereum": venues(7)}}
	pager := pagination.NewStore(pagination.NewMemoryStorage(), tr, testLogger())

	c := commandContext(t, "/priceexchanges ethereum")
	require.NoError(t, NewExchangesHandler(prices, pager, pagination.DefaultPageSize, tr)(c))

	first := c.Sent()[0]
	assert.Equal(t, "Prices for Page 1:\nVenue1: 1 USD\nVenue2: 2 USD\nVenue3: 3 USD\nVenue4: 4 USD\nVenue5: 5 USD\n\nUse /next or /prev to navigate pages.", first.Text())
	require.NotNil(t, first.Markup())
	assert.Len(t, first.Markup().InlineKeyboard[0], 2)

	next := NewNextHandler(pager, tr)
	prev := NewPrevHandler(pager, tr)

	c = commandContext(t, "/next")
	require.NoError(t, next(c))
	assert.Equal(t, "Prices for Page 2:\nVenue6: 6 USD\nVenue7: 7 USD\n\nUse /next or /prev to navigate pages.", c.LastText())

	c = commandContext(t, "/next")
	require.NoError(t, next(c))
	assert.Equal(t, "You are on the last page.", c.LastText())

	c = commandContext(t, "/prev")
	require.NoError(t, prev(c))
	assert.True(t, strings.HasPrefix(c.LastText(), "Prices for Page 1:"))

	c = commandContext(t, "/prev")
	require.NoError(t, prev(c))
	assert.Equal(t, "You are on the first page.", c.LastText())
}

func TestExchangesHandlerErrors(t *testing.T) {
	tr := translator(t)
	pager := pagination.NewStore(pagination.NewMemoryStorage(), tr, testLogger())

	notFound := NewExchangesHandler(&fakePrices{tickers: map[string][]price.Ticker{}}, pager, 5, tr)
	err := notFound(commandContext(t, "/priceexchanges nope"))
	assert.Equal(t, "Error fetching data for \"nope\". Please try again.", apperrors.UserMessage(err, ""))

	empty := NewExchangesHandler(&fakePrices{tickers: map[string][]price.Ticker{"dust": nil}}, pager, 5, tr)
	c := commandContext(t, "/priceexchanges dust")
	require.NoError(t, empty(c))
	assert.Equal(t, "No data available.", c.LastText())
	assert.Nil(t, c.Sent()[0].Markup())
}

func TestNextWithoutState(t *testing.T) {
	tr := translator(t)
	pager := pagination.NewStore(pagination.NewMemoryStorage(), tr, testLogger())

	c := commandContext(t, "/next")
	require.NoError(t, NewNextHandler(pager, tr)(c))
	assert.Equal(t, "You are on the last page.", c.LastText())
}

func TestPageCallbackHandler(t *testing.T) {
	tr := translator(t)
	prices := &fakePrices{tickers: map[string][]price.Ticker{"ethereum": venues(7)}}
	pager := pagination.NewStore(pagination.NewMemoryStorage(), tr, testLogger())
	require.NoError(t, NewExchangesHandler(prices, pager, 5, tr)(commandContext(t, "/priceexchanges ethereum")))

	callback := NewPageCallbackHandler(pager, tr, testLogger())

	c := testutil.NewFakeCallback(chatID, "page:prev")
	require.NoError(t, callback(c))
	assert.Empty(t, c.Edited())
	require.Len(t, c.Responses(), 1)
	assert.Equal(t, "You are on the first page.", c.Responses()[0].Text)

	c = testutil.NewFakeCallback(chatID, "page:next")
	require.NoError(t, callback(c))
	require.Len(t, c.Edited(), 1)
	assert.True(t, strings.HasPrefix(c.Edited()[0].Text(), "Prices for Page 2:"))
	require.NotNil(t, c.Edited()[0].Markup())
	assert.Len(t, c.Responses(), 1)

	c = testutil.NewFakeCallback(chatID, "page:current")
	require.NoError(t, callback(c))
	assert.Empty(t, c.Edited())
	assert.Len(t, c.Responses(), 1)
}

func TestHistoryHandler(t *testing.T) {
	tr := translator(t)

	c := commandContext(t, "/pricehistory bitcoin")
	require.NoError(t, NewHistoryHandler(&fakePrices{}, nil, tr)(c))

	text := c.LastText()
	assert.True(t, strings.HasPrefix(text, "Price history for bitcoin (Timezone: UTC):\n"))
	assert.Equal(t, 5, strings.Count(text, "Data not available"))

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	prices := &fakePrices{points: []price.Point{{Time: midnight.AddDate(0, 0, -1), Price: 42.5}}}

	c = commandContext(t, "/pricehistory bitcoin")
	require.NoError(t, NewHistoryHandler(prices, time.UTC, tr)(c))
	assert.Contains(t, c.LastText(), "$42.50")

	failing := NewHistoryHandler(&fakePrices{err: apperrors.NewNetworkError("coingecko", errors.New("timeout"))}, time.UTC, tr)
	err := failing(commandContext(t, "/pricehistory bitcoin"))
	assert.Equal(t, "Error fetching historical data for \"bitcoin\". Please try again.", apperrors.UserMessage(err, ""))
}

func TestSetAlertHandler(t *testing.T) {
	tr := translator(t)
	registry := &mockRegistry{}
	registry.On("Register", mock.Anything, chatID, "bitcoin", 5.0, 60).
		Return(alert.Rule{ChatID: chatID, AssetID: "bitcoin", ThresholdPercent: 5, WindowMinutes: 60, InitialPrice: 100}, nil).
		Once()
	registry.On("Register", mock.Anything, chatID, "nope", 5.0, 60).
		Return(alert.Rule{}, apperrors.NewNotFoundError("nope")).
		Once()

	handler := NewSetAlertHandler(registry, tr)

	c := commandContext(t, "/setalert bitcoin 5 60")
	require.NoError(t, handler(c))
	assert.Equal(t, "Alert set for bitcoin: 5% change within 60 minutes.", c.LastText())

	c = commandContext(t, "/setalert nope 5 60")
	err := handler(c)
	assert.Equal(t, "Error setting alert for \"nope\". Please try again.", apperrors.UserMessage(err, ""))
	assert.Empty(t, c.Sent())

	registry.AssertExpectations(t)
}

func TestAlertsHandler(t *testing.T) {
	tr := translator(t)
	registry := &mockRegistry{}
	registry.On("Rules", chatID).Return([]alert.Rule{}).Once()
	registry.On("Rules", chatID).Return([]alert.Rule{
		{AssetID: "bitcoin", ThresholdPercent: 5, WindowMinutes: 60, InitialPrice: 65000.5},
		{AssetID: "ethereum", ThresholdPercent: 2, WindowMinutes: 1, InitialPrice: 3000},
	}).Once()

	handler := NewAlertsHandler(registry, tr)

	c := commandContext(t, "/alerts")
	require.NoError(t, handler(c))
	assert.Equal(t, "You have no active alerts.", c.LastText())

	c = commandContext(t, "/alerts")
	require.NoError(t, handler(c))
	assert.Equal(t, "Active alerts:\n- bitcoin: 5% within 60 min (from $65000.5)\n- ethereum: 2% within 1 min (from $3000)", c.LastText())
}

func TestSubscriptionHandlers(t *testing.T) {
	tr := translator(t)
	subs := relay.New(relay.NewMemorySubscribers(), nil, testLogger())

	subscribe := NewSubscribeHandler(subs, tr)
	unsubscribe := NewUnsubscribeHandler(subs, tr)

	steps := []struct {
		handler Handler
		text    string
		want    string
	}{
		{handler: subscribe, text: "/subscribe", want: "You are subscribed to the news feed."},
		{handler: subscribe, text: "/subscribe", want: "You are already subscribed."},
		{handler: unsubscribe, text: "/unsubscribe", want: "You are unsubscribed from the news feed."},
		{handler: unsubscribe, text: "/unsubscribe", want: "You are not subscribed."},
	}

	for _, step := range steps {
		c := commandContext(t, step.text)
		require.NoError(t, step.handler(c))
		assert.Equal(t, step.want, c.LastText())
	}
}

func TestContextHelpers(t *testing.T) {
	assert.Equal(t, int64(0), ChatID(nil))
	assert.NotNil(t, RequestContext(nil))

	c := testutil.NewFakeContext(5, "")
	_, ok := InvocationFrom(c)
	assert.False(t, ok)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	SetRequestContext(c, ctx)
	assert.Equal(t, "v", RequestContext(c).Value(key{}))
}
