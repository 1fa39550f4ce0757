package bot

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/pricerelay-bot/internal/bot/handlers"
	"github.com/Proton-105/pricerelay-bot/internal/command"
	apperrors "github.com/Proton-105/pricerelay-bot/internal/errors"
	"github.com/Proton-105/pricerelay-bot/internal/testutil"
	"github.com/Proton-105/pricerelay-bot/pkg/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouterDispatchesParsedCommands(t *testing.T) {
	router := NewRouter(testLogger())

	var got command.Invocation
	router.RegisterCommand(command.Price, func(c telebot.Context) error {
		got, _ = handlers.InvocationFrom(c)
		return c.Send("ok")
	})

	c := testutil.NewFakeContext(1, "/price@PriceRelayBot Bitcoin")
	require.NoError(t, router.Route(c))
	assert.Equal(t, command.Price, got.Name)
	assert.Equal(t, "bitcoin", got.Asset)
	assert.Equal(t, "ok", c.LastText())
}

func TestRouterIgnoresMismatches(t *testing.T) {
	router := NewRouter(testLogger())
	called := false
	router.RegisterCommand(command.SetAlert, func(telebot.Context) error {
		called = true
		return nil
	})

	for _, text := range []string{"/setalert bitcoin five 60", "/setalert", "hello", "/unknown", "/price bitcoin"} {
		c := testutil.NewFakeContext(1, text)
		require.NoError(t, router.Route(c))
		assert.Empty(t, c.Sent(), text)
	}
	assert.False(t, called)
}

func TestRouterCallbacks(t *testing.T) {
	router := NewRouter(testLogger())

	var data string
	router.RegisterCallback("page:", func(c telebot.Context) error {
		data = c.Callback().Data
		return c.Respond()
	})

	c := testutil.NewFakeCallback(1, "page:next")
	require.NoError(t, router.Route(c))
	assert.Equal(t, "page:next", data)

	c = testutil.NewFakeCallback(1, "other:thing")
	require.NoError(t, router.Route(c))
	assert.Len(t, c.Responses(), 1, "unknown callbacks are still answered")
}

func TestRouterMiddlewareOrder(t *testing.T) {
	router := NewRouter(testLogger())

	var order []string
	mark := func(name string) handlers.Middleware {
		return func(next handlers.Handler) handlers.Handler {
			return func(c telebot.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}
	router.Use(mark("outer"))
	router.Use(mark("inner"))
	router.RegisterCommand(command.Help, func(telebot.Context) error {
		order = append(order, "handler")
		return nil
	})

	require.NoError(t, router.Route(testutil.NewFakeContext(1, "/help")))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestErrorHandlingMiddlewareSendsUserMessage(t *testing.T) {
	errHandler := apperrors.NewHandler(testLogger(), false)
	mw := ErrorHandlingMiddleware(errHandler)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "app error", err: apperrors.WithUserMessage(apperrors.NewNotFoundError("x"), "Error fetching data for \"x\". Please try again."), want: "Error fetching data for \"x\". Please try again."},
		{name: "plain error", err: errors.New("boom"), want: "Sorry, something went wrong."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testutil.NewFakeContext(1, "/price x")
			err := mw(func(telebot.Context) error { return tt.err })(c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.LastText())
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	mw := RecoveryMiddleware(testLogger(), apperrors.NewHandler(testLogger(), false))

	c := testutil.NewFakeContext(1, "/price x")
	err := mw(func(telebot.Context) error { panic("kaboom") })(c)
	require.NoError(t, err)
	assert.Equal(t, "Sorry, something went wrong.", c.LastText())
}

func TestLoggingMiddlewareAttachesCorrelationID(t *testing.T) {
	mw := LoggingMiddleware(testLogger())

	var correlationID string
	c := testutil.NewFakeContext(1, "/help")
	err := mw(func(c telebot.Context) error {
		correlationID = logger.CorrelationIDFromContext(handlers.RequestContext(c))
		return nil
	})(c)
	require.NoError(t, err)
	assert.NotEmpty(t, correlationID)
}
