package middleware

import (
	"errors"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/pricerelay-bot/internal/bot/handlers"
	"github.com/Proton-105/pricerelay-bot/internal/bot/keyboard"
	apperrors "github.com/Proton-105/pricerelay-bot/internal/errors"
	"github.com/Proton-105/pricerelay-bot/pkg/metrics"
)

// Metrics times every routed update and counts it by command and outcome.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)
		metrics.RecordCommand(commandLabel(c), outcome(err), time.Since(start))
		return err
	}
}

// outcome separates bad user input from failures of the bot or its providers.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrNotFound):
		return "rejected"
	default:
		return "error"
	}
}

// commandLabel uses parsed command names and callback actions only, so label
// cardinality stays bounded whatever users type.
func commandLabel(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}
	if inv, ok := handlers.InvocationFrom(c); ok {
		return string(inv.Name)
	}
	if cb := c.Callback(); cb != nil {
		if action, _, err := keyboard.DecodeCallback(cb.Data); err == nil {
			return "callback:" + action
		}
	}
	return "unknown"
}
