package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/pricerelay-bot/internal/bot/handlers"
	"github.com/Proton-105/pricerelay-bot/internal/command"
	"github.com/Proton-105/pricerelay-bot/internal/i18n"
	"github.com/Proton-105/pricerelay-bot/pkg/metrics"
)

// Gate admits or rejects a chat for the current command.
type Gate interface {
	Allow(ctx context.Context, chatID int64) (bool, time.Duration, error)
	Window() time.Duration
}

// RuleSet decides which commands pass through the gate.
type RuleSet interface {
	Applies(name command.Name) bool
}

// CooldownMiddleware rejects gated commands sent within the cooldown window of
// the previously accepted one.
type CooldownMiddleware struct {
	gate  Gate
	rules RuleSet
	t     i18n.Translator
	log   *slog.Logger
}

// NewCooldownMiddleware constructs a cooldown middleware component.
func NewCooldownMiddleware(gate Gate, rules RuleSet, t i18n.Translator, log *slog.Logger) *CooldownMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &CooldownMiddleware{
		gate:  gate,
		rules: rules,
		t:     t,
		log:   log,
	}
}

// Handle wraps next with the cooldown check. A failing gate lets the command through.
func (m *CooldownMiddleware) Handle(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		if m.gate == nil || m.rules == nil {
			return next(c)
		}

		inv, ok := handlers.InvocationFrom(c)
		if !ok || !m.rules.Applies(inv.Name) {
			return next(c)
		}

		ctx := handlers.RequestContext(c)
		chatID := handlers.ChatID(c)

		allowed, retryAfter, err := m.gate.Allow(ctx, chatID)
		if err != nil {
			m.log.WarnContext(ctx, "cooldown check failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
			return next(c)
		}

		if !allowed {
			m.log.InfoContext(ctx, "command rejected by cooldown",
				slog.Int64("chat_id", chatID),
				slog.String("command", string(inv.Name)),
				slog.Duration("retry_after", retryAfter),
			)
			metrics.RecordCooldownRejection(string(inv.Name))
			return c.Send(i18n.Text(m.t, "cooldown.wait", "Please wait {{.Window}} before sending another command.", map[string]string{
				"Window": HumanizeWindow(m.gate.Window()),
			}))
		}

		return next(c)
	}
}

// HumanizeWindow renders d as "5 minutes", "1 hour" or "30 seconds".
func HumanizeWindow(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	case d >= time.Second && d%time.Second == 0:
		return plural(int(d/time.Second), "second")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
