package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/pricerelay-bot/internal/command"
)

const (
	invocationKey     = "invocation"
	requestContextKey = "request_ctx"
)

// SetInvocation stores the parsed command on the update context.
func SetInvocation(c telebot.Context, inv command.Invocation) {
	c.Set(invocationKey, inv)
}

// InvocationFrom returns the parsed command stored by the router.
func InvocationFrom(c telebot.Context) (command.Invocation, bool) {
	if c == nil {
		return command.Invocation{}, false
	}
	inv, ok := c.Get(invocationKey).(command.Invocation)
	return inv, ok
}

// SetRequestContext attaches ctx to the update.
func SetRequestContext(c telebot.Context, ctx context.Context) {
	c.Set(requestContextKey, ctx)
}

// RequestContext returns the context attached to the update, or context.Background.
func RequestContext(c telebot.Context) context.Context {
	if c != nil {
		if ctx, ok := c.Get(requestContextKey).(context.Context); ok && ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

// ChatID returns the id of the chat the update came from, or 0.
func ChatID(c telebot.Context) int64 {
	if c == nil || c.Chat() == nil {
		return 0
	}
	return c.Chat().ID
}

func sendWithMarkup(c telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	if markup == nil {
		return c.Send(text)
	}
	return c.Send(text, markup)
}
