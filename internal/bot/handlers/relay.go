package handlers

import (
	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/pricerelay-bot/internal/errors"
	"github.com/Proton-105/pricerelay-bot/internal/i18n"
)

// NewSubscribeHandler returns the /subscribe command handler.
func NewSubscribeHandler(subs Subscriptions, t i18n.Translator) Handler {
	return func(c telebot.Context) error {
		added, err := subs.Subscribe(RequestContext(c), ChatID(c))
		if err != nil {
			return apperrors.WithUserMessage(err, i18n.Text(t, "relay.error", "Sorry, something went wrong.", nil))
		}
		if !added {
			return c.Send(i18n.Text(t, "relay.already_subscribed", "You are already subscribed.", nil))
		}
		return c.Send(i18n.Text(t, "relay.subscribed", "You are subscribed to the news feed.", nil))
	}
}

// NewUnsubscribeHandler returns the /unsubscribe command handler.
func NewUnsubscribeHandler(subs Subscriptions, t i18n.Translator) Handler {
	return func(c telebot.Context) error {
		removed, err := subs.Unsubscribe(RequestContext(c), ChatID(c))
		if err != nil {
			return apperrors.WithUserMessage(err, i18n.Text(t, "relay.error", "Sorry, something went wrong.", nil))
		}
		if !removed {
			return c.Send(i18n.Text(t, "relay.not_subscribed", "You are not subscribed.", nil))
		}
		return c.Send(i18n.Text(t, "relay.unsubscribed", "You are unsubscribed from the news feed.", nil))
	}
}
