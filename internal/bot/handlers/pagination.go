package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/pricerelay-bot/internal/bot/keyboard"
	"github.com/Proton-105/pricerelay-bot/internal/i18n"
	"github.com/Proton-105/pricerelay-bot/internal/pagination"
)

type pageStep func(ctx context.Context, chatID int64) (pagination.View, error)

// NewNextHandler returns the /next command handler.
func NewNextHandler(pager Pager, t i18n.Translator) Handler {
	return stepHandler(pager.Advance, t)
}

// NewPrevHandler returns the /prev command handler.
func NewPrevHandler(pager Pager, t i18n.Translator) Handler {
	return stepHandler(pager.Retreat, t)
}

func stepHandler(step pageStep, t i18n.Translator) Handler {
	return func(c telebot.Context) error {
		view, err := step(RequestContext(c), ChatID(c))
		if err != nil {
			return err
		}
		if !view.Moved {
			return c.Send(view.Text)
		}
		return sendWithMarkup(c, view.Text, keyboard.PaginationMarkup(t, view.Page, view.Total))
	}
}

// NewPageCallbackHandler handles the inline navigation buttons. A successful
// step edits the paginated message in place; a boundary is answered with a toast.
func NewPageCallbackHandler(pager Pager, t i18n.Translator, log *slog.Logger) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}

		action, data, err := keyboard.DecodeCallback(cb.Data)
		if err != nil || action != keyboard.PageAction {
			return c.Respond()
		}

		var step pageStep
		switch data {
		case keyboard.PageNext:
			step = pager.Advance
		case keyboard.PagePrev:
			step = pager.Retreat
		default:
			return c.Respond()
		}

		ctx := RequestContext(c)
		view, err := step(ctx, ChatID(c))
		if err != nil {
			_ = c.Respond()
			return err
		}

		if !view.Moved {
			return c.Respond(&telebot.CallbackResponse{Text: view.Text})
		}

		var editErr error
		if markup := keyboard.PaginationMarkup(t, view.Page, view.Total); markup != nil {
			editErr = c.Edit(view.Text, markup)
		} else {
			editErr = c.Edit(view.Text)
		}
		if editErr != nil {
			log.WarnContext(ctx, "failed to edit paginated message", slog.Int64("chat_id", ChatID(c)), slog.Any("error", editErr))
		}

		return c.Respond()
	}
}
