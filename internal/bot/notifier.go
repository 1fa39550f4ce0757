package bot

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	errors "github.com/Proton-105/pricerelay-bot/internal/errors"
)

// Sender is the part of telebot.Bot used for outbound messages.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Notifier pushes unsolicited messages (alerts, relayed posts) to a chat.
type Notifier struct {
	sender Sender
	log    *slog.Logger
}

// NewNotifier wraps sender.
func NewNotifier(sender Sender, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{sender: sender, log: log}
}

// Notify sends text to chatID. Failures are returned as delivery errors and not retried.
func (n *Notifier) Notify(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewDeliveryError(chatID, err)
	}

	if _, err := n.sender.Send(telebot.ChatID(chatID), text); err != nil {
		n.log.DebugContext(ctx, "outbound message failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return errors.NewDeliveryError(chatID, err)
	}

	return nil
}
