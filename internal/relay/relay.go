// Package relay forwards messages from an upstream feed to every subscribed chat.
package relay

import (
	"context"
	"log/slog"

	"github.com/Proton-105/pricerelay-bot/pkg/metrics"
)

// Notifier delivers a text message to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Report counts the outcome of one fan-out.
type Report struct {
	Delivered int
	Failed    int
}

// Relay owns the subscriber set and fans upstream messages out to it.
type Relay struct {
	subscribers SubscriberSet
	notifier    Notifier
	log         *slog.Logger
}

func New(subscribers SubscriberSet, notifier Notifier, log *slog.Logger) *Relay {
	if log == nil {
		log = slog.Default()
	}

	return &Relay{
		subscribers: subscribers,
		notifier:    notifier,
		log:         log.With(slog.String("component", "relay")),
	}
}

// Subscribe adds chatID to the feed. It reports false when the chat was already subscribed.
func (r *Relay) Subscribe(ctx context.Context, chatID int64) (bool, error) {
	added, err := r.subscribers.Add(ctx, chatID)
	if err != nil {
		return false, err
	}
	if added {
		r.log.InfoContext(ctx, "chat subscribed", slog.Int64("chat_id", chatID))
	}
	return added, nil
}

// Unsubscribe removes chatID from the feed. It reports false when the chat was not subscribed.
func (r *Relay) Unsubscribe(ctx context.Context, chatID int64) (bool, error) {
	removed, err := r.subscribers.Remove(ctx, chatID)
	if err != nil {
		return false, err
	}
	if removed {
		r.log.InfoContext(ctx, "chat unsubscribed", slog.Int64("chat_id", chatID))
	}
	return removed, nil
}

// OnUpstreamMessage delivers text to every subscriber. A failed recipient is
// logged and does not stop delivery to the others.
func (r *Relay) OnUpstreamMessage(ctx context.Context, text string) (Report, error) {
	var report Report
	if text == "" {
		return report, nil
	}

	members, err := r.subscribers.Members(ctx)
	if err != nil {
		r.log.ErrorContext(ctx, "failed to list subscribers", slog.Any("error", err))
		return report, err
	}
	metrics.SetRelaySubscribers(len(members))

	for _, chatID := range members {
		if err := r.notifier.Notify(ctx, chatID, text); err != nil {
			report.Failed++
			metrics.RecordRelayDelivery("failed")
			r.log.WarnContext(ctx, "relay delivery failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
			continue
		}
		report.Delivered++
		metrics.RecordRelayDelivery("delivered")
	}

	r.log.DebugContext(ctx, "upstream message relayed",
		slog.Int("delivered", report.Delivered),
		slog.Int("failed", report.Failed),
	)

	return report, nil
}
