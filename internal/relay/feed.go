package relay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jpillora/backoff"
	"github.com/redis/go-redis/v9"

	"github.com/Proton-105/pricerelay-bot/pkg/logger"
)

// Handler receives one upstream message.
type Handler func(ctx context.Context, text string)

// RedisFeed reads upstream messages published on a Redis channel by the
// account bridge and hands them to a Handler.
type RedisFeed struct {
	client  *redis.Client
	channel string
	log     *slog.Logger
	backoff *backoff.Backoff
}

func NewRedisFeed(client *redis.Client, channel string, log *slog.Logger) *RedisFeed {
	if log == nil {
		log = slog.Default()
	}

	return &RedisFeed{
		client:  client,
		channel: channel,
		log:     log.With(slog.String("component", "relay_feed"), slog.String("channel", channel)),
		backoff: &backoff.Backoff{
			Min:    500 * time.Millisecond,
			Max:    30 * time.Second,
			Factor: 2,
			Jitter: true,
		},
	}
}

// Run subscribes and dispatches messages until ctx is cancelled. Lost
// subscriptions are re-established with exponential backoff.
func (f *RedisFeed) Run(ctx context.Context, handle Handler) error {
	for {
		err := f.consume(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := f.backoff.Duration()
		f.log.Warn("relay feed interrupted, resubscribing", slog.Any("error", err), slog.Duration("retry_in", wait))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (f *RedisFeed) consume(ctx context.Context, handle Handler) error {
	pubsub := f.client.Subscribe(ctx, f.channel)
	defer func() { _ = pubsub.Close() }()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	f.backoff.Reset()
	f.log.Info("relay feed subscribed")

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return errors.New("subscription channel closed")
			}
			f.dispatch(ctx, handle, msg.Payload)
		}
	}
}

func (f *RedisFeed) dispatch(ctx context.Context, handle Handler, text string) {
	ctx = logger.WithCorrelationID(ctx, "")
	defer func() {
		if rec := recover(); rec != nil {
			f.log.ErrorContext(ctx, "relay handler panicked", slog.Any("panic", rec))
		}
	}()
	handle(ctx, text)
}
