package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Proton-105/pricerelay-bot/internal/alert"
	"github.com/Proton-105/pricerelay-bot/internal/bot"
	"github.com/Proton-105/pricerelay-bot/internal/health"
	"github.com/Proton-105/pricerelay-bot/internal/i18n"
	"github.com/Proton-105/pricerelay-bot/internal/lifecycle"
	"github.com/Proton-105/pricerelay-bot/internal/middleware"
	"github.com/Proton-105/pricerelay-bot/internal/pagination"
	"github.com/Proton-105/pricerelay-bot/internal/price"
	"github.com/Proton-105/pricerelay-bot/internal/ratelimit"
	"github.com/Proton-105/pricerelay-bot/internal/relay"
	"github.com/Proton-105/pricerelay-bot/pkg/config"
	"github.com/Proton-105/pricerelay-bot/pkg/graceful"
	"github.com/Proton-105/pricerelay-bot/pkg/logger"
	redisclient "github.com/Proton-105/pricerelay-bot/pkg/redis"
)

const healthCheckTimeout = 3 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("price relay bot exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: sentryEnvironment(cfg),
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log, level, logCloser := logger.New(cfg.Logger, cfg.Sentry.Enabled)
	defer func() { _ = logCloser.Close() }()
	slog.SetDefault(log)

	log.Info("starting price relay bot",
		slog.String("env", cfg.AppEnv),
		slog.String("storage", cfg.Storage.Backend),
		slog.Bool("relay", cfg.Relay.Enabled),
		slog.Bool("cooldown", cfg.Cooldown.Enabled),
		slog.Int("http_port", cfg.Server.Port),
	)

	if used := v.ConfigFileUsed(); used != "" {
		if _, statErr := os.Stat(used); statErr == nil {
			config.Watch(v, func(next *config.Config) {
				level.Set(logger.ParseLevel(next.Logger.Level))
				log.Info("configuration reloaded", slog.String("log_level", next.Logger.Level))
			}, func(err error) {
				log.Warn("ignoring invalid configuration change", slog.Any("error", err))
			})
		}
	}

	catalog, err := i18n.Load("en")
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}
	t := catalog.Translator("en")

	shutdown := lifecycle.NewShutdown(log)
	checker := health.NewChecker(log, healthCheckTimeout)

	var rdb *redisclient.Client
	if cfg.UsesRedis() {
		rdb, err = redisclient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		shutdown.Register("redis", func(context.Context) error { return rdb.Close() })
		checker.AddCheck("redis", health.NewRedisChecker(rdb))
	}

	prices := price.NewClient(cfg.Provider, log)
	checker.AddCheck("provider", prices)

	memLimiter := ratelimit.NewMemoryLimiter(log)
	sweepers := []ratelimit.Sweeper{memLimiter}

	var pageStorage pagination.Storage = pagination.NewMemoryStorage()
	var subscribers relay.SubscriberSet = relay.NewMemorySubscribers()
	var limiter ratelimit.Limiter = memLimiter
	if cfg.Storage.Backend == "redis" {
		pageStorage = pagination.NewRedisStorage(rdb, cfg.Storage.StateTTL, log)
		subscribers = relay.NewRedisSubscribers(rdb)
		redisLimiter := ratelimit.NewRedisLimiter(rdb, log)
		limiter = ratelimit.NewAdaptiveLimiter(redisLimiter, memLimiter, log)
		sweepers = append(sweepers, redisLimiter)
	}

	tb, err := bot.NewTelebot(cfg.Bot, log)
	if err != nil {
		return err
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(tb))
	notifier := bot.NewNotifier(tb, log)

	registry := alert.NewRegistry(prices, notifier, alert.TickerScheduler{}, t, log)
	shutdown.Register("alert registry", func(context.Context) error {
		registry.Close()
		return nil
	})

	feedRelay := relay.New(subscribers, notifier, log)

	var cooldown *middleware.CooldownMiddleware
	if cfg.Cooldown.Enabled {
		gate := ratelimit.NewCooldown(limiter, cfg.Cooldown.Window)
		cooldown = middleware.NewCooldownMiddleware(gate, ratelimit.NewRules(cfg.Cooldown), t, log)
		go ratelimit.NewCleaner(log, cfg.Cooldown.Window, 2*cfg.Cooldown.Window, sweepers...).Run(ctx)
	}

	var workers sync.WaitGroup
	if cfg.Relay.Enabled {
		feed := relay.NewRedisFeed(rdb.Client, cfg.Relay.Channel, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			err := feed.Run(ctx, func(ctx context.Context, text string) {
				_, _ = feedRelay.OnUpstreamMessage(ctx, text)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("relay feed stopped", slog.Any("error", err))
			}
		}()
		shutdown.Register("relay feed", func(ctx context.Context) error {
			return waitGroup(ctx, &workers)
		})
	}

	probes := lifecycle.NewProbes(log, checker)
	srv := graceful.NewServer(log, &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newHTTPHandler(log, checker, probes),
		ReadHeaderTimeout: 5 * time.Second,
	}, cfg.Server.ShutdownTimeout)

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		if err := srv.ListenAndServe(ctx); err != nil {
			log.Error("http server failed", slog.Any("error", err))
			stop()
		}
	}()
	shutdown.Register("http server", func(ctx context.Context) error {
		select {
		case <-serverDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	b := bot.New(tb, cfg, t, log, bot.Services{
		Prices:        prices,
		Pages:         pagination.NewStore(pageStorage, t, log),
		Alerts:        registry,
		Subscriptions: feedRelay,
		Cooldown:      cooldown,
	})
	go b.Start()
	shutdown.Register("telegram bot", func(context.Context) error {
		b.Stop()
		return nil
	})

	<-ctx.Done()
	probes.Drain()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return shutdown.Execute(shutdownCtx)
}

func sentryEnvironment(cfg *config.Config) string {
	if cfg.Sentry.Environment != "" {
		return cfg.Sentry.Environment
	}
	return cfg.AppEnv
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
