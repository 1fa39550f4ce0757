package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/pricerelay-bot/internal/bot/handlers"
	"github.com/Proton-105/pricerelay-bot/internal/bot/keyboard"
	"github.com/Proton-105/pricerelay-bot/internal/command"
	errors "github.com/Proton-105/pricerelay-bot/internal/errors"
	"github.com/Proton-105/pricerelay-bot/internal/i18n"
	"github.com/Proton-105/pricerelay-bot/internal/middleware"
	"github.com/Proton-105/pricerelay-bot/pkg/config"
)

// Services are the components the command handlers talk to.
type Services struct {
	Prices        handlers.PriceService
	Pages         handlers.Pager
	Alerts        handlers.AlertRegistry
	Subscriptions handlers.Subscriptions
	Cooldown      *middleware.CooldownMiddleware
}

// Bot wraps telebot.Bot with the command router.
type Bot struct {
	telebot    *telebot.Bot
	log        *slog.Logger
	cfg        *config.Config
	t          i18n.Translator
	router     *Router
	errHandler *errors.Handler
}

// NewTelebot creates a long-polling telebot instance. The update loop is not started.
func NewTelebot(cfg config.BotConfig, log *slog.Logger) (*telebot.Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	tb, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Token,
		Poller: &telebot.LongPoller{Timeout: cfg.PollTimeout},
		OnError: func(err error, c telebot.Context) {
			log.Error("telebot error", slog.Int64("chat_id", handlers.ChatID(c)), slog.Any("error", err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	return tb, nil
}

// New builds the bot and registers every command on tb. tb may be nil in tests.
func New(tb *telebot.Bot, cfg *config.Config, t i18n.Translator, log *slog.Logger, svc Services) *Bot {
	if log == nil {
		log = slog.Default()
	}

	b := &Bot{
		telebot:    tb,
		log:        log,
		cfg:        cfg,
		t:          t,
		router:     NewRouter(log),
		errHandler: errors.NewHandler(log, cfg.Sentry.Enabled),
	}

	b.setupRouter(svc)
	b.registerTelebotHandlers()

	return b
}

// Start runs the telegram bot event loop. It blocks until Stop is called.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.log.Info("telegram bot started", slog.String("username", b.telebot.Me.Username))
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

// Router exposes the command router.
func (b *Bot) Router() *Router {
	return b.router
}

func (b *Bot) setupRouter(svc Services) {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(middleware.Metrics)
	if svc.Cooldown != nil {
		b.router.Use(svc.Cooldown.Handle)
	}

	b.router.RegisterCommand(command.Start, handlers.NewStartHandler(b.t))
	b.router.RegisterCommand(command.Help, handlers.NewHelpHandler(b.t))

	if svc.Prices != nil {
		b.router.RegisterCommand(command.Price, handlers.NewPriceHandler(svc.Prices, b.t, b.log))
		b.router.RegisterCommand(command.PriceHistory, handlers.NewHistoryHandler(svc.Prices, b.cfg.History.Location(), b.t))
	}

	if svc.Prices != nil && svc.Pages != nil {
		b.router.RegisterCommand(command.PriceExchanges, handlers.NewExchangesHandler(svc.Prices, svc.Pages, b.cfg.Pagination.PageSize, b.t))
	}

	if svc.Pages != nil {
		b.router.RegisterCommand(command.Next, handlers.NewNextHandler(svc.Pages, b.t))
		b.router.RegisterCommand(command.Prev, handlers.NewPrevHandler(svc.Pages, b.t))
		b.router.RegisterCallback(keyboard.PageAction+keyboard.CallbackDataSeparator, handlers.NewPageCallbackHandler(svc.Pages, b.t, b.log))
	}

	if svc.Alerts != nil {
		b.router.RegisterCommand(command.SetAlert, handlers.NewSetAlertHandler(svc.Alerts, b.t))
		b.router.RegisterCommand(command.Alerts, handlers.NewAlertsHandler(svc.Alerts, b.t))
	}

	if svc.Subscriptions != nil {
		b.router.RegisterCommand(command.Subscribe, handlers.NewSubscribeHandler(svc.Subscriptions, b.t))
		b.router.RegisterCommand(command.Unsubscribe, handlers.NewUnsubscribeHandler(svc.Subscriptions, b.t))
	}
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}
