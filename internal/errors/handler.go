package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/Proton-105/pricerelay-bot/pkg/logger"
	"github.com/Proton-105/pricerelay-bot/pkg/metrics"
)

const genericUserMessage = "Sorry, something went wrong."

// Handler is the single place where handler failures are logged, counted and reported.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, sentryEnabled: sentryEnabled}
}

// Handle records err and returns the text to show the chat and whether the
// failure is worth retrying.
func (h *Handler) Handle(ctx context.Context, err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	appErr, known := classify(err)

	attrs := []slog.Attr{
		slog.String("code", appErr.Code),
		slog.String("severity", string(appErr.Severity)),
		slog.Bool("retryable", appErr.Retryable),
		slog.Any("error", err),
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}

	msg := "application error"
	if !known {
		msg = "unknown error"
	}
	h.log.LogAttrs(ctx, levelFor(appErr.Severity), msg, attrs...)
	metrics.RecordError(appErr.Code, string(appErr.Severity))

	if h.sentryEnabled && severe(appErr.Severity) {
		report(ctx, appErr, err)
	}

	userMessage := appErr.UserMessage
	if userMessage == "" {
		userMessage = genericUserMessage
	}
	return userMessage, appErr.Retryable
}

// classify returns the AppError carried by err, or a synthetic internal one.
func classify(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr, true
	}
	return &AppError{
		Code:        "unknown",
		Message:     err.Error(),
		UserMessage: genericUserMessage,
		Severity:    SeverityHigh,
		cause:       err,
	}, false
}

func severe(s Severity) bool {
	return s == SeverityHigh || s == SeverityCritical
}

func levelFor(s Severity) slog.Level {
	if severe(s) {
		return slog.LevelError
	}
	return slog.LevelWarn
}

func report(ctx context.Context, appErr *AppError, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		if appErr.Code != "" {
			scope.SetTag("code", appErr.Code)
		}
		scope.SetTag("severity", string(appErr.Severity))
		if id := logger.CorrelationIDFromContext(ctx); id != "" {
			scope.SetTag("correlation_id", id)
		}
		hub.CaptureException(err)
	})
}
