package logger

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const mask = "***"

// Attribute keys containing any of these fragments are replaced wholesale.
var sensitiveFragments = []string{
	"password",
	"token",
	"secret",
	"api_key",
	"api_hash",
	"session",
	"dsn",
	"authorization",
}

// botTokenRx matches Telegram bot tokens, which telebot embeds in request URLs and therefore in errors.
var botTokenRx = regexp.MustCompile(`\d{5,}:[A-Za-z0-9_-]{30,}`)

// MaskingHandler wraps a slog.Handler and masks secrets before delegating.
type MaskingHandler struct {
	next slog.Handler
}

func NewMaskingHandler(next slog.Handler) *MaskingHandler {
	return &MaskingHandler{next: next}
}

func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MaskingHandler{next: h.next.WithAttrs(maskAttrs(attrs))}
}

func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{next: h.next.WithGroup(name)}
}

func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, botTokenRx.ReplaceAllString(record.Message, mask), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(maskAttr(attr))
		return true
	})
	return h.next.Handle(ctx, out)
}

func maskAttrs(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		out[i] = maskAttr(attr)
	}
	return out
}

func maskAttr(attr slog.Attr) slog.Attr {
	if isSensitiveKey(attr.Key) {
		return slog.String(attr.Key, mask)
	}

	value := attr.Value.Resolve()
	switch value.Kind() {
	case slog.KindGroup:
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(maskAttrs(value.Group())...)}
	case slog.KindString:
		return slog.String(attr.Key, botTokenRx.ReplaceAllString(value.String(), mask))
	case slog.KindAny:
		if err, ok := value.Any().(error); ok && err != nil {
			if text := err.Error(); botTokenRx.MatchString(text) {
				return slog.String(attr.Key, botTokenRx.ReplaceAllString(text, mask))
			}
		}
	}
	return slog.Attr{Key: attr.Key, Value: value}
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, fragment := range sensitiveFragments {
		if strings.Contains(key, fragment) {
			return true
		}
	}
	return false
}
