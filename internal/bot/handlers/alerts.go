package handlers

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/pricerelay-bot/internal/errors"
	"github.com/Proton-105/pricerelay-bot/internal/i18n"
)

// NewSetAlertHandler returns the /setalert command handler.
func NewSetAlertHandler(registry AlertRegistry, t i18n.Translator) Handler {
	return func(c telebot.Context) error {
		inv, _ := InvocationFrom(c)
		ctx := RequestContext(c)

		_, err := registry.Register(ctx, ChatID(c), inv.Asset, float64(inv.Threshold), inv.WindowMinutes)
		if err != nil {
			return apperrors.WithUserMessage(err, i18n.Text(t, "alert.error", "Error setting alert for \"{{.Asset}}\". Please try again.", map[string]string{
				"Asset": inv.Asset,
			}))
		}

		return c.Send(i18n.Text(t, "alert.set", "Alert set for {{.Asset}}: {{.Threshold}}% change within {{.Window}} minutes.", map[string]string{
			"Asset":     inv.Asset,
			"Threshold": strconv.Itoa(inv.Threshold),
			"Window":    strconv.Itoa(inv.WindowMinutes),
		}))
	}
}

// NewAlertsHandler returns the /alerts command handler listing armed rules.
func NewAlertsHandler(registry AlertRegistry, t i18n.Translator) Handler {
	return func(c telebot.Context) error {
		rules := registry.Rules(ChatID(c))
		if len(rules) == 0 {
			return c.Send(i18n.Text(t, "alert.none", "You have no active alerts.", nil))
		}

		var b strings.Builder
		b.WriteString(i18n.Text(t, "alert.list_header", "Active alerts:", nil))
		for _, rule := range rules {
			b.WriteString("\n")
			b.WriteString(i18n.Text(t, "alert.list_item", "- {{.Asset}}: {{.Threshold}}% within {{.Window}} min (from ${{.Initial}})", map[string]string{
				"Asset":     rule.AssetID,
				"Threshold": strconv.FormatFloat(rule.ThresholdPercent, 'f', -1, 64),
				"Window":    strconv.Itoa(rule.WindowMinutes),
				"Initial":   decimal.NewFromFloat(rule.InitialPrice).String(),
			}))
		}

		return c.Send(b.String())
	}
}
