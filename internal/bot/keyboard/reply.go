package keyboard

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/pricerelay-bot/internal/i18n"
)

// MainMenu builds the reply keyboard of ready-made commands shown after /start.
func MainMenu(t i18n.Translator) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: false,
	}

	lookup := func(key, fallback string) telebot.Btn {
		return markup.Text(i18n.Text(t, key, fallback, nil))
	}

	markup.Reply(
		markup.Row(lookup("main_menu.price", "/price bitcoin"), lookup("main_menu.exchanges", "/priceexchanges bitcoin")),
		markup.Row(lookup("main_menu.history", "/pricehistory bitcoin"), lookup("main_menu.alerts", "/alerts")),
		markup.Row(lookup("main_menu.subscribe", "/subscribe"), lookup("main_menu.help", "/help")),
	)

	return markup
}
