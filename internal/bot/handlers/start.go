package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/pricerelay-bot/internal/bot/keyboard"
	"github.com/Proton-105/pricerelay-bot/internal/i18n"
)

const (
	welcomeFallback = "Welcome! I'm your Crypto Tracker Bot. Here are the commands you can use:\n/start - Start the bot\n/price [crypto] - Get the price of a cryptocurrency\n/help - Get help and instructions"
	helpFallback    = "Here's how to use me:\n- /start to start the bot\n- /help to get this message\n- /price [crypto] to get the current price of a cryptocurrency\n- /setalert [crypto] [change%] [time in minutes] to set a price alert\n- /pricehistory [crypto] to get the price history\n- /priceexchanges [crypto] to get the price on different exchanges"
)

// NewStartHandler returns the /start command handler. The reply carries the command keyboard.
func NewStartHandler(t i18n.Translator) Handler {
	return func(c telebot.Context) error {
		return c.Send(i18n.Text(t, "start.welcome", welcomeFallback, nil), keyboard.MainMenu(t))
	}
}

// NewHelpHandler returns the /help command handler.
func NewHelpHandler(t i18n.Translator) Handler {
	return func(c telebot.Context) error {
		return c.Send(i18n.Text(t, "help.text", helpFallback, nil))
	}
}
