package keyboard

import (
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/pricerelay-bot/internal/i18n"
)

// Callback actions for the page navigation row.
const (
	PageAction  = "page"
	PageNext    = "next"
	PagePrev    = "prev"
	PageCurrent = "current"
)

// PaginationButtons returns up to three inline buttons (prev, current page, next)
// for a zero-based page out of total.
func PaginationButtons(t i18n.Translator, page, total int) []InlineButton {
	if total < 1 {
		total = 1
	}
	if page < 0 {
		page = 0
	}
	if page > total-1 {
		page = total - 1
	}

	buttons := make([]InlineButton, 0, 3)

	if page > 0 {
		buttons = append(buttons, InlineButton{
			Text:   i18n.Text(t, "pagination.pagination_prev", "◀️ Prev", nil),
			Action: PageAction,
			Data:   PagePrev,
		})
	}

	buttons = append(buttons, InlineButton{
		Text: i18n.Text(t, "pagination.pagination_page", "Page {{.Page}}/{{.Total}}", map[string]string{
			"Page":  strconv.Itoa(page + 1),
			"Total": strconv.Itoa(total),
		}),
		Action: PageAction,
		Data:   PageCurrent,
	})

	if page < total-1 {
		buttons = append(buttons, InlineButton{
			Text:   i18n.Text(t, "pagination.pagination_next", "Next ▶️", nil),
			Action: PageAction,
			Data:   PageNext,
		})
	}

	return buttons
}

// PaginationMarkup renders the navigation row, or nil when there is nothing to page through.
func PaginationMarkup(t i18n.Translator, page, total int) *telebot.ReplyMarkup {
	if total <= 1 {
		return nil
	}

	markup, err := NewInlineKeyboard().AddRow(PaginationButtons(t, page, total)...).Build()
	if err != nil {
		return nil
	}
	return markup
}
