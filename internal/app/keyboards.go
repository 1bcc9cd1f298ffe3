package app

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/expensebot/core/telegram/keyboard"
	"github.com/m3rciful/expensebot/internal/convo"
)

// replyMarkup maps the engine's keyboard hint onto Telegram reply markup.
func replyMarkup(k convo.Keyboard) *tele.ReplyMarkup {
	switch k {
	case convo.KeyboardPayment:
		return keyboard.ReplyButtons(
			[]string{"Credit", "Debit"},
			[]string{"PayPal", "PayLah"},
		)
	case convo.KeyboardVerified:
		return keyboard.ReplyButtons([]string{"Yes", "No"})
	case convo.KeyboardSkip:
		return keyboard.ReplyButtons([]string{"Skip"})
	default:
		return keyboard.RemoveKeyboard()
	}
}
