package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// answerCallback гасит «часики» на кнопке.
func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery) error {
	_, err := b.api.Request(tgbotapi.NewCallback(cb.ID, ""))
	return err
}
