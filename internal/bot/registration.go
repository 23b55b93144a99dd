package bot

import (
	"context"

	"github.com/Spok95/finance-bot/internal/domain/users"
	"github.com/Spok95/finance-bot/internal/finance"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const anonymousName = "Пользователь"

func telegramProfile(u *tgbotapi.User) users.Telegram {
	return users.Telegram{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// register запоминает пользователя и чат, из которого он пишет.
// Ошибка хранилища не мешает обработать сам апдейт.
func (b *Bot) register(ctx context.Context, from *tgbotapi.User, chatID int64) finance.Actor {
	tg := telegramProfile(from)
	if _, err := b.users.Register(ctx, tg, chatID); err != nil {
		b.log.Error("register user failed", "err", err, "user_id", from.ID, "chat_id", chatID)
	}
	name := tg.DisplayName()
	if name == "" {
		name = anonymousName
	}
	return finance.Actor{ID: from.ID, Name: name}
}

func (b *Bot) setNotifications(ctx context.Context, chatID, userID int64, on bool) error {
	if err := b.users.SetSubscribed(ctx, userID, on); err != nil {
		return err
	}
	text := "🔕 Уведомления отключены. Вы больше не будете получать уведомления о транзакциях."
	if on {
		text = "🔔 Уведомления включены! Вы будете получать уведомления о всех транзакциях."
	}
	b.reply(chatID, text, mainMenuKeyboard())
	return nil
}
