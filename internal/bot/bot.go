// Package bot Telegram-транспорт: приём апдейтов, меню и ответы.
package bot

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/Spok95/finance-bot/internal/dialog"
	"github.com/Spok95/finance-bot/internal/domain/users"
	"github.com/Spok95/finance-bot/internal/finance"
	"github.com/Spok95/finance-bot/internal/infra/metrics"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const genericErrorText = "❌ Произошла ошибка при обработке команды. Попробуйте еще раз."

// API часть tgbotapi.BotAPI, которой пользуется бот.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type UserStore interface {
	Register(ctx context.Context, tg users.Telegram, chatID int64) (*users.User, error)
	SetSubscribed(ctx context.Context, userID int64, on bool) error
}

type UpdateStore interface {
	MarkProcessed(ctx context.Context, updateID int) (bool, error)
}

type Publisher interface {
	Publish(n finance.Notification)
}

type Bot struct {
	api      API
	log      *slog.Logger
	users    UserStore
	updates  UpdateStore
	dialog   *dialog.Machine
	exec     *finance.Executor
	notifier Publisher
	m        *metrics.Metrics
}

func New(api API, log *slog.Logger,
	usersRepo UserStore, updatesRepo UpdateStore,
	machine *dialog.Machine, exec *finance.Executor,
	notifier Publisher, m *metrics.Metrics) *Bot {

	return &Bot{
		api: api, log: log, users: usersRepo, updates: updatesRepo,
		dialog: machine, exec: exec, notifier: notifier, m: m,
	}
}

// Run long polling: апдейты обрабатываются по одному до отмены ctx.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

// HandleUpdate один апдейт: дедупликация, маршрутизация, ответ.
// Паника в обработчике не роняет процесс, пользователь получает сообщение об ошибке.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	kind := updateKind(upd)
	if kind == "" {
		return
	}
	start := time.Now()
	defer func() { b.m.HandleSeconds.Observe(time.Since(start).Seconds()) }()

	fresh, err := b.updates.MarkProcessed(ctx, upd.UpdateID)
	if err != nil {
		// без дедупликации лучше, чем без ответа
		b.log.Error("mark update failed", "err", err, "update_id", upd.UpdateID)
	} else if !fresh {
		b.m.Updates.WithLabelValues(kind, "duplicate").Inc()
		b.log.Debug("duplicate update skipped", "update_id", upd.UpdateID)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.m.Updates.WithLabelValues(kind, "panic").Inc()
			b.log.Error("handler panic", "panic", r, "update_id", upd.UpdateID, "stack", string(debug.Stack()))
			if chat := upd.FromChat(); chat != nil {
				b.reply(chat.ID, genericErrorText, mainMenuKeyboard())
			}
		}
	}()

	switch kind {
	case "message":
		err = b.onMessage(ctx, upd.Message)
	case "callback":
		err = b.onCallback(ctx, upd.CallbackQuery)
	}
	if err != nil {
		b.m.Updates.WithLabelValues(kind, "error").Inc()
		b.log.Error("update failed", "err", err, "update_id", upd.UpdateID)
		if chat := upd.FromChat(); chat != nil {
			b.reply(chat.ID, genericErrorText, mainMenuKeyboard())
		}
		return
	}
	b.m.Updates.WithLabelValues(kind, "ok").Inc()
}

func updateKind(upd tgbotapi.Update) string {
	switch {
	case upd.Message != nil && upd.Message.From != nil:
		return "message"
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		return "callback"
	}
	return ""
}

func (b *Bot) send(msg tgbotapi.Chattable) error {
	_, err := b.api.Send(msg)
	if err != nil {
		b.log.Error("send failed", "err", err)
	}
	return err
}

// reply HTML-ответ с клавиатурой. Длинный текст уходит несколькими
// сообщениями, клавиатура только под последним. Если Telegram не принял
// ответ, пользователь получает общее сообщение об ошибке.
func (b *Bot) reply(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	parts := splitText(text, maxMessageLen)
	for i, part := range parts {
		m := tgbotapi.NewMessage(chatID, part)
		m.ParseMode = tgbotapi.ModeHTML
		if i == len(parts)-1 {
			m.ReplyMarkup = kb
		}
		if err := b.send(m); err != nil {
			if text != genericErrorText {
				b.replyError(chatID)
			}
			return
		}
	}
}

func (b *Bot) replyError(chatID int64) {
	m := tgbotapi.NewMessage(chatID, genericErrorText)
	m.ReplyMarkup = mainMenuKeyboard()
	_ = b.send(m)
}
