// Package notify рассылает уведомления об операциях в фоне.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Spok95/finance-bot/internal/domain/users"
	"github.com/Spok95/finance-bot/internal/finance"
	"github.com/Spok95/finance-bot/internal/infra/metrics"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Subscribers подписчики чата.
type Subscribers interface {
	ListSubscribed(ctx context.Context, chatID int64) ([]users.User, error)
}

// Worker очередь уведомлений с одним отправителем. Publish не блокирует:
// при полной очереди уведомление теряется. Ошибки отправки только логируются.
type Worker struct {
	ch        chan finance.Notification
	sender    Sender
	subs      Subscribers
	adminChat int64
	log       *slog.Logger
	m         *metrics.Metrics
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewWorker(sender Sender, subs Subscribers, adminChat int64, log *slog.Logger, m *metrics.Metrics, bufferSize int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		ch:        make(chan finance.Notification, bufferSize),
		sender:    sender,
		subs:      subs,
		adminChat: adminChat,
		log:       log,
		m:         m,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.ctx.Done():
				w.log.Info("draining notifications before shutdown", "remaining", len(w.ch))
				for len(w.ch) > 0 {
					w.deliver(context.Background(), <-w.ch)
				}
				return
			case n := <-w.ch:
				w.deliver(w.ctx, n)
			}
		}
	}()
}

func (w *Worker) Publish(n finance.Notification) {
	select {
	case w.ch <- n:
	default:
		w.m.Notifications.WithLabelValues("dropped").Inc()
		w.log.Warn("notification queue full, dropping", "chat_id", n.ChatID, "action", n.Action)
	}
}

// Shutdown дожидается отправки того, что уже в очереди.
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) deliver(ctx context.Context, n finance.Notification) {
	text := n.Text()

	// не шлём одному и тому же chat_id дважды
	sent := map[int64]struct{}{}
	sendOnce := func(chatID int64) {
		if chatID == 0 {
			return
		}
		if _, ok := sent[chatID]; ok {
			return
		}
		sent[chatID] = struct{}{}

		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := w.sender.Send(msg); err != nil {
			w.m.Notifications.WithLabelValues("failed").Inc()
			w.log.Error("notification send failed", "err", err, "chat_id", chatID, "action", n.Action)
			return
		}
		w.m.Notifications.WithLabelValues("sent").Inc()
	}

	// 1) чат, где прошла операция
	sendOnce(n.ChatID)

	// 2) админ-чат
	sendOnce(w.adminChat)

	// 3) личка подписчиков этого чата
	list, err := w.subs.ListSubscribed(ctx, n.ChatID)
	if err != nil {
		w.log.Error("list subscribers failed", "err", err, "chat_id", n.ChatID)
		return
	}
	for _, u := range list {
		sendOnce(u.UserID)
	}
}
