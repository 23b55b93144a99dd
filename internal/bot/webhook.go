package bot

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateHandler то, что умеет обработать один апдейт.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd tgbotapi.Update)
}

type WebhookHandler struct {
	log *slog.Logger
	bot UpdateHandler
}

func NewWebhookHandler(log *slog.Logger, bot UpdateHandler) *WebhookHandler {
	return &WebhookHandler{log: log, bot: bot}
}

// ServeHTTP принимает апдейт от Telegram. На битый JSON отвечает 400,
// на всё остальное 200: об ошибке обработки пользователь узнаёт в чате.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var upd tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.log.Warn("bad webhook payload", "err", err)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid update"))
		return
	}

	h.bot.HandleUpdate(r.Context(), upd)
	w.WriteHeader(http.StatusOK)
}
