package dialog

import "github.com/Spok95/finance-bot/internal/command"

type State string

const (
	StateIdle          State = "idle"
	StateWaitingAmount State = "waiting_amount"
	StateWaitingNote   State = "waiting_note"
)

// Ключи payload
const (
	keyAmount   = "amount"
	keyEmployee = "employee"
)

type Payload map[string]any

// Item состояние диалога одного пользователя.
type Item struct {
	UserID  int64
	ChatID  int64
	State   State
	Action  command.Kind
	Payload Payload
}

func idle(userID int64) *Item {
	return &Item{UserID: userID, State: StateIdle, Payload: Payload{}}
}

// GetString Helper для безопасного чтения строк из payload
func GetString(p Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
