package users

import (
	"strings"
	"time"
)

// User участник чата, которому бот может слать уведомления.
type User struct {
	UserID     int64
	ChatID     int64 // чат, где пользователь писал последним
	Username   string
	FirstName  string
	LastName   string
	Subscribed bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Telegram struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// DisplayName имя для журнала: «Имя Фамилия», иначе @username.
func (t Telegram) DisplayName() string {
	name := strings.TrimSpace(t.FirstName + " " + t.LastName)
	if name != "" {
		return name
	}
	if t.Username != "" {
		return "@" + t.Username
	}
	return ""
}

// merge пустые поля профиля не затирают сохранённые
func (u *User) merge(tg Telegram, chatID int64, now time.Time) {
	u.ChatID = chatID
	if tg.Username != "" {
		u.Username = tg.Username
	}
	if tg.FirstName != "" {
		u.FirstName = tg.FirstName
	}
	if tg.LastName != "" {
		u.LastName = tg.LastName
	}
	u.UpdatedAt = now
}
