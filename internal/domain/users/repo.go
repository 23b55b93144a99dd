package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const userColumns = `user_id, chat_id, username, first_name, last_name, subscribed, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.UserID, &u.ChatID, &u.Username, &u.FirstName, &u.LastName, &u.Subscribed, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) GetByUserID(ctx context.Context, userID int64) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM bot_users WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bot user: %w", err)
	}
	return u, nil
}

// Register Upsert по Telegram-профилю. Личные уведомления включаются только через /notify_on,
// повторная регистрация подписку не трогает, пустые поля профиля не затирают старые.
func (r *Repo) Register(ctx context.Context, tg Telegram, chatID int64) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO bot_users (user_id, chat_id, username, first_name, last_name, subscribed)
		VALUES ($1,$2,$3,$4,$5,false)
		ON CONFLICT (user_id)
		DO UPDATE SET
			chat_id    = EXCLUDED.chat_id,
			username   = COALESCE(NULLIF(EXCLUDED.username, ''), bot_users.username),
			first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), bot_users.first_name),
			last_name  = COALESCE(NULLIF(EXCLUDED.last_name, ''), bot_users.last_name),
			updated_at = now()
		RETURNING `+userColumns,
		tg.ID, chatID, tg.Username, tg.FirstName, tg.LastName))
	if err != nil {
		return nil, fmt.Errorf("register bot user: %w", err)
	}
	return u, nil
}

func (r *Repo) SetSubscribed(ctx context.Context, userID int64, on bool) error {
	if _, err := r.pool.Exec(ctx, `
		UPDATE bot_users SET subscribed = $2, updated_at = now() WHERE user_id = $1
	`, userID, on); err != nil {
		return fmt.Errorf("set subscribed: %w", err)
	}
	return nil
}

// ListSubscribed подписчики, последним писавшие в chatID.
func (r *Repo) ListSubscribed(ctx context.Context, chatID int64) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM bot_users
		WHERE chat_id = $1 AND subscribed
		ORDER BY user_id
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list subscribed: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
