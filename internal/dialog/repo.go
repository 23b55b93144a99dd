package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Spok95/finance-bot/internal/command"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Get(ctx context.Context, userID int64) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT chat_id, state, action, payload FROM dialog_states WHERE user_id = $1
	`, userID)
	var (
		chatID        int64
		state, action string
		raw           []byte
	)
	if err := row.Scan(&chatID, &state, &action, &raw); err != nil {
		// строки нет, значит пользователь не в диалоге
		if errors.Is(err, pgx.ErrNoRows) {
			return idle(userID), nil
		}
		return nil, fmt.Errorf("get dialog state: %w", err)
	}
	p := Payload{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode dialog payload: %w", err)
		}
	}
	return &Item{UserID: userID, ChatID: chatID, State: State(state), Action: command.Kind(action), Payload: p}, nil
}

func (r *Repo) Set(ctx context.Context, it Item) error {
	if it.Payload == nil {
		it.Payload = Payload{}
	}
	raw, err := json.Marshal(it.Payload)
	if err != nil {
		return fmt.Errorf("encode dialog payload: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO dialog_states (user_id, chat_id, state, action, payload, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
		ON CONFLICT (user_id) DO UPDATE SET
		  chat_id=$2, state=$3, action=$4, payload=$5, updated_at=now()
	`, it.UserID, it.ChatID, string(it.State), string(it.Action), raw)
	if err != nil {
		return fmt.Errorf("set dialog state: %w", err)
	}
	return nil
}

func (r *Repo) Reset(ctx context.Context, userID int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM dialog_states WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("reset dialog state: %w", err)
	}
	return nil
}
