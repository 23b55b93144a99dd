// Package updates отсекает повторно доставленные Telegram-апдейты.
package updates

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// MarkProcessed true, если апдейт пришёл впервые.
func (r *Repo) MarkProcessed(ctx context.Context, updateID int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO processed_updates (update_id) VALUES ($1)
		ON CONFLICT (update_id) DO NOTHING
	`, updateID)
	if err != nil {
		return false, fmt.Errorf("mark update %d: %w", updateID, err)
	}
	return tag.RowsAffected() == 1, nil
}
