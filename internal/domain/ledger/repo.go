package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// querier общий интерфейс pool и tx
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func readBalance(ctx context.Context, q querier, chatID int64, lock bool) (Balance, error) {
	sql := `SELECT balance, updated_at FROM bank_balance WHERE chat_id = $1`
	if lock {
		sql += ` FOR UPDATE`
	}
	var (
		raw string
		b   = Balance{ChatID: chatID, Amount: decimal.Zero}
	)
	if err := q.QueryRow(ctx, sql, chatID).Scan(&raw, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// баланса ещё нет, считаем нулевым
			return b, nil
		}
		return b, err
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return b, fmt.Errorf("bank_balance %d: %w", chatID, err)
	}
	b.Amount = amount
	return b, nil
}

func (r *Repo) Balance(ctx context.Context, chatID int64) (Balance, error) {
	return readBalance(ctx, r.pool, chatID, false)
}

func (r *Repo) SetBalance(ctx context.Context, chatID int64, amount decimal.Decimal) (Balance, error) {
	b := Balance{ChatID: chatID, Amount: amount}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO bank_balance (chat_id, balance, updated_at)
		VALUES ($1,$2,now())
		ON CONFLICT (chat_id) DO UPDATE SET
		  balance=EXCLUDED.balance, updated_at=now()
		RETURNING updated_at
	`, chatID, amount.String()).Scan(&b.UpdatedAt)
	return b, err
}

// Post пишет запись и, если нужно, двигает банк в одной транзакции.
func (r *Repo) Post(ctx context.Context, p Posting) (Balance, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Balance{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	e := p.Entry
	if _, err = tx.Exec(ctx, `
		INSERT INTO transactions
		(id, chat_id, type, category, amount, employee, note, author_id, author_name, created_at)
		VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),NULLIF($7,''),$8,NULLIF($9,''),$10)
	`, e.ID, e.ChatID, string(e.Type), string(e.Category), e.Amount.String(),
		string(e.Employee), e.Note, e.AuthorID, e.AuthorName, e.CreatedAt); err != nil {
		return Balance{}, fmt.Errorf("insert entry: %w", err)
	}

	bal, err := readBalance(ctx, tx, e.ChatID, p.MovesBank)
	if err != nil {
		return Balance{}, err
	}
	if p.MovesBank {
		bal.Amount = bal.Amount.Add(p.Delta)
		if err = tx.QueryRow(ctx, `
			INSERT INTO bank_balance (chat_id, balance, updated_at)
			VALUES ($1,$2,now())
			ON CONFLICT (chat_id) DO UPDATE SET
			  balance=EXCLUDED.balance, updated_at=now()
			RETURNING updated_at
		`, e.ChatID, bal.Amount.String()).Scan(&bal.UpdatedAt); err != nil {
			return Balance{}, fmt.Errorf("update balance: %w", err)
		}
	}

	return bal, tx.Commit(ctx)
}

func (r *Repo) Entries(ctx context.Context, q Query) ([]Entry, error) {
	sql := `
		SELECT id, chat_id, type, category, amount, COALESCE(employee,''), COALESCE(note,''),
		       author_id, COALESCE(author_name,''), created_at
		FROM transactions
		WHERE chat_id = $1`
	args := []any{q.ChatID}
	if len(q.Types) > 0 {
		types := make([]string, 0, len(q.Types))
		for _, t := range q.Types {
			types = append(types, string(t))
		}
		args = append(args, types)
		sql += fmt.Sprintf(" AND type = ANY($%d)", len(args))
	}
	if !q.Since.IsZero() {
		args = append(args, q.Since)
		sql += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	sql += " ORDER BY created_at DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                  Entry
			typ, cat, raw, emp string
		)
		if err := rows.Scan(&e.ID, &e.ChatID, &typ, &cat, &raw, &emp, &e.Note,
			&e.AuthorID, &e.AuthorName, &e.CreatedAt); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("entry %s amount: %w", e.ID, err)
		}
		e.Type, e.Category, e.Amount, e.Employee = Type(typ), Category(cat), amount, Employee(emp)
		out = append(out, e)
	}
	return out, rows.Err()
}
