package ledger

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	bolt "go.etcd.io/bbolt"
)

var (
	entriesBucket  = []byte("transactions")
	balancesBucket = []byte("bank_balance")
)

// BoltRepo хранит журнал и банк во встроенной bbolt-базе (storage.driver=bolt).
type BoltRepo struct {
	db *bolt.DB
}

func NewBoltRepo(db *bolt.DB) (*BoltRepo, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{entriesBucket, balancesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &BoltRepo{db: db}, nil
}

type boltEntry struct {
	ID         uuid.UUID `json:"id"`
	ChatID     int64     `json:"chat_id"`
	Type       Type      `json:"type"`
	Category   Category  `json:"category,omitempty"`
	Amount     string    `json:"amount"`
	Employee   Employee  `json:"employee,omitempty"`
	Note       string    `json:"note,omitempty"`
	AuthorID   int64     `json:"author_id,omitempty"`
	AuthorName string    `json:"author_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type boltBalance struct {
	Balance   string    `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

func chatKey(chatID int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(chatID))
	return b
}

// ключ записи: chat_id | created_at | id, курсор идёт по времени внутри чата
func entryKey(e Entry) []byte {
	k := make([]byte, 0, 32)
	k = append(k, chatKey(e.ChatID)...)
	k = binary.BigEndian.AppendUint64(k, uint64(e.CreatedAt.UnixNano()))
	return append(k, e.ID[:]...)
}

func getBalance(tx *bolt.Tx, chatID int64) (Balance, error) {
	b := Balance{ChatID: chatID, Amount: decimal.Zero}
	raw := tx.Bucket(balancesBucket).Get(chatKey(chatID))
	if raw == nil {
		return b, nil
	}
	var bb boltBalance
	if err := json.Unmarshal(raw, &bb); err != nil {
		return b, err
	}
	amount, err := decimal.NewFromString(bb.Balance)
	if err != nil {
		return b, fmt.Errorf("bank_balance %d: %w", chatID, err)
	}
	b.Amount, b.UpdatedAt = amount, bb.UpdatedAt
	return b, nil
}

func putBalance(tx *bolt.Tx, b Balance) error {
	raw, err := json.Marshal(boltBalance{Balance: b.Amount.String(), UpdatedAt: b.UpdatedAt})
	if err != nil {
		return err
	}
	return tx.Bucket(balancesBucket).Put(chatKey(b.ChatID), raw)
}

func (r *BoltRepo) Balance(_ context.Context, chatID int64) (b Balance, err error) {
	err = r.db.View(func(tx *bolt.Tx) error {
		b, err = getBalance(tx, chatID)
		return err
	})
	return b, err
}

func (r *BoltRepo) SetBalance(_ context.Context, chatID int64, amount decimal.Decimal) (Balance, error) {
	b := Balance{ChatID: chatID, Amount: amount, UpdatedAt: time.Now()}
	err := r.db.Update(func(tx *bolt.Tx) error {
		return putBalance(tx, b)
	})
	return b, err
}

func (r *BoltRepo) Post(_ context.Context, p Posting) (b Balance, err error) {
	e := p.Entry
	raw, err := json.Marshal(boltEntry{
		ID: e.ID, ChatID: e.ChatID, Type: e.Type, Category: e.Category,
		Amount: e.Amount.String(), Employee: e.Employee, Note: e.Note,
		AuthorID: e.AuthorID, AuthorName: e.AuthorName, CreatedAt: e.CreatedAt,
	})
	if err != nil {
		return Balance{}, err
	}

	err = r.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(entriesBucket).Put(entryKey(e), raw); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		if b, err = getBalance(tx, e.ChatID); err != nil {
			return err
		}
		if !p.MovesBank {
			return nil
		}
		b.Amount = b.Amount.Add(p.Delta)
		b.UpdatedAt = time.Now()
		return putBalance(tx, b)
	})
	return b, err
}

func (r *BoltRepo) Entries(_ context.Context, q Query) ([]Entry, error) {
	var all []Entry
	prefix := chatKey(q.ChatID)
	err := r.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(entriesBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var be boltEntry
			if err := json.Unmarshal(v, &be); err != nil {
				return err
			}
			amount, err := decimal.NewFromString(be.Amount)
			if err != nil {
				return fmt.Errorf("entry %s amount: %w", be.ID, err)
			}
			all = append(all, Entry{
				ID: be.ID, ChatID: be.ChatID, Type: be.Type, Category: be.Category,
				Amount: amount, Employee: be.Employee, Note: be.Note,
				AuthorID: be.AuthorID, AuthorName: be.AuthorName, CreatedAt: be.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// от новых к старым
	var out []Entry
	for i := len(all) - 1; i >= 0; i-- {
		if !q.matches(all[i]) {
			continue
		}
		out = append(out, all[i])
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}
