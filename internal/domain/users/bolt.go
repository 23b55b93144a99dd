package users

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var usersBucketName = []byte("bot_users")

type BoltRepo struct {
	db *bolt.DB
}

func NewBoltRepo(db *bolt.DB) (*BoltRepo, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(usersBucketName)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create users bucket: %w", err)
	}
	return &BoltRepo{db: db}, nil
}

func getUser(b *bolt.Bucket, userID int64) (*User, error) {
	raw := b.Get(itob(userID))
	if raw == nil {
		return nil, nil
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func putUser(b *bolt.Bucket, u *User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return b.Put(itob(u.UserID), raw)
}

func (r *BoltRepo) GetByUserID(_ context.Context, userID int64) (u *User, err error) {
	err = r.db.View(func(tx *bolt.Tx) error {
		u, err = getUser(tx.Bucket(usersBucketName), userID)
		return err
	})
	return u, err
}

func (r *BoltRepo) Register(_ context.Context, tg Telegram, chatID int64) (u *User, err error) {
	now := time.Now()
	err = r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(usersBucketName)
		if u, err = getUser(b, tg.ID); err != nil {
			return err
		}
		if u == nil {
			u = &User{UserID: tg.ID, CreatedAt: now}
		}
		u.merge(tg, chatID, now)
		return putUser(b, u)
	})
	if err != nil {
		return nil, fmt.Errorf("register bot user: %w", err)
	}
	return u, nil
}

func (r *BoltRepo) SetSubscribed(_ context.Context, userID int64, on bool) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(usersBucketName)
		u, err := getUser(b, userID)
		if err != nil || u == nil {
			return err
		}
		u.Subscribed = on
		u.UpdatedAt = time.Now()
		return putUser(b, u)
	})
}

func (r *BoltRepo) ListSubscribed(_ context.Context, chatID int64) ([]User, error) {
	var out []User
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(usersBucketName).ForEach(func(_, v []byte) error {
			var u User
			if err := json.Unmarshal(v, &u); err != nil {
				return err
			}
			if u.Subscribed && u.ChatID == chatID {
				out = append(out, u)
			}
			return nil
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, err
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}
