package dialog

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var dialogBucketName = []byte("dialog")

type BoltRepo struct {
	db *bolt.DB
}

func NewBoltRepo(db *bolt.DB) (*BoltRepo, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(dialogBucketName)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create dialog bucket: %w", err)
	}
	return &BoltRepo{db: db}, nil
}

func (r *BoltRepo) Get(_ context.Context, userID int64) (*Item, error) {
	var it *Item
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(dialogBucketName).Get(itob(userID))
		if raw == nil {
			it = idle(userID)
			return nil
		}
		it = &Item{}
		return json.Unmarshal(raw, it)
	})
	if err != nil {
		return nil, fmt.Errorf("get dialog state: %w", err)
	}
	if it.Payload == nil {
		it.Payload = Payload{}
	}
	return it, nil
}

func (r *BoltRepo) Set(_ context.Context, it Item) error {
	raw, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("encode dialog state: %w", err)
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(dialogBucketName).Put(itob(it.UserID), raw)
	})
}

func (r *BoltRepo) Reset(_ context.Context, userID int64) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(dialogBucketName).Delete(itob(userID))
	})
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}
