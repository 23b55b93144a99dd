package updates

import (
	"context"
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var updatesBucketName = []byte("processed_updates")

type BoltRepo struct {
	db *bolt.DB
}

func NewBoltRepo(db *bolt.DB) (*BoltRepo, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(updatesBucketName)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create updates bucket: %w", err)
	}
	return &BoltRepo{db: db}, nil
}

func (r *BoltRepo) MarkProcessed(_ context.Context, updateID int) (ok bool, err error) {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(updateID))
	err = r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(updatesBucketName)
		if b.Get(key) != nil {
			return nil
		}
		ok = true
		return b.Put(key, []byte{})
	})
	return ok, err
}
