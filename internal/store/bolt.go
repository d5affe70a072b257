// Package store persists the small amount of bot state that must survive a
// restart. Property listings themselves are never stored; they are rebuilt
// from the spreadsheet on every request.
package store

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	stateBucket = []byte("bot_state")
	offsetKey   = []byte("update_offset")
)

type Store interface {
	Offset() (int64, error)
	SaveOffset(offset int64) error
	Close() error
}

type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Offset returns the last saved update offset, or 0 for a fresh database.
func (s *BoltStore) Offset() (int64, error) {
	var offset int64
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(stateBucket).Get(offsetKey)
		if v == nil {
			return nil
		}
		if len(v) != 8 {
			return fmt.Errorf("corrupt offset value (%d bytes)", len(v))
		}
		offset = int64(binary.BigEndian.Uint64(v))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return offset, nil
}

func (s *BoltStore) SaveOffset(offset int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		var v [8]byte
		binary.BigEndian.PutUint64(v[:], uint64(offset))
		return tx.Bucket(stateBucket).Put(offsetKey, v[:])
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
