package bolt

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fjod/go_cart/cartd/internal/storage"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

const cartBucket = "cart"

// Store provides a BoltDB-backed key-value store, the local durable default.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB file at the provided path, creating it if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open storage db")
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(cartBucket))
		if bucket == nil {
			return errors.New("cart bucket is missing")
		}
		payload := bucket.Get([]byte(key))
		if payload == nil {
			return storage.ErrNotFound
		}
		// payload is only valid for the life of the transaction
		value = append([]byte(nil), payload...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("key is required")
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(cartBucket))
		if bucket == nil {
			return errors.New("cart bucket is missing")
		}
		return bucket.Put([]byte(key), value)
	})
	return errors.Wrapf(err, "put %q", key)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(cartBucket))
		if bucket == nil {
			return errors.New("cart bucket is missing")
		}
		return bucket.Delete([]byte(key))
	})
	return errors.Wrapf(err, "delete %q", key)
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cartBucket))
		return errors.Wrap(err, "create cart bucket")
	})
}
