package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Store is a byte-oriented key-value store. Implementations return
// ErrNotFound from Get for a missing key; Delete of a missing key is not an
// error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
