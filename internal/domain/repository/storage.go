package repository

import (
	"context"
	"errors"
)

// ErrTxConflict is returned when an atomic update kept losing to concurrent writers.
var ErrTxConflict = errors.New("storage: concurrent update, retry later")

// KV is a string-keyed, string-valued map. A missing key reports ok=false.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Storage is the durable map every manager is built on.
type Storage interface {
	KV
	Remove(ctx context.Context, key string) error

	// Atomic runs fn as one serialized read-modify-write over keys.
	// Writes made through tx become visible only if fn returns nil.
	Atomic(ctx context.Context, keys []string, fn func(tx KV) error) error

	// Subscribe streams the key of every committed change until ctx is done.
	Subscribe(ctx context.Context) (<-chan string, error)

	Close() error
}
