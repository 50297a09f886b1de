// Package kv layers JSON values and key namespacing over repository.KV.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oksasatya/rentivu/internal/domain/repository"
)

// ErrCorrupt marks a stored value that exists but does not decode.
var ErrCorrupt = errors.New("corrupt value")

// Namespace prefixes keys as "<prefix>:<key>".
type Namespace string

func (n Namespace) Key(k string) string {
	if n == "" {
		return k
	}
	return string(n) + ":" + k
}

// Load decodes the JSON stored under key. A missing key yields fallback with a
// nil error. A read or decode failure yields fallback together with the error;
// decode failures wrap ErrCorrupt so callers can tell bad data from a failed read.
func Load[T any](ctx context.Context, store repository.KV, key string, fallback T) (T, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return fallback, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return fallback, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return fallback, fmt.Errorf("decode %s: %w: %w", key, ErrCorrupt, err)
	}
	return v, nil
}

// Save encodes v as JSON under key.
func Save(ctx context.Context, store repository.KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
