package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oksasatya/rentivu/internal/domain/entity"
	repo "github.com/oksasatya/rentivu/internal/domain/repository"
	"github.com/oksasatya/rentivu/internal/infrastructure/memory"
	"github.com/oksasatya/rentivu/pkg/helpers"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func sequentialIDs(prefix string) func() string {
	var n int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, atomic.AddInt64(&n, 1))
	}
}

func newTestAuth(store repo.Storage) *AuthService {
	s := NewAuthService(store, "rentivu", helpers.WeakHasher{}, helpers.NopLogger())
	s.NewID = sequentialIDs("user")
	s.Now = func() time.Time { return fixedNow }
	return s
}

func newTestLedger(store repo.Storage) *ReservationService {
	s := NewReservationService(store, "rentivu:reservations", time.UTC, helpers.NopLogger())
	s.NewID = sequentialIDs("res")
	return s
}

type stubCatalog struct {
	rentals []entity.Rental
	err     error
}

func (c stubCatalog) All(context.Context) ([]entity.Rental, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make([]entity.Rental, len(c.rentals))
	copy(out, c.rentals)
	return out, nil
}

// failingWrites lets reads through and rejects every write made inside Atomic.
type failingWrites struct {
	*memory.Store
}

var errDiskFull = errors.New("disk full")

func (f failingWrites) Atomic(ctx context.Context, keys []string, fn func(tx repo.KV) error) error {
	return f.Store.Atomic(ctx, keys, func(tx repo.KV) error {
		return fn(readOnlyKV{tx})
	})
}

type readOnlyKV struct{ repo.KV }

func (readOnlyKV) Set(context.Context, string, string) error { return errDiskFull }

type recordedEvent struct {
	Type    string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Payload: payload})
	return p.err
}

func (p *recordingPublisher) Events() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

// flakyReads serves reads outside Atomic but fails every read made inside it,
// the way a Redis or Postgres round trip times out mid-transaction.
type flakyReads struct {
	*memory.Store
}

var errReadTimeout = errors.New("i/o timeout")

func (f flakyReads) Atomic(ctx context.Context, keys []string, fn func(tx repo.KV) error) error {
	return f.Store.Atomic(ctx, keys, func(tx repo.KV) error {
		return fn(timeoutKV{tx})
	})
}

type timeoutKV struct{ repo.KV }

func (timeoutKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errReadTimeout
}
