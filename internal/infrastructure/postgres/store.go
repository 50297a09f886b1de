package postgres

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/rentivu/internal/domain/repository"
)

// ErrNoListener is returned by Subscribe when the store was built without a pool to LISTEN on.
var ErrNoListener = errors.New("postgres: change notifications need a listener pool")

const (
	selectValueSQL = `SELECT value FROM kv_store WHERE key = $1`
	upsertValueSQL = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	deleteValueSQL = `DELETE FROM kv_store WHERE key = $1`
	notifySQL      = `SELECT pg_notify($1, $2)`
	lockKeySQL     = `SELECT pg_advisory_xact_lock(hashtext($1))`
)

// DB is the slice of pgxpool.Pool the store needs; pgxmock satisfies it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store keeps values in the kv_store table. Writes are announced with
// pg_notify on channel so other processes can refresh.
type Store struct {
	db       DB
	listener *pgxpool.Pool
	channel  string
}

func NewStore(db DB, channel string) *Store {
	return &Store{db: db, channel: channel}
}

// WithListener enables Subscribe by dedicating a pooled connection to LISTEN.
func (s *Store) WithListener(pool *pgxpool.Pool) *Store {
	s.listener = pool
	return s
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	return get(ctx, s.db, key)
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.Exec(ctx, upsertValueSQL, key, value); err != nil {
		return err
	}
	s.notify(ctx, s.db, key)
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, deleteValueSQL, key); err != nil {
		return err
	}
	s.notify(ctx, s.db, key)
	return nil
}

// Atomic runs fn in a transaction holding a transaction-scoped advisory lock
// per key. Locks are taken in sorted order so two callers never deadlock.
func (s *Store) Atomic(ctx context.Context, keys []string, fn func(tx repository.KV) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}

	for _, k := range lockOrder(keys) {
		if _, err := tx.Exec(ctx, lockKeySQL, k); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}

	view := &pgTx{tx: tx}
	if err := fn(view); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	// a failed statement would abort the transaction, so announce only after commit
	for _, k := range view.written {
		s.notify(ctx, s.db, k)
	}
	return nil
}

func (s *Store) Subscribe(ctx context.Context) (<-chan string, error) {
	if s.listener == nil {
		return nil, ErrNoListener
	}
	conn, err := s.listener.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{s.channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, err
	}

	out := make(chan string, 64)
	go func() {
		defer close(out)
		defer conn.Release()
		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if !conn.Conn().IsClosed() {
					_, _ = conn.Exec(context.Background(), "UNLISTEN *")
				}
				return
			}
			select {
			case out <- n.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close is a no-op; the pool belongs to the caller.
func (s *Store) Close() error { return nil }

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// notify is best effort; a lost notification only delays a cache refresh.
func (s *Store) notify(ctx context.Context, db execer, key string) {
	if s.channel == "" {
		return
	}
	_, _ = db.Exec(ctx, notifySQL, s.channel, key)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func get(ctx context.Context, db rowQuerier, key string) (string, bool, error) {
	var v string
	if err := db.QueryRow(ctx, selectValueSQL, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func lockOrder(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type pgTx struct {
	tx      pgx.Tx
	written []string
}

func (t *pgTx) Get(ctx context.Context, key string) (string, bool, error) {
	return get(ctx, t.tx, key)
}

func (t *pgTx) Set(ctx context.Context, key, value string) error {
	if _, err := t.tx.Exec(ctx, upsertValueSQL, key, value); err != nil {
		return err
	}
	for _, k := range t.written {
		if k == key {
			return nil
		}
	}
	t.written = append(t.written, key)
	return nil
}

var _ repository.Storage = (*Store)(nil)
