// Package redisstore implements repository.Storage on top of Redis strings.
package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/rentivu/internal/domain/repository"
)

const defaultMaxRetries = 8

// Store keeps every value as a plain Redis string and announces each write on
// a pub/sub channel. It does not own the client; the caller closes it.
type Store struct {
	rdb        *redis.Client
	channel    string
	maxRetries int
}

func NewStore(rdb *redis.Client, channel string) *Store {
	return &Store{rdb: rdb, channel: channel, maxRetries: defaultMaxRetries}
}

// WithMaxRetries bounds how often Atomic retries after losing a WATCH race.
func (s *Store) WithMaxRetries(n int) *Store {
	if n > 0 {
		s.maxRetries = n
	}
	return s
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return err
	}
	s.publish(ctx, key)
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return err
	}
	s.publish(ctx, key)
	return nil
}

// Atomic uses WATCH/MULTI/EXEC: reads happen under WATCH, buffered writes are
// flushed in one MULTI block, and a concurrent change to any watched key
// aborts the EXEC and reruns fn.
func (s *Store) Atomic(ctx context.Context, keys []string, fn func(tx repository.KV) error) error {
	var committed []string
	txf := func(rtx *redis.Tx) error {
		view := &redisTx{rtx: rtx, writes: map[string]string{}}
		if err := fn(view); err != nil {
			return err
		}
		if len(view.order) == 0 {
			committed = nil
			return nil
		}
		_, err := rtx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			for _, k := range view.order {
				p.Set(ctx, k, view.writes[k], 0)
			}
			return nil
		})
		committed = view.order
		return err
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, keys...)
		if err == nil {
			for _, k := range committed {
				s.publish(ctx, k)
			}
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return repository.ErrTxConflict
}

func (s *Store) Subscribe(ctx context.Context) (<-chan string, error) {
	ps := s.rdb.Subscribe(ctx, s.channel)
	// wait for the subscription to be confirmed so no later write is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	in := ps.Channel()
	out := make(chan string, 64)
	go func() {
		defer close(out)
		defer func() { _ = ps.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *Store) Close() error { return nil }

// publish is best effort; a lost notification only delays a cache refresh.
func (s *Store) publish(ctx context.Context, key string) {
	if s.channel == "" {
		return
	}
	_ = s.rdb.Publish(ctx, s.channel, key).Err()
}

type redisTx struct {
	rtx    *redis.Tx
	writes map[string]string
	order  []string
}

func (t *redisTx) Get(ctx context.Context, key string) (string, bool, error) {
	if v, ok := t.writes[key]; ok {
		return v, true, nil
	}
	v, err := t.rtx.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (t *redisTx) Set(_ context.Context, key, value string) error {
	if _, ok := t.writes[key]; !ok {
		t.order = append(t.order, key)
	}
	t.writes[key] = value
	return nil
}

var _ repository.Storage = (*Store)(nil)
