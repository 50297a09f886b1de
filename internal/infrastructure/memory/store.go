// Package memory provides a process-local Storage for development and tests.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/oksasatya/rentivu/internal/domain/repository"
)

var errClosed = errors.New("memory store closed")

type Store struct {
	mu     sync.Mutex
	m      map[string]string
	subs   map[chan string]struct{}
	closed bool
}

func NewStore() *Store {
	return &Store{
		m:    make(map[string]string),
		subs: make(map[chan string]struct{}),
	}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, errClosed
	}
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errClosed
	}
	s.m[key] = value
	s.mu.Unlock()

	s.notify(key)
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errClosed
	}
	delete(s.m, key)
	s.mu.Unlock()

	s.notify(key)
	return nil
}

// Atomic holds the store lock for the whole of fn, so keys is advisory here.
func (s *Store) Atomic(ctx context.Context, keys []string, fn func(tx repository.KV) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errClosed
	}
	tx := &memTx{base: s.m, writes: map[string]string{}}
	if err := fn(tx); err != nil {
		s.mu.Unlock()
		return err
	}
	for _, k := range tx.order {
		s.m[k] = tx.writes[k]
	}
	s.mu.Unlock()

	for _, k := range tx.order {
		s.notify(k)
	}
	return nil
}

func (s *Store) Subscribe(ctx context.Context) (<-chan string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed
	}
	ch := make(chan string, 64)
	s.subs[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}()
	return ch, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
	return nil
}

// notify never blocks; a slow subscriber misses events rather than stalling writers.
func (s *Store) notify(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- key:
		default:
		}
	}
}

type memTx struct {
	base   map[string]string
	writes map[string]string
	order  []string
}

func (t *memTx) Get(_ context.Context, key string) (string, bool, error) {
	if v, ok := t.writes[key]; ok {
		return v, true, nil
	}
	v, ok := t.base[key]
	return v, ok, nil
}

func (t *memTx) Set(_ context.Context, key, value string) error {
	if _, ok := t.writes[key]; !ok {
		t.order = append(t.order, key)
	}
	t.writes[key] = value
	return nil
}

var _ repository.Storage = (*Store)(nil)
