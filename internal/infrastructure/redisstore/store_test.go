package redisstore_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/rentivu/internal/domain/repository"
	"github.com/oksasatya/rentivu/internal/infrastructure/redisstore"
)

func newStore(t *testing.T) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redisstore.NewStore(rdb, "rentivu:changes"), mr
}

func TestStore_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	_, ok, err := s.Get(ctx, "rentivu:users")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "rentivu:users", "[]"))
	got, err := mr.Get("rentivu:users")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	v, ok, err := s.Get(ctx, "rentivu:users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	require.NoError(t, s.Remove(ctx, "rentivu:users"))
	assert.False(t, mr.Exists("rentivu:users"))
}

func TestStore_GetPropagatesConnectionErrors(t *testing.T) {
	s, mr := newStore(t)
	mr.Close()

	_, _, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestStore_Atomic(t *testing.T) {
	ctx := context.Background()

	t.Run("commits buffered writes", func(t *testing.T) {
		s, mr := newStore(t)
		err := s.Atomic(ctx, []string{"a", "b"}, func(tx repository.KV) error {
			require.NoError(t, tx.Set(ctx, "a", "1"))
			require.NoError(t, tx.Set(ctx, "b", "2"))
			v, ok, err := tx.Get(ctx, "a")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "1", v)
			return nil
		})
		require.NoError(t, err)

		a, _ := mr.Get("a")
		b, _ := mr.Get("b")
		assert.Equal(t, "1", a)
		assert.Equal(t, "2", b)
	})

	t.Run("discards writes when fn fails", func(t *testing.T) {
		s, mr := newStore(t)
		boom := errors.New("boom")
		err := s.Atomic(ctx, []string{"a"}, func(tx repository.KV) error {
			_ = tx.Set(ctx, "a", "1")
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.False(t, mr.Exists("a"))
	})

	t.Run("concurrent increments never lose updates", func(t *testing.T) {
		s, mr := newStore(t)
		s.WithMaxRetries(100)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.Atomic(ctx, []string{"n"}, func(tx repository.KV) error {
					v, _, err := tx.Get(ctx, "n")
					if err != nil {
						return err
					}
					n, _ := strconv.Atoi(v)
					return tx.Set(ctx, "n", strconv.Itoa(n+1))
				})
				if err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				} else {
					assert.ErrorIs(t, err, repository.ErrTxConflict)
				}
			}()
		}
		wg.Wait()

		got, _ := mr.Get("n")
		assert.Equal(t, strconv.Itoa(successes), got)
	})
}

func TestStore_Subscribe(t *testing.T) {
	s, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), "rentivu:auth", "{}"))

	select {
	case key := <-ch:
		assert.Equal(t, "rentivu:auth", key)
	case <-time.After(2 * time.Second):
		t.Fatal("expected change notification")
	}
}
