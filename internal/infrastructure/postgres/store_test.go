package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/rentivu/internal/domain/repository"
	"github.com/oksasatya/rentivu/internal/infrastructure/postgres"
)

const channel = "rentivu:changes"

func TestStore_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := postgres.NewStore(mock, channel)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT value FROM kv_store").
			WithArgs("rentivu:users").
			WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(`[]`))

		v, ok, err := s.Get(ctx, "rentivu:users")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "[]", v)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT value FROM kv_store").
			WithArgs("rentivu:auth").
			WillReturnError(pgx.ErrNoRows)

		_, ok, err := s.Get(ctx, "rentivu:auth")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("SELECT value FROM kv_store").
			WithArgs("rentivu:auth").
			WillReturnError(errors.New("db down"))

		_, _, err := s.Get(ctx, "rentivu:auth")
		assert.Error(t, err)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetAndRemoveNotify(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := postgres.NewStore(mock, channel)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO kv_store").
		WithArgs("rentivu:auth", `{}`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("SELECT pg_notify").
		WithArgs(channel, "rentivu:auth").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	require.NoError(t, s.Set(ctx, "rentivu:auth", `{}`))

	mock.ExpectExec("DELETE FROM kv_store").
		WithArgs("rentivu:auth").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("SELECT pg_notify").
		WithArgs(channel, "rentivu:auth").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	require.NoError(t, s.Remove(ctx, "rentivu:auth"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetFailureSkipsNotify(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := postgres.NewStore(mock, channel)
	mock.ExpectExec("INSERT INTO kv_store").
		WithArgs("k", "v").
		WillReturnError(errors.New("read only"))

	assert.Error(t, s.Set(context.Background(), "k", "v"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Atomic(t *testing.T) {
	ctx := context.Background()

	t.Run("locks keys in order and commits", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		s := postgres.NewStore(mock, channel)

		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs("rentivu:auth").
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs("rentivu:users").
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectQuery("SELECT value FROM kv_store").WithArgs("rentivu:users").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectExec("INSERT INTO kv_store").WithArgs("rentivu:users", "[1]").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectExec("SELECT pg_notify").WithArgs(channel, "rentivu:users").
			WillReturnResult(pgxmock.NewResult("SELECT", 1))

		err = s.Atomic(ctx, []string{"rentivu:users", "rentivu:auth", "rentivu:users"}, func(tx repository.KV) error {
			_, ok, err := tx.Get(ctx, "rentivu:users")
			require.NoError(t, err)
			assert.False(t, ok)
			return tx.Set(ctx, "rentivu:users", "[1]")
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("single write commits", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		s := postgres.NewStore(mock, channel)

		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs("rentivu:reservations").
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectExec("INSERT INTO kv_store").WithArgs("rentivu:reservations", "[]").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectExec("SELECT pg_notify").WithArgs(channel, "rentivu:reservations").
			WillReturnResult(pgxmock.NewResult("SELECT", 1))

		err = s.Atomic(ctx, []string{"rentivu:reservations"}, func(tx repository.KV) error {
			return tx.Set(ctx, "rentivu:reservations", "[]")
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed notify does not undo the commit", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		s := postgres.NewStore(mock, channel)

		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs("rentivu:auth").
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectExec("INSERT INTO kv_store").WithArgs("rentivu:auth", "{}").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectExec("SELECT pg_notify").WithArgs(channel, "rentivu:auth").
			WillReturnError(errors.New("payload string too long"))

		err = s.Atomic(ctx, []string{"rentivu:auth"}, func(tx repository.KV) error {
			return tx.Set(ctx, "rentivu:auth", "{}")
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit failure is returned without notifying", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		s := postgres.NewStore(mock, channel)

		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs("rentivu:auth").
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectExec("INSERT INTO kv_store").WithArgs("rentivu:auth", "{}").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

		err = s.Atomic(ctx, []string{"rentivu:auth"}, func(tx repository.KV) error {
			return tx.Set(ctx, "rentivu:auth", "{}")
		})
		assert.ErrorContains(t, err, "serialization failure")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		s := postgres.NewStore(mock, channel)

		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs("k").
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectRollback()

		err = s.Atomic(ctx, []string{"k"}, func(repository.KV) error { return boom })
		assert.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_SubscribeWithoutListener(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = postgres.NewStore(mock, channel).Subscribe(context.Background())
	assert.ErrorIs(t, err, postgres.ErrNoListener)
}
