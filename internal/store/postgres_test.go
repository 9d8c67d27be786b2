package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresStore_RoundTripAndRollback(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	s := NewPostgres(pool)
	require.NoError(t, s.EnsureSchema(ctx))

	ns := "test-" + uuid.NewString()
	key := Keyed("Rec", "1")

	require.NoError(t, s.Update(ctx, ns, func(tx Txn) error {
		return tx.Set(ScopePersistent, key, record{Name: "first", Count: 1})
	}))

	err := s.Update(ctx, ns, func(tx Txn) error {
		if err := tx.Set(ScopePersistent, key, record{Name: "second", Count: 2}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var got record
	require.NoError(t, s.View(ctx, ns, func(tx Txn) error {
		found, err := tx.Get(ScopePersistent, key, &got)
		assert.True(t, found)
		return err
	}))
	assert.Equal(t, record{Name: "first", Count: 1}, got)

	require.ErrorIs(t, s.View(ctx, ns, func(tx Txn) error {
		return tx.Set(ScopePersistent, key, got)
	}), ErrReadOnly)
}
