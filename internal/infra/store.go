package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kale-connect/kaleconnect/internal/store"
)

// NewContractStore returns a Postgres-backed store with its schema applied,
// or an in-memory store when no pool is configured.
func NewContractStore(ctx context.Context, db *pgxpool.Pool) (store.Store, error) {
	if db == nil {
		return store.NewMemory(), nil
	}
	st := store.NewPostgres(db)
	if err := st.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("prepare contract store: %w", err)
	}
	return st, nil
}
