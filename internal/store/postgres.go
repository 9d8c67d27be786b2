package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the table backing PostgresStore.
const Schema = `
CREATE TABLE IF NOT EXISTS contract_state (
    namespace  TEXT        NOT NULL,
    scope      TEXT        NOT NULL,
    key        TEXT        NOT NULL,
    value      JSONB       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (namespace, scope, key)
)`

// PostgresStore persists contract state in PostgreSQL. Writers on the same
// namespace are serialized with a transaction-scoped advisory lock.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgres constructs a Postgres-backed store.
func NewPostgres(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the state table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create contract_state: %w", err)
	}
	return nil
}

// Update runs fn inside a single Postgres transaction holding the namespace lock.
func (s *PostgresStore) Update(ctx context.Context, namespace string, fn func(Txn) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, namespace); err != nil {
		return fmt.Errorf("lock namespace %s: %w", namespace, err)
	}

	if err := fn(&pgTxn{ctx: ctx, tx: tx, namespace: namespace}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// View runs fn inside a read-only transaction.
func (s *PostgresStore) View(ctx context.Context, namespace string, fn func(Txn) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	return fn(&pgTxn{ctx: ctx, tx: tx, namespace: namespace, readOnly: true})
}

type pgTxn struct {
	ctx       context.Context
	tx        pgx.Tx
	namespace string
	readOnly  bool
}

func (t *pgTxn) Has(scope Scope, key Key) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM contract_state WHERE namespace = $1 AND scope = $2 AND key = $3)`
	var exists bool
	if err := t.tx.QueryRow(t.ctx, query, t.namespace, string(scope), key.String()).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (t *pgTxn) Get(scope Scope, key Key, dst any) (bool, error) {
	const query = `SELECT value FROM contract_state WHERE namespace = $1 AND scope = $2 AND key = $3`
	var raw []byte
	if err := t.tx.QueryRow(t.ctx, query, t.namespace, string(scope), key.String()).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (t *pgTxn) Set(scope Scope, key Key, value any) error {
	if t.readOnly {
		return ErrReadOnly
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = t.tx.Exec(t.ctx, `INSERT INTO contract_state (namespace, scope, key, value, updated_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (namespace, scope, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		t.namespace, string(scope), key.String(), raw)
	return err
}
