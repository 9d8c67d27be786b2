package store

import (
	"context"
	"errors"
)

// Scope separates contract-wide slots from per-entity records.
type Scope string

const (
	// ScopeInstance holds contract-wide values such as the admin and counters.
	ScopeInstance Scope = "instance"
	// ScopePersistent holds per-entity records.
	ScopePersistent Scope = "persistent"
)

// ErrReadOnly is returned when a View callback attempts a write.
var ErrReadOnly = errors.New("store: write in read-only transaction")

// Txn is the view of a namespace available inside a single unit of work.
type Txn interface {
	Has(scope Scope, key Key) (bool, error)
	// Get decodes the stored value into dst. found is false when the key is absent.
	Get(scope Scope, key Key, dst any) (found bool, err error)
	Set(scope Scope, key Key, value any) error
}

// Store is the durable key/value collaborator shared by the registries.
//
// Update runs fn as one serialized, atomic unit for the namespace: no other
// Update on the same namespace interleaves with it, and its writes are
// persisted only when fn returns nil.
type Store interface {
	Update(ctx context.Context, namespace string, fn func(Txn) error) error
	View(ctx context.Context, namespace string, fn func(Txn) error) error
}
