package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type slot struct {
	scope Scope
	key   string
}

type namespace struct {
	mu   sync.RWMutex
	data map[slot][]byte
}

type memoryStore struct {
	mu         sync.Mutex
	namespaces map[string]*namespace
}

// NewMemory creates a concurrency-safe in-memory store. Each namespace is
// guarded by its own lock, so Update calls on one namespace are serialized.
func NewMemory() Store {
	return &memoryStore{namespaces: make(map[string]*namespace)}
}

func (s *memoryStore) namespace(name string) *namespace {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.namespaces[name]
	if !ok {
		ns = &namespace{data: make(map[slot][]byte)}
		s.namespaces[name] = ns
	}
	return ns
}

func (s *memoryStore) Update(ctx context.Context, name string, fn func(Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ns := s.namespace(name)
	ns.mu.Lock()
	defer ns.mu.Unlock()

	tx := &memoryTxn{base: ns.data, staged: make(map[slot][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	for k, v := range tx.staged {
		ns.data[k] = v
	}
	return nil
}

func (s *memoryStore) View(ctx context.Context, name string, fn func(Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ns := s.namespace(name)
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return fn(&memoryTxn{base: ns.data, readOnly: true})
}

type memoryTxn struct {
	base     map[slot][]byte
	staged   map[slot][]byte
	readOnly bool
}

func (t *memoryTxn) lookup(scope Scope, key Key) ([]byte, bool) {
	k := slot{scope: scope, key: key.String()}
	if v, ok := t.staged[k]; ok {
		return v, true
	}
	v, ok := t.base[k]
	return v, ok
}

func (t *memoryTxn) Has(scope Scope, key Key) (bool, error) {
	_, ok := t.lookup(scope, key)
	return ok, nil
}

func (t *memoryTxn) Get(scope Scope, key Key, dst any) (bool, error) {
	raw, ok := t.lookup(scope, key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (t *memoryTxn) Set(scope Scope, key Key, value any) error {
	if t.readOnly {
		return ErrReadOnly
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	t.staged[slot{scope: scope, key: key.String()}] = raw
	return nil
}
