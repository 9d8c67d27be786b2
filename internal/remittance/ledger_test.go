package remittance

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kale-connect/kaleconnect/internal/audit"
	"github.com/kale-connect/kaleconnect/internal/auth"
	"github.com/kale-connect/kaleconnect/internal/contract"
	"github.com/kale-connect/kaleconnect/internal/logging"
	"github.com/kale-connect/kaleconnect/internal/notification"
	"github.com/kale-connect/kaleconnect/internal/store"
)

const (
	admin auth.Principal = "GADMIN"
	alice auth.Principal = "GALICE"
	bob   auth.Principal = "GBOB"
)

type testNotifier struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func as(p auth.Principal) context.Context {
	return auth.WithPrincipal(context.Background(), p)
}

func newLedger(t *testing.T, authz auth.Authorizer, notifier notification.Notifier) *Ledger {
	t.Helper()
	l := NewLedger(store.NewMemory(), authz, notifier, nil, logging.Discard(), nil)
	require.NoError(t, l.Init(as(admin), admin))
	return l
}

func TestRemittanceFlow(t *testing.T) {
	notifier := &testNotifier{}
	l := newLedger(t, auth.ContextAuthorizer{}, notifier)

	id, err := l.Create(as(alice), alice, bob, big.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, "1", id.String())

	rec, found, err := l.Get(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, StatusPending, rec.Status)

	require.NoError(t, l.SetStatus(as(admin), id, StatusSettled))

	rec, _, err = l.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, rec.Status)
	assert.Equal(t, "10", rec.Amount.String())
	assert.Equal(t, alice, rec.From)
	assert.Equal(t, bob, rec.To)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, notification.KindRemittanceCreated, notifier.sent[0].Kind)
	assert.Equal(t, string(bob), notifier.sent[0].Destination)
	assert.Equal(t, notification.KindRemittanceStatus, notifier.sent[1].Kind)
	assert.Equal(t, string(alice), notifier.sent[1].Destination)
}

func TestCreateGuards(t *testing.T) {
	l := newLedger(t, auth.ContextAuthorizer{}, nil)

	_, err := l.Create(as(bob), alice, bob, big.NewInt(10))
	require.ErrorIs(t, err, contract.ErrUnauthorized)

	for _, amount := range []*big.Int{big.NewInt(0), big.NewInt(-1), nil} {
		_, err := l.Create(as(alice), alice, bob, amount)
		require.ErrorIs(t, err, contract.ErrInvalidAmount)
	}

	// Failed calls must not consume ids.
	id, err := l.Create(as(alice), alice, bob, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, "1", id.String())
}

func TestIDsAreSequential(t *testing.T) {
	l := newLedger(t, auth.AllowAll{}, nil)
	for i := int64(1); i <= 5; i++ {
		id, err := l.Create(context.Background(), auth.Principal(fmt.Sprintf("G%d", i)), bob, big.NewInt(i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(i), id.String())
	}
}

func TestConcurrentCreatesYieldDistinctIDs(t *testing.T) {
	l := newLedger(t, auth.AllowAll{}, nil)

	const workers = 64
	ids := make([]int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := l.Create(context.Background(), alice, bob, big.NewInt(100))
			if err != nil {
				t.Errorf("create %d failed: %v", i, err)
				return
			}
			ids[i] = id.Int64()
		}(i)
	}
	wg.Wait()

	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id)
	}
}

func TestSetStatusGuards(t *testing.T) {
	l := NewLedger(store.NewMemory(), auth.ContextAuthorizer{}, nil, nil, logging.Discard(), nil)
	require.ErrorIs(t, l.SetStatus(as(admin), big.NewInt(1), StatusSettled), contract.ErrNotInitialized)

	require.NoError(t, l.Init(as(admin), admin))
	require.ErrorIs(t, l.Init(as(admin), admin), contract.ErrAlreadyInitialized)

	require.ErrorIs(t, l.SetStatus(as(admin), big.NewInt(42), StatusSettled), contract.ErrNotFound)

	id, err := l.Create(as(alice), alice, bob, big.NewInt(250))
	require.NoError(t, err)

	require.ErrorIs(t, l.SetStatus(as(alice), id, StatusSettled), contract.ErrUnauthorized)

	rec, _, err := l.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, rec.Status)
}

func TestSetStatusAllowsArbitraryRelabeling(t *testing.T) {
	l := newLedger(t, auth.ContextAuthorizer{}, nil)
	id, err := l.Create(as(alice), alice, bob, big.NewInt(7))
	require.NoError(t, err)

	for _, s := range []Status{StatusFailed, "under_review", StatusPending, StatusSettled} {
		require.NoError(t, l.SetStatus(as(admin), id, s))
		rec, _, err := l.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, s, rec.Status)
		assert.Equal(t, Remittance{From: alice, To: bob, Amount: big.NewInt(7), Status: s}, rec)
	}
}

func TestGetAbsent(t *testing.T) {
	l := newLedger(t, auth.AllowAll{}, nil)
	_, found, err := l.Get(context.Background(), big.NewInt(1))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLedgerAppendsAuditTrail(t *testing.T) {
	st := store.NewMemory()
	trail := audit.NewTrail(st, "test-secret")
	l := NewLedger(st, auth.ContextAuthorizer{}, nil, trail, logging.Discard(), nil)
	require.NoError(t, l.Init(as(admin), admin))

	id, err := l.Create(as(alice), alice, bob, big.NewInt(10))
	require.NoError(t, err)
	_, err = l.Create(as(bob), alice, bob, big.NewInt(10))
	require.ErrorIs(t, err, contract.ErrUnauthorized)
	require.NoError(t, l.SetStatus(as(admin), id, StatusSettled))

	events, err := trail.Events(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, events, 2, "rejected calls leave no trail")
	assert.Equal(t, "remit.create", events[0].Action)
	assert.Equal(t, "remit.progress", events[1].Action)
	assert.Equal(t, events[0].ChainHash, events[1].PrevHash)
	require.NoError(t, trail.Verify(events))

	events, err = trail.Events(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "remit.init", events[0].Action)
}
