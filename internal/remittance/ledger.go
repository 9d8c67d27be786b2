package remittance

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/kale-connect/kaleconnect/internal/audit"
	"github.com/kale-connect/kaleconnect/internal/auth"
	"github.com/kale-connect/kaleconnect/internal/contract"
	"github.com/kale-connect/kaleconnect/internal/metrics"
	"github.com/kale-connect/kaleconnect/internal/notification"
	"github.com/kale-connect/kaleconnect/internal/store"
)

var counterKey = store.Tagged(counterTag)

// Ledger is an append-only set of remittances numbered 1, 2, 3, ...
type Ledger struct {
	store    store.Store
	authz    auth.Authorizer
	notifier notification.Notifier
	recorder audit.Recorder
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewLedger creates a remittance ledger over st. notifier and recorder may be nil.
func NewLedger(st store.Store, authz auth.Authorizer, notifier notification.Notifier, recorder audit.Recorder, logger *slog.Logger, m *metrics.Metrics) *Ledger {
	return &Ledger{store: st, authz: authz, notifier: notifier, recorder: recorder, logger: logger, metrics: m}
}

func remitKey(id *big.Int) store.Key {
	return store.Keyed(remitTag, id.String())
}

// Init registers admin and zeroes the id counter.
func (l *Ledger) Init(ctx context.Context, admin auth.Principal) (err error) {
	defer func() { l.metrics.Observe(namespace, "init", err) }()

	err = l.store.Update(ctx, namespace, func(tx store.Txn) error {
		if err := contract.InitAdmin(ctx, tx, l.authz, admin); err != nil {
			return err
		}
		return tx.Set(store.ScopeInstance, counterKey, new(big.Int))
	})
	if err != nil {
		return err
	}
	l.logger.Info("remittance.init", slog.String("admin", string(admin)))
	l.record(ctx, admin, "remit.init", map[string]string{"admin": string(admin)})
	return nil
}

// Create records a pending remittance from the authorizing sender and returns its id.
func (l *Ledger) Create(ctx context.Context, from, to auth.Principal, amount *big.Int) (id *big.Int, err error) {
	defer func() { l.metrics.Observe(namespace, "create", err) }()

	err = l.store.Update(ctx, namespace, func(tx store.Txn) error {
		if err := l.authz.Require(ctx, from); err != nil {
			return err
		}
		if !contract.IsPositiveInt128(amount) {
			return contract.ErrInvalidAmount
		}

		counter := new(big.Int)
		if _, err := tx.Get(store.ScopeInstance, counterKey, counter); err != nil {
			return fmt.Errorf("load counter: %w", err)
		}
		next := new(big.Int).Add(counter, big.NewInt(1))
		if !contract.IsUint128(next) {
			return contract.ErrCounterOverflow
		}

		if err := tx.Set(store.ScopeInstance, counterKey, next); err != nil {
			return err
		}
		rec := Remittance{From: from, To: to, Amount: new(big.Int).Set(amount), Status: StatusPending}
		if err := tx.Set(store.ScopePersistent, remitKey(next), rec); err != nil {
			return err
		}
		id = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("remittance.create",
		slog.String("id", id.String()),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.String("amount", amount.String()),
	)
	l.record(ctx, from, "remit.create", map[string]string{
		"id":     id.String(),
		"to":     string(to),
		"amount": amount.String(),
	})
	l.notify(ctx, notification.Message{
		Kind:        notification.KindRemittanceCreated,
		Destination: string(to),
		Body:        fmt.Sprintf("Remittance %s of %s from %s is pending", id, amount, from),
	})
	return id, nil
}

// Get returns the remittance with id. found is false if there is none.
func (l *Ledger) Get(ctx context.Context, id *big.Int) (rec Remittance, found bool, err error) {
	if !contract.IsUint128(id) {
		return Remittance{}, false, nil
	}
	err = l.store.View(ctx, namespace, func(tx store.Txn) error {
		found, err = tx.Get(store.ScopePersistent, remitKey(id), &rec)
		return err
	})
	if err != nil {
		return Remittance{}, false, err
	}
	return rec, found, nil
}

// SetStatus relabels an existing remittance. Admin only; other fields are untouched.
func (l *Ledger) SetStatus(ctx context.Context, id *big.Int, status Status) (err error) {
	defer func() { l.metrics.Observe(namespace, "set_status", err) }()

	var rec Remittance
	err = l.store.Update(ctx, namespace, func(tx store.Txn) error {
		if _, err := contract.RequireAdmin(ctx, tx, l.authz); err != nil {
			return err
		}
		if !contract.ValidLabel(string(status)) {
			return contract.ErrInvalidLabel
		}
		if !contract.IsUint128(id) {
			return fmt.Errorf("remit not found: %w", contract.ErrNotFound)
		}
		found, err := tx.Get(store.ScopePersistent, remitKey(id), &rec)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("remit not found: %w", contract.ErrNotFound)
		}
		rec.Status = status
		return tx.Set(store.ScopePersistent, remitKey(id), rec)
	})
	if err != nil {
		return err
	}

	l.logger.Info("remittance.set_status", slog.String("id", id.String()), slog.String("status", string(status)))
	l.record(ctx, rec.From, "remit.progress", map[string]string{"id": id.String(), "status": string(status)})
	l.notify(ctx, notification.Message{
		Kind:        notification.KindRemittanceStatus,
		Destination: string(rec.From),
		Body:        fmt.Sprintf("Remittance %s is now %s", id, status),
	})
	return nil
}

func (l *Ledger) record(ctx context.Context, p auth.Principal, action string, payload any) {
	if l.recorder == nil {
		return
	}
	if err := l.recorder.Record(ctx, p, action, payload); err != nil {
		l.logger.Warn("remittance audit append failed", slog.String("action", action), slog.Any("error", err))
	}
}

func (l *Ledger) notify(ctx context.Context, msg notification.Message) {
	if l.notifier == nil {
		return
	}
	if err := l.notifier.Send(ctx, msg); err != nil {
		l.logger.Warn("remittance notification failed", slog.String("kind", msg.Kind), slog.Any("error", err))
	}
}
