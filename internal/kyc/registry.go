package kyc

import (
	"context"
	"log/slog"

	"github.com/kale-connect/kaleconnect/internal/audit"
	"github.com/kale-connect/kaleconnect/internal/auth"
	"github.com/kale-connect/kaleconnect/internal/contract"
	"github.com/kale-connect/kaleconnect/internal/metrics"
	"github.com/kale-connect/kaleconnect/internal/store"
)

// Registry tracks a per-user verification status. Users start their own
// verification; only the admin changes the status afterwards.
type Registry struct {
	store    store.Store
	authz    auth.Authorizer
	recorder audit.Recorder
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewRegistry creates a KYC registry over st. recorder may be nil.
func NewRegistry(st store.Store, authz auth.Authorizer, recorder audit.Recorder, logger *slog.Logger, m *metrics.Metrics) *Registry {
	return &Registry{store: st, authz: authz, recorder: recorder, logger: logger, metrics: m}
}

func userKey(user auth.Principal) store.Key {
	return store.Keyed(userStatusTag, string(user))
}

// Init registers admin. It fails if an admin is already set.
func (r *Registry) Init(ctx context.Context, admin auth.Principal) (err error) {
	defer func() { r.metrics.Observe(namespace, "init", err) }()

	err = r.store.Update(ctx, namespace, func(tx store.Txn) error {
		return contract.InitAdmin(ctx, tx, r.authz, admin)
	})
	if err != nil {
		return err
	}
	r.logger.Info("kyc.init", slog.String("admin", string(admin)))
	r.record(ctx, admin, "kyc.init", map[string]string{"admin": string(admin)})
	return nil
}

// Start sets the caller's status to pending, resetting any previous status.
func (r *Registry) Start(ctx context.Context, user auth.Principal) (err error) {
	defer func() { r.metrics.Observe(namespace, "start", err) }()

	err = r.store.Update(ctx, namespace, func(tx store.Txn) error {
		if err := r.authz.Require(ctx, user); err != nil {
			return err
		}
		return tx.Set(store.ScopePersistent, userKey(user), StatusPending)
	})
	if err != nil {
		return err
	}
	r.logger.Info("kyc.start", slog.String("user", string(user)))
	r.record(ctx, user, "kyc.start", map[string]string{"user": string(user), "status": string(StatusPending)})
	return nil
}

// SetStatus overwrites user's status. Admin only; user need not have called Start.
func (r *Registry) SetStatus(ctx context.Context, user auth.Principal, status Status) (err error) {
	defer func() { r.metrics.Observe(namespace, "set_status", err) }()

	err = r.store.Update(ctx, namespace, func(tx store.Txn) error {
		if _, err := contract.RequireAdmin(ctx, tx, r.authz); err != nil {
			return err
		}
		if !contract.ValidLabel(string(status)) {
			return contract.ErrInvalidLabel
		}
		return tx.Set(store.ScopePersistent, userKey(user), status)
	})
	if err != nil {
		return err
	}
	r.logger.Info("kyc.set_status", slog.String("user", string(user)), slog.String("status", string(status)))
	r.record(ctx, user, "kyc.status", map[string]string{"user": string(user), "status": string(status)})
	return nil
}

// GetStatus returns user's status. found is false if the user never started KYC.
func (r *Registry) GetStatus(ctx context.Context, user auth.Principal) (status Status, found bool, err error) {
	err = r.store.View(ctx, namespace, func(tx store.Txn) error {
		found, err = tx.Get(store.ScopePersistent, userKey(user), &status)
		return err
	})
	if err != nil {
		return "", false, err
	}
	return status, found, nil
}

func (r *Registry) record(ctx context.Context, p auth.Principal, action string, payload any) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Record(ctx, p, action, payload); err != nil {
		r.logger.Warn("kyc audit append failed", slog.String("action", action), slog.Any("error", err))
	}
}
