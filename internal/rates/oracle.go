package rates

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/kale-connect/kaleconnect/internal/audit"
	"github.com/kale-connect/kaleconnect/internal/auth"
	"github.com/kale-connect/kaleconnect/internal/contract"
	"github.com/kale-connect/kaleconnect/internal/metrics"
	"github.com/kale-connect/kaleconnect/internal/store"
)

// Oracle stores exchange rates and fees keyed by pair symbol. Only the admin writes.
type Oracle struct {
	store    store.Store
	authz    auth.Authorizer
	recorder audit.Recorder
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewOracle creates a rates oracle over st. recorder may be nil.
func NewOracle(st store.Store, authz auth.Authorizer, recorder audit.Recorder, logger *slog.Logger, m *metrics.Metrics) *Oracle {
	return &Oracle{store: st, authz: authz, recorder: recorder, logger: logger, metrics: m}
}

func rateKey(pair string) store.Key {
	return store.Keyed(rateTag, pair)
}

// Init registers admin. It fails if an admin is already set.
func (o *Oracle) Init(ctx context.Context, admin auth.Principal) (err error) {
	defer func() { o.metrics.Observe(namespace, "init", err) }()

	err = o.store.Update(ctx, namespace, func(tx store.Txn) error {
		return contract.InitAdmin(ctx, tx, o.authz, admin)
	})
	if err != nil {
		return err
	}
	o.logger.Info("rates.init", slog.String("admin", string(admin)))
	o.record(ctx, admin, "rates.init", map[string]string{"admin": string(admin)})
	return nil
}

// SetRate replaces the whole rate record for pair. fee_bp is not bounded.
func (o *Oracle) SetRate(ctx context.Context, pair string, price *big.Int, feeBP uint32) (err error) {
	defer func() { o.metrics.Observe(namespace, "set_rate", err) }()

	var admin auth.Principal
	err = o.store.Update(ctx, namespace, func(tx store.Txn) error {
		var err error
		if admin, err = contract.RequireAdmin(ctx, tx, o.authz); err != nil {
			return err
		}
		if !contract.IsPositiveInt128(price) {
			return contract.ErrInvalidPrice
		}
		if !contract.ValidLabel(pair) {
			return contract.ErrInvalidLabel
		}
		return tx.Set(store.ScopePersistent, rateKey(pair), Rate{Price: new(big.Int).Set(price), FeeBP: feeBP})
	})
	if err != nil {
		return err
	}
	o.logger.Info("rates.set_rate",
		slog.String("pair", pair),
		slog.String("price", price.String()),
		slog.Any("fee_bp", feeBP),
	)
	o.record(ctx, admin, "rates.set", map[string]any{"pair": pair, "price": price.String(), "fee_bp": feeBP})
	return nil
}

// GetRate returns the rate for pair. found is false if none was ever set.
func (o *Oracle) GetRate(ctx context.Context, pair string) (rate Rate, found bool, err error) {
	err = o.store.View(ctx, namespace, func(tx store.Txn) error {
		found, err = tx.Get(store.ScopePersistent, rateKey(pair), &rate)
		return err
	})
	if err != nil {
		return Rate{}, false, err
	}
	return rate, found, nil
}

func (o *Oracle) record(ctx context.Context, p auth.Principal, action string, payload any) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(ctx, p, action, payload); err != nil {
		o.logger.Warn("rates audit append failed", slog.String("action", action), slog.Any("error", err))
	}
}

// Quote converts amount of the pair's source currency into the destination
// currency and deducts the fee. Net never goes below zero.
func (o *Oracle) Quote(ctx context.Context, pair string, amount *big.Int) (Quote, error) {
	if !contract.IsPositiveInt128(amount) {
		return Quote{}, contract.ErrInvalidAmount
	}
	rate, found, err := o.GetRate(ctx, pair)
	if err != nil {
		return Quote{}, err
	}
	if !found {
		return Quote{}, contract.ErrNotFound
	}

	gross := new(big.Int).Mul(amount, rate.Price)
	gross.Quo(gross, PriceScale)

	fee := new(big.Int).Mul(gross, new(big.Int).SetUint64(uint64(rate.FeeBP)))
	fee.Quo(fee, big.NewInt(BasisPointsDenominator))

	net := new(big.Int).Sub(gross, fee)
	if net.Sign() < 0 {
		net.SetInt64(0)
	}

	return Quote{
		Pair:   pair,
		Amount: new(big.Int).Set(amount),
		Price:  rate.Price,
		FeeBP:  rate.FeeBP,
		Gross:  gross,
		Fee:    fee,
		Net:    net,
	}, nil
}
