package contract

import (
	"context"
	"fmt"

	"github.com/kale-connect/kaleconnect/internal/auth"
	"github.com/kale-connect/kaleconnect/internal/store"
)

// AdminKey is the instance slot holding a registry's admin.
var AdminKey = store.Tagged("Admin")

// InitAdmin stores admin in an empty admin slot after admin authorizes the call.
func InitAdmin(ctx context.Context, tx store.Txn, authz auth.Authorizer, admin auth.Principal) error {
	exists, err := tx.Has(store.ScopeInstance, AdminKey)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyInitialized
	}
	if err := authz.Require(ctx, admin); err != nil {
		return err
	}
	return tx.Set(store.ScopeInstance, AdminKey, admin)
}

// Admin loads the registered admin.
func Admin(tx store.Txn) (auth.Principal, error) {
	var admin auth.Principal
	found, err := tx.Get(store.ScopeInstance, AdminKey, &admin)
	if err != nil {
		return "", fmt.Errorf("load admin: %w", err)
	}
	if !found {
		return "", ErrNotInitialized
	}
	return admin, nil
}

// RequireAdmin fails unless the registry is initialized and its admin authorized the call.
func RequireAdmin(ctx context.Context, tx store.Txn, authz auth.Authorizer) (auth.Principal, error) {
	admin, err := Admin(tx)
	if err != nil {
		return "", err
	}
	if err := authz.Require(ctx, admin); err != nil {
		return "", err
	}
	return admin, nil
}
