package contract

import (
	"errors"

	"github.com/kale-connect/kaleconnect/internal/auth"
)

var (
	// ErrAlreadyInitialized is returned when init runs on a registry that has an admin.
	ErrAlreadyInitialized = errors.New("already initialized")
	// ErrNotInitialized is returned by admin-gated operations before init.
	ErrNotInitialized = errors.New("not initialized")
	// ErrUnauthorized is returned when the required principal did not authorize the call.
	ErrUnauthorized = auth.ErrUnauthorized
	// ErrInvalidAmount is returned for a non-positive or out of range amount.
	ErrInvalidAmount = errors.New("amount must be > 0")
	// ErrInvalidPrice is returned for a non-positive or out of range price.
	ErrInvalidPrice = errors.New("price must be > 0")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidLabel is returned for an empty or oversized status label or pair symbol.
	ErrInvalidLabel = errors.New("invalid label")
	// ErrCounterOverflow is returned when the id space is exhausted.
	ErrCounterOverflow = errors.New("counter overflow")
)
