package remittance

import (
	"math/big"

	"github.com/kale-connect/kaleconnect/internal/auth"
)

// Status is a free-form remittance label.
type Status string

const (
	// StatusPending is the status of every newly created remittance.
	StatusPending Status = "pending"
	// StatusSettled marks a delivered remittance.
	StatusSettled Status = "settled"
	// StatusFailed marks a remittance that will not be delivered.
	StatusFailed Status = "failed"
)

const (
	namespace  = "remittance"
	counterTag = "Counter"
	remitTag   = "Remit"
)

// Remittance is a transfer record. Only Status changes after creation.
type Remittance struct {
	From   auth.Principal `json:"from"`
	To     auth.Principal `json:"to"`
	Amount *big.Int       `json:"amount"`
	Status Status         `json:"status"`
}
