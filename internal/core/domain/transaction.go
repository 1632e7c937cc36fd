package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeDeposit         TransactionType = "deposit"
	TransactionTypePeerTransfer    TransactionType = "peer_transfer"
	TransactionTypeBankWithdrawal  TransactionType = "bank_withdrawal"
	TransactionTypeTuitionPayment  TransactionType = "tuition_payment"
	TransactionTypeMobileTopup     TransactionType = "mobile_topup"
	TransactionTypeBillPayment     TransactionType = "bill_payment"
	TransactionTypeMerchantPayment TransactionType = "merchant_payment"
)

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is an immutable ledger entry. A nil SenderID means the money
// came from outside the system (processor settlement); a nil ReceiverID means
// it left for an external rail (bank, biller, merchant). Exactly one of the
// two may be nil, never both.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	SenderID    *uuid.UUID        `json:"sender_id,omitempty"`
	ReceiverID  *uuid.UUID        `json:"receiver_id,omitempty"`
	Amount      decimal.Decimal   `json:"amount"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	Description *string           `json:"description,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

var (
	// ErrNonPositiveAmount is returned for a zero or negative ledger amount.
	ErrNonPositiveAmount = errors.New("transaction amount must be positive")
	// ErrNoCounterparty is returned when both legs of a transaction are external.
	ErrNoCounterparty = errors.New("transaction must reference at least one account")
	// ErrSameCounterparty is returned when sender and receiver are the same account.
	ErrSameCounterparty = errors.New("sender and receiver must differ")
)

// Validate enforces the ledger-entry invariants before a record is appended.
func (t *Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if t.SenderID == nil && t.ReceiverID == nil {
		return ErrNoCounterparty
	}
	if t.SenderID != nil && t.ReceiverID != nil && *t.SenderID == *t.ReceiverID {
		return ErrSameCounterparty
	}
	return nil
}

// IsExternal returns true if one leg of the transaction lies outside the system.
func (t *Transaction) IsExternal() bool {
	return t.SenderID == nil || t.ReceiverID == nil
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed
}

// Touches reports whether the given account appears on either side.
func (t *Transaction) Touches(accountID uuid.UUID) bool {
	return (t.SenderID != nil && *t.SenderID == accountID) ||
		(t.ReceiverID != nil && *t.ReceiverID == accountID)
}
