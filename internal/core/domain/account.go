package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus represents the lifecycle state of a wallet account.
// Accounts are never deleted; they only move between soft states.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusFrozen AccountStatus = "FROZEN"
	AccountStatusClosed AccountStatus = "CLOSED"
)

// Account represents a wallet account. Balance is only ever mutated by the
// transfer engine inside a locked database transaction.
type Account struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	PasswordHash string          `json:"-"` // Never expose
	AvatarURL    *string         `json:"avatar_url,omitempty"`
	Balance      decimal.Decimal `json:"balance"`
	Status       AccountStatus   `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsActive returns true if the account may send or receive money.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// CanSpend returns true if the current balance covers the given amount.
func (a *Account) CanSpend(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
