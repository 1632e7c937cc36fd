package ports

import (
	"context"
	"time"

	"ewallet-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
}

// SignatureService handles HMAC-SHA256 signing and verification of
// processor-delivered settlement payloads.
type SignatureService interface {
	Sign(secret string, payload string) string
	Verify(secret string, payload string, signature string) bool
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// TransferService is the sole authority for changing any balance.
type TransferService interface {
	Transfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error)
}

// TransferRequest holds validated input for the transfer engine.
// A nil SenderID means an external source (settlement deposit); a nil
// ReceiverID means an external sink (withdrawal, bill, merchant, topup).
type TransferRequest struct {
	SenderID       *uuid.UUID
	ReceiverID     *uuid.UUID
	Amount         decimal.Decimal
	Type           domain.TransactionType
	IdempotencyKey string // Fully namespaced key, see domain.BuildTransferKey
	Description    *string
}

// DirectoryService resolves external identifiers (email, phone) to accounts.
type DirectoryService interface {
	Resolve(ctx context.Context, identifier string) (uuid.UUID, error)
}

// SettlementDirection distinguishes money entering or leaving the system.
type SettlementDirection string

const (
	SettlementDirectionCredit SettlementDirection = "credit" // processor -> wallet
	SettlementDirectionDebit  SettlementDirection = "debit"  // wallet -> bank rail
)

// SettlementEvent is a confirmed external money movement delivered by the
// payment processor. Redeliveries carry the same ExternalReferenceID.
type SettlementEvent struct {
	AccountIdentifier   string
	Amount              decimal.Decimal
	ExternalReferenceID string
	Direction           SettlementDirection
}

// SettlementService translates confirmed external events into one-sided
// transfer engine calls.
type SettlementService interface {
	HandleSettlement(ctx context.Context, event SettlementEvent) (*domain.Transaction, error)
}

// AuthService defines registration and login.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Name      string
	Email     string
	Phone     string
	Password  string
	AvatarURL *string
}

// AccountService defines profile reads and updates.
type AccountService interface {
	GetProfile(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	UpdateProfile(ctx context.Context, accountID uuid.UUID, req UpdateProfileRequest) (*domain.Account, error)
}

// UpdateProfileRequest carries the mutable profile fields; nil = unchanged.
type UpdateProfileRequest struct {
	Name      *string
	Phone     *string
	AvatarURL *string
}

// ReportingService defines balance and history reads. Balance reads here are
// display-only; the transfer engine always re-validates under its own lock.
type ReportingService interface {
	GetBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, params TransactionListParams) ([]TransactionListItem, int64, error)
	GetStats(ctx context.Context, accountID uuid.UUID, period string) (*TransactionStats, error)
}
