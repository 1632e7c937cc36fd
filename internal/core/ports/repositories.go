package ports

import (
	"context"

	"ewallet-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Account, error)
	// LockForUpdate fetches the given accounts with row locks held, acquiring
	// them in ascending id order regardless of the order of ids. Accounts that
	// do not exist are simply absent from the result map.
	LockForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error
	UpdateProfile(ctx context.Context, account *domain.Account) error
}

// TransactionRepository defines persistence operations for the ledger.
type TransactionRepository interface {
	// Create appends a ledger entry within a database transaction. It enforces
	// the record invariants (positive amount, at least one counterparty).
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, params TransactionListParams) ([]TransactionListItem, int64, error)
	GetStats(ctx context.Context, accountID uuid.UUID, periodStart *int64) (*TransactionStats, error)
}

// TransactionListParams holds filter + pagination for listing an account's history.
type TransactionListParams struct {
	AccountID uuid.UUID
	Status    *domain.TransactionStatus
	Type      *domain.TransactionType
	From      *int64 // Unix timestamp
	To        *int64 // Unix timestamp
	Page      int
	PageSize  int
}

// TransactionListItem is a ledger entry joined with counterparty identity
// attributes for display.
type TransactionListItem struct {
	domain.Transaction
	SenderName    *string
	SenderPhone   *string
	ReceiverName  *string
	ReceiverPhone *string
}

// TransactionStats holds aggregated ledger figures for one account.
type TransactionStats struct {
	TotalTransactions int64
	Completed         int64
	Failed            int64
	TotalIn           decimal.Decimal // Sum of completed credits
	TotalOut          decimal.Decimal // Sum of completed debits
}

// IdempotencyRepository defines the durable record of applied operation keys.
type IdempotencyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, record *domain.IdempotencyRecord) error
	Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
