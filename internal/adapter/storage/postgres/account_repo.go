package postgres

import (
	"context"
	"errors"
	"fmt"

	"ewallet-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepo implements ports.AccountRepository.
//
// Balances are stored as NUMERIC(14,2). pgx has no native shopspring codec
// wired here, so reads cast balance to text and writes cast the decimal's
// string form back to numeric. No float ever touches a balance.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

const accountColumns = `id, name, email, phone, password_hash, avatar_url, balance::text, status, created_at, updated_at`

// Create inserts a new account into the database.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (id, name, email, phone, password_hash, avatar_url, balance, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Name, a.Email, a.Phone, a.PasswordHash, a.AvatarURL,
		a.Balance.String(), a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by its UUID (without locking).
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	return r.scanAccount(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches an account by email (non-locking read).
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE email = $1`, accountColumns)
	return r.scanAccount(r.pool.QueryRow(ctx, query, email))
}

// GetByPhone fetches an account by phone number (non-locking read).
func (r *AccountRepo) GetByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE phone = $1`, accountColumns)
	return r.scanAccount(r.pool.QueryRow(ctx, query, phone))
}

// LockForUpdate fetches the given accounts with row locks held.
// ORDER BY id makes PostgreSQL acquire the locks in ascending id order no
// matter how the caller ordered ids, so two concurrent transfers over the
// same pair of accounts can never deadlock. MUST be called within a
// transaction.
func (r *AccountRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`, accountColumns)

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("lock accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[uuid.UUID]*domain.Account, len(ids))
	for rows.Next() {
		a, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan locked account: %w", err)
		}
		accounts[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locked accounts: %w", err)
	}
	return accounts, nil
}

// UpdateBalance sets an account's balance within a transaction. The caller
// must hold the row lock via LockForUpdate.
func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error {
	query := `UPDATE accounts SET balance = $1::numeric, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance.String(), id)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", id)
	}
	return nil
}

// UpdateProfile persists the mutable profile fields (name, phone, avatar).
func (r *AccountRepo) UpdateProfile(ctx context.Context, a *domain.Account) error {
	query := `UPDATE accounts SET name = $1, phone = $2, avatar_url = $3, updated_at = NOW() WHERE id = $4`

	tag, err := r.pool.Exec(ctx, query, a.Name, a.Phone, a.AvatarURL, a.ID)
	if err != nil {
		return fmt.Errorf("update account profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", a.ID)
	}
	return nil
}

// scanAccount is a helper to scan a single row into an Account.
func (r *AccountRepo) scanAccount(row pgx.Row) (*domain.Account, error) {
	a, err := scanAccountRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}

func scanAccountRow(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	var balance string
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash,
		&a.AvatarURL, &balance, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	return a, nil
}
