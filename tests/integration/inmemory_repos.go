package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ewallet-backend/internal/core/domain"
	"ewallet-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// memDB is an in-memory stand-in for PostgreSQL. A single mutex plays the
// role of row locks: Begin takes it and Commit/Rollback release it, so every
// write transaction is fully serialized, which is strictly stronger than the
// per-row locking the real repositories rely on. That keeps the balance
// conservation and idempotency assertions in the concurrency tests exact.
type memDB struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account
	ledger   []*domain.Transaction
	idemp    map[string]*domain.IdempotencyRecord
}

func newMemDB() *memDB {
	return &memDB{
		accounts: make(map[uuid.UUID]*domain.Account),
		idemp:    make(map[string]*domain.IdempotencyRecord),
	}
}

// memTx implements pgx.Tx over staged writes. Changes become visible only at
// Commit; Rollback discards them.
type memTx struct {
	pgx.Tx
	db       *memDB
	done     bool
	balances map[uuid.UUID]decimal.Decimal
	ledger   []*domain.Transaction
	idemp    map[string]*domain.IdempotencyRecord
}

func (t *memTx) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	// SET LOCAL lock_timeout and friends are no-ops here.
	return pgconn.CommandTag{}, nil
}

func (t *memTx) Commit(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	for id, balance := range t.balances {
		t.db.accounts[id].Balance = balance
	}
	t.db.ledger = append(t.db.ledger, t.ledger...)
	for key, rec := range t.idemp {
		t.db.idemp[key] = rec
	}
	t.db.mu.Unlock()
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.db.mu.Unlock()
	return nil
}

// memTransactor implements ports.DBTransactor.
type memTransactor struct{ db *memDB }

func (tr *memTransactor) Begin(_ context.Context) (pgx.Tx, error) {
	tr.db.mu.Lock()
	return &memTx{
		db:       tr.db,
		balances: make(map[uuid.UUID]decimal.Decimal),
		idemp:    make(map[string]*domain.IdempotencyRecord),
	}, nil
}

// memAccountRepo implements ports.AccountRepository.
type memAccountRepo struct{ db *memDB }

func (r *memAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *account
	r.db.accounts[account.ID] = &cp
	return nil
}

func (r *memAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if a, ok := r.db.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *memAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.accounts {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) GetByPhone(_ context.Context, phone string) (*domain.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.accounts {
		if a.Phone == phone {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) LockForUpdate(_ context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	mtx, ok := tx.(*memTx)
	if !ok {
		return nil, fmt.Errorf("unexpected tx type %T", tx)
	}
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.Compare(sorted[i].String(), sorted[j].String()) < 0
	})

	result := make(map[uuid.UUID]*domain.Account, len(sorted))
	for _, id := range sorted {
		a, found := mtx.db.accounts[id]
		if !found {
			continue
		}
		cp := *a
		if staged, hasStaged := mtx.balances[id]; hasStaged {
			cp.Balance = staged
		}
		result[id] = &cp
	}
	return result, nil
}

func (r *memAccountRepo) UpdateBalance(_ context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error {
	mtx, ok := tx.(*memTx)
	if !ok {
		return fmt.Errorf("unexpected tx type %T", tx)
	}
	if _, found := mtx.db.accounts[id]; !found {
		return fmt.Errorf("account %s not found", id)
	}
	mtx.balances[id] = balance
	return nil
}

func (r *memAccountRepo) UpdateProfile(_ context.Context, account *domain.Account) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, found := r.db.accounts[account.ID]; !found {
		return fmt.Errorf("account %s not found", account.ID)
	}
	cp := *account
	r.db.accounts[account.ID] = &cp
	return nil
}

// memTransactionRepo implements ports.TransactionRepository.
type memTransactionRepo struct{ db *memDB }

func (r *memTransactionRepo) Create(_ context.Context, tx pgx.Tx, transaction *domain.Transaction) error {
	if err := transaction.Validate(); err != nil {
		return err
	}
	mtx, ok := tx.(*memTx)
	if !ok {
		return fmt.Errorf("unexpected tx type %T", tx)
	}
	cp := *transaction
	mtx.ledger = append(mtx.ledger, &cp)
	return nil
}

func (r *memTransactionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.ledger {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memTransactionRepo) ListByAccount(_ context.Context, params ports.TransactionListParams) ([]ports.TransactionListItem, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var matched []*domain.Transaction
	for _, t := range r.db.ledger {
		if !t.Touches(params.AccountID) {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		if params.From != nil && t.CreatedAt.Unix() < *params.From {
			continue
		}
		if params.To != nil && t.CreatedAt.Unix() > *params.To {
			continue
		}
		matched = append(matched, t)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	offset := (params.Page - 1) * params.PageSize
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	items := make([]ports.TransactionListItem, 0, end-offset)
	for _, t := range matched[offset:end] {
		item := ports.TransactionListItem{Transaction: *t}
		if t.SenderID != nil {
			if a, found := r.db.accounts[*t.SenderID]; found {
				item.SenderName = &a.Name
				item.SenderPhone = &a.Phone
			}
		}
		if t.ReceiverID != nil {
			if a, found := r.db.accounts[*t.ReceiverID]; found {
				item.ReceiverName = &a.Name
				item.ReceiverPhone = &a.Phone
			}
		}
		items = append(items, item)
	}
	return items, total, nil
}

func (r *memTransactionRepo) GetStats(_ context.Context, accountID uuid.UUID, periodStart *int64) (*ports.TransactionStats, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stats := &ports.TransactionStats{
		TotalIn:  decimal.Zero,
		TotalOut: decimal.Zero,
	}
	for _, t := range r.db.ledger {
		if !t.Touches(accountID) {
			continue
		}
		if periodStart != nil && t.CreatedAt.Unix() < *periodStart {
			continue
		}
		stats.TotalTransactions++
		switch t.Status {
		case domain.TransactionStatusCompleted:
			stats.Completed++
			if t.ReceiverID != nil && *t.ReceiverID == accountID {
				stats.TotalIn = stats.TotalIn.Add(t.Amount)
			}
			if t.SenderID != nil && *t.SenderID == accountID {
				stats.TotalOut = stats.TotalOut.Add(t.Amount)
			}
		case domain.TransactionStatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

// memIdempotencyRepo implements ports.IdempotencyRepository.
type memIdempotencyRepo struct{ db *memDB }

func (r *memIdempotencyRepo) Create(_ context.Context, tx pgx.Tx, record *domain.IdempotencyRecord) error {
	mtx, ok := tx.(*memTx)
	if !ok {
		return fmt.Errorf("unexpected tx type %T", tx)
	}
	if _, exists := mtx.db.idemp[record.Key]; exists {
		return fmt.Errorf("insert idempotency record: %w", &pgconn.PgError{
			Code:           "23505",
			ConstraintName: "idempotency_keys_pkey",
		})
	}
	if _, exists := mtx.idemp[record.Key]; exists {
		return fmt.Errorf("insert idempotency record: %w", &pgconn.PgError{
			Code:           "23505",
			ConstraintName: "idempotency_keys_pkey",
		})
	}
	cp := *record
	mtx.idemp[record.Key] = &cp
	return nil
}

func (r *memIdempotencyRepo) Get(_ context.Context, key string) (*domain.IdempotencyRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if rec, found := r.db.idemp[key]; found {
		cp := *rec
		return &cp, nil
	}
	return nil, nil
}
