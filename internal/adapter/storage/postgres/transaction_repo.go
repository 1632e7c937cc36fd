package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ewallet-backend/internal/core/domain"
	"ewallet-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new ledger entry within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	query := `INSERT INTO transactions (id, sender_id, receiver_id, amount, type, status, description, created_at, completed_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.SenderID, t.ReceiverID, t.Amount.String(),
		t.Type, t.Status, t.Description, t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, sender_id, receiver_id, amount::text, type, status, description, created_at, completed_at
		FROM transactions WHERE id = $1`

	t := &domain.Transaction{}
	var amount string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.SenderID, &t.ReceiverID, &amount,
		&t.Type, &t.Status, &t.Description, &t.CreatedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return t, nil
}

// ListByAccount fetches an account's transaction history with filtering and
// pagination, joined with counterparty names for display.
func (r *TransactionRepo) ListByAccount(ctx context.Context, params ports.TransactionListParams) ([]ports.TransactionListItem, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("(t.sender_id = $%d OR t.receiver_id = $%d)", argIdx, argIdx))
	args = append(args, params.AccountID)
	argIdx++

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("t.type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("t.created_at >= to_timestamp($%d)", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("t.created_at <= to_timestamp($%d)", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions t %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	// Fetch page. External legs have a NULL counterparty, hence LEFT JOINs.
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT t.id, t.sender_id, t.receiver_id, t.amount::text, t.type, t.status,
		t.description, t.created_at, t.completed_at,
		s.name, s.phone, rcv.name, rcv.phone
		FROM transactions t
		LEFT JOIN accounts s ON s.id = t.sender_id
		LEFT JOIN accounts rcv ON rcv.id = t.receiver_id
		%s ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var items []ports.TransactionListItem
	for rows.Next() {
		item := ports.TransactionListItem{}
		var amount string
		err := rows.Scan(
			&item.ID, &item.SenderID, &item.ReceiverID, &amount,
			&item.Type, &item.Status, &item.Description, &item.CreatedAt, &item.CompletedAt,
			&item.SenderName, &item.SenderPhone, &item.ReceiverName, &item.ReceiverPhone,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		item.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, 0, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return items, total, nil
}

// GetStats retrieves aggregated ledger statistics for one account.
func (r *TransactionRepo) GetStats(ctx context.Context, accountID uuid.UUID, periodStart *int64) (*ports.TransactionStats, error) {
	var args []any
	args = append(args, accountID)

	condition := "(sender_id = $1 OR receiver_id = $1)"
	if periodStart != nil {
		condition += " AND created_at >= to_timestamp($2)"
		args = append(args, *periodStart)
	}

	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'COMPLETED') AS completed,
		COUNT(*) FILTER (WHERE status = 'FAILED') AS failed,
		COALESCE(SUM(amount) FILTER (WHERE receiver_id = $1 AND status = 'COMPLETED'), 0)::text AS total_in,
		COALESCE(SUM(amount) FILTER (WHERE sender_id = $1 AND status = 'COMPLETED'), 0)::text AS total_out
		FROM transactions WHERE %s`, condition)

	stats := &ports.TransactionStats{}
	var totalIn, totalOut string
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.TotalTransactions, &stats.Completed, &stats.Failed,
		&totalIn, &totalOut,
	)
	if err != nil {
		return nil, fmt.Errorf("get transaction stats: %w", err)
	}
	if stats.TotalIn, err = decimal.NewFromString(totalIn); err != nil {
		return nil, fmt.Errorf("parse total_in %q: %w", totalIn, err)
	}
	if stats.TotalOut, err = decimal.NewFromString(totalOut); err != nil {
		return nil, fmt.Errorf("parse total_out %q: %w", totalOut, err)
	}
	return stats, nil
}
