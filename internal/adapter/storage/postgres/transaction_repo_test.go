package postgres

import (
	"context"
	"testing"
	"time"

	"ewallet-backend/internal/core/domain"
	"ewallet-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction() *domain.Transaction {
	sender := uuid.New()
	receiver := uuid.New()
	now := time.Now().UTC()
	return &domain.Transaction{
		ID:          uuid.New(),
		SenderID:    &sender,
		ReceiverID:  &receiver,
		Amount:      decimal.RequireFromString("42.50"),
		Type:        domain.TransactionTypePeerTransfer,
		Status:      domain.TransactionStatusCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
	}
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.SenderID, txn.ReceiverID, "42.5",
			txn.Type, txn.Status, txn.Description, txn.CreatedAt, txn.CompletedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Create_RejectsInvalidRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	// No counterparty at all: rejected before any SQL runs.
	err = repo.Create(context.Background(), tx, &domain.Transaction{
		ID:     uuid.New(),
		Amount: decimal.RequireFromString("10.00"),
		Type:   domain.TransactionTypeDeposit,
		Status: domain.TransactionStatusCompleted,
	})
	assert.ErrorIs(t, err, domain.ErrNoCounterparty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	cols := []string{"id", "sender_id", "receiver_id", "amount", "type", "status", "description", "created_at", "completed_at"}
	mock.ExpectQuery("SELECT (.+) FROM transactions WHERE id").
		WithArgs(txn.ID).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			txn.ID, txn.SenderID, txn.ReceiverID, txn.Amount.String(),
			txn.Type, txn.Status, txn.Description, txn.CreatedAt, txn.CompletedAt,
		))

	got, err := repo.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(txn.Amount))
	assert.Equal(t, txn.Type, got.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	id := uuid.New()

	cols := []string{"id", "sender_id", "receiver_id", "amount", "type", "status", "description", "created_at", "completed_at"}
	mock.ExpectQuery("SELECT (.+) FROM transactions WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(cols))

	got, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListByAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	accountID := uuid.New()
	txn := newTestTransaction()
	txn.SenderID = &accountID

	senderName := "Alice"
	senderPhone := "0901234567"

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(accountID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	listCols := []string{
		"id", "sender_id", "receiver_id", "amount", "type", "status",
		"description", "created_at", "completed_at",
		"sender_name", "sender_phone", "receiver_name", "receiver_phone",
	}
	mock.ExpectQuery("SELECT (.+) FROM transactions t").
		WithArgs(accountID, 20, 0).
		WillReturnRows(pgxmock.NewRows(listCols).AddRow(
			txn.ID, txn.SenderID, txn.ReceiverID, txn.Amount.String(),
			txn.Type, txn.Status, txn.Description, txn.CreatedAt, txn.CompletedAt,
			&senderName, &senderPhone, nil, nil,
		))

	items, total, err := repo.ListByAccount(context.Background(), ports.TransactionListParams{
		AccountID: accountID,
		Page:      1,
		PageSize:  20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Alice", *items[0].SenderName)
	assert.Nil(t, items[0].ReceiverName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListByAccount_WithFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	accountID := uuid.New()
	status := domain.TransactionStatusCompleted
	txType := domain.TransactionTypeDeposit
	from := int64(1700000000)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(accountID, status, txType, from).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))

	listCols := []string{
		"id", "sender_id", "receiver_id", "amount", "type", "status",
		"description", "created_at", "completed_at",
		"sender_name", "sender_phone", "receiver_name", "receiver_phone",
	}
	mock.ExpectQuery("SELECT (.+) FROM transactions t").
		WithArgs(accountID, status, txType, from, 10, 0).
		WillReturnRows(pgxmock.NewRows(listCols))

	items, total, err := repo.ListByAccount(context.Background(), ports.TransactionListParams{
		AccountID: accountID,
		Status:    &status,
		Type:      &txType,
		From:      &from,
		Page:      1,
		PageSize:  10,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	accountID := uuid.New()

	statCols := []string{"total", "completed", "failed", "total_in", "total_out"}
	mock.ExpectQuery("SELECT(.+)COUNT").
		WithArgs(accountID).
		WillReturnRows(pgxmock.NewRows(statCols).AddRow(
			int64(12), int64(10), int64(2), "500.00", "320.50",
		))

	stats, err := repo.GetStats(context.Background(), accountID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalTransactions)
	assert.Equal(t, int64(10), stats.Completed)
	assert.Equal(t, int64(2), stats.Failed)
	assert.True(t, stats.TotalIn.Equal(decimal.RequireFromString("500.00")))
	assert.True(t, stats.TotalOut.Equal(decimal.RequireFromString("320.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetStats_WithPeriod(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	accountID := uuid.New()
	periodStart := int64(1700000000)

	statCols := []string{"total", "completed", "failed", "total_in", "total_out"}
	mock.ExpectQuery("SELECT(.+)to_timestamp").
		WithArgs(accountID, periodStart).
		WillReturnRows(pgxmock.NewRows(statCols).AddRow(
			int64(0), int64(0), int64(0), "0", "0",
		))

	stats, err := repo.GetStats(context.Background(), accountID, &periodStart)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTransactions)
	assert.True(t, stats.TotalIn.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
