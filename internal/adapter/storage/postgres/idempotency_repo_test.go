package postgres

import (
	"context"
	"testing"
	"time"

	"ewallet-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	rec := &domain.IdempotencyRecord{
		Key:           "extref:PSP-2024-001",
		TransactionID: uuid.New(),
		ResponseJSON:  []byte(`{"id":"abc"}`),
		CreatedAt:     time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency_keys").
		WithArgs(rec.Key, rec.TransactionID, rec.ResponseJSON, rec.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, rec)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Create_DuplicateKeySurfacesUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	rec := &domain.IdempotencyRecord{
		Key:           "extref:PSP-2024-001",
		TransactionID: uuid.New(),
		ResponseJSON:  []byte(`{}`),
		CreatedAt:     time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency_keys").
		WithArgs(rec.Key, rec.TransactionID, rec.ResponseJSON, rec.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idempotency_keys_pkey"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, rec)
	require.Error(t, err)

	// The SQLSTATE must stay reachable through the wrap: the transfer engine
	// switches on it to resolve the duplicate.
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23505", pgErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	txID := uuid.New()
	created := time.Now().UTC()

	cols := []string{"key", "transaction_id", "response_json", "created_at"}
	mock.ExpectQuery("SELECT (.+) FROM idempotency_keys WHERE key").
		WithArgs("extref:PSP-2024-001").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			"extref:PSP-2024-001", txID, []byte(`{"id":"abc"}`), created,
		))

	rec, err := repo.Get(context.Background(), "extref:PSP-2024-001")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, txID, rec.TransactionID)
	assert.JSONEq(t, `{"id":"abc"}`, string(rec.ResponseJSON))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Get_Miss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)

	cols := []string{"key", "transaction_id", "response_json", "created_at"}
	mock.ExpectQuery("SELECT (.+) FROM idempotency_keys WHERE key").
		WithArgs("unused-key").
		WillReturnRows(pgxmock.NewRows(cols))

	rec, err := repo.Get(context.Background(), "unused-key")
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}
