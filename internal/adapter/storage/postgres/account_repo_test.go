package postgres

import (
	"context"
	"testing"
	"time"

	"ewallet-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountCols = []string{
	"id", "name", "email", "phone", "password_hash",
	"avatar_url", "balance", "status", "created_at", "updated_at",
}

func newTestAccount() *domain.Account {
	now := time.Now().UTC()
	return &domain.Account{
		ID:           uuid.New(),
		Name:         "Alice Nguyen",
		Email:        "alice@example.com",
		Phone:        "0901234567",
		PasswordHash: "$argon2id$hash",
		Balance:      decimal.RequireFromString("150.75"),
		Status:       domain.AccountStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// accountRow renders an account the way the queries return it: balance cast
// to text.
func accountRow(a *domain.Account) *pgxmock.Rows {
	return pgxmock.NewRows(accountCols).AddRow(
		a.ID, a.Name, a.Email, a.Phone, a.PasswordHash,
		a.AvatarURL, a.Balance.String(), a.Status, a.CreatedAt, a.UpdatedAt,
	)
}

func TestAccountRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount()

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(a.ID, a.Name, a.Email, a.Phone, a.PasswordHash, a.AvatarURL,
			"150.75", a.Status, a.CreatedAt, a.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), a)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount()

	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE id").
		WithArgs(a.ID).
		WillReturnRows(accountRow(a))

	got, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.ID, got.ID)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("150.75")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByEmail_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)

	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE email").
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows(accountCols))

	got, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByPhone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount()

	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE phone").
		WithArgs(a.Phone).
		WillReturnRows(accountRow(a))

	got, err := repo.GetByPhone(context.Background(), a.Phone)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.Email, got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_LockForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount()
	b := newTestAccount()
	b.Email = "bob@example.com"
	b.Phone = "0907654321"

	ids := []uuid.UUID{a.ID, b.ID}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = ANY(.+) ORDER BY id FOR UPDATE").
		WithArgs(ids).
		WillReturnRows(pgxmock.NewRows(accountCols).
			AddRow(a.ID, a.Name, a.Email, a.Phone, a.PasswordHash,
				a.AvatarURL, a.Balance.String(), a.Status, a.CreatedAt, a.UpdatedAt).
			AddRow(b.ID, b.Name, b.Email, b.Phone, b.PasswordHash,
				b.AvatarURL, b.Balance.String(), b.Status, b.CreatedAt, b.UpdatedAt))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	accounts, err := repo.LockForUpdate(context.Background(), tx, ids)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, a.Email, accounts[a.ID].Email)
	assert.Equal(t, b.Email, accounts[b.ID].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_LockForUpdate_MissingAccountAbsentFromResult(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount()
	ghost := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FOR UPDATE").
		WithArgs([]uuid.UUID{a.ID, ghost}).
		WillReturnRows(accountRow(a))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	accounts, err := repo.LockForUpdate(context.Background(), tx, []uuid.UUID{a.ID, ghost})
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Nil(t, accounts[ghost])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_UpdateBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts SET balance").
		WithArgs("99.25", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, id, decimal.RequireFromString("99.25"))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_UpdateBalance_NoRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts SET balance").
		WithArgs("10", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, id, decimal.RequireFromString("10"))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_UpdateProfile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount()
	a.Name = "Alice Updated"

	mock.ExpectExec("UPDATE accounts SET name").
		WithArgs(a.Name, a.Phone, a.AvatarURL, a.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateProfile(context.Background(), a)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
