package service

import (
	"context"
	"testing"

	"ewallet-backend/internal/core/domain"
	"ewallet-backend/internal/core/ports"
	"ewallet-backend/internal/core/ports/mocks"
	"ewallet-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type settlementTestDeps struct {
	svc         *SettlementServiceImpl
	directory   *mocks.MockDirectoryService
	transferSvc *mocks.MockTransferService
	ctrl        *gomock.Controller
}

func setupSettlementService(t *testing.T) *settlementTestDeps {
	ctrl := gomock.NewController(t)
	d := &settlementTestDeps{
		directory:   mocks.NewMockDirectoryService(ctrl),
		transferSvc: mocks.NewMockTransferService(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewSettlementService(d.directory, d.transferSvc, zerolog.Nop())
	return d
}

func TestSettlementService_HandleSettlement_Credit(t *testing.T) {
	d := setupSettlementService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	event := ports.SettlementEvent{
		AccountIdentifier:   "0901234567",
		Amount:              decimal.RequireFromString("500.00"),
		ExternalReferenceID: "PSP-2024-001",
		Direction:           ports.SettlementDirectionCredit,
	}

	d.directory.EXPECT().Resolve(ctx, "0901234567").Return(accountID, nil)
	d.transferSvc.EXPECT().Transfer(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.TransferRequest) (*domain.Transaction, error) {
			assert.Nil(t, req.SenderID)
			require.NotNil(t, req.ReceiverID)
			assert.Equal(t, accountID, *req.ReceiverID)
			assert.Equal(t, domain.TransactionTypeDeposit, req.Type)
			assert.Equal(t, "extref:PSP-2024-001", req.IdempotencyKey)
			return &domain.Transaction{ID: uuid.New(), ReceiverID: req.ReceiverID}, nil
		})

	txn, err := d.svc.HandleSettlement(ctx, event)
	require.NoError(t, err)
	assert.Nil(t, txn.SenderID)
}

func TestSettlementService_HandleSettlement_Debit(t *testing.T) {
	d := setupSettlementService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	event := ports.SettlementEvent{
		AccountIdentifier:   "carol@example.com",
		Amount:              decimal.RequireFromString("75.50"),
		ExternalReferenceID: "PSP-2024-002",
		Direction:           ports.SettlementDirectionDebit,
	}

	d.directory.EXPECT().Resolve(ctx, "carol@example.com").Return(accountID, nil)
	d.transferSvc.EXPECT().Transfer(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.TransferRequest) (*domain.Transaction, error) {
			require.NotNil(t, req.SenderID)
			assert.Equal(t, accountID, *req.SenderID)
			assert.Nil(t, req.ReceiverID)
			assert.Equal(t, domain.TransactionTypeBankWithdrawal, req.Type)
			return &domain.Transaction{ID: uuid.New(), SenderID: req.SenderID}, nil
		})

	_, err := d.svc.HandleSettlement(ctx, event)
	require.NoError(t, err)
}

func TestSettlementService_HandleSettlement_Validation(t *testing.T) {
	d := setupSettlementService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	t.Run("missing external reference", func(t *testing.T) {
		_, err := d.svc.HandleSettlement(ctx, ports.SettlementEvent{
			AccountIdentifier: "0901",
			Amount:            decimal.RequireFromString("10.00"),
			Direction:         ports.SettlementDirectionCredit,
		})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VAL_001", appErr.Code)
	})

	t.Run("invalid amount", func(t *testing.T) {
		_, err := d.svc.HandleSettlement(ctx, ports.SettlementEvent{
			AccountIdentifier:   "0901",
			Amount:              decimal.Zero,
			ExternalReferenceID: "PSP-1",
			Direction:           ports.SettlementDirectionCredit,
		})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VAL_002", appErr.Code)
	})

	t.Run("unknown direction", func(t *testing.T) {
		d.directory.EXPECT().Resolve(ctx, "0901").Return(uuid.New(), nil)

		_, err := d.svc.HandleSettlement(ctx, ports.SettlementEvent{
			AccountIdentifier:   "0901",
			Amount:              decimal.RequireFromString("10.00"),
			ExternalReferenceID: "PSP-1",
			Direction:           "sideways",
		})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VAL_001", appErr.Code)
	})

	t.Run("unresolvable account", func(t *testing.T) {
		d.directory.EXPECT().Resolve(ctx, "ghost@example.com").
			Return(uuid.Nil, apperror.ErrAccountNotFound("recipient"))

		_, err := d.svc.HandleSettlement(ctx, ports.SettlementEvent{
			AccountIdentifier:   "ghost@example.com",
			Amount:              decimal.RequireFromString("10.00"),
			ExternalReferenceID: "PSP-1",
			Direction:           ports.SettlementDirectionCredit,
		})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "ACC_002", appErr.Code)
	})
}
