package service

import (
	"context"
	"fmt"
	"time"

	"ewallet-backend/internal/core/ports"
	"ewallet-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	txRepo      ports.TransactionRepository
	accountRepo ports.AccountRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	txRepo ports.TransactionRepository,
	accountRepo ports.AccountRepository,
) ports.ReportingService {
	return &reportingService{
		txRepo:      txRepo,
		accountRepo: accountRepo,
	}
}

// GetBalance returns the account's current balance. This is a display read;
// the transfer engine re-checks funds under its own row lock.
func (s *reportingService) GetBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return decimal.Zero, apperror.ErrAccountNotFound("account")
	}
	return account.Balance, nil
}

// ListTransactions returns a paginated transaction history.
func (s *reportingService) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]ports.TransactionListItem, int64, error) {
	items, total, err := s.txRepo.ListByAccount(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return items, total, nil
}

// GetStats returns aggregated ledger stats for the account over a period.
func (s *reportingService) GetStats(ctx context.Context, accountID uuid.UUID, period string) (*ports.TransactionStats, error) {
	var periodStart *int64

	switch period {
	case "day":
		t := time.Now().AddDate(0, 0, -1).Unix()
		periodStart = &t
	case "week":
		t := time.Now().AddDate(0, 0, -7).Unix()
		periodStart = &t
	case "month":
		t := time.Now().AddDate(0, -1, 0).Unix()
		periodStart = &t
	case "all", "":
		// No time filter
	default:
		return nil, apperror.Validation("invalid period: must be day, week, month, or all")
	}

	stats, err := s.txRepo.GetStats(ctx, accountID, periodStart)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	return stats, nil
}
