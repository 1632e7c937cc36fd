package service

import (
	"context"

	"ewallet-backend/internal/core/domain"
	"ewallet-backend/internal/core/ports"
	"ewallet-backend/pkg/apperror"

	"github.com/rs/zerolog"
)

// SettlementServiceImpl implements ports.SettlementService. It converts
// processor-confirmed external money movements into one-sided transfer engine
// calls: a credit has no internal sender, a debit has no internal receiver.
// The external reference id doubles as the idempotency key, so redelivered
// events replay the stored result instead of moving money twice.
type SettlementServiceImpl struct {
	directory   ports.DirectoryService
	transferSvc ports.TransferService
	log         zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	directory ports.DirectoryService,
	transferSvc ports.TransferService,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		directory:   directory,
		transferSvc: transferSvc,
		log:         log,
	}
}

// HandleSettlement applies one confirmed settlement event.
func (s *SettlementServiceImpl) HandleSettlement(ctx context.Context, event ports.SettlementEvent) (*domain.Transaction, error) {
	if event.ExternalReferenceID == "" {
		return nil, apperror.Validation("external_reference_id is required")
	}
	if !domain.ValidAmount(event.Amount) {
		return nil, apperror.ErrInvalidAmount()
	}

	accountID, err := s.directory.Resolve(ctx, event.AccountIdentifier)
	if err != nil {
		return nil, err
	}

	req := ports.TransferRequest{
		Amount:         event.Amount,
		IdempotencyKey: domain.BuildSettlementKey(event.ExternalReferenceID),
	}
	switch event.Direction {
	case ports.SettlementDirectionCredit:
		req.ReceiverID = &accountID
		req.Type = domain.TransactionTypeDeposit
	case ports.SettlementDirectionDebit:
		req.SenderID = &accountID
		req.Type = domain.TransactionTypeBankWithdrawal
	default:
		return nil, apperror.Validation("direction must be credit or debit")
	}

	txn, err := s.transferSvc.Transfer(ctx, req)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("external_ref", event.ExternalReferenceID).
		Str("direction", string(event.Direction)).
		Str("tx_id", txn.ID.String()).
		Msg("settlement applied")

	return txn, nil
}
