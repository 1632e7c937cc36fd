package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ewallet-backend/internal/core/domain"
	"ewallet-backend/internal/core/ports"
	"ewallet-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

const (
	pgCodeLockNotAvailable = "55P03"
	pgCodeUniqueViolation  = "23505"
)

// TransferServiceImpl implements ports.TransferService. It is the only code
// path that ever changes an account balance: every debit, credit and ledger
// row for one transfer happens inside a single database transaction, so a
// crash at any point leaves either everything applied or nothing.
type TransferServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	idempRepo   ports.IdempotencyRepository
	idempCache  ports.IdempotencyCache
	transactor  ports.DBTransactor
	lockTimeout time.Duration
	log         zerolog.Logger
}

// NewTransferService creates a new TransferServiceImpl.
func NewTransferService(
	accountRepo ports.AccountRepository,
	txRepo ports.TransactionRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	lockTimeout time.Duration,
	log zerolog.Logger,
) *TransferServiceImpl {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &TransferServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		idempRepo:   idempRepo,
		idempCache:  idempCache,
		transactor:  transactor,
		lockTimeout: lockTimeout,
		log:         log,
	}
}

// Transfer executes a balance movement with pessimistic locking.
func (s *TransferServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.Transaction, error) {
	if !domain.ValidAmount(req.Amount) {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.IdempotencyKey == "" {
		return nil, apperror.ErrMissingIdempotencyKey()
	}
	if req.SenderID == nil && req.ReceiverID == nil {
		return nil, apperror.Validation("transfer requires at least one account")
	}
	if req.SenderID != nil && req.ReceiverID != nil && *req.SenderID == *req.ReceiverID {
		return nil, apperror.ErrSelfTransfer()
	}

	// Layer 1: Redis idempotency check (best-effort fast path)
	cached, err := s.idempCache.Get(ctx, req.IdempotencyKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", req.IdempotencyKey).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		return s.unmarshalCachedTransaction(cached)
	}

	// Layer 2: durable DB idempotency check
	idempRec, err := s.idempRepo.Get(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if idempRec != nil {
		return s.unmarshalCachedTransaction(idempRec.ResponseJSON)
	}

	// Begin database transaction
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Bound lock waits so a contended account surfaces as Busy instead of
	// stalling the request.
	lockStmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
	if _, err := dbTx.Exec(ctx, lockStmt); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("set lock timeout: %w", err))
	}

	// Lock all internal legs in one statement; the repo orders the row locks
	// by ascending id so concurrent opposite-direction transfers cannot
	// deadlock.
	ids := internalAccountIDs(req)
	accounts, err := s.accountRepo.LockForUpdate(ctx, dbTx, ids)
	if err != nil {
		if isLockTimeout(err) {
			return nil, apperror.ErrBusy(err)
		}
		return nil, apperror.InternalError(fmt.Errorf("lock accounts: %w", err))
	}

	var sender, receiver *domain.Account
	if req.SenderID != nil {
		sender = accounts[*req.SenderID]
		if sender == nil {
			return nil, apperror.ErrAccountNotFound("sender account")
		}
		if !sender.IsActive() {
			return nil, apperror.ErrAccountInactive()
		}
	}
	if req.ReceiverID != nil {
		receiver = accounts[*req.ReceiverID]
		if receiver == nil {
			return nil, apperror.ErrAccountNotFound("receiver account")
		}
		if !receiver.IsActive() {
			return nil, apperror.ErrAccountInactive()
		}
	}

	// Funds check happens under the row lock: the balance read here cannot
	// be stale.
	if sender != nil {
		if !sender.CanSpend(req.Amount) {
			return nil, apperror.ErrInsufficientFunds()
		}
		if err := s.accountRepo.UpdateBalance(ctx, dbTx, sender.ID, sender.Balance.Sub(req.Amount)); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("debit sender: %w", err))
		}
	}
	if receiver != nil {
		if err := s.accountRepo.UpdateBalance(ctx, dbTx, receiver.ID, receiver.Balance.Add(req.Amount)); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("credit receiver: %w", err))
		}
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:          uuid.New(),
		SenderID:    req.SenderID,
		ReceiverID:  req.ReceiverID,
		Amount:      req.Amount,
		Type:        req.Type,
		Status:      domain.TransactionStatusCompleted,
		Description: req.Description,
		CreatedAt:   now,
		CompletedAt: &now,
	}

	// Persist: ledger entry
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	// Persist: idempotency record in the SAME transaction, so the key and
	// the transfer become durable together.
	respJSON, err := json.Marshal(txn)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal response: %w", err))
	}
	idempEntry := &domain.IdempotencyRecord{
		Key:           req.IdempotencyKey,
		TransactionID: txn.ID,
		ResponseJSON:  respJSON,
		CreatedAt:     now,
	}
	if err := s.idempRepo.Create(ctx, dbTx, idempEntry); err != nil {
		if isUniqueViolation(err) {
			// A concurrent request with the same key won the race. Our
			// transaction rolls back; return the winner's result.
			return s.resolveIdempotencyRace(ctx, dbTx, req.IdempotencyKey)
		}
		return nil, apperror.InternalError(fmt.Errorf("save idempotency record: %w", err))
	}

	// Commit
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Post-process: cache in Redis (best-effort)
	if err := s.idempCache.Set(ctx, req.IdempotencyKey, respJSON, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", req.IdempotencyKey).Msg("failed to cache idempotency in redis")
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("type", string(txn.Type)).
		Str("amount", req.Amount.String()).
		Msg("transfer completed")

	return txn, nil
}

// resolveIdempotencyRace handles a lost insert race on the idempotency key:
// roll back our half-applied transaction, then read the winner's durable
// record. If the winner has not committed yet the client gets a conflict and
// can safely retry with the same key.
func (s *TransferServiceImpl) resolveIdempotencyRace(ctx context.Context, dbTx pgx.Tx, key string) (*domain.Transaction, error) {
	if err := dbTx.Rollback(ctx); err != nil {
		s.log.Warn().Err(err).Msg("rollback after idempotency race failed")
	}

	rec, err := s.idempRepo.Get(ctx, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("idempotency race lookup: %w", err))
	}
	if rec == nil {
		return nil, apperror.ErrDuplicateOperation()
	}
	return s.unmarshalCachedTransaction(rec.ResponseJSON)
}

// unmarshalCachedTransaction deserializes a previously stored response.
func (s *TransferServiceImpl) unmarshalCachedTransaction(data []byte) (*domain.Transaction, error) {
	txn := &domain.Transaction{}
	if err := json.Unmarshal(data, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached tx: %w", err))
	}
	return txn, nil
}

func internalAccountIDs(req ports.TransferRequest) []uuid.UUID {
	ids := make([]uuid.UUID, 0, 2)
	if req.SenderID != nil {
		ids = append(ids, *req.SenderID)
	}
	if req.ReceiverID != nil {
		ids = append(ids, *req.ReceiverID)
	}
	return ids
}

func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCodeLockNotAvailable
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation
}
