package service

import (
	"context"
	"fmt"
	"strings"

	"ewallet-backend/internal/core/ports"
	"ewallet-backend/pkg/apperror"

	"github.com/google/uuid"
)

// DirectoryServiceImpl implements ports.DirectoryService. It resolves the
// identifiers people actually share (phone numbers, email addresses) to
// account ids, so callers never need to know internal ids.
type DirectoryServiceImpl struct {
	accountRepo ports.AccountRepository
}

// NewDirectoryService creates a new DirectoryServiceImpl.
func NewDirectoryService(accountRepo ports.AccountRepository) *DirectoryServiceImpl {
	return &DirectoryServiceImpl{accountRepo: accountRepo}
}

// Resolve maps an email address or phone number to an account id.
// Identifiers containing '@' are treated as email, everything else as phone.
func (s *DirectoryServiceImpl) Resolve(ctx context.Context, identifier string) (uuid.UUID, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return uuid.Nil, apperror.Validation("recipient identifier is required")
	}

	if strings.Contains(identifier, "@") {
		account, err := s.accountRepo.GetByEmail(ctx, strings.ToLower(identifier))
		if err != nil {
			return uuid.Nil, apperror.InternalError(fmt.Errorf("lookup by email: %w", err))
		}
		if account == nil {
			return uuid.Nil, apperror.ErrAccountNotFound("recipient")
		}
		return account.ID, nil
	}

	account, err := s.accountRepo.GetByPhone(ctx, identifier)
	if err != nil {
		return uuid.Nil, apperror.InternalError(fmt.Errorf("lookup by phone: %w", err))
	}
	if account == nil {
		return uuid.Nil, apperror.ErrAccountNotFound("recipient")
	}
	return account.ID, nil
}
