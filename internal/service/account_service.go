package service

import (
	"context"
	"fmt"

	"ewallet-backend/internal/core/domain"
	"ewallet-backend/internal/core/ports"
	"ewallet-backend/pkg/apperror"

	"github.com/google/uuid"
)

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	accountRepo ports.AccountRepository
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(accountRepo ports.AccountRepository) *AccountServiceImpl {
	return &AccountServiceImpl{accountRepo: accountRepo}
}

// GetProfile fetches an account's profile.
func (s *AccountServiceImpl) GetProfile(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound("account")
	}
	return account, nil
}

// UpdateProfile applies the provided profile changes. A phone change must not
// collide with another account's phone.
func (s *AccountServiceImpl) UpdateProfile(ctx context.Context, accountID uuid.UUID, req ports.UpdateProfileRequest) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound("account")
	}

	if req.Phone != nil && *req.Phone != account.Phone {
		other, err := s.accountRepo.GetByPhone(ctx, *req.Phone)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("check phone: %w", err))
		}
		if other != nil && other.ID != accountID {
			return nil, apperror.ErrIdentityTaken("phone")
		}
		account.Phone = *req.Phone
	}
	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.AvatarURL != nil {
		account.AvatarURL = req.AvatarURL
	}

	if err := s.accountRepo.UpdateProfile(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update profile: %w", err))
	}
	return account, nil
}
