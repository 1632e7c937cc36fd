package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("pq: deadlock detected")
	err := InternalError(inner)

	assert.Contains(t, err.Error(), "SYS_001")
	assert.ErrorIs(t, err, inner)
}

func TestAppError_SurvivesWrapping(t *testing.T) {
	appErr := ErrInsufficientFunds()
	wrapped := fmt.Errorf("handling transfer: %w", appErr)

	var got *AppError
	require.ErrorAs(t, wrapped, &got)
	assert.Equal(t, "PAY_001", got.Code)
	assert.Equal(t, http.StatusPaymentRequired, got.HTTPStatus)
}

func TestErrorCatalogStatusMapping(t *testing.T) {
	tests := []struct {
		err    *AppError
		code   string
		status int
	}{
		{Validation("bad input"), "VAL_001", http.StatusBadRequest},
		{ErrInvalidAmount(), "VAL_002", http.StatusBadRequest},
		{ErrMissingIdempotencyKey(), "VAL_003", http.StatusBadRequest},
		{ErrInvalidCredentials(), "ACC_001", http.StatusUnauthorized},
		{ErrAccountNotFound("account"), "ACC_002", http.StatusNotFound},
		{ErrIdentityTaken("email"), "ACC_003", http.StatusConflict},
		{ErrInvalidToken(), "ACC_004", http.StatusUnauthorized},
		{ErrAccountInactive(), "ACC_005", http.StatusForbidden},
		{ErrInsufficientFunds(), "PAY_001", http.StatusPaymentRequired},
		{ErrSelfTransfer(), "PAY_002", http.StatusBadRequest},
		{ErrDuplicateOperation(), "PAY_003", http.StatusConflict},
		{ErrInvalidSettlement(), "PAY_004", http.StatusUnauthorized},
		{ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
		{InternalError(errors.New("x")), "SYS_001", http.StatusInternalServerError},
		{ErrBusy(errors.New("lock timeout")), "SYS_002", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}
