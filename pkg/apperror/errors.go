package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation returns a generic caller-fixable validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_002", "Amount must be positive with at most two decimal places", http.StatusBadRequest)
}

func ErrMissingIdempotencyKey() *AppError {
	return New("VAL_003", "Idempotency-Key header is required", http.StatusBadRequest)
}

// ---- Accounts & Authentication (ACC) ----

func ErrInvalidCredentials() *AppError {
	return New("ACC_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrAccountNotFound(what string) *AppError {
	return New("ACC_002", fmt.Sprintf("%s not found", what), http.StatusNotFound)
}

func ErrIdentityTaken(field string) *AppError {
	return New("ACC_003", fmt.Sprintf("%s already registered", field), http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("ACC_004", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAccountInactive() *AppError {
	return New("ACC_005", "Account is frozen or closed", http.StatusForbidden)
}

// ---- Transfer business rules (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New("PAY_001", "Insufficient balance", http.StatusPaymentRequired)
}

func ErrSelfTransfer() *AppError {
	return New("PAY_002", "Cannot transfer money to yourself", http.StatusBadRequest)
}

func ErrDuplicateOperation() *AppError {
	return New("PAY_003", "Operation with this idempotency key was already applied with a different payload", http.StatusConflict)
}

func ErrInvalidSettlement() *AppError {
	return New("PAY_004", "Settlement event signature or payload invalid", http.StatusUnauthorized)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps a storage or infrastructure failure. The enclosing
// database transaction is rolled back, so nothing is partially applied and
// the caller may retry with the same idempotency key.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ErrBusy signals a lock acquisition timeout. Transient; safe to retry.
func ErrBusy(err error) *AppError {
	return Wrap("SYS_002", "Account is busy, try again", http.StatusServiceUnavailable, err)
}
