package dto

import (
	"time"

	"ewallet-backend/internal/core/domain"
	"ewallet-backend/internal/core/ports"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Name      string  `json:"name" binding:"required,min=1,max=100"`
	Email     string  `json:"email" binding:"required,email,max=100"`
	Phone     string  `json:"phone" binding:"required,min=8,max=20"`
	Password  string  `json:"password" binding:"required,min=8,max=128"`
	AvatarURL *string `json:"avatar_url,omitempty" binding:"omitempty,safe_url"`
}

// LoginRequest is the request body for account login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// UpdateProfileRequest carries optional profile changes.
type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,min=8,max=20"`
	AvatarURL *string `json:"avatar_url,omitempty" binding:"omitempty,safe_url"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Balance   string  `json:"balance"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

// SendMoneyRequest is the request body for a peer transfer. Recipient is an
// email address or phone number; amount is a decimal string ("10.50").
type SendMoneyRequest struct {
	Recipient   string  `json:"recipient" binding:"required"`
	Amount      string  `json:"amount" binding:"required,money"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=255"`
}

// OutboundPaymentRequest is the request body for payments that leave the
// wallet to an external sink: bank withdrawals, tuition, bills, mobile
// topups and merchant purchases.
type OutboundPaymentRequest struct {
	Amount      string  `json:"amount" binding:"required,money"`
	Reference   *string `json:"reference,omitempty" binding:"omitempty,max=100"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=255"`
}

// SettlementRequest is the processor-delivered settlement event body. The
// raw body is HMAC-signed; see the X-Signature header.
type SettlementRequest struct {
	Account             string `json:"account" binding:"required"`
	Amount              string `json:"amount" binding:"required,money"`
	ExternalReferenceID string `json:"external_reference_id" binding:"required,max=100"`
	Direction           string `json:"direction" binding:"required,oneof=credit debit"`
}

// TransactionResponse is the response body for transfer results.
type TransactionResponse struct {
	ID          string  `json:"id"`
	SenderID    *string `json:"sender_id,omitempty"`
	ReceiverID  *string `json:"receiver_id,omitempty"`
	Amount      string  `json:"amount"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

// TransactionListItemResponse is a history row with counterparty identity.
type TransactionListItemResponse struct {
	TransactionResponse
	SenderName    *string `json:"sender_name,omitempty"`
	SenderPhone   *string `json:"sender_phone,omitempty"`
	ReceiverName  *string `json:"receiver_name,omitempty"`
	ReceiverPhone *string `json:"receiver_phone,omitempty"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionListItemResponse `json:"items"`
	Total      int64                         `json:"total"`
	Page       int                           `json:"page"`
	PageSize   int                           `json:"page_size"`
	TotalPages int                           `json:"total_pages"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Balance string `json:"balance"`
}

// StatsResponse is the response for account statistics.
type StatsResponse struct {
	TotalTransactions int64  `json:"total_transactions"`
	Completed         int64  `json:"completed"`
	Failed            int64  `json:"failed"`
	TotalIn           string `json:"total_in"`
	TotalOut          string `json:"total_out"`
}

// FromAccount maps a domain account to its response form.
func FromAccount(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID.String(),
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		AvatarURL: a.AvatarURL,
		Balance:   a.Balance.StringFixed(2),
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// FromTransaction maps a domain transaction to its response form.
func FromTransaction(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID.String(),
		Amount:      t.Amount.StringFixed(2),
		Type:        string(t.Type),
		Status:      string(t.Status),
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.SenderID != nil {
		s := t.SenderID.String()
		resp.SenderID = &s
	}
	if t.ReceiverID != nil {
		r := t.ReceiverID.String()
		resp.ReceiverID = &r
	}
	if t.CompletedAt != nil {
		ts := t.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &ts
	}
	return resp
}

// FromTransactionListItem maps a joined history row to its response form.
func FromTransactionListItem(item ports.TransactionListItem) TransactionListItemResponse {
	return TransactionListItemResponse{
		TransactionResponse: FromTransaction(&item.Transaction),
		SenderName:          item.SenderName,
		SenderPhone:         item.SenderPhone,
		ReceiverName:        item.ReceiverName,
		ReceiverPhone:       item.ReceiverPhone,
	}
}
