package handler

import (
	"ewallet-backend/internal/adapter/http/dto"
	"ewallet-backend/internal/adapter/http/middleware"
	"ewallet-backend/internal/core/domain"
	"ewallet-backend/internal/core/ports"
	"ewallet-backend/pkg/apperror"
	"ewallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransferHandler handles money movement endpoints: peer transfers plus the
// outbound payment flavors (bank withdrawal, tuition, mobile topup, bills,
// merchant purchases). Every endpoint requires an Idempotency-Key header so
// a retried request can never move money twice.
type TransferHandler struct {
	transferSvc ports.TransferService
	directory   ports.DirectoryService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferSvc ports.TransferService, directory ports.DirectoryService) *TransferHandler {
	return &TransferHandler{
		transferSvc: transferSvc,
		directory:   directory,
	}
}

// SendMoney handles POST /api/v1/transfers/send.
func (h *TransferHandler) SendMoney(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	clientKey := c.GetHeader(middleware.HeaderIdempotencyKey)
	if clientKey == "" {
		response.Error(c, apperror.ErrMissingIdempotencyKey())
		return
	}

	var req dto.SendMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, okAmt := domain.ParseAmount(req.Amount)
	if !okAmt {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	receiverID, err := h.directory.Resolve(c.Request.Context(), req.Recipient)
	if err != nil {
		response.Error(c, err)
		return
	}

	txn, err := h.transferSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		SenderID:       &accountID,
		ReceiverID:     &receiverID,
		Amount:         amount,
		Type:           domain.TransactionTypePeerTransfer,
		IdempotencyKey: domain.BuildTransferKey(accountID, clientKey),
		Description:    req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromTransaction(txn))
}

// Withdraw handles POST /api/v1/payments/bank-withdrawal.
func (h *TransferHandler) Withdraw(c *gin.Context) {
	h.outbound(c, domain.TransactionTypeBankWithdrawal)
}

// PayTuition handles POST /api/v1/payments/tuition.
func (h *TransferHandler) PayTuition(c *gin.Context) {
	h.outbound(c, domain.TransactionTypeTuitionPayment)
}

// MobileTopup handles POST /api/v1/payments/mobile-topup.
func (h *TransferHandler) MobileTopup(c *gin.Context) {
	h.outbound(c, domain.TransactionTypeMobileTopup)
}

// PayBill handles POST /api/v1/payments/bills.
func (h *TransferHandler) PayBill(c *gin.Context) {
	h.outbound(c, domain.TransactionTypeBillPayment)
}

// PayMerchant handles POST /api/v1/payments/merchant.
func (h *TransferHandler) PayMerchant(c *gin.Context) {
	h.outbound(c, domain.TransactionTypeMerchantPayment)
}

// outbound debits the authenticated account with no internal receiver.
func (h *TransferHandler) outbound(c *gin.Context, txType domain.TransactionType) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	clientKey := c.GetHeader(middleware.HeaderIdempotencyKey)
	if clientKey == "" {
		response.Error(c, apperror.ErrMissingIdempotencyKey())
		return
	}

	var req dto.OutboundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, okAmt := domain.ParseAmount(req.Amount)
	if !okAmt {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	description := req.Description
	if description == nil && req.Reference != nil {
		description = req.Reference
	}

	txn, err := h.transferSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		SenderID:       &accountID,
		Amount:         amount,
		Type:           txType,
		IdempotencyKey: domain.BuildTransferKey(accountID, clientKey),
		Description:    description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromTransaction(txn))
}
