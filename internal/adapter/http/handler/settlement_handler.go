package handler

import (
	"bytes"
	"encoding/json"
	"io"

	"ewallet-backend/internal/adapter/http/dto"
	"ewallet-backend/internal/adapter/http/middleware"
	"ewallet-backend/internal/core/domain"
	"ewallet-backend/internal/core/ports"
	"ewallet-backend/pkg/apperror"
	"ewallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
)

// SettlementHandler receives signed settlement events from the payment
// processor. Money only moves after the processor confirms it; a client can
// never assert its own deposit.
type SettlementHandler struct {
	settlementSvc ports.SettlementService
	sigSvc        ports.SignatureService
	webhookSecret string
	log           zerolog.Logger
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(
	settlementSvc ports.SettlementService,
	sigSvc ports.SignatureService,
	webhookSecret string,
	log zerolog.Logger,
) *SettlementHandler {
	return &SettlementHandler{
		settlementSvc: settlementSvc,
		sigSvc:        sigSvc,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// HandleEvent handles POST /api/v1/settlements/events.
// The processor signs the raw request body with HMAC-SHA256 and sends the
// hex signature in X-Signature.
func (h *SettlementHandler) HandleEvent(c *gin.Context) {
	signature := c.GetHeader(middleware.HeaderSignature)
	if signature == "" {
		response.Error(c, apperror.ErrInvalidSettlement())
		return
	}

	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	if !h.sigSvc.Verify(h.webhookSecret, string(bodyBytes), signature) {
		h.log.Warn().Str("client_ip", c.ClientIP()).Msg("settlement event with bad signature rejected")
		response.Error(c, apperror.ErrInvalidSettlement())
		return
	}

	var req dto.SettlementRequest
	if err := json.Unmarshal(bodyBytes, &req); err != nil {
		response.Error(c, apperror.Validation("malformed settlement body"))
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, ok := domain.ParseAmount(req.Amount)
	if !ok {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	txn, err := h.settlementSvc.HandleSettlement(c.Request.Context(), ports.SettlementEvent{
		AccountIdentifier:   req.Account,
		Amount:              amount,
		ExternalReferenceID: req.ExternalReferenceID,
		Direction:           ports.SettlementDirection(req.Direction),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransaction(txn))
}
