package handler

import (
	"ewallet-backend/internal/adapter/http/dto"
	"ewallet-backend/internal/adapter/http/middleware"
	"ewallet-backend/internal/core/ports"
	"ewallet-backend/pkg/apperror"
	"ewallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles account profile endpoints.
type AccountHandler struct {
	accountSvc ports.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc ports.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// GetProfile handles GET /api/v1/accounts/me.
func (h *AccountHandler) GetProfile(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	account, err := h.accountSvc.GetProfile(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromAccount(account))
}

// UpdateProfile handles PUT /api/v1/accounts/me.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	account, err := h.accountSvc.UpdateProfile(c.Request.Context(), accountID, ports.UpdateProfileRequest{
		Name:      req.Name,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromAccount(account))
}
