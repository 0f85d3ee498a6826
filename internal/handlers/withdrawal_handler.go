package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yieldvest/backend/internal/middleware"
	"github.com/yieldvest/backend/internal/services/withdrawal"
	"github.com/yieldvest/backend/internal/store"
)

// WithdrawalHandler handles user withdrawal requests
type WithdrawalHandler struct {
	withdrawal *withdrawal.Service
}

// NewWithdrawalHandler creates a new withdrawal handler
func NewWithdrawalHandler(withdrawalSvc *withdrawal.Service) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawal: withdrawalSvc}
}

// WithdrawRequest represents the request body for a withdrawal
type WithdrawRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// RequestWithdrawal places a withdrawal request for the authenticated user.
// The amount is reserved immediately; the transaction stays pending until an
// admin approves or rejects it.
func (h *WithdrawalHandler) RequestWithdrawal(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.withdrawal.Request(userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, withdrawal.ErrNotWeekday),
			errors.Is(err, withdrawal.ErrOutsideBusinessHours):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Withdrawals are only processed on weekdays between 10:00 and 15:00"})
		case errors.Is(err, withdrawal.ErrAmountOutOfRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Withdrawal amount must be between %.0f and %.0f", h.withdrawal.MinAmount(), h.withdrawal.MaxAmount())})
		case errors.Is(err, withdrawal.ErrNoProduct):
			c.JSON(http.StatusBadRequest, gin.H{"error": "An active product is required before withdrawing"})
		case errors.Is(err, withdrawal.ErrNoDeposit):
			c.JSON(http.StatusBadRequest, gin.H{"error": "A confirmed deposit is required before withdrawing"})
		case errors.Is(err, withdrawal.ErrNoBankInfo):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Add your bank account details before withdrawing"})
		case errors.Is(err, store.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process withdrawal"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"withdrawal": tx})
}
