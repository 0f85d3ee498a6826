package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yieldvest/backend/internal/middleware"
	"github.com/yieldvest/backend/internal/services/deposit"
)

// DepositHandler handles user deposit requests
type DepositHandler struct {
	deposit *deposit.Service
}

// NewDepositHandler creates a new deposit handler
func NewDepositHandler(depositSvc *deposit.Service) *DepositHandler {
	return &DepositHandler{deposit: depositSvc}
}

// DepositRequest represents the request body for a deposit
type DepositRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	BankName string  `json:"bank_name"`
}

// RequestDeposit records a pending deposit. The balance is only credited
// once an admin confirms the payment arrived.
func (h *DepositHandler) RequestDeposit(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.deposit.Request(userID, req.Amount, req.BankName)
	if err != nil {
		if errors.Is(err, deposit.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Deposit amount must be positive"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record deposit"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"deposit": tx})
}
