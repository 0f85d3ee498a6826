package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yieldvest/backend/internal/middleware"
	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/store"
)

// BankHandler serves the bank catalog and the user's payout account
type BankHandler struct {
	store store.Store
}

// NewBankHandler creates a new bank handler
func NewBankHandler(st store.Store) *BankHandler {
	return &BankHandler{store: st}
}

// BankAccountRequest represents the request body for setting payout details
type BankAccountRequest struct {
	BankName      string `json:"bank_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	AccountName   string `json:"account_name" binding:"required"`
}

// ListBanks returns the active payout banks
func (h *BankHandler) ListBanks(c *gin.Context) {
	banks, err := h.store.ListBanks(true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load banks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"banks": banks})
}

// GetBankAccount returns the authenticated user's payout account
func (h *BankHandler) GetBankAccount(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.store.GetBankAccount(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No bank account on file"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bank account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bank_account": account})
}

// SetBankAccount creates or replaces the authenticated user's payout account
func (h *BankHandler) SetBankAccount(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req BankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account := models.BankAccount{
		UserID:        userID,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
	}

	if existing, err := h.store.GetBankAccount(userID); err == nil {
		account.ID = existing.ID
		account.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save bank account"})
		return
	}

	if err := h.store.SaveBankAccount(&account); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save bank account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bank_account": account})
}
