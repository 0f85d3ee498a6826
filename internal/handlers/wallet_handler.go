package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yieldvest/backend/internal/middleware"
	"github.com/yieldvest/backend/internal/store"
)

// WalletHandler serves balance, earnings summary and transaction history
type WalletHandler struct {
	store store.Store
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(st store.Store) *WalletHandler {
	return &WalletHandler{store: st}
}

// GetWallet returns the authenticated user's balance and earnings summary
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.store.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":      user.Balance,
		"daily_income": user.DailyIncome,
		"commissions": gin.H{
			"level1": user.Level1Commission,
			"level2": user.Level2Commission,
			"level3": user.Level3Commission,
			"total":  user.Level1Commission + user.Level2Commission + user.Level3Commission,
		},
		"referral_code": user.ReferralCode,
	})
}

// ListTransactions returns the authenticated user's transaction history,
// newest first
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, pageSize := pagination(c)

	transactions, total, err := h.store.ListTransactionsByUser(userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}

// pagination reads page/page_size query params with sane defaults
func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
