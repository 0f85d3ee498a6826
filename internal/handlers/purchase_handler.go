package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yieldvest/backend/internal/middleware"
	"github.com/yieldvest/backend/internal/services/purchase"
	"github.com/yieldvest/backend/internal/store"
)

// PurchaseHandler handles product purchases and holding queries
type PurchaseHandler struct {
	store    store.Store
	purchase *purchase.Service
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(st store.Store, purchaseSvc *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{store: st, purchase: purchaseSvc}
}

// PurchaseRequest represents the request body for buying a product
type PurchaseRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// Purchase buys a product for the authenticated user
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	holding, err := h.purchase.Purchase(userID, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, purchase.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, purchase.ErrProductInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product is not available"})
		case errors.Is(err, store.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete purchase"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"holding": holding})
}

// ListHoldings returns the authenticated user's purchased products
func (h *PurchaseHandler) ListHoldings(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	holdings, err := h.store.ListHoldingsByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load holdings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"holdings": holdings})
}
