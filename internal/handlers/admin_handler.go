package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yieldvest/backend/internal/jobs"
	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/services/catalog"
	"github.com/yieldvest/backend/internal/services/deposit"
	"github.com/yieldvest/backend/internal/services/withdrawal"
	"github.com/yieldvest/backend/internal/store"
)

// AdminHandler bundles the back-office operations: catalog and bank
// management, deposit and withdrawal review, user administration and the
// manual accrual trigger.
type AdminHandler struct {
	store      store.Store
	catalog    *catalog.Service
	deposit    *deposit.Service
	withdrawal *withdrawal.Service
	accrual    *jobs.DailyAccrualJob
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(st store.Store, catalogSvc *catalog.Service, depositSvc *deposit.Service, withdrawalSvc *withdrawal.Service, accrualJob *jobs.DailyAccrualJob) *AdminHandler {
	return &AdminHandler{
		store:      st,
		catalog:    catalogSvc,
		deposit:    depositSvc,
		withdrawal: withdrawalSvc,
		accrual:    accrualJob,
	}
}

// ProductRequest represents the request body for creating or updating a product
type ProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	CycleDays   int     `json:"cycle_days" binding:"required,gt=0"`
	DailyIncome float64 `json:"daily_income" binding:"required,gt=0"`
	IsActive    *bool   `json:"is_active"`
	SortOrder   int     `json:"sort_order"`
}

// BankRequest represents the request body for creating or updating a bank
type BankRequest struct {
	Name     string `json:"name" binding:"required"`
	Code     string `json:"code"`
	IsActive *bool  `json:"is_active"`
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// CreateProduct adds a product to the catalog
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.Product{
		Name:        req.Name,
		Price:       req.Price,
		CycleDays:   req.CycleDays,
		DailyIncome: req.DailyIncome,
		ReturnRate:  req.DailyIncome / req.Price,
		IsActive:    true,
		SortOrder:   req.SortOrder,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.catalog.CreateProduct(c.Request.Context(), &product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct edits a catalog product. Existing holdings keep their
// purchase-time snapshot and are unaffected.
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.store.GetProduct(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	product.Name = req.Name
	product.Price = req.Price
	product.CycleDays = req.CycleDays
	product.DailyIncome = req.DailyIncome
	product.ReturnRate = req.DailyIncome / req.Price
	product.SortOrder = req.SortOrder
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.catalog.UpdateProduct(c.Request.Context(), product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct removes a product from the catalog
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// ListAllProducts returns every catalog product including inactive ones
func (h *AdminHandler) ListAllProducts(c *gin.Context) {
	products, err := h.store.ListProducts(false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// CreateBank adds a payout bank
func (h *AdminHandler) CreateBank(c *gin.Context) {
	var req BankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bank := models.Bank{Name: req.Name, Code: req.Code, IsActive: true}
	if req.IsActive != nil {
		bank.IsActive = *req.IsActive
	}

	if err := h.store.CreateBank(&bank); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bank"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bank": bank})
}

// ListAllBanks returns every payout bank including inactive ones
func (h *AdminHandler) ListAllBanks(c *gin.Context) {
	banks, err := h.store.ListBanks(false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load banks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"banks": banks})
}

// DeleteBank removes a payout bank
func (h *AdminHandler) DeleteBank(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteBank(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bank not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete bank"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bank deleted"})
}

// ListUsers returns all users, paginated
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, pageSize := pagination(c)

	users, total, err := h.store.ListUsers(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":     users,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// SetUserBlocked blocks or unblocks a user account
func (h *AdminHandler) SetUserBlocked(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Blocked *bool `json:"blocked" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.GetUser(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	user.IsBlocked = *req.Blocked
	if err := h.store.SaveUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListTransactions returns transactions across all users, optionally
// filtered by type and status
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	page, pageSize := pagination(c)
	txType := c.Query("type")
	status := c.Query("status")

	transactions, total, err := h.store.ListTransactions(txType, status, page, pageSize)
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

// ApproveDeposit confirms a pending deposit and credits the user
func (h *AdminHandler) ApproveDeposit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tx, err := h.deposit.Approve(id)
	if err != nil {
		h.reviewError(c, err, deposit.ErrNotPending, deposit.ErrNotDeposit, "deposit")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deposit": tx})
}

// RejectDeposit marks a pending deposit as failed
func (h *AdminHandler) RejectDeposit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tx, err := h.deposit.Reject(id)
	if err != nil {
		h.reviewError(c, err, deposit.ErrNotPending, deposit.ErrNotDeposit, "deposit")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deposit": tx})
}

// ApproveWithdrawal marks a pending withdrawal as paid out
func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tx, err := h.withdrawal.Approve(id)
	if err != nil {
		h.reviewError(c, err, withdrawal.ErrNotPending, withdrawal.ErrNotWithdrawal, "withdrawal")
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawal": tx})
}

// RejectWithdrawal fails a pending withdrawal and refunds the reserved amount
func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tx, err := h.withdrawal.Reject(id)
	if err != nil {
		h.reviewError(c, err, withdrawal.ErrNotPending, withdrawal.ErrNotWithdrawal, "withdrawal")
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawal": tx})
}

// RunAccrual triggers the daily income accrual immediately. Safe to call
// more than once per day; holdings already credited today are skipped.
func (h *AdminHandler) RunAccrual(c *gin.Context) {
	result, err := h.accrual.Run()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Accrual run failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *AdminHandler) reviewError(c *gin.Context, err, notPending, wrongType error, kind string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
	case errors.Is(err, notPending):
		c.JSON(http.StatusConflict, gin.H{"error": "The " + kind + " is not pending"})
	case errors.Is(err, wrongType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction is not a " + kind})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update " + kind})
	}
}
