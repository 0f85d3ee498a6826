package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yieldvest/backend/internal/services/catalog"
)

// ProductHandler serves the public product catalog
type ProductHandler struct {
	catalog *catalog.Service
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalogSvc *catalog.Service) *ProductHandler {
	return &ProductHandler{catalog: catalogSvc}
}

// ListProducts returns all active catalog products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ActiveProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}
