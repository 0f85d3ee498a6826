package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yieldvest/backend/internal/handlers"
	"github.com/yieldvest/backend/internal/middleware"
)

// Handlers collects every handler the router needs.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Product    *handlers.ProductHandler
	Purchase   *handlers.PurchaseHandler
	Wallet     *handlers.WalletHandler
	Bank       *handlers.BankHandler
	Withdrawal *handlers.WithdrawalHandler
	Deposit    *handlers.DepositHandler
	Admin      *handlers.AdminHandler
}

// RegisterRoutes configures all API routes
func RegisterRoutes(router *gin.Engine, h Handlers, rateLimiter *middleware.RateLimiter) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.Use(rateLimiter.IPRateLimiterMiddleware())

	// Public routes
	authGroup := router.Group("/api/auth")
	authGroup.Use(rateLimiter.AuthRateLimiterMiddleware())
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.RefreshToken)
	}

	router.GET("/api/products", h.Product.ListProducts)
	router.GET("/api/banks", h.Bank.ListBanks)

	// Authenticated user routes
	userGroup := router.Group("/api")
	userGroup.Use(middleware.AuthMiddleware())
	{
		userGroup.GET("/wallet", h.Wallet.GetWallet)
		userGroup.GET("/transactions", h.Wallet.ListTransactions)

		userGroup.POST("/purchases", h.Purchase.Purchase)
		userGroup.GET("/holdings", h.Purchase.ListHoldings)

		userGroup.GET("/bank-account", h.Bank.GetBankAccount)
		userGroup.PUT("/bank-account", h.Bank.SetBankAccount)

		userGroup.POST("/deposits", h.Deposit.RequestDeposit)
		userGroup.POST("/withdrawals", h.Withdrawal.RequestWithdrawal)
	}

	// Admin routes
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		adminGroup.GET("/products", h.Admin.ListAllProducts)
		adminGroup.POST("/products", h.Admin.CreateProduct)
		adminGroup.PUT("/products/:id", h.Admin.UpdateProduct)
		adminGroup.DELETE("/products/:id", h.Admin.DeleteProduct)

		adminGroup.GET("/banks", h.Admin.ListAllBanks)
		adminGroup.POST("/banks", h.Admin.CreateBank)
		adminGroup.DELETE("/banks/:id", h.Admin.DeleteBank)

		adminGroup.GET("/users", h.Admin.ListUsers)
		adminGroup.PUT("/users/:id/blocked", h.Admin.SetUserBlocked)

		adminGroup.GET("/transactions", h.Admin.ListTransactions)

		adminGroup.POST("/deposits/:id/approve", h.Admin.ApproveDeposit)
		adminGroup.POST("/deposits/:id/reject", h.Admin.RejectDeposit)
		adminGroup.POST("/withdrawals/:id/approve", h.Admin.ApproveWithdrawal)
		adminGroup.POST("/withdrawals/:id/reject", h.Admin.RejectWithdrawal)

		adminGroup.POST("/accrual/run", h.Admin.RunAccrual)
	}
}
