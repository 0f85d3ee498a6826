package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/yieldvest/backend/internal/config"
	"github.com/yieldvest/backend/internal/database"
	"github.com/yieldvest/backend/internal/handlers"
	"github.com/yieldvest/backend/internal/jobs"
	"github.com/yieldvest/backend/internal/middleware"
	"github.com/yieldvest/backend/internal/routes"
	"github.com/yieldvest/backend/internal/services/catalog"
	"github.com/yieldvest/backend/internal/services/deposit"
	"github.com/yieldvest/backend/internal/services/ledger"
	"github.com/yieldvest/backend/internal/services/purchase"
	"github.com/yieldvest/backend/internal/services/referral"
	"github.com/yieldvest/backend/internal/services/withdrawal"
	"github.com/yieldvest/backend/internal/store"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Redis only backs the catalog cache; the API stays up without it.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Printf("Redis unavailable, catalog caching disabled: %v", err)
		redisClient = nil
	}

	st := store.NewGormStore(db)

	// Initialize services
	ledgerService := ledger.NewService(st)
	referralService := referral.NewService(st)
	purchaseService := purchase.NewService(st, ledgerService, referralService)
	catalogService := catalog.NewService(st, redisClient)
	depositService := deposit.NewService(st)
	withdrawalService := withdrawal.NewService(st, withdrawal.Config{
		MinAmount: cfg.Withdrawal.MinAmount,
		MaxAmount: cfg.Withdrawal.MaxAmount,
		OpenHour:  cfg.Withdrawal.OpenHour,
		CloseHour: cfg.Withdrawal.CloseHour,
		Location:  cfg.Withdrawal.Location(),
	})

	// Schedule the daily income accrual
	accrualJob := jobs.NewDailyAccrualJob(st, ledgerService, cfg.Withdrawal.Location())
	if err := accrualJob.Schedule(cfg.Accrual.RunAt); err != nil {
		log.Fatalf("Failed to schedule accrual job: %v", err)
	}

	rateLimiter := middleware.NewRateLimiter(20, 10, 40, 5)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(router, routes.Handlers{
		Auth:       handlers.NewAuthHandler(st),
		Product:    handlers.NewProductHandler(catalogService),
		Purchase:   handlers.NewPurchaseHandler(st, purchaseService),
		Wallet:     handlers.NewWalletHandler(st),
		Bank:       handlers.NewBankHandler(st),
		Withdrawal: handlers.NewWithdrawalHandler(withdrawalService),
		Deposit:    handlers.NewDepositHandler(depositService),
		Admin:      handlers.NewAdminHandler(st, catalogService, depositService, withdrawalService, accrualJob),
	}, rateLimiter)

	srv := startServer(router, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	accrualJob.Stop()
	rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// startServer starts the HTTP server
func startServer(router *gin.Engine, port string) *http.Server {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", port)
	return srv
}
