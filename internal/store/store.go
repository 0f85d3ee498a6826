package store

import (
	"errors"
	"time"

	"github.com/yieldvest/backend/internal/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientBalance is returned by DebitBalance when the user's
	// balance does not cover the requested amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrDuplicateReference is returned by CreateTransaction when the
	// reference is already taken.
	ErrDuplicateReference = errors.New("duplicate transaction reference")
)

// Store enumerates every persistence operation the platform performs.
// The production implementation is GormStore; tests run against MemoryStore.
type Store interface {
	// WithinTx runs fn against a transaction-scoped store. All writes made
	// through that store commit together or not at all.
	WithinTx(fn func(Store) error) error

	// Users
	CreateUser(user *models.User) error
	GetUser(id uint) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)
	GetUserByReferralCode(code string) (*models.User, error)
	SaveUser(user *models.User) error
	ListUsers(page, pageSize int) ([]models.User, int64, error)

	// Balance and aggregate mutations, each a single atomic relative update.
	CreditBalance(userID uint, amount float64) error
	DebitBalance(userID uint, amount float64) error
	AddDailyIncome(userID uint, delta float64) error
	IncrementCommission(userID uint, level int, amount float64) error
	// MarkHasProduct is an atomic test-and-set: it reports true only for
	// the call that actually flipped the flag, so concurrent purchases
	// agree on which one was the user's first.
	MarkHasProduct(userID uint) (bool, error)
	MarkHasDeposited(userID uint) error

	// Products
	CreateProduct(product *models.Product) error
	GetProduct(id uint) (*models.Product, error)
	ListProducts(activeOnly bool) ([]models.Product, error)
	SaveProduct(product *models.Product) error
	DeleteProduct(id uint) error

	// Banks and payout accounts
	CreateBank(bank *models.Bank) error
	ListBanks(activeOnly bool) ([]models.Bank, error)
	SaveBank(bank *models.Bank) error
	DeleteBank(id uint) error
	GetBankAccount(userID uint) (*models.BankAccount, error)
	SaveBankAccount(account *models.BankAccount) error

	// Holdings
	CreateHolding(holding *models.Holding) error
	GetHolding(id uint) (*models.Holding, error)
	SaveHolding(holding *models.Holding) error
	ListHoldingsByUser(userID uint) ([]models.Holding, error)
	ListActiveHoldings() ([]models.Holding, error)

	// Transactions
	CreateTransaction(tx *models.Transaction) error
	GetTransaction(id uint) (*models.Transaction, error)
	// SettleTransaction moves a transaction from one status to another in
	// a single conditional update. It reports true only when the row was
	// in fromStatus, so two concurrent settlements cannot both win.
	SettleTransaction(id uint, fromStatus, toStatus string, processedAt time.Time) (bool, error)
	ListTransactionsByUser(userID uint, page, pageSize int) ([]models.Transaction, int64, error)
	ListTransactions(txType, status string, page, pageSize int) ([]models.Transaction, int64, error)
	HasTransactionReference(reference string) (bool, error)
}
