package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yieldvest/backend/internal/models"
)

// GormStore is the postgres-backed Store implementation.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by the given gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// WithinTx runs fn inside a database transaction.
func (s *GormStore) WithinTx(fn func(Store) error) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("error beginning transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&GormStore{db: tx}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// CreateUser creates a new user record.
func (s *GormStore) CreateUser(user *models.User) error {
	return s.db.Create(user).Error
}

// GetUser finds a user by id.
func (s *GormStore) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

// GetUserByPhone finds a user by phone number.
func (s *GormStore) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "phone = ?", phone).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

// GetUserByReferralCode finds a user by their referral code.
func (s *GormStore) GetUserByReferralCode(code string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "referral_code = ?", code).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

// SaveUser saves a full user row. Balance-bearing fields must be changed
// through the atomic mutation methods instead.
func (s *GormStore) SaveUser(user *models.User) error {
	return s.db.Save(user).Error
}

// ListUsers returns a page of users ordered by id.
func (s *GormStore) ListUsers(page, pageSize int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := s.db.Order("id").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("error finding users: %w", err)
	}
	return users, total, nil
}

// CreditBalance adds amount to the user's balance in one atomic update.
func (s *GormStore) CreditBalance(userID uint, amount float64) error {
	result := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("error crediting balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DebitBalance subtracts amount from the user's balance. The sufficiency
// check and the subtraction happen in a single atomic update so concurrent
// debits cannot overdraw the balance.
func (s *GormStore) DebitBalance(userID uint, amount float64) error {
	result := s.db.Model(&models.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return fmt.Errorf("error debiting balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("error checking user: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInsufficientBalance
	}
	return nil
}

// AddDailyIncome adjusts the user's aggregate daily income by delta.
func (s *GormStore) AddDailyIncome(userID uint, delta float64) error {
	result := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("daily_income", gorm.Expr("daily_income + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("error updating daily income: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementCommission adds amount to the user's cumulative commission total
// for the given referral level (1-3).
func (s *GormStore) IncrementCommission(userID uint, level int, amount float64) error {
	if level < 1 || level > 3 {
		return fmt.Errorf("invalid commission level %d", level)
	}
	column := fmt.Sprintf("level%d_commission", level)
	result := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("error updating commission: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkHasProduct flags the user as owning at least one product. The update
// only matches rows where the flag is still unset, so exactly one of any
// concurrent purchases observes the flip and pays first-purchase commissions.
func (s *GormStore) MarkHasProduct(userID uint) (bool, error) {
	result := s.db.Model(&models.User{}).
		Where("id = ? AND has_product = ?", userID, false).
		UpdateColumn("has_product", true)
	if result.Error != nil {
		return false, fmt.Errorf("error setting has_product: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("error checking user: %w", err)
	}
	if count == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

// MarkHasDeposited flags the user as having a confirmed deposit.
func (s *GormStore) MarkHasDeposited(userID uint) error {
	result := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("has_deposited", true)
	if result.Error != nil {
		return fmt.Errorf("error setting has_deposited: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateProduct creates a catalog product.
func (s *GormStore) CreateProduct(product *models.Product) error {
	return s.db.Create(product).Error
}

// GetProduct finds a product by id.
func (s *GormStore) GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &product, nil
}

// ListProducts returns catalog products ordered for display.
func (s *GormStore) ListProducts(activeOnly bool) ([]models.Product, error) {
	var products []models.Product
	query := s.db.Order("sort_order, id")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("error finding products: %w", err)
	}
	return products, nil
}

// SaveProduct saves a catalog product.
func (s *GormStore) SaveProduct(product *models.Product) error {
	return s.db.Save(product).Error
}

// DeleteProduct soft deletes a catalog product.
func (s *GormStore) DeleteProduct(id uint) error {
	result := s.db.Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateBank creates a payout bank entry.
func (s *GormStore) CreateBank(bank *models.Bank) error {
	return s.db.Create(bank).Error
}

// ListBanks returns the payout bank catalog.
func (s *GormStore) ListBanks(activeOnly bool) ([]models.Bank, error) {
	var banks []models.Bank
	query := s.db.Order("name")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&banks).Error; err != nil {
		return nil, fmt.Errorf("error finding banks: %w", err)
	}
	return banks, nil
}

// SaveBank saves a payout bank entry.
func (s *GormStore) SaveBank(bank *models.Bank) error {
	return s.db.Save(bank).Error
}

// DeleteBank soft deletes a payout bank entry.
func (s *GormStore) DeleteBank(id uint) error {
	result := s.db.Delete(&models.Bank{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBankAccount finds the user's payout account.
func (s *GormStore) GetBankAccount(userID uint) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := s.db.First(&account, "user_id = ?", userID).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &account, nil
}

// SaveBankAccount creates or updates the user's payout account.
func (s *GormStore) SaveBankAccount(account *models.BankAccount) error {
	var existing models.BankAccount
	err := s.db.First(&existing, "user_id = ?", account.UserID).Error
	if err == nil {
		account.ID = existing.ID
		account.CreatedAt = existing.CreatedAt
		return s.db.Save(account).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("error finding bank account: %w", err)
	}
	return s.db.Create(account).Error
}

// CreateHolding creates a purchased product holding.
func (s *GormStore) CreateHolding(holding *models.Holding) error {
	return s.db.Create(holding).Error
}

// GetHolding finds a holding by id.
func (s *GormStore) GetHolding(id uint) (*models.Holding, error) {
	var holding models.Holding
	if err := s.db.First(&holding, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &holding, nil
}

// SaveHolding saves a holding row.
func (s *GormStore) SaveHolding(holding *models.Holding) error {
	return s.db.Save(holding).Error
}

// ListHoldingsByUser returns a user's holdings, newest first.
func (s *GormStore) ListHoldingsByUser(userID uint) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := s.db.Where("user_id = ?", userID).Order("purchased_at DESC").Find(&holdings).Error; err != nil {
		return nil, fmt.Errorf("error finding holdings: %w", err)
	}
	return holdings, nil
}

// ListActiveHoldings returns every holding still accruing income.
func (s *GormStore) ListActiveHoldings() ([]models.Holding, error) {
	var holdings []models.Holding
	if err := s.db.Where("is_active = ? AND days_remaining > 0", true).Order("id").Find(&holdings).Error; err != nil {
		return nil, fmt.Errorf("error finding active holdings: %w", err)
	}
	return holdings, nil
}

// CreateTransaction appends a ledger entry.
func (s *GormStore) CreateTransaction(tx *models.Transaction) error {
	var count int64
	if err := s.db.Model(&models.Transaction{}).Where("reference = ?", tx.Reference).Count(&count).Error; err != nil {
		return fmt.Errorf("error checking transaction reference: %w", err)
	}
	if count > 0 {
		return ErrDuplicateReference
	}
	return s.db.Create(tx).Error
}

// GetTransaction finds a transaction by id.
func (s *GormStore) GetTransaction(id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.First(&tx, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &tx, nil
}

// SettleTransaction conditionally moves a transaction out of fromStatus.
// The status guard lives in the WHERE clause, so of two concurrent
// settlements only one matches the row and reports true.
func (s *GormStore) SettleTransaction(id uint, fromStatus, toStatus string, processedAt time.Time) (bool, error) {
	result := s.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, fromStatus).
		UpdateColumns(map[string]interface{}{
			"status":       toStatus,
			"processed_at": processedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("error settling transaction: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}
	var count int64
	if err := s.db.Model(&models.Transaction{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("error checking transaction: %w", err)
	}
	if count == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

// ListTransactionsByUser returns a page of a user's ledger entries, newest first.
func (s *GormStore) ListTransactionsByUser(userID uint, page, pageSize int) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	if err := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting transactions: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("error finding transactions: %w", err)
	}
	return transactions, total, nil
}

// ListTransactions returns a page of ledger entries filtered by type and
// status; empty filters match everything.
func (s *GormStore) ListTransactions(txType, status string, page, pageSize int) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	query := s.db.Model(&models.Transaction{})
	if txType != "" {
		query = query.Where("type = ?", txType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting transactions: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("error finding transactions: %w", err)
	}
	return transactions, total, nil
}

// HasTransactionReference reports whether a ledger entry with the given
// reference already exists.
func (s *GormStore) HasTransactionReference(reference string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Transaction{}).Where("reference = ?", reference).Count(&count).Error; err != nil {
		return false, fmt.Errorf("error checking transaction reference: %w", err)
	}
	return count > 0, nil
}
