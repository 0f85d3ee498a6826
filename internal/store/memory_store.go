package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yieldvest/backend/internal/models"
)

// MemoryStore is a map-backed Store used by tests. WithinTx clones the
// backing maps and swaps them in on success, so a failed transaction leaves
// no partial state, and a single mutex serializes transactions the way row
// locks do in the postgres store.
type MemoryStore struct {
	mu   sync.Mutex
	data *memoryData
	inTx bool
}

type memoryData struct {
	users        map[uint]models.User
	products     map[uint]models.Product
	banks        map[uint]models.Bank
	bankAccounts map[uint]models.BankAccount // keyed by user id
	holdings     map[uint]models.Holding
	transactions map[uint]models.Transaction

	nextUserID        uint
	nextProductID     uint
	nextBankID        uint
	nextBankAccountID uint
	nextHoldingID     uint
	nextTransactionID uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: &memoryData{
		users:        make(map[uint]models.User),
		products:     make(map[uint]models.Product),
		banks:        make(map[uint]models.Bank),
		bankAccounts: make(map[uint]models.BankAccount),
		holdings:     make(map[uint]models.Holding),
		transactions: make(map[uint]models.Transaction),
	}}
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		users:             make(map[uint]models.User, len(d.users)),
		products:          make(map[uint]models.Product, len(d.products)),
		banks:             make(map[uint]models.Bank, len(d.banks)),
		bankAccounts:      make(map[uint]models.BankAccount, len(d.bankAccounts)),
		holdings:          make(map[uint]models.Holding, len(d.holdings)),
		transactions:      make(map[uint]models.Transaction, len(d.transactions)),
		nextUserID:        d.nextUserID,
		nextProductID:     d.nextProductID,
		nextBankID:        d.nextBankID,
		nextBankAccountID: d.nextBankAccountID,
		nextHoldingID:     d.nextHoldingID,
		nextTransactionID: d.nextTransactionID,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.banks {
		c.banks[k] = v
	}
	for k, v := range d.bankAccounts {
		c.bankAccounts[k] = v
	}
	for k, v := range d.holdings {
		c.holdings[k] = v
	}
	for k, v := range d.transactions {
		c.transactions[k] = v
	}
	return c
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx runs fn against a copy of the store and commits the copy on
// success. Nested calls run in the enclosing transaction.
func (s *MemoryStore) WithinTx(fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	txStore := &MemoryStore{data: s.data.clone(), inTx: true}
	if err := fn(txStore); err != nil {
		return err
	}
	s.data = txStore.data
	return nil
}

// CreateUser creates a user, assigning the next free id.
func (s *MemoryStore) CreateUser(user *models.User) error {
	defer s.lock()()
	s.data.nextUserID++
	user.ID = s.data.nextUserID
	stampNew(&user.CreatedAt, &user.UpdatedAt)
	s.data.users[user.ID] = *user
	return nil
}

// GetUser finds a user by id.
func (s *MemoryStore) GetUser(id uint) (*models.User, error) {
	defer s.lock()()
	user, ok := s.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// GetUserByPhone finds a user by phone number.
func (s *MemoryStore) GetUserByPhone(phone string) (*models.User, error) {
	defer s.lock()()
	for _, user := range s.data.users {
		if user.Phone == phone {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// GetUserByReferralCode finds a user by referral code.
func (s *MemoryStore) GetUserByReferralCode(code string) (*models.User, error) {
	defer s.lock()()
	for _, user := range s.data.users {
		if user.ReferralCode == code {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// SaveUser saves the full user row.
func (s *MemoryStore) SaveUser(user *models.User) error {
	defer s.lock()()
	if _, ok := s.data.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	s.data.users[user.ID] = *user
	return nil
}

// ListUsers returns a page of users ordered by id.
func (s *MemoryStore) ListUsers(page, pageSize int) ([]models.User, int64, error) {
	defer s.lock()()
	ids := make([]uint, 0, len(s.data.users))
	for id := range s.data.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, s.data.users[id])
	}
	return paginate(users, page, pageSize), int64(len(ids)), nil
}

func (s *MemoryStore) mutateUser(userID uint, fn func(*models.User) error) error {
	defer s.lock()()
	user, ok := s.data.users[userID]
	if !ok {
		return ErrNotFound
	}
	if err := fn(&user); err != nil {
		return err
	}
	user.UpdatedAt = time.Now()
	s.data.users[userID] = user
	return nil
}

// CreditBalance adds amount to the user's balance.
func (s *MemoryStore) CreditBalance(userID uint, amount float64) error {
	return s.mutateUser(userID, func(u *models.User) error {
		u.Balance += amount
		return nil
	})
}

// DebitBalance checks sufficiency and subtracts in one step.
func (s *MemoryStore) DebitBalance(userID uint, amount float64) error {
	return s.mutateUser(userID, func(u *models.User) error {
		if u.Balance < amount {
			return ErrInsufficientBalance
		}
		u.Balance -= amount
		return nil
	})
}

// AddDailyIncome adjusts the aggregate daily income by delta.
func (s *MemoryStore) AddDailyIncome(userID uint, delta float64) error {
	return s.mutateUser(userID, func(u *models.User) error {
		u.DailyIncome += delta
		return nil
	})
}

// IncrementCommission adds amount to the cumulative total for a level.
func (s *MemoryStore) IncrementCommission(userID uint, level int, amount float64) error {
	return s.mutateUser(userID, func(u *models.User) error {
		switch level {
		case 1:
			u.Level1Commission += amount
		case 2:
			u.Level2Commission += amount
		case 3:
			u.Level3Commission += amount
		default:
			return fmt.Errorf("invalid commission level %d", level)
		}
		return nil
	})
}

// MarkHasProduct flags the user as owning a product, reporting whether
// this call flipped the flag.
func (s *MemoryStore) MarkHasProduct(userID uint) (bool, error) {
	flipped := false
	err := s.mutateUser(userID, func(u *models.User) error {
		if !u.HasProduct {
			u.HasProduct = true
			flipped = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return flipped, nil
}

// MarkHasDeposited flags the user as having a confirmed deposit.
func (s *MemoryStore) MarkHasDeposited(userID uint) error {
	return s.mutateUser(userID, func(u *models.User) error {
		u.HasDeposited = true
		return nil
	})
}

// CreateProduct creates a catalog product.
func (s *MemoryStore) CreateProduct(product *models.Product) error {
	defer s.lock()()
	s.data.nextProductID++
	product.ID = s.data.nextProductID
	stampNew(&product.CreatedAt, &product.UpdatedAt)
	s.data.products[product.ID] = *product
	return nil
}

// GetProduct finds a product by id.
func (s *MemoryStore) GetProduct(id uint) (*models.Product, error) {
	defer s.lock()()
	product, ok := s.data.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

// ListProducts returns catalog products in display order.
func (s *MemoryStore) ListProducts(activeOnly bool) ([]models.Product, error) {
	defer s.lock()()
	products := make([]models.Product, 0, len(s.data.products))
	for _, product := range s.data.products {
		if activeOnly && !product.IsActive {
			continue
		}
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].SortOrder != products[j].SortOrder {
			return products[i].SortOrder < products[j].SortOrder
		}
		return products[i].ID < products[j].ID
	})
	return products, nil
}

// SaveProduct saves a catalog product.
func (s *MemoryStore) SaveProduct(product *models.Product) error {
	defer s.lock()()
	if _, ok := s.data.products[product.ID]; !ok {
		return ErrNotFound
	}
	product.UpdatedAt = time.Now()
	s.data.products[product.ID] = *product
	return nil
}

// DeleteProduct removes a catalog product.
func (s *MemoryStore) DeleteProduct(id uint) error {
	defer s.lock()()
	if _, ok := s.data.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.products, id)
	return nil
}

// CreateBank creates a payout bank entry.
func (s *MemoryStore) CreateBank(bank *models.Bank) error {
	defer s.lock()()
	s.data.nextBankID++
	bank.ID = s.data.nextBankID
	stampNew(&bank.CreatedAt, &bank.UpdatedAt)
	s.data.banks[bank.ID] = *bank
	return nil
}

// ListBanks returns the payout bank catalog sorted by name.
func (s *MemoryStore) ListBanks(activeOnly bool) ([]models.Bank, error) {
	defer s.lock()()
	banks := make([]models.Bank, 0, len(s.data.banks))
	for _, bank := range s.data.banks {
		if activeOnly && !bank.IsActive {
			continue
		}
		banks = append(banks, bank)
	}
	sort.Slice(banks, func(i, j int) bool { return banks[i].Name < banks[j].Name })
	return banks, nil
}

// SaveBank saves a payout bank entry.
func (s *MemoryStore) SaveBank(bank *models.Bank) error {
	defer s.lock()()
	if _, ok := s.data.banks[bank.ID]; !ok {
		return ErrNotFound
	}
	bank.UpdatedAt = time.Now()
	s.data.banks[bank.ID] = *bank
	return nil
}

// DeleteBank removes a payout bank entry.
func (s *MemoryStore) DeleteBank(id uint) error {
	defer s.lock()()
	if _, ok := s.data.banks[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.banks, id)
	return nil
}

// GetBankAccount finds the user's payout account.
func (s *MemoryStore) GetBankAccount(userID uint) (*models.BankAccount, error) {
	defer s.lock()()
	account, ok := s.data.bankAccounts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

// SaveBankAccount creates or replaces the user's payout account.
func (s *MemoryStore) SaveBankAccount(account *models.BankAccount) error {
	defer s.lock()()
	if existing, ok := s.data.bankAccounts[account.UserID]; ok {
		account.ID = existing.ID
		account.CreatedAt = existing.CreatedAt
	} else {
		s.data.nextBankAccountID++
		account.ID = s.data.nextBankAccountID
		account.CreatedAt = time.Now()
	}
	account.UpdatedAt = time.Now()
	s.data.bankAccounts[account.UserID] = *account
	return nil
}

// CreateHolding creates a purchased product holding.
func (s *MemoryStore) CreateHolding(holding *models.Holding) error {
	defer s.lock()()
	s.data.nextHoldingID++
	holding.ID = s.data.nextHoldingID
	stampNew(&holding.CreatedAt, &holding.UpdatedAt)
	if holding.PurchasedAt.IsZero() {
		holding.PurchasedAt = holding.CreatedAt
	}
	s.data.holdings[holding.ID] = *holding
	return nil
}

// GetHolding finds a holding by id.
func (s *MemoryStore) GetHolding(id uint) (*models.Holding, error) {
	defer s.lock()()
	holding, ok := s.data.holdings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &holding, nil
}

// SaveHolding saves a holding row.
func (s *MemoryStore) SaveHolding(holding *models.Holding) error {
	defer s.lock()()
	if _, ok := s.data.holdings[holding.ID]; !ok {
		return ErrNotFound
	}
	holding.UpdatedAt = time.Now()
	s.data.holdings[holding.ID] = *holding
	return nil
}

// ListHoldingsByUser returns a user's holdings, newest first.
func (s *MemoryStore) ListHoldingsByUser(userID uint) ([]models.Holding, error) {
	defer s.lock()()
	holdings := make([]models.Holding, 0)
	for _, holding := range s.data.holdings {
		if holding.UserID == userID {
			holdings = append(holdings, holding)
		}
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].ID > holdings[j].ID })
	return holdings, nil
}

// ListActiveHoldings returns every holding still accruing income.
func (s *MemoryStore) ListActiveHoldings() ([]models.Holding, error) {
	defer s.lock()()
	holdings := make([]models.Holding, 0)
	for _, holding := range s.data.holdings {
		if holding.IsActive && holding.DaysRemaining > 0 {
			holdings = append(holdings, holding)
		}
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].ID < holdings[j].ID })
	return holdings, nil
}

// CreateTransaction appends a ledger entry, enforcing reference uniqueness.
func (s *MemoryStore) CreateTransaction(tx *models.Transaction) error {
	defer s.lock()()
	for _, existing := range s.data.transactions {
		if existing.Reference == tx.Reference {
			return ErrDuplicateReference
		}
	}
	s.data.nextTransactionID++
	tx.ID = s.data.nextTransactionID
	stampNew(&tx.CreatedAt, &tx.UpdatedAt)
	s.data.transactions[tx.ID] = *tx
	return nil
}

// GetTransaction finds a transaction by id.
func (s *MemoryStore) GetTransaction(id uint) (*models.Transaction, error) {
	defer s.lock()()
	tx, ok := s.data.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &tx, nil
}

// SettleTransaction conditionally moves a transaction out of fromStatus,
// reporting whether this call won the flip.
func (s *MemoryStore) SettleTransaction(id uint, fromStatus, toStatus string, processedAt time.Time) (bool, error) {
	defer s.lock()()
	tx, ok := s.data.transactions[id]
	if !ok {
		return false, ErrNotFound
	}
	if tx.Status != fromStatus {
		return false, nil
	}
	tx.Status = toStatus
	tx.ProcessedAt = &processedAt
	tx.UpdatedAt = time.Now()
	s.data.transactions[id] = tx
	return true, nil
}

// ListTransactionsByUser returns a page of a user's entries, newest first.
func (s *MemoryStore) ListTransactionsByUser(userID uint, page, pageSize int) ([]models.Transaction, int64, error) {
	return s.listTransactions(func(tx models.Transaction) bool {
		return tx.UserID == userID
	}, page, pageSize)
}

// ListTransactions returns a page of entries filtered by type and status.
func (s *MemoryStore) ListTransactions(txType, status string, page, pageSize int) ([]models.Transaction, int64, error) {
	return s.listTransactions(func(tx models.Transaction) bool {
		if txType != "" && tx.Type != txType {
			return false
		}
		if status != "" && tx.Status != status {
			return false
		}
		return true
	}, page, pageSize)
}

func (s *MemoryStore) listTransactions(match func(models.Transaction) bool, page, pageSize int) ([]models.Transaction, int64, error) {
	defer s.lock()()
	transactions := make([]models.Transaction, 0)
	for _, tx := range s.data.transactions {
		if match(tx) {
			transactions = append(transactions, tx)
		}
	}
	sort.Slice(transactions, func(i, j int) bool { return transactions[i].ID > transactions[j].ID })
	return paginate(transactions, page, pageSize), int64(len(transactions)), nil
}

// HasTransactionReference reports whether a ledger entry with the given
// reference already exists.
func (s *MemoryStore) HasTransactionReference(reference string) (bool, error) {
	defer s.lock()()
	for _, tx := range s.data.transactions {
		if tx.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

func stampNew(createdAt, updatedAt *time.Time) {
	now := time.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

func paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = len(items)
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
