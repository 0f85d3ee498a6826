package purchase

import (
	"errors"
	"fmt"
	"time"

	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/services/ledger"
	"github.com/yieldvest/backend/internal/services/referral"
	"github.com/yieldvest/backend/internal/store"
	"github.com/yieldvest/backend/internal/utils"
)

var (
	// ErrProductNotFound is returned when the product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductInactive is returned when the product is disabled.
	ErrProductInactive = errors.New("product is not available")
	// ErrUserNotFound is returned when the buyer does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// Service executes product purchases. A purchase debits the buyer, snapshots
// the product into a holding and, on the buyer's first purchase, pays
// commissions up the referral chain. Every step runs inside a single store
// transaction, so a failure at any point leaves no partial state.
type Service struct {
	store    store.Store
	ledger   *ledger.Service
	referral *referral.Service
}

// NewService creates a new purchase service.
func NewService(st store.Store, ledgerSvc *ledger.Service, referralSvc *referral.Service) *Service {
	return &Service{
		store:    st,
		ledger:   ledgerSvc,
		referral: referralSvc,
	}
}

// Purchase buys productID for buyerID and returns the created holding.
func (s *Service) Purchase(buyerID, productID uint) (*models.Holding, error) {
	var holding *models.Holding

	err := s.store.WithinTx(func(st store.Store) error {
		product, err := st.GetProduct(productID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("error loading product: %w", err)
		}
		if !product.IsActive {
			return ErrProductInactive
		}

		buyer, err := st.GetUser(buyerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("error loading buyer: %w", err)
		}
		if buyer.Balance < product.Price {
			return store.ErrInsufficientBalance
		}

		reference := utils.GenerateTransactionReference("PUR")
		if _, err := s.ledger.DebitTx(st, buyer.ID, product.Price, models.TxTypePurchase, reference,
			fmt.Sprintf("Purchase of %s", product.Name)); err != nil {
			return err
		}

		holding = &models.Holding{
			UserID:        buyer.ID,
			ProductID:     product.ID,
			ProductName:   product.Name,
			Price:         product.Price,
			DailyIncome:   product.DailyIncome,
			DaysRemaining: product.CycleDays,
			IsActive:      true,
			PurchasedAt:   time.Now(),
		}
		if err := st.CreateHolding(holding); err != nil {
			return fmt.Errorf("error creating holding: %w", err)
		}

		// The test-and-set on has_product decides first purchase. Gating
		// the fan-out on its result means two purchases racing on the
		// same user cannot both pay commissions.
		firstPurchase, err := st.MarkHasProduct(buyer.ID)
		if err != nil {
			return fmt.Errorf("error updating buyer: %w", err)
		}
		if err := st.AddDailyIncome(buyer.ID, product.DailyIncome); err != nil {
			return fmt.Errorf("error updating buyer daily income: %w", err)
		}

		// Commissions are paid once, on the buyer's first purchase only.
		if firstPurchase && buyer.ReferredBy != nil {
			if err := s.payCommissions(st, buyer, product.Price, reference); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return holding, nil
}

func (s *Service) payCommissions(st store.Store, buyer *models.User, price float64, purchaseRef string) error {
	chain, err := s.referral.UplineChain(st, buyer.ID, referral.MaxDepth)
	if err != nil {
		return fmt.Errorf("error walking referral chain: %w", err)
	}

	for _, c := range referral.ComputeCommissions(price, chain) {
		reference := fmt.Sprintf("COM_%s_L%d", purchaseRef, c.Level)
		description := fmt.Sprintf("Level %d commission for purchase by %s", c.Level, buyer.Phone)
		if _, err := s.ledger.CreditTx(st, c.ReferrerID, c.Amount, models.TxTypeCommission, reference, description); err != nil {
			return fmt.Errorf("error crediting level %d commission: %w", c.Level, err)
		}
		if err := st.IncrementCommission(c.ReferrerID, c.Level, c.Amount); err != nil {
			return fmt.Errorf("error updating level %d commission total: %w", c.Level, err)
		}
	}
	return nil
}
