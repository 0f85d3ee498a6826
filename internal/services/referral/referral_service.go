package referral

import (
	"errors"

	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/store"
)

// MaxDepth is how far up the referral chain commissions reach.
const MaxDepth = 3

// commissionRates holds the fixed per-level cut of the purchase amount,
// level 1 first. Past commissions are materialized as transaction rows, so
// changing these never rewrites history.
var commissionRates = [MaxDepth]float64{0.25, 0.05, 0.02}

// Commission is one computed payout for a referrer in the upline chain.
type Commission struct {
	ReferrerID uint
	Level      int
	Amount     float64
}

// Rate returns the commission rate for a referral level (1-based).
// Levels outside the chain pay nothing.
func Rate(level int) float64 {
	if level < 1 || level > MaxDepth {
		return 0
	}
	return commissionRates[level-1]
}

// Service reads the referral graph stored as ReferredBy back-references on
// user rows.
type Service struct {
	store store.Store
}

// NewService creates a new referral service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// UplineChain returns the user's referrers in order, direct referrer first,
// following ReferredBy up to maxDepth hops. A referrer pointing at a
// missing user truncates the chain instead of failing, and the depth bound
// keeps a cyclic chain from walking forever.
func (s *Service) UplineChain(st store.Store, userID uint, maxDepth int) ([]models.User, error) {
	if st == nil {
		st = s.store
	}

	current, err := st.GetUser(userID)
	if err != nil {
		return nil, err
	}

	chain := make([]models.User, 0, maxDepth)
	for depth := 0; depth < maxDepth; depth++ {
		if current.ReferredBy == nil {
			break
		}
		referrer, err := st.GetUser(*current.ReferredBy)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				break // broken back-reference truncates the chain
			}
			return nil, err
		}
		chain = append(chain, *referrer)
		current = referrer
	}
	return chain, nil
}

// ComputeCommissions maps a purchase amount over an upline chain. Levels
// with no referrer are simply absent from the result; no zero-amount
// entries are produced.
func ComputeCommissions(purchaseAmount float64, chain []models.User) []Commission {
	commissions := make([]Commission, 0, len(chain))
	for i, referrer := range chain {
		if i >= MaxDepth {
			break
		}
		commissions = append(commissions, Commission{
			ReferrerID: referrer.ID,
			Level:      i + 1,
			Amount:     purchaseAmount * commissionRates[i],
		})
	}
	return commissions
}
