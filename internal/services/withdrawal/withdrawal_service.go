package withdrawal

import (
	"errors"
	"fmt"
	"time"

	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/store"
	"github.com/yieldvest/backend/internal/utils"
)

// Precondition errors, one per rule so handlers can render an actionable
// message for each.
var (
	ErrOutsideBusinessHours = errors.New("withdrawals are only processed between business hours")
	ErrNotWeekday           = errors.New("withdrawals are only processed on weekdays")
	ErrNoProduct            = errors.New("an active product is required before withdrawing")
	ErrNoDeposit            = errors.New("a confirmed deposit is required before withdrawing")
	ErrAmountOutOfRange     = errors.New("withdrawal amount is out of range")
	ErrNoBankInfo           = errors.New("no payout bank account on file")
	ErrNotPending           = errors.New("withdrawal is not pending")
	ErrNotWithdrawal        = errors.New("transaction is not a withdrawal")
)

// Config carries the withdrawal business rules.
type Config struct {
	MinAmount float64
	MaxAmount float64
	OpenHour  int // first hour withdrawals are accepted, inclusive
	CloseHour int // hour withdrawals stop being accepted, exclusive
	Location  *time.Location
}

// Service validates and records withdrawal requests. The amount is debited
// immediately on request; admin approval only flips the transaction status,
// while rejection credits the amount back.
type Service struct {
	store store.Store
	cfg   Config
	now   func() time.Time
}

// NewService creates a withdrawal service using the real clock.
func NewService(st store.Store, cfg Config) *Service {
	return &Service{store: st, cfg: cfg, now: time.Now}
}

// WithClock overrides the service clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// MinAmount returns the configured minimum withdrawal amount.
func (s *Service) MinAmount() float64 { return s.cfg.MinAmount }

// MaxAmount returns the configured maximum withdrawal amount.
func (s *Service) MaxAmount() float64 { return s.cfg.MaxAmount }

// Request validates every withdrawal precondition and, on success, debits
// the user and records a pending withdrawal transaction carrying a snapshot
// of their payout bank details.
func (s *Service) Request(userID uint, amount float64) (*models.Transaction, error) {
	localNow := s.now().In(s.cfg.Location)
	if wd := localNow.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return nil, ErrNotWeekday
	}
	if hour := localNow.Hour(); hour < s.cfg.OpenHour || hour >= s.cfg.CloseHour {
		return nil, ErrOutsideBusinessHours
	}
	if amount < s.cfg.MinAmount || amount > s.cfg.MaxAmount {
		return nil, ErrAmountOutOfRange
	}

	var record *models.Transaction
	err := s.store.WithinTx(func(st store.Store) error {
		user, err := st.GetUser(userID)
		if err != nil {
			return err
		}
		if !user.HasProduct {
			return ErrNoProduct
		}
		if !user.HasDeposited {
			return ErrNoDeposit
		}

		account, err := st.GetBankAccount(userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNoBankInfo
			}
			return fmt.Errorf("error loading bank account: %w", err)
		}

		if err := st.DebitBalance(userID, amount); err != nil {
			return err
		}

		record = &models.Transaction{
			UserID:        userID,
			Type:          models.TxTypeWithdrawal,
			Amount:        -amount, // funds are reserved while payout is pending
			Status:        models.TxStatusPending,
			Reference:     utils.GenerateTransactionReference("WD"),
			Description:   "Withdrawal request",
			BankName:      account.BankName,
			AccountNumber: account.AccountNumber,
			AccountName:   account.AccountName,
		}
		if err := st.CreateTransaction(record); err != nil {
			return fmt.Errorf("error creating withdrawal record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Approve marks a pending withdrawal as paid out. The balance was already
// debited at request time, so approval does not touch it.
func (s *Service) Approve(withdrawalID uint) (*models.Transaction, error) {
	return s.settle(withdrawalID, models.TxStatusCompleted, nil)
}

// Reject fails a pending withdrawal and credits the reserved amount back
// through a compensating ledger entry.
func (s *Service) Reject(withdrawalID uint) (*models.Transaction, error) {
	return s.settle(withdrawalID, models.TxStatusFailed, func(st store.Store, tx *models.Transaction) error {
		refund := -tx.Amount
		if err := st.CreditBalance(tx.UserID, refund); err != nil {
			return fmt.Errorf("error refunding withdrawal: %w", err)
		}
		compensation := &models.Transaction{
			UserID:      tx.UserID,
			Type:        models.TxTypeWithdrawal,
			Amount:      refund,
			Status:      models.TxStatusCompleted,
			Reference:   fmt.Sprintf("RF_%s", tx.Reference),
			Description: "Withdrawal rejected, amount refunded",
		}
		if err := st.CreateTransaction(compensation); err != nil {
			return fmt.Errorf("error creating refund record: %w", err)
		}
		return nil
	})
}

// settle flips a pending withdrawal to toStatus through a conditional
// status update. Because only the call that wins the flip runs apply,
// two racing reviews cannot both refund.
func (s *Service) settle(withdrawalID uint, toStatus string, apply func(store.Store, *models.Transaction) error) (*models.Transaction, error) {
	var record *models.Transaction
	err := s.store.WithinTx(func(st store.Store) error {
		tx, err := st.GetTransaction(withdrawalID)
		if err != nil {
			return err
		}
		if tx.Type != models.TxTypeWithdrawal {
			return ErrNotWithdrawal
		}

		now := s.now()
		settled, err := st.SettleTransaction(tx.ID, models.TxStatusPending, toStatus, now)
		if err != nil {
			return fmt.Errorf("error updating withdrawal: %w", err)
		}
		if !settled {
			return ErrNotPending
		}

		if apply != nil {
			if err := apply(st, tx); err != nil {
				return err
			}
		}

		tx.Status = toStatus
		tx.ProcessedAt = &now
		record = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
