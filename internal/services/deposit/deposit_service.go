package deposit

import (
	"errors"
	"fmt"
	"time"

	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/store"
	"github.com/yieldvest/backend/internal/utils"
)

var nowFunc = time.Now

var (
	// ErrInvalidAmount is returned for non-positive deposit amounts.
	ErrInvalidAmount = errors.New("deposit amount must be positive")
	// ErrNotPending is returned when confirming a deposit that is not pending.
	ErrNotPending = errors.New("deposit is not pending")
	// ErrNotDeposit is returned when the transaction is not a deposit.
	ErrNotDeposit = errors.New("transaction is not a deposit")
)

// Service records user deposit claims and lets an admin confirm them.
// Nothing is credited until confirmation.
type Service struct {
	store store.Store
}

// NewService creates a new deposit service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Request records a pending deposit claim with the bank the user says they
// paid into.
func (s *Service) Request(userID uint, amount float64, bankName string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.store.GetUser(userID); err != nil {
		return nil, err
	}

	record := &models.Transaction{
		UserID:      userID,
		Type:        models.TxTypeDeposit,
		Amount:      amount,
		Status:      models.TxStatusPending,
		Reference:   utils.GenerateTransactionReference("DEP"),
		Description: "Deposit request",
		BankName:    bankName,
	}
	if err := s.store.CreateTransaction(record); err != nil {
		return nil, fmt.Errorf("error creating deposit record: %w", err)
	}
	return record, nil
}

// Approve credits the claimed amount, flags the user as having deposited
// and completes the transaction, atomically. The conditional status flip
// decides the winner when two approvals race, so the amount is credited
// at most once.
func (s *Service) Approve(depositID uint) (*models.Transaction, error) {
	return s.settle(depositID, models.TxStatusCompleted, func(st store.Store, tx *models.Transaction) error {
		if err := st.CreditBalance(tx.UserID, tx.Amount); err != nil {
			return fmt.Errorf("error crediting deposit: %w", err)
		}
		if err := st.MarkHasDeposited(tx.UserID); err != nil {
			return fmt.Errorf("error updating user: %w", err)
		}
		return nil
	})
}

// Reject fails a pending deposit. No balance was credited, so there is
// nothing to reverse.
func (s *Service) Reject(depositID uint) (*models.Transaction, error) {
	return s.settle(depositID, models.TxStatusFailed, nil)
}

func (s *Service) settle(depositID uint, toStatus string, apply func(store.Store, *models.Transaction) error) (*models.Transaction, error) {
	var record *models.Transaction
	err := s.store.WithinTx(func(st store.Store) error {
		tx, err := st.GetTransaction(depositID)
		if err != nil {
			return err
		}
		if tx.Type != models.TxTypeDeposit {
			return ErrNotDeposit
		}

		now := nowFunc()
		settled, err := st.SettleTransaction(tx.ID, models.TxStatusPending, toStatus, now)
		if err != nil {
			return fmt.Errorf("error updating deposit: %w", err)
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
