package ledger

import (
	"fmt"

	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/store"
)

// Service is the only path through which balances change. Every credit or
// debit writes exactly one Transaction row alongside the balance update.
type Service struct {
	store store.Store
}

// NewService creates a new ledger service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Credit adds funds to a user's balance in its own transaction.
func (s *Service) Credit(userID uint, amount float64, txType, reference, description string) (*models.Transaction, error) {
	var record *models.Transaction
	err := s.store.WithinTx(func(st store.Store) error {
		var err error
		record, err = s.CreditTx(st, userID, amount, txType, reference, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// CreditTx adds funds to a user's balance using a transaction-scoped store.
func (s *Service) CreditTx(st store.Store, userID uint, amount float64, txType, reference, description string) (*models.Transaction, error) {
	if err := st.CreditBalance(userID, amount); err != nil {
		return nil, fmt.Errorf("error crediting user %d: %w", userID, err)
	}

	record := &models.Transaction{
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Status:      models.TxStatusCompleted,
		Reference:   reference,
		Description: description,
	}
	if err := st.CreateTransaction(record); err != nil {
		return nil, fmt.Errorf("error creating transaction record: %w", err)
	}
	return record, nil
}

// Debit removes funds from a user's balance in its own transaction.
func (s *Service) Debit(userID uint, amount float64, txType, reference, description string) (*models.Transaction, error) {
	var record *models.Transaction
	err := s.store.WithinTx(func(st store.Store) error {
		var err error
		record, err = s.DebitTx(st, userID, amount, txType, reference, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DebitTx removes funds from a user's balance using a transaction-scoped
// store. Returns store.ErrInsufficientBalance when the balance does not
// cover the amount; the sufficiency check and the subtraction are one
// atomic store update.
func (s *Service) DebitTx(st store.Store, userID uint, amount float64, txType, reference, description string) (*models.Transaction, error) {
	if err := st.DebitBalance(userID, amount); err != nil {
		return nil, err
	}

	record := &models.Transaction{
		UserID:      userID,
		Type:        txType,
		Amount:      -amount, // negative for debit
		Status:      models.TxStatusCompleted,
		Reference:   reference,
		Description: description,
	}
	if err := st.CreateTransaction(record); err != nil {
		return nil, fmt.Errorf("error creating transaction record: %w", err)
	}
	return record, nil
}

// Balance reads a user's current balance.
func (s *Service) Balance(userID uint) (float64, error) {
	user, err := s.store.GetUser(userID)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}
