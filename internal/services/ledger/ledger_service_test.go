package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/store"
)

func seedUser(t *testing.T, st store.Store, balance float64) *models.User {
	t.Helper()
	user := &models.User{Phone: "1000000000", PasswordHash: "x", ReferralCode: "REFA", Balance: balance}
	require.NoError(t, st.CreateUser(user))
	return user
}

func TestCreditWritesBalanceAndRecord(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	user := seedUser(t, st, 100)

	tx, err := svc.Credit(user.ID, 250, models.TxTypeCommission, "COM_TEST_L1", "Level 1 commission")
	require.NoError(t, err)

	assert.Equal(t, 250.0, tx.Amount)
	assert.Equal(t, models.TxStatusCompleted, tx.Status)

	balance, err := svc.Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 350.0, balance)
}

func TestDebitRecordsNegativeAmount(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	user := seedUser(t, st, 1000)

	tx, err := svc.Debit(user.ID, 400, models.TxTypePurchase, "PUR_TEST", "Purchase")
	require.NoError(t, err)
	assert.Equal(t, -400.0, tx.Amount)

	balance, err := svc.Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 600.0, balance)
}

func TestDebitInsufficientBalanceWritesNothing(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	user := seedUser(t, st, 100)

	_, err := svc.Debit(user.ID, 400, models.TxTypePurchase, "PUR_FAIL", "Purchase")
	assert.ErrorIs(t, err, store.ErrInsufficientBalance)

	balance, err := svc.Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, balance)

	exists, err := st.HasTransactionReference("PUR_FAIL")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDuplicateReferenceRollsBackCredit(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	user := seedUser(t, st, 0)

	_, err := svc.Credit(user.ID, 100, models.TxTypeIncome, "income_1_2026-08-26", "Daily income")
	require.NoError(t, err)

	_, err = svc.Credit(user.ID, 100, models.TxTypeIncome, "income_1_2026-08-26", "Daily income")
	assert.ErrorIs(t, err, store.ErrDuplicateReference)

	// the second credit must not have touched the balance
	balance, err := svc.Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, balance)
}
