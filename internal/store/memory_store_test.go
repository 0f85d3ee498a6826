package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yieldvest/backend/internal/models"
)

func seedUser(t *testing.T, st Store, balance float64) *models.User {
	t.Helper()
	user := &models.User{Phone: "1000000000", PasswordHash: "x", ReferralCode: "REFA", Balance: balance}
	require.NoError(t, st.CreateUser(user))
	return user
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	st := NewMemoryStore()
	user := seedUser(t, st, 1000)

	boom := errors.New("boom")
	err := st.WithinTx(func(tx Store) error {
		if err := tx.DebitBalance(user.ID, 400); err != nil {
			return err
		}
		if err := tx.CreateTransaction(&models.Transaction{
			UserID:    user.ID,
			Type:      models.TxTypePurchase,
			Amount:    -400,
			Status:    models.TxStatusCompleted,
			Reference: "PUR_ROLLBACK",
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// every write inside the failed transaction is gone
	reloaded, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, reloaded.Balance)

	exists, err := st.HasTransactionReference("PUR_ROLLBACK")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWithinTxCommits(t *testing.T) {
	st := NewMemoryStore()
	user := seedUser(t, st, 1000)

	err := st.WithinTx(func(tx Store) error {
		return tx.DebitBalance(user.ID, 400)
	})
	require.NoError(t, err)

	reloaded, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 600.0, reloaded.Balance)
}

func TestNestedWithinTxSharesTransaction(t *testing.T) {
	st := NewMemoryStore()
	user := seedUser(t, st, 1000)

	err := st.WithinTx(func(tx Store) error {
		if err := tx.DebitBalance(user.ID, 100); err != nil {
			return err
		}
		return tx.WithinTx(func(inner Store) error {
			return inner.DebitBalance(user.ID, 200)
		})
	})
	require.NoError(t, err)

	reloaded, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 700.0, reloaded.Balance)
}

func TestDebitBalanceChecksSufficiency(t *testing.T) {
	st := NewMemoryStore()
	user := seedUser(t, st, 100)

	err := st.DebitBalance(user.ID, 200)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	reloaded, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, reloaded.Balance)

	assert.ErrorIs(t, st.DebitBalance(999, 10), ErrNotFound)
}

func TestConcurrentDebitsSerialize(t *testing.T) {
	st := NewMemoryStore()
	user := seedUser(t, st, 1000)

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = st.WithinTx(func(tx Store) error {
				return tx.DebitBalance(user.ID, 100)
			})
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrInsufficientBalance)
			failed++
		}
	}
	assert.Equal(t, 10, failed)

	reloaded, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, reloaded.Balance)
}

func TestMarkHasProductFlipsOnce(t *testing.T) {
	st := NewMemoryStore()
	user := seedUser(t, st, 0)

	first, err := st.MarkHasProduct(user.ID)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := st.MarkHasProduct(user.ID)
	require.NoError(t, err)
	assert.False(t, again)

	reloaded, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.HasProduct)

	_, err = st.MarkHasProduct(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettleTransactionGuardsStatus(t *testing.T) {
	st := NewMemoryStore()
	user := seedUser(t, st, 0)

	tx := &models.Transaction{
		UserID:    user.ID,
		Type:      models.TxTypeDeposit,
		Amount:    500,
		Status:    models.TxStatusPending,
		Reference: "DEP_SETTLE",
	}
	require.NoError(t, st.CreateTransaction(tx))

	now := time.Now()
	settled, err := st.SettleTransaction(tx.ID, models.TxStatusPending, models.TxStatusCompleted, now)
	require.NoError(t, err)
	assert.True(t, settled)

	reloaded, err := st.GetTransaction(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.ProcessedAt)
	assert.Equal(t, now, *reloaded.ProcessedAt)

	// already settled: no second flip in either direction
	settled, err = st.SettleTransaction(tx.ID, models.TxStatusPending, models.TxStatusCompleted, now)
	require.NoError(t, err)
	assert.False(t, settled)
	settled, err = st.SettleTransaction(tx.ID, models.TxStatusPending, models.TxStatusFailed, now)
	require.NoError(t, err)
	assert.False(t, settled)

	_, err = st.SettleTransaction(999, models.TxStatusPending, models.TxStatusCompleted, now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTransactionRejectsDuplicateReference(t *testing.T) {
	st := NewMemoryStore()
	user := seedUser(t, st, 0)

	tx := func() *models.Transaction {
		return &models.Transaction{
			UserID:    user.ID,
			Type:      models.TxTypeIncome,
			Amount:    100,
			Status:    models.TxStatusCompleted,
			Reference: "income_1_2026-08-26",
		}
	}
	require.NoError(t, st.CreateTransaction(tx()))
	assert.ErrorIs(t, st.CreateTransaction(tx()), ErrDuplicateReference)
}

func TestIncrementCommissionLevels(t *testing.T) {
	st := NewMemoryStore()
	user := seedUser(t, st, 0)

	require.NoError(t, st.IncrementCommission(user.ID, 1, 100))
	require.NoError(t, st.IncrementCommission(user.ID, 2, 50))
	require.NoError(t, st.IncrementCommission(user.ID, 3, 25))
	require.NoError(t, st.IncrementCommission(user.ID, 1, 100))
	assert.Error(t, st.IncrementCommission(user.ID, 4, 10))

	reloaded, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, reloaded.Level1Commission)
	assert.Equal(t, 50.0, reloaded.Level2Commission)
	assert.Equal(t, 25.0, reloaded.Level3Commission)
}

func TestSaveBankAccountReplacesExisting(t *testing.T) {
	st := NewMemoryStore()
	user := seedUser(t, st, 0)

	first := &models.BankAccount{UserID: user.ID, BankName: "State Bank", AccountNumber: "111", AccountName: "A"}
	require.NoError(t, st.SaveBankAccount(first))

	second := &models.BankAccount{UserID: user.ID, BankName: "HDFC Bank", AccountNumber: "222", AccountName: "A"}
	require.NoError(t, st.SaveBankAccount(second))
	assert.Equal(t, first.ID, second.ID)

	account, err := st.GetBankAccount(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "HDFC Bank", account.BankName)
	assert.Equal(t, "222", account.AccountNumber)
}

func TestListTransactionsFilters(t *testing.T) {
	st := NewMemoryStore()
	user := seedUser(t, st, 0)

	for _, tx := range []models.Transaction{
		{UserID: user.ID, Type: models.TxTypeDeposit, Amount: 100, Status: models.TxStatusPending, Reference: "DEP_1"},
		{UserID: user.ID, Type: models.TxTypeDeposit, Amount: 200, Status: models.TxStatusCompleted, Reference: "DEP_2"},
		{UserID: user.ID, Type: models.TxTypeWithdrawal, Amount: -300, Status: models.TxStatusPending, Reference: "WD_1"},
	} {
		record := tx
		require.NoError(t, st.CreateTransaction(&record))
	}

	pending, total, err := st.ListTransactions(models.TxTypeDeposit, models.TxStatusPending, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.Equal(t, "DEP_1", pending[0].Reference)

	all, total, err := st.ListTransactions("", "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 2)
	// newest first
	assert.Equal(t, "WD_1", all[0].Reference)
}
