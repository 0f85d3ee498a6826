package withdrawal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/store"
)

func testConfig() Config {
	return Config{
		MinAmount: 1400,
		MaxAmount: 50000,
		OpenHour:  10,
		CloseHour: 15,
		Location:  time.UTC,
	}
}

// 2026-08-26 is a Wednesday.
func businessHours() time.Time {
	return time.Date(2026, 8, 26, 11, 30, 0, 0, time.UTC)
}

func newTestService(st store.Store, at time.Time) *Service {
	return NewService(st, testConfig()).WithClock(func() time.Time { return at })
}

func seedWithdrawer(t *testing.T, st store.Store, balance float64) *models.User {
	t.Helper()
	user := &models.User{
		Phone:        "1000000000",
		PasswordHash: "x",
		ReferralCode: "REFA",
		Balance:      balance,
		HasProduct:   true,
		HasDeposited: true,
	}
	require.NoError(t, st.CreateUser(user))
	require.NoError(t, st.SaveBankAccount(&models.BankAccount{
		UserID:        user.ID,
		BankName:      "State Bank",
		AccountNumber: "12345678",
		AccountName:   "Test User",
	}))
	return user
}

func TestRequestSucceedsInBusinessHours(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st, businessHours())
	user := seedWithdrawer(t, st, 10000)

	tx, err := svc.Request(user.ID, 2000)
	require.NoError(t, err)

	assert.Equal(t, models.TxTypeWithdrawal, tx.Type)
	assert.Equal(t, models.TxStatusPending, tx.Status)
	assert.Equal(t, -2000.0, tx.Amount)
	assert.Equal(t, "State Bank", tx.BankName)
	assert.Equal(t, "12345678", tx.AccountNumber)

	// funds are reserved immediately
	updated, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 8000.0, updated.Balance)
}

func TestRequestRejectedOnWeekend(t *testing.T) {
	st := store.NewMemoryStore()
	user := seedWithdrawer(t, st, 10000)

	saturday := time.Date(2026, 8, 29, 11, 30, 0, 0, time.UTC)
	svc := newTestService(st, saturday)

	_, err := svc.Request(user.ID, 2000)
	assert.ErrorIs(t, err, ErrNotWeekday)
}

func TestRequestRejectedOutsideHours(t *testing.T) {
	st := store.NewMemoryStore()
	user := seedWithdrawer(t, st, 10000)

	for _, hour := range []int{9, 15, 16} {
		at := time.Date(2026, 8, 26, hour, 0, 0, 0, time.UTC)
		svc := newTestService(st, at)

		_, err := svc.Request(user.ID, 2000)
		assert.ErrorIs(t, err, ErrOutsideBusinessHours, "hour %d", hour)
	}

	// opening hour is inclusive
	svc := newTestService(st, time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC))
	_, err := svc.Request(user.ID, 2000)
	assert.NoError(t, err)
}

func TestRequestAmountBounds(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st, businessHours())
	user := seedWithdrawer(t, st, 100000)

	_, err := svc.Request(user.ID, 1399)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = svc.Request(user.ID, 50001)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = svc.Request(user.ID, 1400)
	assert.NoError(t, err)

	_, err = svc.Request(user.ID, 50000)
	assert.NoError(t, err)
}

func TestRequestPreconditions(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st, businessHours())

	noProduct := &models.User{Phone: "1", ReferralCode: "R1", Balance: 10000, HasDeposited: true}
	require.NoError(t, st.CreateUser(noProduct))
	_, err := svc.Request(noProduct.ID, 2000)
	assert.ErrorIs(t, err, ErrNoProduct)

	noDeposit := &models.User{Phone: "2", ReferralCode: "R2", Balance: 10000, HasProduct: true}
	require.NoError(t, st.CreateUser(noDeposit))
	_, err = svc.Request(noDeposit.ID, 2000)
	assert.ErrorIs(t, err, ErrNoDeposit)

	noBank := &models.User{Phone: "3", ReferralCode: "R3", Balance: 10000, HasProduct: true, HasDeposited: true}
	require.NoError(t, st.CreateUser(noBank))
	_, err = svc.Request(noBank.ID, 2000)
	assert.ErrorIs(t, err, ErrNoBankInfo)
}

func TestRequestInsufficientBalance(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st, businessHours())
	user := seedWithdrawer(t, st, 1500)

	_, err := svc.Request(user.ID, 2000)
	assert.ErrorIs(t, err, store.ErrInsufficientBalance)

	// failed request must not leave a pending record behind
	txs, _, err := st.ListTransactionsByUser(user.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestApproveKeepsBalance(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st, businessHours())
	user := seedWithdrawer(t, st, 10000)

	tx, err := svc.Request(user.ID, 2000)
	require.NoError(t, err)

	approved, err := svc.Approve(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusCompleted, approved.Status)
	require.NotNil(t, approved.ProcessedAt)

	updated, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 8000.0, updated.Balance)

	// second approval must fail
	_, err = svc.Approve(tx.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestRejectRefunds(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st, businessHours())
	user := seedWithdrawer(t, st, 10000)

	tx, err := svc.Request(user.ID, 2000)
	require.NoError(t, err)

	rejected, err := svc.Reject(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusFailed, rejected.Status)

	updated, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, updated.Balance)

	// withdrawal plus compensating refund entry
	txs, _, err := st.ListTransactionsByUser(user.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, 2000.0, txs[0].Amount)
	assert.Equal(t, "RF_"+tx.Reference, txs[0].Reference)
	assert.Equal(t, models.TxStatusCompleted, txs[0].Status)
}

func TestConcurrentRejectsRefundOnce(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st, businessHours())
	user := seedWithdrawer(t, st, 10000)

	tx, err := svc.Request(user.ID, 2000)
	require.NoError(t, err)

	// only the reject that wins the status flip may refund
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reject(tx.ID)
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrNotPending)
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	updated, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, updated.Balance)

	txs, _, err := st.ListTransactionsByUser(user.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestReviewRejectsWrongTransactionType(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st, businessHours())
	user := seedWithdrawer(t, st, 10000)

	deposit := &models.Transaction{
		UserID:    user.ID,
		Type:      models.TxTypeDeposit,
		Amount:    2000,
		Status:    models.TxStatusPending,
		Reference: "DEP_TEST",
	}
	require.NoError(t, st.CreateTransaction(deposit))

	_, err := svc.Approve(deposit.ID)
	assert.ErrorIs(t, err, ErrNotWithdrawal)

	_, err = svc.Approve(999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
