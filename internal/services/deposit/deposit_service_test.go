package deposit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/store"
)

func seedUser(t *testing.T, st store.Store) *models.User {
	t.Helper()
	user := &models.User{Phone: "1000000000", PasswordHash: "x", ReferralCode: "REFA"}
	require.NoError(t, st.CreateUser(user))
	return user
}

func TestRequestRecordsPendingDeposit(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	user := seedUser(t, st)

	tx, err := svc.Request(user.ID, 3000, "State Bank")
	require.NoError(t, err)

	assert.Equal(t, models.TxTypeDeposit, tx.Type)
	assert.Equal(t, models.TxStatusPending, tx.Status)
	assert.Equal(t, 3000.0, tx.Amount)
	assert.Equal(t, "State Bank", tx.BankName)

	// nothing credited until an admin confirms
	updated, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.Balance)
	assert.False(t, updated.HasDeposited)
}

func TestRequestRejectsBadAmount(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	user := seedUser(t, st)

	_, err := svc.Request(user.ID, 0, "State Bank")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Request(user.ID, -100, "State Bank")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRequestUnknownUser(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)

	_, err := svc.Request(42, 3000, "State Bank")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestApproveCreditsAndFlagsUser(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	user := seedUser(t, st)

	tx, err := svc.Request(user.ID, 3000, "State Bank")
	require.NoError(t, err)

	approved, err := svc.Approve(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusCompleted, approved.Status)
	require.NotNil(t, approved.ProcessedAt)

	updated, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, updated.Balance)
	assert.True(t, updated.HasDeposited)

	// double approval must not credit twice
	_, err = svc.Approve(tx.ID)
	assert.ErrorIs(t, err, ErrNotPending)

	updated, err = st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, updated.Balance)
}

func TestConcurrentApprovalsCreditOnce(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	user := seedUser(t, st)

	tx, err := svc.Request(user.ID, 3000, "State Bank")
	require.NoError(t, err)

	// exactly one of the racing approvals wins the status flip
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Approve(tx.ID)
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
	assert.Equal(t, 3000.0, updated.Balance)
}

func TestRejectLeavesBalanceUntouched(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	user := seedUser(t, st)

	tx, err := svc.Request(user.ID, 3000, "State Bank")
	require.NoError(t, err)

	rejected, err := svc.Reject(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusFailed, rejected.Status)

	updated, err := st.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.Balance)
	assert.False(t, updated.HasDeposited)
}

func TestApproveRejectsWrongType(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	user := seedUser(t, st)

	withdrawal := &models.Transaction{
		UserID:    user.ID,
		Type:      models.TxTypeWithdrawal,
		Amount:    -2000,
		Status:    models.TxStatusPending,
		Reference: "WD_TEST",
	}
	require.NoError(t, st.CreateTransaction(withdrawal))

	_, err := svc.Approve(withdrawal.ID)
	assert.ErrorIs(t, err, ErrNotDeposit)
}
