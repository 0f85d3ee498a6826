package jobs

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/services/ledger"
	"github.com/yieldvest/backend/internal/store"
)

// errAlreadyAccrued marks a holding that was already credited for the day.
var errAlreadyAccrued = errors.New("holding already accrued for this day")

// AccrualResult summarizes one accrual run.
type AccrualResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// DailyAccrualJob credits every active holding's owner with the holding's
// daily income once per calendar day. The income transaction reference is
// cycle-dated, so a repeated run for the same day skips holdings it has
// already credited.
type DailyAccrualJob struct {
	store     store.Store
	ledger    *ledger.Service
	scheduler *gocron.Scheduler
	loc       *time.Location
	now       func() time.Time
}

// NewDailyAccrualJob creates the accrual job for the given timezone.
func NewDailyAccrualJob(st store.Store, ledgerSvc *ledger.Service, loc *time.Location) *DailyAccrualJob {
	return &DailyAccrualJob{
		store:     st,
		ledger:    ledgerSvc,
		scheduler: gocron.NewScheduler(loc),
		loc:       loc,
		now:       time.Now,
	}
}

// WithClock overrides the job clock, for tests.
func (j *DailyAccrualJob) WithClock(now func() time.Time) *DailyAccrualJob {
	j.now = now
	return j
}

// Schedule runs the job every day at runAt in the job's timezone. A value
// like "00:00:05" gives midnight plus a few seconds of safety margin.
func (j *DailyAccrualJob) Schedule(runAt string) error {
	if _, err := j.scheduler.Every(1).Day().At(runAt).Do(func() {
		result, err := j.Run()
		if err != nil {
			log.Printf("daily accrual failed: %v", err)
			return
		}
		log.Printf("daily accrual done: processed=%d skipped=%d", result.Processed, result.Skipped)
	}); err != nil {
		return fmt.Errorf("error scheduling daily accrual: %w", err)
	}
	j.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler.
func (j *DailyAccrualJob) Stop() {
	j.scheduler.Stop()
}

// Run processes every active holding independently: a failure on one is
// logged and counted as skipped, never fatal to the run.
func (j *DailyAccrualJob) Run() (*AccrualResult, error) {
	holdings, err := j.store.ListActiveHoldings()
	if err != nil {
		return nil, fmt.Errorf("error listing active holdings: %w", err)
	}

	day := j.now().In(j.loc).Format("2006-01-02")
	result := &AccrualResult{}
	for i := range holdings {
		if err := j.accrueHolding(holdings[i].ID, day); err != nil {
			if !errors.Is(err, errAlreadyAccrued) {
				log.Printf("daily accrual: skipping holding %d: %v", holdings[i].ID, err)
			}
			result.Skipped++
			continue
		}
		result.Processed++
	}
	return result, nil
}

// accrueHolding credits one holding's owner for one day. Credit, countdown
// and transaction record commit together or not at all.
func (j *DailyAccrualJob) accrueHolding(holdingID uint, day string) error {
	return j.store.WithinTx(func(st store.Store) error {
		reference := fmt.Sprintf("income_%d_%s", holdingID, day)
		exists, err := st.HasTransactionReference(reference)
		if err != nil {
			return fmt.Errorf("error checking accrual reference: %w", err)
		}
		if exists {
			return errAlreadyAccrued
		}

		holding, err := st.GetHolding(holdingID)
		if err != nil {
			return fmt.Errorf("error loading holding: %w", err)
		}
		if !holding.IsActive || holding.DaysRemaining <= 0 {
			return errAlreadyAccrued
		}

		if _, err := j.ledger.CreditTx(st, holding.UserID, holding.DailyIncome, models.TxTypeIncome, reference,
			fmt.Sprintf("Daily income from %s", holding.ProductName)); err != nil {
			return err
		}

		holding.DaysRemaining--
		if holding.DaysRemaining == 0 {
			holding.IsActive = false
			if err := st.AddDailyIncome(holding.UserID, -holding.DailyIncome); err != nil {
				return fmt.Errorf("error updating owner daily income: %w", err)
			}
		}
		if err := st.SaveHolding(holding); err != nil {
			return fmt.Errorf("error saving holding: %w", err)
		}
		return nil
	})
}
