package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"aurum-payment-api/models"
)

func testPlan(mode models.PlanMode, intervalDays, graceDays int) *models.Plan {
	return &models.Plan{
		ID:           1,
		Code:         "gold-pro",
		Name:         "Gold Pro",
		Mode:         mode,
		Fee:          decimal.NewFromInt(2500000),
		IntervalDays: intervalDays,
		GraceDays:    graceDays,
	}
}

func TestComputeCycle(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		plan         *models.Plan
		graceGranted bool
		wantEnd      time.Time
		wantNext     time.Time
	}{
		{
			name:     "prepaid bills at period start",
			plan:     testPlan(models.PlanModePrepaid, 30, 7),
			wantEnd:  start.AddDate(0, 0, 30),
			wantNext: start,
		},
		{
			name:     "postpaid bills at period end",
			plan:     testPlan(models.PlanModePostpaid, 30, 7),
			wantEnd:  start.AddDate(0, 0, 30),
			wantNext: start.AddDate(0, 0, 30),
		},
		{
			name:         "grace extends the period but not prepaid billing",
			plan:         testPlan(models.PlanModePrepaid, 30, 7),
			graceGranted: true,
			wantEnd:      start.AddDate(0, 0, 37),
			wantNext:     start,
		},
		{
			name:         "grace pushes postpaid billing out with the period",
			plan:         testPlan(models.PlanModePostpaid, 30, 7),
			graceGranted: true,
			wantEnd:      start.AddDate(0, 0, 37),
			wantNext:     start.AddDate(0, 0, 37),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycle := ComputeCycle(tt.plan, start, tt.graceGranted)
			assert.Equal(t, start, cycle.PeriodStart)
			assert.Equal(t, tt.wantEnd, cycle.PeriodEnd)
			assert.Equal(t, tt.wantNext, cycle.NextBillingAt)
		})
	}
}

func TestNextCycleNeverRegrantsGrace(t *testing.T) {
	plan := testPlan(models.PlanModePrepaid, 30, 7)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	first := ComputeCycle(plan, start, true)
	assert.Equal(t, start.AddDate(0, 0, 37), first.PeriodEnd)

	sub := &models.Subscription{
		PeriodStart:  first.PeriodStart,
		PeriodEnd:    first.PeriodEnd,
		GraceGranted: true,
	}

	second := NextCycle(plan, sub)
	assert.Equal(t, first.PeriodEnd, second.PeriodStart, "new period starts where the old one ended")
	assert.Equal(t, first.PeriodEnd.AddDate(0, 0, 30), second.PeriodEnd, "grace days apply once only")
}

func TestShouldGrantGrace(t *testing.T) {
	plan := testPlan(models.PlanModePrepaid, 30, 7)
	noGracePlan := testPlan(models.PlanModePrepaid, 30, 0)

	fresh := &models.Business{ID: 1}
	used := &models.Business{ID: 2, GraceUsed: true}

	assert.True(t, ShouldGrantGrace(plan, fresh))
	assert.False(t, ShouldGrantGrace(plan, used))
	assert.False(t, ShouldGrantGrace(noGracePlan, fresh))
}

func TestChargeOutcome(t *testing.T) {
	const maxRetries = 3

	sub := &models.Subscription{Status: models.SubscriptionStatusActive}
	assert.Equal(t, models.SubscriptionStatusActive, ChargeOutcome(sub, true, maxRetries))

	assert.Equal(t, models.SubscriptionStatusPastDue, ChargeOutcome(sub, false, maxRetries))

	sub.FailedCharges = 1
	assert.Equal(t, models.SubscriptionStatusPastDue, ChargeOutcome(sub, false, maxRetries))

	sub.FailedCharges = 2
	assert.Equal(t, models.SubscriptionStatusCanceled, ChargeOutcome(sub, false, maxRetries),
		"exhausting the retry budget cancels")

	// A success while past due recovers the subscription.
	sub.Status = models.SubscriptionStatusPastDue
	sub.FailedCharges = 2
	assert.Equal(t, models.SubscriptionStatusActive, ChargeOutcome(sub, true, maxRetries))
}

func TestIsDue(t *testing.T) {
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	due := &models.Subscription{
		Status:        models.SubscriptionStatusActive,
		NextBillingAt: now.AddDate(0, 0, -1),
	}
	assert.True(t, IsDue(due, now))

	notYet := &models.Subscription{
		Status:        models.SubscriptionStatusActive,
		NextBillingAt: now.AddDate(0, 0, 1),
	}
	assert.False(t, IsDue(notYet, now))

	canceled := &models.Subscription{
		Status:        models.SubscriptionStatusCanceled,
		NextBillingAt: now.AddDate(0, 0, -10),
	}
	assert.False(t, IsDue(canceled, now), "canceled subscriptions are never billed")
}
