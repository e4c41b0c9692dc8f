// Package billing holds the billing-cycle and grace-period arithmetic for
// subscription plans. Everything here is pure; persistence and gateway calls
// stay in the worker.
package billing

import (
	"time"

	"aurum-payment-api/models"
)

// Cycle is one computed billing period.
type Cycle struct {
	PeriodStart   time.Time
	PeriodEnd     time.Time
	NextBillingAt time.Time
}

// ComputeCycle derives the period for a subscription starting at start.
// Grace days extend the period but never the fee. PREPAID bills at period
// start, POSTPAID at period end.
func ComputeCycle(plan *models.Plan, start time.Time, graceGranted bool) Cycle {
	end := start.AddDate(0, 0, plan.IntervalDays)
	if graceGranted {
		end = end.AddDate(0, 0, plan.GraceDays)
	}

	next := start
	if plan.Mode == models.PlanModePostpaid {
		next = end
	}

	return Cycle{
		PeriodStart:   start,
		PeriodEnd:     end,
		NextBillingAt: next,
	}
}

// NextCycle rolls a subscription forward after a successful charge. The new
// period starts where the old one ended; grace is never granted again.
func NextCycle(plan *models.Plan, sub *models.Subscription) Cycle {
	return ComputeCycle(plan, sub.PeriodEnd, false)
}

// ShouldGrantGrace: the grace period is an introductory benefit, granted
// once per business on its first subscription, and only when the plan
// carries grace days at all.
func ShouldGrantGrace(plan *models.Plan, business *models.Business) bool {
	return plan.GraceDays > 0 && !business.GraceUsed
}

// ChargeOutcome decides the subscription status after a charge attempt.
// First failure parks the subscription in PAST_DUE; exhausting the retry
// budget cancels it.
func ChargeOutcome(sub *models.Subscription, succeeded bool, maxRetries int) models.SubscriptionStatus {
	if succeeded {
		return models.SubscriptionStatusActive
	}
	if sub.FailedCharges+1 >= maxRetries {
		return models.SubscriptionStatusCanceled
	}
	return models.SubscriptionStatusPastDue
}

// AccessEndsAt is when the business loses plan entitlements: the period end,
// which already includes any granted grace days.
func AccessEndsAt(sub *models.Subscription) time.Time {
	return sub.PeriodEnd
}

// IsDue reports whether the subscription needs a charge attempt now.
func IsDue(sub *models.Subscription, now time.Time) bool {
	if sub.Status == models.SubscriptionStatusCanceled {
		return false
	}
	return !sub.NextBillingAt.After(now)
}
