package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurum-payment-api/models"
	"aurum-payment-api/services/payment/cardgate"
)

func pendingTopup(age time.Duration) *models.TopupTransaction {
	return &models.TopupTransaction{
		Reference: "TXN-AGE-1",
		Status:    models.TopupStatusPending,
		CreatedAt: time.Now().Add(-age),
	}
}

func TestReconcileOutcome(t *testing.T) {
	timeout := 30 * time.Minute
	now := time.Now()

	t.Run("succeeded inquiry settles the topup", func(t *testing.T) {
		inquiry := &cardgate.InquiryResult{
			State:     cardgate.InquiryStateSucceeded,
			RRN:       "rrn-123",
			MaskedPAN: "**** **** **** 4242",
		}
		result := reconcileOutcome(pendingTopup(5*time.Minute), inquiry, now, timeout)
		require.NotNil(t, result)
		assert.True(t, result.Success)
		assert.Equal(t, "rrn-123", result.GatewayRef)
	})

	t.Run("failed inquiry fails the topup", func(t *testing.T) {
		inquiry := &cardgate.InquiryResult{
			State:   cardgate.InquiryStateFailed,
			Message: "insufficient funds",
		}
		result := reconcileOutcome(pendingTopup(5*time.Minute), inquiry, now, timeout)
		require.NotNil(t, result)
		assert.False(t, result.Success)
		assert.Equal(t, "gateway_failed", result.FailureCode)
	})

	t.Run("pending inside the timeout window stays pending", func(t *testing.T) {
		inquiry := &cardgate.InquiryResult{State: cardgate.InquiryStatePending}
		result := reconcileOutcome(pendingTopup(5*time.Minute), inquiry, now, timeout)
		assert.Nil(t, result)
	})

	t.Run("pending past the timeout fails with timeout code", func(t *testing.T) {
		inquiry := &cardgate.InquiryResult{State: cardgate.InquiryStatePending}
		result := reconcileOutcome(pendingTopup(45*time.Minute), inquiry, now, timeout)
		require.NotNil(t, result)
		assert.False(t, result.Success)
		assert.Equal(t, "timeout", result.FailureCode)
	})

	t.Run("unreachable gateway past the timeout fails with timeout code", func(t *testing.T) {
		result := reconcileOutcome(pendingTopup(45*time.Minute), nil, now, timeout)
		require.NotNil(t, result)
		assert.Equal(t, "timeout", result.FailureCode)
	})

	t.Run("unreachable gateway inside the window stays pending", func(t *testing.T) {
		result := reconcileOutcome(pendingTopup(5*time.Minute), nil, now, timeout)
		assert.Nil(t, result)
	})
}

func TestApplyChargeFailure(t *testing.T) {
	now := time.Now()

	t.Run("first failure moves to past_due with a daily retry", func(t *testing.T) {
		sub := &models.Subscription{
			Status:        models.SubscriptionStatusActive,
			FailedCharges: 0,
		}
		next := applyChargeFailure(sub, 3, now)
		assert.Equal(t, models.SubscriptionStatusPastDue, next)
		assert.Equal(t, 1, sub.FailedCharges)
		assert.Nil(t, sub.CanceledAt)
		assert.WithinDuration(t, now.AddDate(0, 0, 1), sub.NextBillingAt, time.Second)
	})

	t.Run("exhausting the retry budget cancels and stamps canceled_at", func(t *testing.T) {
		sub := &models.Subscription{
			Status:        models.SubscriptionStatusPastDue,
			FailedCharges: 2,
		}
		next := applyChargeFailure(sub, 3, now)
		require.Equal(t, models.SubscriptionStatusCanceled, next)
		assert.Equal(t, 3, sub.FailedCharges)
		require.NotNil(t, sub.CanceledAt)
		assert.WithinDuration(t, now, *sub.CanceledAt, time.Second)
	})
}
