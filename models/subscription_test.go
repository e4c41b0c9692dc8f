package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionStatusTransitions(t *testing.T) {
	assert.True(t, SubscriptionStatusActive.CanTransitionTo(SubscriptionStatusPastDue))
	assert.True(t, SubscriptionStatusActive.CanTransitionTo(SubscriptionStatusCanceled))
	assert.True(t, SubscriptionStatusPastDue.CanTransitionTo(SubscriptionStatusActive))
	assert.True(t, SubscriptionStatusPastDue.CanTransitionTo(SubscriptionStatusCanceled))

	// Canceled is terminal.
	assert.False(t, SubscriptionStatusCanceled.CanTransitionTo(SubscriptionStatusActive))
	assert.False(t, SubscriptionStatusCanceled.CanTransitionTo(SubscriptionStatusPastDue))

	assert.False(t, SubscriptionStatusActive.CanTransitionTo(SubscriptionStatusActive))
}

func TestTopupStatusIsFinal(t *testing.T) {
	assert.False(t, TopupStatusPending.IsFinal())
	assert.True(t, TopupStatusSucceeded.IsFinal())
	assert.True(t, TopupStatusFailed.IsFinal())
}
