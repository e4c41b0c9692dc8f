package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

func (ss SubscriptionStatus) IsValid() bool {
	return ss == SubscriptionStatusActive || ss == SubscriptionStatusPastDue || ss == SubscriptionStatusCanceled
}

// CanTransitionTo enforces the status machine. Canceled is terminal.
func (ss SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	switch ss {
	case SubscriptionStatusActive:
		return next == SubscriptionStatusPastDue || next == SubscriptionStatusCanceled
	case SubscriptionStatusPastDue:
		return next == SubscriptionStatusActive || next == SubscriptionStatusCanceled
	default:
		return false
	}
}

type Subscription struct {
	ID            string             `json:"id"`
	BusinessID    int64              `json:"business_id"`
	PlanID        int64              `json:"plan_id"`
	PlanCode      string             `json:"plan_code"`
	Status        SubscriptionStatus `json:"status"`
	PeriodStart   time.Time          `json:"period_start"`
	PeriodEnd     time.Time          `json:"period_end"`
	NextBillingAt time.Time          `json:"next_billing_at"`
	GraceGranted  bool               `json:"grace_granted"`
	FailedCharges int                `json:"failed_charges"`
	CreatedAt     time.Time          `json:"created_at"`
	CanceledAt    *time.Time         `json:"canceled_at,omitempty"`
}

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusFailed  InvoiceStatus = "failed"
)

// Invoice records one recurring-charge attempt for one billing period.
// There is at most one invoice per subscription per period start.
type Invoice struct {
	ID             string          `json:"id"`
	SubscriptionID string          `json:"subscription_id"`
	BusinessID     int64           `json:"business_id"`
	Amount         decimal.Decimal `json:"amount"`
	Status         InvoiceStatus   `json:"status"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	PaidVia        string          `json:"paid_via,omitempty"` // wallet, card, mandate
	GatewayRef     string          `json:"gateway_ref,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
}

type SubscribeRequest struct {
	PlanCode string `json:"plan_code"`
}
