package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TopupStatus string

const (
	TopupStatusPending   TopupStatus = "pending"
	TopupStatusSucceeded TopupStatus = "succeeded"
	TopupStatusFailed    TopupStatus = "failed"
)

// IsFinal reports whether the topup has been settled. Final statuses never
// change again.
func (ts TopupStatus) IsFinal() bool {
	return ts == TopupStatusSucceeded || ts == TopupStatusFailed
}

type TopupRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	SaveCard bool            `json:"save_card"`
}

// TopupTransaction is one wallet top-up attempt through the card gateway.
// Reference is our identifier; GatewayToken and GatewayRef are theirs.
type TopupTransaction struct {
	ID           int64           `json:"id"`
	Reference    string          `json:"reference"`
	BusinessID   int64           `json:"business_id"`
	Amount       decimal.Decimal `json:"amount"`
	Status       TopupStatus     `json:"status"`
	Gateway      string          `json:"gateway"`
	GatewayToken string          `json:"-"`
	GatewayRef   string          `json:"gateway_ref,omitempty"`
	FailureCode  string          `json:"failure_code,omitempty"`
	SaveCard     bool            `json:"save_card"`
	CreatedAt    time.Time       `json:"created_at"`
	SettledAt    *time.Time      `json:"settled_at,omitempty"`
}

type TopupInitResponse struct {
	Reference   string `json:"reference"`
	RedirectURL string `json:"redirect_url"`
}
