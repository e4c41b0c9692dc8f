package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID         int64           `json:"id"`
	BusinessID int64           `json:"business_id"`
	Balance    decimal.Decimal `json:"balance"`
	Currency   string          `json:"currency"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type WalletEntryKind string

const (
	WalletEntryTopup           WalletEntryKind = "topup"
	WalletEntrySubscriptionFee WalletEntryKind = "subscription_fee"
	WalletEntryAdjustment      WalletEntryKind = "adjustment"
	WalletEntryRefund          WalletEntryKind = "refund"
)

// WalletTransaction is one ledger row. Amount is signed; BalanceAfter is the
// balance the wallet held once the row applied, so the ledger replays.
type WalletTransaction struct {
	ID           int64           `json:"id"`
	WalletID     int64           `json:"wallet_id"`
	Kind         WalletEntryKind `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Reference    string          `json:"reference,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
