package models

import "github.com/shopspring/decimal"

type PlanMode string

const (
	PlanModePrepaid  PlanMode = "PREPAID"
	PlanModePostpaid PlanMode = "POSTPAID"
)

func (pm PlanMode) IsValid() bool {
	return pm == PlanModePrepaid || pm == PlanModePostpaid
}

type Plan struct {
	ID           int64           `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Mode         PlanMode        `json:"mode"`
	Fee          decimal.Decimal `json:"fee"`
	IntervalDays int             `json:"interval_days"`
	GraceDays    int             `json:"grace_days"`
	Features     string          `json:"features"` // JSON entitlements blob
}
