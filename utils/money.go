package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Top-up bounds. The gateway rejects amounts outside its own limits anyway;
// checking here keeps the error message ours.
var (
	MinTopupAmount = decimal.NewFromInt(100000)     // 100,000 IRR
	MaxTopupAmount = decimal.NewFromInt(5000000000) // 5,000,000,000 IRR
)

func ValidateTopupAmount(amount decimal.Decimal) error {
	if amount.LessThan(MinTopupAmount) {
		return fmt.Errorf("amount below minimum of %s", MinTopupAmount.String())
	}
	if amount.GreaterThan(MaxTopupAmount) {
		return fmt.Errorf("amount above maximum of %s", MaxTopupAmount.String())
	}
	if !amount.Equal(amount.Truncate(0)) {
		return fmt.Errorf("amount must be a whole number of rials")
	}
	return nil
}

// FormatAmount renders an amount the way the gateways expect it: whole
// rials, no exponent notation.
func FormatAmount(amount decimal.Decimal) string {
	return amount.Truncate(0).String()
}

func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %v", s, err)
	}
	return d, nil
}
