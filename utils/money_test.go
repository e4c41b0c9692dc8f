package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateTopupAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		wantErr bool
	}{
		{"minimum allowed", decimal.NewFromInt(100000), false},
		{"maximum allowed", decimal.NewFromInt(5000000000), false},
		{"typical topup", decimal.NewFromInt(1500000), false},
		{"below minimum", decimal.NewFromInt(99999), true},
		{"above maximum", decimal.NewFromInt(5000000001), true},
		{"fractional rials", decimal.NewFromFloat(100000.5), true},
		{"zero", decimal.Zero, true},
		{"negative", decimal.NewFromInt(-100000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTopupAmount(tt.amount)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1500000", FormatAmount(decimal.NewFromInt(1500000)))
	assert.Equal(t, "1500000", FormatAmount(decimal.NewFromFloat(1500000.0)))
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("2500000")
	assert.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(2500000)))

	_, err = ParseAmount("not-a-number")
	assert.Error(t, err)
}
