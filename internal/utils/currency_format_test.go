package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"999.999", "$1,000.00"},
		{"5000", "$5,000.00"},
		{"20000", "$20,000.00"},
		{"1234567.891", "$1,234,567.89"},
		{"-12.5", "-$12.50"},
		{"-0.001", "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUSD(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestHasCurrencyPrecision(t *testing.T) {
	for _, ok := range []string{"5", "5.1", "5.10", "0.01", "1234.5600"} {
		assert.True(t, HasCurrencyPrecision(decimal.RequireFromString(ok)), ok)
	}
	for _, bad := range []string{"0.00001", "12.345", "0.001"} {
		assert.False(t, HasCurrencyPrecision(decimal.RequireFromString(bad)), bad)
	}
}

func TestFormatWithPrecision(t *testing.T) {
	assert.Equal(t, "12.35", FormatWithPrecision(decimal.RequireFromString("12.3456"), 2))
	assert.Equal(t, "12", FormatWithPrecision(decimal.RequireFromString("12.3456"), 0))
	assert.True(t, decimal.RequireFromString("2500.01").Equal(RoundCurrency(decimal.RequireFromString("2500.005"))))
}
