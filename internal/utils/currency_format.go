package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPrecision is the number of decimal places money is rounded to.
const CurrencyPrecision = 2

// FormatWithPrecision formats an amount with the given precision
// Example: amount 12.3456 with precision 2 returns "12.35"
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.Round(int32(precision)).StringFixed(int32(precision))
}

// RoundCurrency rounds an amount to currency precision.
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyPrecision)
}

// HasCurrencyPrecision reports whether amount has no digits beyond cents.
func HasCurrencyPrecision(amount decimal.Decimal) bool {
	return amount.Equal(RoundCurrency(amount))
}

// FormatUSD renders an amount as dollars with thousands separators.
// Example: 5000 returns "$5,000.00", -12.5 returns "-$12.50"
func FormatUSD(amount decimal.Decimal) string {
	fixed := FormatWithPrecision(amount.Abs(), CurrencyPrecision)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if amount.IsNegative() && !amount.Round(CurrencyPrecision).IsZero() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
