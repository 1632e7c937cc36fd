package domain

import "github.com/shopspring/decimal"

// Money is carried as fixed-point decimal end to end. Currency amounts have
// at most two fractional digits; anything finer is rejected at the edge
// rather than silently rounded.

// ValidAmount reports whether d is a positive amount with cent precision.
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Exponent() >= -2
}

// ParseAmount parses a decimal string and validates it as a money amount.
func ParseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, ValidAmount(d)
}
