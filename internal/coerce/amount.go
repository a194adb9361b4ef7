// Package coerce converts raw export cells into typed values. Failures never
// surface as errors: an unusable cell becomes null.
package coerce

import (
	"strings"

	"github.com/shopspring/decimal"
)

var amountCutset = strings.NewReplacer(",", "", " ", "", "\u00a0", "")

// Amount parses a currency-like cell such as "1,234.50". Null, empty and
// unparseable input yields an invalid NullDecimal.
func Amount(raw *string) decimal.NullDecimal {
	if raw == nil {
		return decimal.NullDecimal{}
	}
	s := amountCutset.Replace(strings.TrimSpace(*raw))
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// AmountOrZero is Amount with null mapped to zero.
func AmountOrZero(raw *string) decimal.Decimal {
	if n := Amount(raw); n.Valid {
		return n.Decimal
	}
	return decimal.Zero
}
