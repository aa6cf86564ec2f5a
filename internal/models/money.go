package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The backend exchanges prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Money formats an amount with a dollar sign and two decimals
func Money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
