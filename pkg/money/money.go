// Package money converts between integer USD cents and decimal dollar amounts.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// USDToCents converts a decimal dollar amount to integer cents,
// truncating toward zero: 19.999 becomes 1999, not 2000.
func USDToCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).IntPart()
}

// CentsToUSD converts integer cents to an exact decimal dollar amount.
func CentsToUSD(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}
