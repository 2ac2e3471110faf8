package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ApplyDiscount returns round(total − total × percent / 100), never below zero.
func ApplyDiscount(total, percent decimal.Decimal) decimal.Decimal {
	final := total.Sub(total.Mul(percent).Div(hundred)).Round(0)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}
