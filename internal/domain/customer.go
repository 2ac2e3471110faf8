package domain

import "github.com/shopspring/decimal"

// Customer is the cart-scoped customer snapshot. ID is nil for a walk-in
// customer that was never persisted.
type Customer struct {
	ID              *string
	Name            string
	Document        string
	Email           string
	Phone           string
	DiscountPercent decimal.Decimal
}

// HasDiscount reports whether the customer carries a personal discount.
func (c *Customer) HasDiscount() bool {
	return c != nil && c.DiscountPercent.IsPositive()
}

// Selected reports whether the customer satisfies the checkout guard.
func (c *Customer) Selected() bool {
	return c != nil && c.Name != ""
}
