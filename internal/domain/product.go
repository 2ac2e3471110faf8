// Package domain holds the client-side types shared by the cart, the
// checkout workflow and the sale-code reservation client.
package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry as seen by the point of sale.
// Stock is the displayed (optimistic) stock while a cart session is open.
type Product struct {
	ID       string
	Code     string
	Name     string
	Price    decimal.Decimal
	Stock    int
	Category string
}

// CartItem pairs a product snapshot with the quantity claimed by the cart.
type CartItem struct {
	Product  Product
	Quantity int
}

// LineTotal returns price × quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
