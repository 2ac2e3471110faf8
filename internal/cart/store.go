// Package cart holds the point-of-sale cart: the claimed items, the optional
// customer and the running total. It performs no I/O.
package cart

import (
	"github.com/kevinserna01/react-cabina-sub000/internal/domain"

	"github.com/shopspring/decimal"
)

// StockListener is notified synchronously of every change in the quantity
// the cart claims for a product. delta > 0 means more units were claimed.
type StockListener interface {
	Claimed(productID string, delta int)
}

// Store is the cart state container. It trusts callers to have checked
// availability before adding. Not safe for concurrent use; a checkout
// session is driven by a single goroutine.
type Store struct {
	items    []domain.CartItem
	customer *domain.Customer
	total    decimal.Decimal
	listener StockListener
}

// NewStore returns an empty cart. listener may be nil.
func NewStore(listener StockListener) *Store {
	return &Store{total: decimal.Zero, listener: listener}
}

// SetListener replaces the stock listener.
func (s *Store) SetListener(l StockListener) { s.listener = l }

// AddItem increments the product's quantity by one, appending it when absent.
func (s *Store) AddItem(p domain.Product) {
	if i := s.indexOf(p.ID); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, domain.CartItem{Product: p, Quantity: 1})
	}
	s.recompute()
	s.notify(p.ID, 1)
}

// UpdateQuantity sets the quantity exactly. Negative values are ignored and
// zero removes the item.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	if quantity < 0 {
		return
	}
	if quantity == 0 {
		s.RemoveItem(productID)
		return
	}
	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	delta := quantity - s.items[i].Quantity
	s.items[i].Quantity = quantity
	s.recompute()
	s.notify(productID, delta)
}

// RemoveItem deletes the product from the cart.
func (s *Store) RemoveItem(productID string) {
	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	qty := s.items[i].Quantity
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.recompute()
	s.notify(productID, -qty)
}

// SetCustomer attaches (or with nil, detaches) the checkout customer.
func (s *Store) SetCustomer(c *domain.Customer) { s.customer = c }

// Clear empties items and customer and zeroes the total. It does not notify
// the stock listener: restoring stock or keeping it consumed is decided by
// the caller (see stock.Reconciler).
func (s *Store) Clear() {
	s.items = nil
	s.customer = nil
	s.total = decimal.Zero
}

// Items returns a copy of the current items.
func (s *Store) Items() []domain.CartItem {
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Total() decimal.Decimal     { return s.total }
func (s *Store) Customer() *domain.Customer { return s.customer }
func (s *Store) IsEmpty() bool              { return len(s.items) == 0 }

// Quantity returns the claimed quantity for productID, 0 when absent.
func (s *Store) Quantity(productID string) int {
	if i := s.indexOf(productID); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

func (s *Store) indexOf(productID string) int {
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) recompute() {
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.LineTotal())
	}
	s.total = total
}

func (s *Store) notify(productID string, delta int) {
	if s.listener != nil && delta != 0 {
		s.listener.Claimed(productID, delta)
	}
}
