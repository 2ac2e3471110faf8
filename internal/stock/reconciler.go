// Package stock mirrors cart claims into the catalog's displayed stock so a
// worker never sells units already claimed by the open cart.
//
// The reservation is two-phase: a local hold taken on every cart mutation,
// then either Finalize (sale committed, units stay consumed) or Abandon
// (units handed back to the catalog). It is a single-client optimistic view;
// the backend stays authoritative and may reject the commit.
package stock

import (
	"github.com/kevinserna01/react-cabina-sub000/internal/cart"
	"github.com/kevinserna01/react-cabina-sub000/internal/catalog"

	"github.com/rs/zerolog/log"
)

// Reconciler implements cart.StockListener over a catalog.
type Reconciler struct {
	writer *catalog.StockWriter
}

var _ cart.StockListener = (*Reconciler)(nil)

// NewReconciler takes the catalog's stock writer.
func NewReconciler(c *catalog.Catalog) (*Reconciler, error) {
	w, err := c.StockWriter()
	if err != nil {
		return nil, err
	}
	return &Reconciler{writer: w}, nil
}

// Attach creates a reconciler for c and wires it into store.
func Attach(c *catalog.Catalog, store *cart.Store) (*Reconciler, error) {
	r, err := NewReconciler(c)
	if err != nil {
		return nil, err
	}
	store.SetListener(r)
	return r, nil
}

// Claimed moves delta units from the catalog into the cart (or back when negative).
func (r *Reconciler) Claimed(productID string, delta int) {
	r.writer.Adjust(productID, -delta)
}

// Abandon hands every claimed unit back to the catalog and clears the cart.
// Used on cancel, navigation away or reload without commit.
func (r *Reconciler) Abandon(store *cart.Store) {
	restored := 0
	for _, it := range store.Items() {
		r.writer.Adjust(it.Product.ID, it.Quantity)
		restored += it.Quantity
	}
	store.Clear()
	log.Debug().Int("units", restored).Msg("stock: cart abandoned, units restored")
}

// Finalize clears the cart after a committed sale; claimed units stay consumed.
func (r *Reconciler) Finalize(store *cart.Store) {
	store.Clear()
}
