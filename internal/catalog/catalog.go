// Package catalog keeps the product list displayed at the point of sale.
// It is loaded once per session; the displayed stock is adjusted only
// through the StockWriter handed to the stock reconciler.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kevinserna01/react-cabina-sub000/internal/domain"
)

var (
	ErrProductNotFound = errors.New("producto no encontrado en el catalogo")
	ErrWriterTaken     = errors.New("el catalogo ya entrego su escritor de stock")
)

// Source fetches the product list from the backend.
type Source interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Catalog is the session snapshot of the product list.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	order    []string
	original map[string]int
	writer   bool
}

// New builds a catalog from an already fetched product list.
func New(products []domain.Product) *Catalog {
	c := &Catalog{}
	c.replace(products)
	return c
}

// Load fetches the product list from src.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	products, err := src.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalogo: %w", err)
	}
	return New(products), nil
}

func (c *Catalog) replace(products []domain.Product) {
	c.products = make(map[string]*domain.Product, len(products))
	c.original = make(map[string]int, len(products))
	c.order = c.order[:0]
	for i := range products {
		p := products[i]
		c.products[p.ID] = &p
		c.original[p.ID] = p.Stock
		c.order = append(c.order, p.ID)
	}
}

// Get returns a copy of the product with the given id.
func (c *Catalog) Get(id string) (domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return *p, nil
}

// FindByCode looks a product up by its human code.
func (c *Catalog) FindByCode(code string) (domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range c.order {
		if p := c.products[id]; p.Code == code {
			return *p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, code)
}

// Products returns the catalog in load order, optionally filtered by category.
func (c *Catalog) Products(category string) []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, 0, len(c.order))
	for _, id := range c.order {
		p := c.products[id]
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// Categories lists the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Available returns the displayed stock of a product.
func (c *Catalog) Available(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p, ok := c.products[id]; ok {
		return p.Stock
	}
	return 0
}

// CanAdd is the UI-boundary check run before adding one more unit to the cart.
func (c *Catalog) CanAdd(id string) bool {
	return c.Available(id) > 0
}

// OriginalStock returns the stock the product had when the catalog was loaded.
func (c *Catalog) OriginalStock(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.original[id]
}

// StockWriter is the only handle allowed to mutate displayed stock.
type StockWriter struct {
	c *Catalog
}

// StockWriter hands out the write handle. It can be taken only once.
func (c *Catalog) StockWriter() (*StockWriter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writer {
		return nil, ErrWriterTaken
	}
	c.writer = true
	return &StockWriter{c: c}, nil
}

// Adjust adds delta to the displayed stock. Unknown products are ignored.
func (w *StockWriter) Adjust(id string, delta int) {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	if p, ok := w.c.products[id]; ok {
		p.Stock += delta
	}
}
