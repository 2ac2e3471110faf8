package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kevinserna01/react-cabina-sub000/internal/cart"
	"github.com/kevinserna01/react-cabina-sub000/internal/catalog"
	"github.com/kevinserna01/react-cabina-sub000/internal/domain"
	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
	"github.com/kevinserna01/react-cabina-sub000/internal/salecode"
	"github.com/kevinserna01/react-cabina-sub000/internal/stock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ── Fake sale-code backend ──────────────────────────────────────────────────

type codeBackend struct {
	mu       sync.Mutex
	last     *string
	taken    map[string]bool
	released []string
	err      error
}

func newCodeBackend() *codeBackend { return &codeBackend{taken: map[string]bool{}} }

func (b *codeBackend) LastSaleCode(context.Context) (*string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	return b.last, nil
}

func (b *codeBackend) ReserveSaleCode(_ context.Context, code, _ string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.taken[code] {
		return false, nil
	}
	b.taken[code] = true
	return true, nil
}

func (b *codeBackend) ReleaseSaleCode(_ context.Context, code, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = append(b.released, code)
	delete(b.taken, code)
	return nil
}

func (b *codeBackend) releases() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.released...)
}

// ── Fake sale API ───────────────────────────────────────────────────────────

type statusErr struct {
	status int
	detail string
	fields map[string]string
}

func (e *statusErr) Error() string                  { return e.detail }
func (e *statusErr) StatusCode() int                { return e.status }
func (e *statusErr) FieldErrors() map[string]string { return e.fields }
func (e *statusErr) DetailMessage() string          { return e.detail }

var errNetwork = errors.New("dial tcp: connection refused")

type saleAPI struct {
	errs     []error // consumed one per call; nil entries succeed
	requests []dto.CrearVentaRequest
}

func (a *saleAPI) CreateSale(_ context.Context, req dto.CrearVentaRequest) (*dto.VentaResponse, error) {
	a.requests = append(a.requests, req)
	if len(a.errs) > 0 {
		err := a.errs[0]
		a.errs = a.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &dto.VentaResponse{ID: uuid.NewString(), Codigo: req.Codigo, Total: req.Total, MetodoPago: req.MetodoPago}, nil
}

// ── Session fixture ─────────────────────────────────────────────────────────

type fixture struct {
	catalog    *catalog.Catalog
	store      *cart.Store
	reconciler *stock.Reconciler
	backend    *codeBackend
	api        *saleAPI
	customers  *customerAPI
	deps       Deps
	p1, p2     domain.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	p1 := domain.Product{ID: uuid.NewString(), Code: "CAF-01", Name: "Cafe", Price: decimal.NewFromInt(5000), Stock: 5}
	p2 := domain.Product{ID: uuid.NewString(), Code: "TE-01", Name: "Te", Price: decimal.NewFromInt(10000), Stock: 2}
	cat := catalog.New([]domain.Product{p1, p2})
	store := cart.NewStore(nil)
	rec, err := stock.Attach(cat, store)
	require.NoError(t, err)

	backend := newCodeBackend()
	api := &saleAPI{}
	customers := newCustomerAPI()
	f := &fixture{
		catalog: cat, store: store, reconciler: rec, backend: backend, api: api, customers: customers,
		p1: p1, p2: p2,
	}
	f.deps = Deps{
		Store:     store,
		Codes:     salecode.NewClient(backend, salecode.Config{MaxAttempts: 10}),
		Committer: NewCommitter(api, store, rec),
		Directory: NewDirectory(customers, 10, 0),
	}
	return f
}

// add puts one unit of p into the cart, the way the UI does after CanAdd.
func (f *fixture) add(t *testing.T, p domain.Product) {
	t.Helper()
	require.True(t, f.catalog.CanAdd(p.ID))
	f.store.AddItem(p)
}

// ── Fake customer API ───────────────────────────────────────────────────────

type customerAPI struct {
	mu       sync.Mutex
	items    []dto.ClienteResponse
	filters  []dto.ClienteFilter
	createFn func(dto.CrearClienteRequest) (*dto.ClienteResponse, error)
}

func newCustomerAPI() *customerAPI { return &customerAPI{} }

func (a *customerAPI) ListCustomers(_ context.Context, f dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filters = append(a.filters, f)
	var out []dto.ClienteResponse
	for _, c := range a.items {
		if f.Search == "" || c.Nombre == f.Search || c.Documento == f.Search {
			out = append(out, c)
		}
	}
	return &dto.ClienteListResponse{Items: out, Pagination: dto.NewPagination(f.Page, f.Limit, int64(len(out)))}, nil
}

func (a *customerAPI) CreateCustomer(_ context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	if a.createFn != nil {
		return a.createFn(req)
	}
	return &dto.ClienteResponse{
		ID:                     uuid.NewString(),
		Nombre:                 req.Nombre,
		Documento:              req.Documento,
		Email:                  req.Email,
		Telefono:               req.Telefono,
		DescuentoPersonalizado: req.DescuentoPersonalizado,
		Estado:                 "activo",
	}, nil
}

func (a *customerAPI) searches() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.filters))
	for _, f := range a.filters {
		out = append(out, f.Search)
	}
	return out
}
