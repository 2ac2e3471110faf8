package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/domain"
	"github.com/kevinserna01/react-cabina-sub000/internal/dto"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CustomerAPI is the backend's customer endpoints.
type CustomerAPI interface {
	ListCustomers(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	CreateCustomer(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
}

const defaultPageSize = 10

// CustomerPage is one page of the customer listing.
type CustomerPage struct {
	Customers []domain.Customer
	Page      int
	Pages     int
	Total     int64
}

// NewCustomer is the inline registration form.
type NewCustomer struct {
	Name     string `validate:"required,min=2,max=120"`
	Document string `validate:"required,min=5,max=20"`
	Email    string `validate:"omitempty,email"`
	Phone    string `validate:"required,len=10,numeric"`
}

// Directory lists, searches and registers customers during checkout.
type Directory struct {
	api      CustomerAPI
	pageSize int
	debounce *Debouncer

	mu     sync.Mutex
	search uint64
}

// NewDirectory returns a directory whose Search waits delay after the last
// keystroke before hitting the backend.
func NewDirectory(api CustomerAPI, pageSize int, delay time.Duration) *Directory {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Directory{api: api, pageSize: pageSize, debounce: NewDebouncer(delay)}
}

// List fetches one page of active customers matching term (may be empty).
func (d *Directory) List(ctx context.Context, page int, term string) (*CustomerPage, error) {
	if page < 1 {
		page = 1
	}
	resp, err := d.api.ListCustomers(ctx, dto.ClienteFilter{
		Page:   page,
		Limit:  d.pageSize,
		Search: strings.TrimSpace(term),
		Estado: "activo",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: clientes: %v", ErrTransport, err)
	}
	out := &CustomerPage{
		Customers: make([]domain.Customer, 0, len(resp.Items)),
		Page:      resp.Pagination.Page,
		Pages:     resp.Pagination.Pages,
		Total:     resp.Pagination.Total,
	}
	for _, c := range resp.Items {
		out.Customers = append(out.Customers, customerFromDTO(c))
	}
	return out, nil
}

// Search schedules a debounced first-page listing for term. Only the result
// of the latest call is delivered; earlier calls that already fired and
// return later are dropped.
func (d *Directory) Search(ctx context.Context, term string, deliver func(*CustomerPage, error)) {
	d.mu.Lock()
	d.search++
	seq := d.search
	d.mu.Unlock()

	d.debounce.Do(func() {
		page, err := d.List(ctx, 1, term)
		d.mu.Lock()
		latest := seq == d.search
		d.mu.Unlock()
		if !latest {
			log.Debug().Str("search", term).Msg("checkout: stale customer search dropped")
			return
		}
		deliver(page, err)
	})
}

// Stop cancels a pending search.
func (d *Directory) Stop() { d.debounce.Stop() }

// Register validates the form locally and creates the customer. The returned
// customer is complete and can be selected without another fetch.
func (d *Directory) Register(ctx context.Context, form NewCustomer) (*domain.Customer, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Document = strings.TrimSpace(form.Document)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)

	fields, err := dto.Validate(form)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	req := dto.CrearClienteRequest{
		Nombre:                 form.Name,
		Documento:              form.Document,
		Telefono:               &form.Phone,
		DescuentoPersonalizado: decimal.Zero,
	}
	if form.Email != "" {
		req.Email = &form.Email
	}
	resp, err := d.api.CreateCustomer(ctx, req)
	if err != nil {
		kind, status, fields := classify(err)
		switch {
		case kind == KindValidation:
			return nil, &ValidationError{Detail: detailOf(err), Fields: fields}
		case status == http.StatusConflict:
			return nil, &ValidationError{Detail: detailOf(err), Fields: map[string]string{"Document": "unique"}}
		default:
			return nil, fmt.Errorf("%w: registrar cliente: %v", ErrTransport, err)
		}
	}
	c := customerFromDTO(*resp)
	return &c, nil
}

func customerFromDTO(c dto.ClienteResponse) domain.Customer {
	out := domain.Customer{
		Name:            c.Nombre,
		Document:        c.Documento,
		DiscountPercent: c.DescuentoPersonalizado,
	}
	if c.ID != "" {
		id := c.ID
		out.ID = &id
	}
	if c.Email != nil {
		out.Email = *c.Email
	}
	if c.Telefono != nil {
		out.Phone = *c.Telefono
	}
	return out
}

// IsValidation reports whether err is form-level feedback.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// Debouncer runs only the last function handed to Do within a quiet period.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Do (re)starts the quiet period; fn runs on its own goroutine once it elapses.
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop drops the pending call, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
