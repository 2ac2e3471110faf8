package checkout

import (
	"context"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/cart"
	"github.com/kevinserna01/react-cabina-sub000/internal/domain"
	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
	"github.com/kevinserna01/react-cabina-sub000/internal/salecode"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SaleAPI persists a sale on the backend.
type SaleAPI interface {
	CreateSale(ctx context.Context, req dto.CrearVentaRequest) (*dto.VentaResponse, error)
}

// Finalizer settles the cart after a committed sale. stock.Reconciler
// implements it.
type Finalizer interface {
	Finalize(store *cart.Store)
}

// CommitRequest is everything the committer needs for one attempt.
type CommitRequest struct {
	Items       []domain.CartItem
	Reservation *salecode.Reservation
	Customer    *domain.Customer
	Method      domain.PaymentMethod
	// DiscountPercent is zero when no discount was applied.
	DiscountPercent decimal.Decimal
	FinalTotal      decimal.Decimal
}

// Committer submits the final sale and settles cart and code on the outcome.
type Committer struct {
	api   SaleAPI
	store *cart.Store
	fin   Finalizer
	now   func() time.Time
}

func NewCommitter(api SaleAPI, store *cart.Store, fin Finalizer) *Committer {
	return &Committer{api: api, store: store, fin: fin, now: time.Now}
}

// Commit submits the sale. On success the code becomes permanent and the
// cart is cleared. On any failure the cart and the held code are left
// untouched; every error is a *CommitError.
//
// The backend call is not idempotent: a retry after a conflict is a new
// attempt under the same code.
func (c *Committer) Commit(ctx context.Context, req CommitRequest) (*domain.CompletedSale, error) {
	if req.Reservation == nil || !req.Reservation.Held() {
		return nil, &CommitError{Kind: KindValidation, Err: salecode.ErrReservationClosed}
	}
	code := req.Reservation.Code()

	payload, err := buildSaleRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.CreateSale(ctx, payload)
	if err != nil {
		kind, status, fields := classify(err)
		cerr := &CommitError{Kind: kind, Code: code, Status: status, Detail: detailOf(err), Fields: fields, Err: err}
		log.Warn().Err(err).Str("codigo", code).Str("kind", kind.String()).Int("status", status).Msg("checkout: commit failed")
		return nil, cerr
	}

	if err := req.Reservation.Commit(); err != nil {
		log.Warn().Err(err).Str("codigo", code).Msg("checkout: reservation already closed at commit")
	}
	c.fin.Finalize(c.store)

	sale := &domain.CompletedSale{
		ID:            resp.ID,
		Code:          code,
		Total:         req.FinalTotal,
		Customer:      req.Customer,
		PaymentMethod: req.Method,
		Timestamp:     c.now(),
	}
	if resp.Codigo != "" {
		sale.Code = resp.Codigo
	}
	if !resp.Total.IsZero() {
		sale.Total = resp.Total
	}
	log.Info().Str("venta_id", sale.ID).Str("codigo", sale.Code).Str("total", sale.Total.String()).Msg("checkout: sale committed")
	return sale, nil
}

// buildSaleRequest maps the checkout state to the wire payload and runs the
// same validation the backend will.
func buildSaleRequest(req CommitRequest) (dto.CrearVentaRequest, error) {
	code := req.Reservation.Code()
	if len(req.Items) == 0 {
		return dto.CrearVentaRequest{}, &CommitError{Kind: KindValidation, Code: code, Err: ErrEmptyCart}
	}
	if !req.Method.Valid() {
		return dto.CrearVentaRequest{}, &CommitError{Kind: KindValidation, Code: code, Err: ErrInvalidPayment}
	}

	payload := dto.CrearVentaRequest{
		Codigo:     code,
		Sesion:     req.Reservation.Session(),
		Items:      make([]dto.ItemVentaRequest, 0, len(req.Items)),
		MetodoPago: req.Method.String(),
		Total:      req.FinalTotal,
	}
	for _, it := range req.Items {
		payload.Items = append(payload.Items, dto.ItemVentaRequest{
			ProductoID:     it.Product.ID,
			Codigo:         it.Product.Code,
			Cantidad:       it.Quantity,
			PrecioUnitario: it.Product.Price,
			Subtotal:       it.LineTotal(),
		})
	}
	if req.Customer.Selected() {
		payload.Cliente = customerSnapshot(req.Customer)
	}
	if req.DiscountPercent.IsPositive() {
		pct := req.DiscountPercent
		payload.DescuentoPorcentaje = &pct
	}

	fields, err := dto.Validate(payload)
	if err != nil {
		return dto.CrearVentaRequest{}, &CommitError{Kind: KindValidation, Code: code, Err: err}
	}
	if len(fields) > 0 {
		return dto.CrearVentaRequest{}, &CommitError{Kind: KindValidation, Code: code, Fields: fields}
	}
	return payload, nil
}

func customerSnapshot(c *domain.Customer) *dto.ClienteVentaSnapshot {
	s := &dto.ClienteVentaSnapshot{ID: c.ID, Nombre: c.Name, Documento: c.Document}
	if c.Email != "" {
		email := c.Email
		s.Email = &email
	}
	if c.Phone != "" {
		phone := c.Phone
		s.Telefono = &phone
	}
	return s
}
