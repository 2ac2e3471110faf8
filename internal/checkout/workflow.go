// Package checkout drives one checkout session from the cart review to the
// committed sale: Products → Customer → Payment → Summary.
//
// A session holds exactly one reserved sale code, acquired when it opens.
// It ends either by a successful commit (code consumed, cart cleared) or by
// Close (code released, cart and displayed stock left as they were).
package checkout

import (
	"context"
	"fmt"

	"github.com/kevinserna01/react-cabina-sub000/internal/cart"
	"github.com/kevinserna01/react-cabina-sub000/internal/domain"
	"github.com/kevinserna01/react-cabina-sub000/internal/salecode"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Step is the current screen of the checkout session.
type Step int

const (
	StepProducts Step = iota
	StepCustomer
	StepPayment
	StepSummary
)

func (s Step) String() string {
	switch s {
	case StepProducts:
		return "productos"
	case StepCustomer:
		return "cliente"
	case StepPayment:
		return "pago"
	case StepSummary:
		return "resumen"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

type sessionState int

const (
	sessionOpen sessionState = iota
	sessionCommitted
	sessionClosed
)

// CodeSource acquires a reserved sale code. salecode.Client implements it.
type CodeSource interface {
	Acquire(ctx context.Context) (*salecode.Reservation, error)
}

// Deps wires a session.
type Deps struct {
	Store     *cart.Store
	Codes     CodeSource
	Committer *Committer
	// Directory is optional; without it RegisterCustomer is unavailable.
	Directory *Directory
}

// Workflow is one checkout session. Not safe for concurrent use.
type Workflow struct {
	deps        Deps
	step        Step
	state       sessionState
	reservation *salecode.Reservation

	customer      *domain.Customer
	applyDiscount bool
	method        domain.PaymentMethod
}

// Open starts a session over a non-empty cart and reserves its sale code.
// When reservation fails no session exists and nothing needs releasing.
func Open(ctx context.Context, deps Deps) (*Workflow, error) {
	if deps.Store == nil || deps.Codes == nil || deps.Committer == nil {
		return nil, ErrMissingDependency
	}
	if deps.Store.IsEmpty() {
		return nil, ErrEmptyCart
	}
	res, err := deps.Codes.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	w := &Workflow{deps: deps, step: StepProducts, reservation: res}
	if c := deps.Store.Customer(); c != nil {
		w.selectCustomer(c)
	}
	log.Info().Str("codigo", res.Code()).Msg("checkout: session opened")
	return w, nil
}

func (w *Workflow) Step() Step                          { return w.step }
func (w *Workflow) Code() string                        { return w.reservation.Code() }
func (w *Workflow) Customer() *domain.Customer          { return w.customer }
func (w *Workflow) PaymentMethod() domain.PaymentMethod { return w.method }
func (w *Workflow) DiscountApplied() bool               { return w.applyDiscount && w.customer.HasDiscount() }

// Done reports whether the session was committed or closed.
func (w *Workflow) Done() bool { return w.state != sessionOpen }

// exitGuard reports why the session cannot leave step s forward, nil when it can.
func (w *Workflow) exitGuard(s Step) error {
	switch s {
	case StepProducts:
		if w.deps.Store.IsEmpty() {
			return ErrEmptyCart
		}
		return nil
	case StepCustomer:
		if !w.customer.Selected() {
			return ErrNoCustomer
		}
		return nil
	case StepPayment:
		if !w.method.Valid() {
			return ErrNoPaymentMethod
		}
		return nil
	default:
		// Summary is left only through Commit.
		return ErrInvalidStep
	}
}

// Next advances one step when the current step's exit guard holds.
func (w *Workflow) Next() error {
	if err := w.ensureOpen(); err != nil {
		return err
	}
	if err := w.exitGuard(w.step); err != nil {
		return err
	}
	w.step++
	return nil
}

// Back moves one step backwards. Selections are kept.
func (w *Workflow) Back() error {
	if err := w.ensureOpen(); err != nil {
		return err
	}
	if w.step == StepProducts {
		return ErrInvalidStep
	}
	w.step--
	return nil
}

// SelectCustomer picks the sale's customer and resets the discount toggle to
// whether that customer carries a discount. nil deselects.
func (w *Workflow) SelectCustomer(c *domain.Customer) error {
	if err := w.ensureOpen(); err != nil {
		return err
	}
	w.selectCustomer(c)
	return nil
}

func (w *Workflow) selectCustomer(c *domain.Customer) {
	w.customer = c
	w.applyDiscount = c.HasDiscount()
	w.deps.Store.SetCustomer(c)
}

// RegisterCustomer creates a customer through the directory and selects it.
func (w *Workflow) RegisterCustomer(ctx context.Context, form NewCustomer) (*domain.Customer, error) {
	if err := w.ensureOpen(); err != nil {
		return nil, err
	}
	if w.deps.Directory == nil {
		return nil, ErrMissingDependency
	}
	c, err := w.deps.Directory.Register(ctx, form)
	if err != nil {
		return nil, err
	}
	w.selectCustomer(c)
	return c, nil
}

// SetApplyDiscount toggles the customer's personal discount.
func (w *Workflow) SetApplyDiscount(on bool) error {
	if err := w.ensureOpen(); err != nil {
		return err
	}
	if on && !w.customer.HasDiscount() {
		return ErrNoDiscount
	}
	w.applyDiscount = on
	return nil
}

func (w *Workflow) SetPaymentMethod(m domain.PaymentMethod) error {
	if err := w.ensureOpen(); err != nil {
		return err
	}
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPayment, m)
	}
	w.method = m
	return nil
}

// Summary is what the Summary step shows.
type Summary struct {
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	Discount        decimal.Decimal
	FinalTotal      decimal.Decimal
	Applied         bool
}

func (w *Workflow) Summary() Summary {
	subtotal := w.deps.Store.Total()
	s := Summary{Subtotal: subtotal, DiscountPercent: decimal.Zero, Discount: decimal.Zero, FinalTotal: subtotal}
	if w.DiscountApplied() {
		s.Applied = true
		s.DiscountPercent = w.customer.DiscountPercent
		s.FinalTotal = domain.ApplyDiscount(subtotal, s.DiscountPercent)
		s.Discount = subtotal.Sub(s.FinalTotal)
	}
	return s
}

// Commit submits the sale from the Summary step. On failure the session
// stays open on Summary with the same code, so the user may retry or Close.
func (w *Workflow) Commit(ctx context.Context) (*domain.CompletedSale, error) {
	if err := w.ensureOpen(); err != nil {
		return nil, err
	}
	if w.step != StepSummary {
		return nil, ErrInvalidStep
	}
	sum := w.Summary()
	sale, err := w.deps.Committer.Commit(ctx, CommitRequest{
		Items:           w.deps.Store.Items(),
		Reservation:     w.reservation,
		Customer:        w.customer,
		Method:          w.method,
		DiscountPercent: sum.DiscountPercent,
		FinalTotal:      sum.FinalTotal,
	})
	if err != nil {
		return nil, err
	}
	w.state = sessionCommitted
	return sale, nil
}

// Close ends the session. Before a commit it releases the held code; cart
// and displayed stock are not touched. Closing twice, or after a commit, is
// a no-op.
func (w *Workflow) Close(ctx context.Context) {
	if w.state != sessionOpen {
		return
	}
	w.state = sessionClosed
	w.reservation.Release(ctx)
	log.Info().Str("codigo", w.reservation.Code()).Str("step", w.step.String()).Msg("checkout: session closed without sale")
}

func (w *Workflow) ensureOpen() error {
	if w.state != sessionOpen {
		return ErrSessionClosed
	}
	return nil
}
