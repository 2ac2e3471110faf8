package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kevinserna01/react-cabina-sub000/internal/apierror"
)

// Workflow guard errors.
var (
	ErrEmptyCart         = errors.New("el carrito esta vacio")
	ErrNoCustomer        = errors.New("seleccione o registre un cliente")
	ErrNoPaymentMethod   = errors.New("seleccione un metodo de pago")
	ErrInvalidStep       = errors.New("transicion de paso no permitida")
	ErrSessionClosed     = errors.New("la sesion de cobro ya fue cerrada")
	ErrNoDiscount        = errors.New("el cliente no tiene descuento personalizado")
	ErrInvalidPayment    = errors.New("metodo de pago invalido")
	ErrMissingDependency = errors.New("checkout: dependencia faltante")
)

// Failure kinds reported by the committer and the customer directory.
var (
	ErrConflict   = errors.New("conflicto al registrar la venta")
	ErrNotFound   = errors.New("un producto o cliente referenciado ya no existe")
	ErrValidation = errors.New("datos invalidos")
	ErrTransport  = errors.New("no se pudo contactar al servidor")

	// ErrUnauthorized means the session token was rejected; retrying with
	// the same credentials cannot succeed.
	ErrUnauthorized = errors.New("sesion no autorizada, inicie sesion de nuevo")
)

// Kind classifies a failed backend call.
type Kind int

const (
	KindTransport Kind = iota
	KindConflict
	KindNotFound
	KindValidation
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "transport"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConflict:
		return ErrConflict
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	case KindUnauthorized:
		return ErrUnauthorized
	default:
		return ErrTransport
	}
}

// CommitError is the typed failure of a sale commit. It matches the kind's
// sentinel with errors.Is.
type CommitError struct {
	Kind   Kind
	Code   string // sale code of the attempt
	Status int    // 0 when the backend did not answer
	Detail string
	Fields map[string]string
	Err    error
}

func (e *CommitError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Code != "" {
		msg = fmt.Sprintf("venta %s: %s", e.Code, msg)
	}
	return msg
}

func (e *CommitError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// Retryable reports whether re-invoking commit may succeed without changing
// the input. Conflicts keep the code held so the user may retry.
func (e *CommitError) Retryable() bool {
	return e.Kind == KindConflict || e.Kind == KindTransport
}

// ValidationError carries form-level feedback, keyed by field name.
type ValidationError struct {
	Detail string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return apierror.NewValidation(e.Fields).Error()
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// statusCoder and fieldErrorer are implemented by the API client's errors.
type statusCoder interface{ StatusCode() int }
type fieldErrorer interface{ FieldErrors() map[string]string }

// classify maps a backend failure to a Kind. Anything without a recognizable
// HTTP status (network errors, cancelled contexts, 5xx) is transport.
func classify(err error) (kind Kind, status int, fields map[string]string) {
	var sc statusCoder
	if !errors.As(err, &sc) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindTransport, 0, nil
	}
	status = sc.StatusCode()
	var fe fieldErrorer
	if errors.As(err, &fe) {
		fields = fe.FieldErrors()
	}
	switch status {
	case http.StatusConflict:
		return KindConflict, status, fields
	case http.StatusNotFound:
		return KindNotFound, status, fields
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation, status, fields
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized, status, fields
	default:
		return KindTransport, status, fields
	}
}

// detailOf extracts the backend's human message when the error carries one.
func detailOf(err error) string {
	var d interface{ DetailMessage() string }
	if errors.As(err, &d) {
		return d.DetailMessage()
	}
	return ""
}
