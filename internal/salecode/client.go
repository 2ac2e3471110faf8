// Package salecode acquires human-sequential sale codes (VTA-001, VTA-002…)
// that stay unique across concurrently checking-out workers. Uniqueness is
// arbitrated by the backend's atomic reserve call; this client only picks
// candidates and retries on collision.
package salecode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrCodeExhausted is returned when every candidate up to the attempt
	// ceiling was already taken.
	ErrCodeExhausted = errors.New("no se pudo reservar un codigo de venta libre")
	// ErrReservationFailed marks a transport/backend failure while querying
	// or reserving.
	ErrReservationFailed = errors.New("fallo la reserva del codigo de venta")
	// ErrReservationClosed is returned when a reservation is used after it
	// was committed or released.
	ErrReservationClosed = errors.New("la reserva ya fue cerrada")
)

// DefaultMaxAttempts bounds the candidate loop.
const DefaultMaxAttempts = 1000

// Backend is the boundary to the idempotent sale-code endpoints. session
// names the checkout session that holds the code; the backend grants a code
// to exactly one session.
type Backend interface {
	// LastSaleCode returns the highest registered code, nil when none exists.
	LastSaleCode(ctx context.Context) (*string, error)
	// ReserveSaleCode reports whether this session won the code.
	ReserveSaleCode(ctx context.Context, code, session string) (bool, error)
	ReleaseSaleCode(ctx context.Context, code, session string) error
}

// Config tunes the acquisition loop.
type Config struct {
	MaxAttempts int
	// Backoff is waited between colliding candidates. Zero retries immediately.
	Backoff time.Duration
}

// Client turns the backend endpoints into a guaranteed-unique code.
type Client struct {
	backend     Backend
	maxAttempts int
	backoff     time.Duration
}

func NewClient(backend Backend, cfg Config) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Client{backend: backend, maxAttempts: cfg.MaxAttempts, backoff: cfg.Backoff}
}

// ReservationError wraps the transport failure behind ErrReservationFailed.
type ReservationError struct {
	Op   string // "last" | "reserve"
	Code string
	Err  error
}

func (e *ReservationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("salecode: %s %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("salecode: %s: %v", e.Op, e.Err)
}

func (e *ReservationError) Unwrap() []error { return []error{ErrReservationFailed, e.Err} }

// Acquire reserves the next free code for a new checkout session:
//  1. read the last registered code (0 when none)
//  2. candidate = last + 1
//  3. reserve; on collision increment and retry, up to the attempt ceiling
func (c *Client) Acquire(ctx context.Context) (*Reservation, error) {
	last, err := c.backend.LastSaleCode(ctx)
	if err != nil {
		return nil, &ReservationError{Op: "last", Err: err}
	}
	n := 0
	if last != nil && *last != "" {
		n, err = domain.ParseSaleCode(*last)
		if err != nil {
			return nil, &ReservationError{Op: "last", Err: err}
		}
	}

	session := uuid.NewString()
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		n++
		code := domain.FormatSaleCode(n)
		ok, err := c.backend.ReserveSaleCode(ctx, code, session)
		if err != nil {
			return nil, &ReservationError{Op: "reserve", Code: code, Err: err}
		}
		if ok {
			log.Debug().Str("codigo", code).Int("attempt", attempt).Msg("salecode: reserved")
			return &Reservation{code: code, session: session, backend: c.backend}, nil
		}
		log.Debug().Str("codigo", code).Int("attempt", attempt).Msg("salecode: taken, trying next")
		if c.backoff > 0 && attempt < c.maxAttempts {
			select {
			case <-ctx.Done():
				return nil, &ReservationError{Op: "reserve", Code: code, Err: ctx.Err()}
			case <-time.After(c.backoff):
			}
		}
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrCodeExhausted, c.maxAttempts)
}

type reservationState int

const (
	held reservationState = iota
	committed
	released
)

// Reservation is a code held exclusively by one checkout session until it
// is either committed (permanent, no backend call) or released. Exactly one
// of the two takes effect.
type Reservation struct {
	mu      sync.Mutex
	code    string
	session string
	state   reservationState
	backend Backend
}

func (r *Reservation) Code() string { return r.code }

// Session is the token the code is held under; the sale is committed with it.
func (r *Reservation) Session() string { return r.session }

// Held reports whether the code is still held (neither committed nor released).
func (r *Reservation) Held() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == held
}

// Commit marks the code as consumed by a persisted sale.
func (r *Reservation) Commit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != held {
		return ErrReservationClosed
	}
	r.state = committed
	return nil
}

// Release frees the code for reuse. It is best-effort: a backend failure is
// logged and the reservation is still considered closed (the backend expires
// orphans by TTL). Calling Release after Commit or a previous Release is a no-op.
func (r *Reservation) Release(ctx context.Context) {
	r.mu.Lock()
	if r.state != held {
		r.mu.Unlock()
		return
	}
	r.state = released
	r.mu.Unlock()

	if err := r.backend.ReleaseSaleCode(ctx, r.code, r.session); err != nil {
		log.Warn().Err(err).Str("codigo", r.code).Msg("salecode: release failed, left to backend expiry")
		return
	}
	log.Debug().Str("codigo", r.code).Msg("salecode: released")
}
