// Package apiclient is the point-of-sale side of the REST contract: it calls
// the backend's /v1 endpoints and turns responses into typed results.
// Network-originating failures never escape as raw errors: they come back as
// *StatusError (the backend answered) or wrap ErrTransport (it did not).
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/apierror"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// ErrTransport marks failures where no usable backend answer was received:
// connection errors, timeouts, undecodable bodies, an open circuit breaker.
var ErrTransport = errors.New("api: backend unreachable")

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Status int
	Detail string
	Fields map[string]string
}

func (e *StatusError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("api: %d: %s", e.Status, apierror.NewValidation(e.Fields).Error())
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Detail)
}

// StatusCode exposes the HTTP status to callers that classify errors.
func (e *StatusError) StatusCode() int { return e.Status }

// FieldErrors returns the per-field validation failures, if any.
func (e *StatusError) FieldErrors() map[string]string { return e.Fields }

// DetailMessage is the backend's human-readable message.
func (e *StatusError) DetailMessage() string { return e.Detail }

// Options configures a Client.
type Options struct {
	BaseURL string
	// Token is sent as a Bearer token when not empty.
	Token   string
	Timeout time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client talks to the Cabina backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[*http.Response]
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		httpClient: hc,
		cb:         newBreaker(),
	}
}

// newBreaker trips after 5 consecutive transport/5xx failures and probes
// again after 30s.
func newBreaker() *gobreaker.CircuitBreaker[*http.Response] {
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "cabina-api",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("api: circuit breaker state change")
		},
	})
}

// do sends a JSON request and decodes a 2xx JSON answer into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("api: marshal %s %s: %w", method, path, err)
		}
	}

	resp, err := c.cb.Execute(func() (*http.Response, error) {
		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rd)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			// counted as a breaker failure but still decoded below
			return resp, &StatusError{Status: resp.StatusCode}
		}
		return resp, nil
	})
	if resp == nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrTransport, method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	se := &StatusError{Status: resp.StatusCode}
	var env apierror.ValidationError
	if json.Unmarshal(raw, &env) == nil {
		se.Detail = env.Detail
		se.Fields = env.Fields
	}
	if se.Detail == "" {
		se.Detail = http.StatusText(resp.StatusCode)
	}
	return se
}
