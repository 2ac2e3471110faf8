package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", Token: "tok", Timeout: 2 * time.Second})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLastSaleCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/ventas/codigos/ultimo", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"codigo": "VTA-007"})
	})

	code, err := c.LastSaleCode(context.Background())
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.Equal(t, "VTA-007", *code)
}

func TestLastSaleCode_Null(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"codigo": nil})
	})

	code, err := c.LastSaleCode(context.Background())
	require.NoError(t, err)
	assert.Nil(t, code)
}

func TestReserveSaleCode(t *testing.T) {
	taken := map[string]bool{"VTA-008": true}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req dto.CodigoVentaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "sesion-1", req.Sesion)
		ok := !taken[req.Codigo]
		taken[req.Codigo] = true
		writeJSON(w, http.StatusOK, dto.ReservaCodigoResponse{Codigo: req.Codigo, Reservado: ok})
	})

	ok, err := c.ReserveSaleCode(context.Background(), "VTA-008", "sesion-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.ReserveSaleCode(context.Background(), "VTA-009", "sesion-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseSaleCode_NoContent(t *testing.T) {
	var got dto.CodigoVentaRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.ReleaseSaleCode(context.Background(), "VTA-010", "sesion-2"))
	assert.Equal(t, dto.CodigoVentaRequest{Codigo: "VTA-010", Sesion: "sesion-2"}, got)
}

func TestListProducts_MapsToDomain(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.ProductoListResponse{Data: []dto.ProductoResponse{
			{ID: "p1", Codigo: "CAF-01", Nombre: "Cafe", Categoria: "bebidas", PrecioVenta: decimal.NewFromInt(5000), StockActual: 4},
		}})
	})

	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "CAF-01", products[0].Code)
	assert.Equal(t, 4, products[0].Stock)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(5000)))
}

func TestListCustomers_Query(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, "ana", q.Get("search"))
		assert.Equal(t, "activo", q.Get("estado"))
		writeJSON(w, http.StatusOK, dto.ClienteListResponse{
			Items:      []dto.ClienteResponse{{ID: "c1", Nombre: "Ana"}},
			Pagination: dto.NewPagination(2, 5, 6),
		})
	})

	resp, err := c.ListCustomers(context.Background(), dto.ClienteFilter{Page: 2, Limit: 5, Search: "ana", Estado: "activo"})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Pagination.Pages)
}

func TestCreateSale_StatusErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   interface{}
		detail string
	}{
		{"conflict", http.StatusConflict, map[string]string{"detail": "codigo duplicado"}, "codigo duplicado"},
		{"not found", http.StatusNotFound, map[string]string{"detail": "producto no encontrado"}, "producto no encontrado"},
		{"validation", http.StatusUnprocessableEntity, map[string]interface{}{"detail": "Error de validacion", "fields": map[string]string{"Total": "min"}}, "Error de validacion"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			_, err := c.CreateSale(context.Background(), dto.CrearVentaRequest{Codigo: "VTA-001"})
			require.Error(t, err)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tc.status, se.StatusCode())
			assert.Equal(t, tc.detail, se.Detail)
			assert.False(t, errors.Is(err, ErrTransport))
		})
	}
}

func TestStatusError_NonJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.CreateSale(context.Background(), dto.CrearVentaRequest{})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.Equal(t, "Bad Gateway", se.Detail)
}

func TestTransportError_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url, Timeout: time.Second})
	_, err := c.LastSaleCode(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestTransportError_UndecodableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{not json"))
	})

	_, err := c.ReserveSaleCode(context.Background(), "VTA-001", "sesion-1")
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 5; i++ {
		_, err := c.LastSaleCode(context.Background())
		var se *StatusError
		require.True(t, errors.As(err, &se))
	}
	_, err := c.LastSaleCode(context.Background())
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Equal(t, 5, calls)
}
