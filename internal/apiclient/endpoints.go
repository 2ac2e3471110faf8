package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kevinserna01/react-cabina-sub000/internal/domain"
	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
)

// ── Sale codes ────────────────────────────────────────────────────────────────

// LastSaleCode implements salecode.Backend.
func (c *Client) LastSaleCode(ctx context.Context) (*string, error) {
	var resp dto.UltimoCodigoResponse
	if err := c.do(ctx, http.MethodGet, "/v1/ventas/codigos/ultimo", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Codigo, nil
}

// ReserveSaleCode implements salecode.Backend.
func (c *Client) ReserveSaleCode(ctx context.Context, code, session string) (bool, error) {
	var resp dto.ReservaCodigoResponse
	if err := c.do(ctx, http.MethodPost, "/v1/ventas/codigos/reservar", nil, dto.CodigoVentaRequest{Codigo: code, Sesion: session}, &resp); err != nil {
		return false, err
	}
	return resp.Reservado, nil
}

// ReleaseSaleCode implements salecode.Backend.
func (c *Client) ReleaseSaleCode(ctx context.Context, code, session string) error {
	return c.do(ctx, http.MethodPost, "/v1/ventas/codigos/liberar", nil, dto.CodigoVentaRequest{Codigo: code, Sesion: session}, nil)
}

// ── Catalog ───────────────────────────────────────────────────────────────────

// ListProducts implements catalog.Source.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var resp dto.ProductoListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/productos", nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(resp.Data))
	for _, p := range resp.Data {
		out = append(out, domain.Product{
			ID:       p.ID,
			Code:     p.Codigo,
			Name:     p.Nombre,
			Price:    p.PrecioVenta,
			Stock:    p.StockActual,
			Category: p.Categoria,
		})
	}
	return out, nil
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (c *Client) ListCustomers(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	q := url.Values{}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Estado != "" {
		q.Set("estado", filter.Estado)
	}
	var resp dto.ClienteListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/clientes", q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateCustomer(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	var resp dto.ClienteResponse
	if err := c.do(ctx, http.MethodPost, "/v1/clientes", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ── Sales ─────────────────────────────────────────────────────────────────────

func (c *Client) CreateSale(ctx context.Context, req dto.CrearVentaRequest) (*dto.VentaResponse, error) {
	var resp dto.VentaResponse
	if err := c.do(ctx, http.MethodPost, "/v1/ventas", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
