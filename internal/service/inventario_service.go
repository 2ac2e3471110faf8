package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
	"github.com/kevinserna01/react-cabina-sub000/internal/model"
	"github.com/kevinserna01/react-cabina-sub000/internal/repository"

	"github.com/google/uuid"
)

// DefaultUmbralStock is the low-stock threshold when the caller gives none.
const DefaultUmbralStock = 5

// InventarioService exposes the stock movement ledger written by sales and
// the low-stock alerts derived from the catalog.
type InventarioService interface {
	Movimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	Alertas(ctx context.Context, umbral int) ([]dto.AlertaStockResponse, error)
}

type inventarioService struct {
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
}

func NewInventarioService(productos repository.ProductoRepository, movimientos repository.MovimientoStockRepository) InventarioService {
	return &inventarioService{productos: productos, movimientos: movimientos}
}

func (s *inventarioService) Movimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	var productoID *uuid.UUID
	if filter.ProductoID != "" {
		id, err := uuid.Parse(filter.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, filter.ProductoID)
		}
		productoID = &id
	}

	movs, total, err := s.movimientos.List(ctx, productoID, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.MovimientoListResponse{
		Items:      make([]dto.MovimientoResponse, 0, len(movs)),
		Pagination: dto.NewPagination(filter.Page, filter.Limit, total),
	}
	for i := range movs {
		resp.Items = append(resp.Items, movimientoToResponse(&movs[i]))
	}
	return resp, nil
}

// Alertas lists active products whose stock is at or below umbral, lowest first.
func (s *inventarioService) Alertas(ctx context.Context, umbral int) ([]dto.AlertaStockResponse, error) {
	if umbral < 0 {
		umbral = DefaultUmbralStock
	}
	productos, err := s.productos.ListActivos(ctx)
	if err != nil {
		return nil, err
	}
	alertas := []dto.AlertaStockResponse{}
	for _, p := range productos {
		if p.StockActual > umbral {
			continue
		}
		alertas = append(alertas, dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			Codigo:      p.Codigo,
			Nombre:      p.Nombre,
			StockActual: p.StockActual,
			Umbral:      umbral,
		})
	}
	sort.SliceStable(alertas, func(i, j int) bool { return alertas[i].StockActual < alertas[j].StockActual })
	return alertas, nil
}

func movimientoToResponse(m *model.MovimientoStock) dto.MovimientoResponse {
	r := dto.MovimientoResponse{
		ID:            m.ID.String(),
		ProductoID:    m.ProductoID.String(),
		Tipo:          m.Tipo,
		Cantidad:      m.Cantidad,
		StockAnterior: m.StockAnterior,
		StockNuevo:    m.StockNuevo,
		Referencia:    m.Referencia,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
	if m.Producto != nil {
		r.Producto = m.Producto.Nombre
	}
	if m.VentaID != nil {
		id := m.VentaID.String()
		r.VentaID = &id
	}
	return r
}
