package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
	"github.com/kevinserna01/react-cabina-sub000/internal/model"
	"github.com/kevinserna01/react-cabina-sub000/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	catalogoCacheKey = "productos:catalogo"
	catalogoCacheTTL = 30 * time.Second
)

// ProductoService serves the read-only catalog of active products.
type ProductoService interface {
	Listar(ctx context.Context) (*dto.ProductoListResponse, error)
	// Invalidar drops the cached catalog; called after stock changes.
	Invalidar(ctx context.Context)
}

type productoService struct {
	repo repository.ProductoRepository
	rdb  *redis.Client // nil disables caching
}

func NewProductoService(repo repository.ProductoRepository, rdb *redis.Client) ProductoService {
	return &productoService{repo: repo, rdb: rdb}
}

func (s *productoService) Listar(ctx context.Context) (*dto.ProductoListResponse, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, catalogoCacheKey).Bytes(); err == nil {
			var cached dto.ProductoListResponse
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	productos, err := s.repo.ListActivos(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductoListResponse{Data: make([]dto.ProductoResponse, len(productos))}
	for i := range productos {
		resp.Data[i] = productoToResponse(&productos[i])
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, catalogoCacheKey, raw, catalogoCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("producto: failed to cache catalog")
			}
		}
	}
	return resp, nil
}

func (s *productoService) Invalidar(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, catalogoCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("producto: failed to invalidate catalog cache")
	}
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:          p.ID.String(),
		Codigo:      p.Codigo,
		Nombre:      p.Nombre,
		Categoria:   p.Categoria,
		PrecioVenta: p.PrecioVenta,
		StockActual: p.StockActual,
	}
}
