package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/domain"
	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
	"github.com/kevinserna01/react-cabina-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CodigoService hands out VTA-### sale codes. The last committed code comes
// from postgres; in-flight reservations live in redis.
type CodigoService interface {
	Ultimo(ctx context.Context) (*dto.UltimoCodigoResponse, error)
	Reservar(ctx context.Context, usuarioID uuid.UUID, req dto.CodigoVentaRequest) (*dto.ReservaCodigoResponse, error)
	Liberar(ctx context.Context, usuarioID uuid.UUID, req dto.CodigoVentaRequest) error
}

// reservaOwner identifies one checkout session of one worker. Two sessions
// under the same login never share a hold.
func reservaOwner(usuarioID uuid.UUID, sesion string) string {
	return usuarioID.String() + ":" + sesion
}

type codigoService struct {
	ventaRepo repository.VentaRepository
	reservas  repository.ReservaCodigoRepository
	ttl       time.Duration
}

func NewCodigoService(ventaRepo repository.VentaRepository, reservas repository.ReservaCodigoRepository, ttl time.Duration) CodigoService {
	return &codigoService{ventaRepo: ventaRepo, reservas: reservas, ttl: ttl}
}

func (s *codigoService) Ultimo(ctx context.Context) (*dto.UltimoCodigoResponse, error) {
	codigo, err := s.ventaRepo.LastCodigo(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.UltimoCodigoResponse{Codigo: codigo}, nil
}

func (s *codigoService) Reservar(ctx context.Context, usuarioID uuid.UUID, req dto.CodigoVentaRequest) (*dto.ReservaCodigoResponse, error) {
	if _, err := domain.ParseSaleCode(req.Codigo); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCodigoInvalido, req.Codigo)
	}
	owner := reservaOwner(usuarioID, req.Sesion)
	resp := &dto.ReservaCodigoResponse{Codigo: req.Codigo}

	ok, err := s.reservas.Reservar(ctx, req.Codigo, owner, s.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return resp, nil
	}

	// The hold is taken before the committed check: a sale that commits
	// after this point holds the key until it is persisted.
	exists, err := s.ventaRepo.ExistsCodigo(ctx, req.Codigo)
	if err != nil || exists {
		if relErr := s.reservas.Liberar(ctx, req.Codigo, owner); relErr != nil {
			log.Warn().Err(relErr).Str("codigo", req.Codigo).Msg("codigo: failed to drop reservation of committed code")
		}
		if err != nil {
			return nil, err
		}
		return resp, nil
	}

	resp.Reservado = true
	return resp, nil
}

func (s *codigoService) Liberar(ctx context.Context, usuarioID uuid.UUID, req dto.CodigoVentaRequest) error {
	if _, err := domain.ParseSaleCode(req.Codigo); err != nil {
		return fmt.Errorf("%w: %s", ErrCodigoInvalido, req.Codigo)
	}
	return s.reservas.Liberar(ctx, req.Codigo, reservaOwner(usuarioID, req.Sesion))
}
