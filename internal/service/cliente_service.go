package service

import (
	"context"
	"errors"
	"strings"

	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
	"github.com/kevinserna01/react-cabina-sub000/internal/model"
	"github.com/kevinserna01/react-cabina-sub000/internal/repository"

	"gorm.io/gorm"
)

type ClienteService interface {
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	filter.Search = strings.TrimSpace(filter.Search)

	clientes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ClienteResponse, len(clientes))
	for i := range clientes {
		items[i] = clienteToResponse(&clientes[i])
	}
	return &dto.ClienteListResponse{
		Items:      items,
		Pagination: dto.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		Nombre:                 strings.TrimSpace(req.Nombre),
		Documento:              strings.TrimSpace(req.Documento),
		Email:                  trimOptional(req.Email),
		Telefono:               trimOptional(req.Telefono),
		DescuentoPersonalizado: req.DescuentoPersonalizado,
		Estado:                 "activo",
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDocumentoDuplicado
		}
		return nil, err
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func clienteToResponse(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:                     c.ID.String(),
		Nombre:                 c.Nombre,
		Documento:              c.Documento,
		Email:                  c.Email,
		Telefono:               c.Telefono,
		DescuentoPersonalizado: c.DescuentoPersonalizado,
		Estado:                 c.Estado,
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
