package service

import (
	"context"

	"github.com/google/uuid"

	"sowin/internal/dto"
	"sowin/internal/model"
	"sowin/internal/repository"
)

type ProveedorService interface {
	Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context) ([]dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error)
}

type proveedorService struct {
	repo         repository.ProveedorRepository
	productoRepo repository.ProductoRepository
}

func NewProveedorService(repo repository.ProveedorRepository, productoRepo repository.ProductoRepository) ProveedorService {
	return &proveedorService{repo: repo, productoRepo: productoRepo}
}

func (s *proveedorService) Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	p := &model.Proveedor{
		NombreProveedor: req.NombreProveedor,
		NIT:             req.NIT,
		Telefono:        req.Telefono,
		Email:           req.Email,
		Direccion:       req.Direccion,
		Ciudad:          req.Ciudad,
		Pais:            req.Pais,
		Activo:          true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return proveedorToResponse(p, nil), nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := s.productoRepo.CountByProveedor(ctx, id)
	if err != nil {
		return nil, err
	}
	return proveedorToResponse(p, &n), nil
}

func (s *proveedorService) Listar(ctx context.Context) ([]dto.ProveedorResponse, error) {
	proveedores, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProveedorResponse, 0, len(proveedores))
	for i := range proveedores {
		out = append(out, *proveedorToResponse(&proveedores[i], nil))
	}
	return out, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.NombreProveedor = req.NombreProveedor
	p.NIT = req.NIT
	p.Telefono = req.Telefono
	p.Email = req.Email
	p.Direccion = req.Direccion
	p.Ciudad = req.Ciudad
	p.Pais = req.Pais
	if req.Activo != nil {
		p.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return proveedorToResponse(p, nil), nil
}

func proveedorToResponse(p *model.Proveedor, totalProductos *int64) *dto.ProveedorResponse {
	return &dto.ProveedorResponse{
		ID:              p.ID.String(),
		NombreProveedor: p.NombreProveedor,
		NIT:             p.NIT,
		Telefono:        p.Telefono,
		Email:           p.Email,
		Direccion:       p.Direccion,
		Ciudad:          p.Ciudad,
		Pais:            p.Pais,
		Activo:          p.Activo,
		TotalProductos:  totalProductos,
	}
}
