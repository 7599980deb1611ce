package service

import (
	"context"

	"github.com/google/uuid"

	"sowin/internal/dto"
	"sowin/internal/model"
	"sowin/internal/repository"
)

type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CategoriaResponse, error)
	Listar(ctx context.Context) ([]dto.CategoriaResponse, error)
	ConteoProductos(ctx context.Context) ([]dto.CategoriaConteoItem, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error)
}

type categoriaService struct {
	repo         repository.CategoriaRepository
	productoRepo repository.ProductoRepository
}

func NewCategoriaService(repo repository.CategoriaRepository, productoRepo repository.ProductoRepository) CategoriaService {
	return &categoriaService{repo: repo, productoRepo: productoRepo}
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error) {
	c := &model.Categoria{
		NombreCategoria: req.NombreCategoria,
		Descripcion:     req.Descripcion,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return categoriaToResponse(c, nil), nil
}

func (s *categoriaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CategoriaResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := s.productoRepo.CountByCategoria(ctx, id)
	if err != nil {
		return nil, err
	}
	return categoriaToResponse(c, &n), nil
}

func (s *categoriaService) Listar(ctx context.Context) ([]dto.CategoriaResponse, error) {
	categorias, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoriaResponse, 0, len(categorias))
	for i := range categorias {
		out = append(out, *categoriaToResponse(&categorias[i], nil))
	}
	return out, nil
}

// ConteoProductos reports how many products each category holds, empty
// categories included.
func (s *categoriaService) ConteoProductos(ctx context.Context) ([]dto.CategoriaConteoItem, error) {
	conteos, err := s.repo.ConteoProductos(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoriaConteoItem, 0, len(conteos))
	for _, c := range conteos {
		out = append(out, dto.CategoriaConteoItem{
			ID:              c.ID.String(),
			NombreCategoria: c.NombreCategoria,
			TotalProductos:  c.TotalProductos,
		})
	}
	return out, nil
}

func (s *categoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.NombreCategoria = req.NombreCategoria
	c.Descripcion = req.Descripcion
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return categoriaToResponse(c, nil), nil
}

func categoriaToResponse(c *model.Categoria, totalProductos *int64) *dto.CategoriaResponse {
	return &dto.CategoriaResponse{
		ID:              c.ID.String(),
		NombreCategoria: c.NombreCategoria,
		Descripcion:     c.Descripcion,
		TotalProductos:  totalProductos,
	}
}
