package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sowin/internal/apierror"
	"sowin/internal/model"
)

// CategoriaConteo is one row of the per-category product count aggregation.
type CategoriaConteo struct {
	ID              uuid.UUID
	NombreCategoria string
	TotalProductos  int64
}

type CategoriaRepository interface {
	Create(ctx context.Context, c *model.Categoria) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Categoria, error)
	List(ctx context.Context) ([]model.Categoria, error)
	ConteoProductos(ctx context.Context) ([]CategoriaConteo, error)
	Update(ctx context.Context, c *model.Categoria) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoriaRepository struct {
	db *gorm.DB
}

func NewCategoriaRepository(db *gorm.DB) CategoriaRepository {
	return &categoriaRepository{db: db}
}

func (r *categoriaRepository) Create(ctx context.Context, c *model.Categoria) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return apierror.Duplicate("ya existe una categoría con ese nombre", nil)
		}
		return apierror.Persistence(err)
	}
	return nil
}

func (r *categoriaRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Categoria, error) {
	var c model.Categoria
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("categoría no encontrada")
	}
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &c, nil
}

func (r *categoriaRepository) List(ctx context.Context) ([]model.Categoria, error) {
	var categorias []model.Categoria
	err := r.db.WithContext(ctx).Order("nombre_categoria ASC").Find(&categorias).Error
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return categorias, nil
}

// ConteoProductos counts products per category, empty categories included.
func (r *categoriaRepository) ConteoProductos(ctx context.Context) ([]CategoriaConteo, error) {
	var conteos []CategoriaConteo
	err := r.db.WithContext(ctx).Model(&model.Categoria{}).
		Select("categorias.id, categorias.nombre_categoria, COUNT(productos.id) AS total_productos").
		Joins("LEFT JOIN productos ON productos.categoria_id = categorias.id").
		Group("categorias.id, categorias.nombre_categoria").
		Order("categorias.nombre_categoria ASC").
		Scan(&conteos).Error
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return conteos, nil
}

func (r *categoriaRepository) Update(ctx context.Context, c *model.Categoria) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		if isUniqueViolation(err) {
			return apierror.Duplicate("ya existe una categoría con ese nombre", nil)
		}
		return apierror.Persistence(err)
	}
	return nil
}

func (r *categoriaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Categoria{}, "id = ?", id)
	if res.Error != nil {
		return apierror.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apierror.NotFound("categoría no encontrada")
	}
	return nil
}
