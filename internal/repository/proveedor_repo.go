package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sowin/internal/apierror"
	"sowin/internal/model"
)

type ProveedorRepository interface {
	Create(ctx context.Context, p *model.Proveedor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error)
	List(ctx context.Context) ([]model.Proveedor, error)
	Update(ctx context.Context, p *model.Proveedor) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type proveedorRepository struct {
	db *gorm.DB
}

func NewProveedorRepository(db *gorm.DB) ProveedorRepository {
	return &proveedorRepository{db: db}
}

func (r *proveedorRepository) Create(ctx context.Context, p *model.Proveedor) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return apierror.Duplicate("ya existe un proveedor con ese nombre", nil)
		}
		return apierror.Persistence(err)
	}
	return nil
}

func (r *proveedorRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error) {
	var p model.Proveedor
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("proveedor no encontrado")
	}
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &p, nil
}

func (r *proveedorRepository) List(ctx context.Context) ([]model.Proveedor, error) {
	var proveedores []model.Proveedor
	err := r.db.WithContext(ctx).Order("nombre_proveedor ASC").Find(&proveedores).Error
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return proveedores, nil
}

func (r *proveedorRepository) Update(ctx context.Context, p *model.Proveedor) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		if isUniqueViolation(err) {
			return apierror.Duplicate("ya existe un proveedor con ese nombre", nil)
		}
		return apierror.Persistence(err)
	}
	return nil
}

func (r *proveedorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Proveedor{}, "id = ?", id)
	if res.Error != nil {
		return apierror.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apierror.NotFound("proveedor no encontrado")
	}
	return nil
}
