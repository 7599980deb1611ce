package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sowin/internal/apierror"
	"sowin/internal/model"
)

// MovimientoFilter narrows the history listing. Nil fields are ignored.
type MovimientoFilter struct {
	FechaInicio    *time.Time
	FechaFin       *time.Time
	TipoMovimiento *string
}

type MovimientoRepository interface {
	Create(ctx context.Context, m *model.Movimiento) error
	CreateTx(tx *gorm.DB, m *model.Movimiento) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Movimiento, error)
	List(ctx context.Context, filter MovimientoFilter) ([]model.Movimiento, error)
	ListByProducto(ctx context.Context, productoID uuid.UUID) ([]model.Movimiento, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProductoTx(tx *gorm.DB, productoID uuid.UUID) (int64, error)
	DB() *gorm.DB
}

type movimientoRepository struct {
	db *gorm.DB
}

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository {
	return &movimientoRepository{db: db}
}

func (r *movimientoRepository) DB() *gorm.DB { return r.db }

func (r *movimientoRepository) Create(ctx context.Context, m *model.Movimiento) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apierror.Persistence(err)
	}
	return nil
}

func (r *movimientoRepository) CreateTx(tx *gorm.DB, m *model.Movimiento) error {
	if err := tx.Create(m).Error; err != nil {
		return apierror.Persistence(err)
	}
	return nil
}

func (r *movimientoRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Movimiento, error) {
	var m model.Movimiento
	err := r.db.WithContext(ctx).Preload("Producto").First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("movimiento no encontrado")
	}
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &m, nil
}

func (r *movimientoRepository) List(ctx context.Context, filter MovimientoFilter) ([]model.Movimiento, error) {
	q := r.db.WithContext(ctx).Preload("Producto")
	if filter.FechaInicio != nil {
		q = q.Where("fecha >= ?", *filter.FechaInicio)
	}
	if filter.FechaFin != nil {
		// Inclusive day bound.
		q = q.Where("fecha < ?", filter.FechaFin.AddDate(0, 0, 1))
	}
	if filter.TipoMovimiento != nil {
		q = q.Where("tipo_movimiento = ?", *filter.TipoMovimiento)
	}
	var movimientos []model.Movimiento
	if err := q.Order("fecha DESC").Find(&movimientos).Error; err != nil {
		return nil, apierror.Persistence(err)
	}
	return movimientos, nil
}

func (r *movimientoRepository) ListByProducto(ctx context.Context, productoID uuid.UUID) ([]model.Movimiento, error) {
	var movimientos []model.Movimiento
	err := r.db.WithContext(ctx).
		Where("producto_id = ?", productoID).
		Order("fecha DESC").
		Find(&movimientos).Error
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return movimientos, nil
}

func (r *movimientoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Movimiento{}, "id = ?", id)
	if res.Error != nil {
		return apierror.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apierror.NotFound("movimiento no encontrado")
	}
	return nil
}

func (r *movimientoRepository) DeleteByProductoTx(tx *gorm.DB, productoID uuid.UUID) (int64, error) {
	res := tx.Delete(&model.Movimiento{}, "producto_id = ?", productoID)
	if res.Error != nil {
		return 0, apierror.Persistence(res.Error)
	}
	return res.RowsAffected, nil
}
