package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"sowin/internal/apierror"
	"sowin/internal/model"
)

// EntradaStats is one aggregate row of receipts grouped by product.
type EntradaStats struct {
	ProductoID     uuid.UUID
	NombreProducto string
	TotalEntradas  int64
	CantidadTotal  int64
	ValorTotal     decimal.Decimal
}

type EntradaRepository interface {
	CreateTx(tx *gorm.DB, e *model.Entrada) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Entrada, error)
	List(ctx context.Context) ([]model.Entrada, error)
	UpdateTx(tx *gorm.DB, e *model.Entrada) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	StatsPorProducto(ctx context.Context) ([]EntradaStats, error)
	DeleteByProductoTx(tx *gorm.DB, productoID uuid.UUID) (int64, error)
	PurgeOlderThan(ctx context.Context, limite time.Time) (int64, error)
	PurgeRange(ctx context.Context, desde, hasta time.Time) (int64, error)
	NullifyUsuarioTx(tx *gorm.DB, usuarioID uuid.UUID) error
	DB() *gorm.DB
}

type entradaRepository struct {
	db *gorm.DB
}

func NewEntradaRepository(db *gorm.DB) EntradaRepository {
	return &entradaRepository{db: db}
}

func (r *entradaRepository) DB() *gorm.DB { return r.db }

func (r *entradaRepository) CreateTx(tx *gorm.DB, e *model.Entrada) error {
	if err := tx.Create(e).Error; err != nil {
		return apierror.Persistence(err)
	}
	return nil
}

func (r *entradaRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Entrada, error) {
	var e model.Entrada
	err := r.db.WithContext(ctx).Preload("Producto").First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("entrada no encontrada")
	}
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &e, nil
}

func (r *entradaRepository) List(ctx context.Context) ([]model.Entrada, error) {
	var entradas []model.Entrada
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Order("fecha DESC").
		Find(&entradas).Error
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return entradas, nil
}

func (r *entradaRepository) UpdateTx(tx *gorm.DB, e *model.Entrada) error {
	if err := tx.Save(e).Error; err != nil {
		return apierror.Persistence(err)
	}
	return nil
}

func (r *entradaRepository) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Delete(&model.Entrada{}, "id = ?", id)
	if res.Error != nil {
		return apierror.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apierror.NotFound("entrada no encontrada")
	}
	return nil
}

func (r *entradaRepository) StatsPorProducto(ctx context.Context) ([]EntradaStats, error) {
	var stats []EntradaStats
	err := r.db.WithContext(ctx).Model(&model.Entrada{}).
		Select("entradas.producto_id AS producto_id, productos.nombre_producto AS nombre_producto, COUNT(*) AS total_entradas, COALESCE(SUM(entradas.cantidad), 0) AS cantidad_total, COALESCE(SUM(entradas.total), 0) AS valor_total").
		Joins("JOIN productos ON productos.id = entradas.producto_id").
		Group("entradas.producto_id, productos.nombre_producto").
		Order("valor_total DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return stats, nil
}

func (r *entradaRepository) DeleteByProductoTx(tx *gorm.DB, productoID uuid.UUID) (int64, error) {
	res := tx.Delete(&model.Entrada{}, "producto_id = ?", productoID)
	if res.Error != nil {
		return 0, apierror.Persistence(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *entradaRepository) PurgeOlderThan(ctx context.Context, limite time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Entrada{}, "fecha < ?", limite)
	if res.Error != nil {
		return 0, apierror.Persistence(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *entradaRepository) PurgeRange(ctx context.Context, desde, hasta time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Delete(&model.Entrada{}, "fecha >= ? AND fecha < ?", desde, hasta.AddDate(0, 0, 1))
	if res.Error != nil {
		return 0, apierror.Persistence(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *entradaRepository) NullifyUsuarioTx(tx *gorm.DB, usuarioID uuid.UUID) error {
	err := tx.Model(&model.Entrada{}).
		Where("usuario_id = ?", usuarioID).
		Update("usuario_id", nil).Error
	if err != nil {
		return apierror.Persistence(err)
	}
	return nil
}
