package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sowin/internal/apierror"
	"sowin/internal/model"
)

// ProductoRepository persists the product catalog. Stock mutations go through
// UpdateStockTx so the non-negativity guard lives in exactly one place.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	FindByBarcode(ctx context.Context, codigo string) (*model.Producto, error)
	List(ctx context.Context) ([]model.Producto, error)
	Update(ctx context.Context, p *model.Producto) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	// UpdateStockTx applies delta atomically, refusing to drive stock below
	// zero. Returns the resulting stock level.
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int, error)
	CountByCategoria(ctx context.Context, categoriaID uuid.UUID) (int64, error)
	CountByProveedor(ctx context.Context, proveedorID uuid.UUID) (int64, error)
	NullifyCreadorTx(tx *gorm.DB, usuarioID uuid.UUID) error
	DB() *gorm.DB
}

type productoRepository struct {
	db *gorm.DB
}

func NewProductoRepository(db *gorm.DB) ProductoRepository {
	return &productoRepository{db: db}
}

func (r *productoRepository) DB() *gorm.DB { return r.db }

func (r *productoRepository) Create(ctx context.Context, p *model.Producto) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return apierror.Duplicate("ya existe un producto con ese código de barras", nil)
		}
		return apierror.Persistence(err)
	}
	return nil
}

func (r *productoRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("producto no encontrado")
	}
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &p, nil
}

func (r *productoRepository) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("producto no encontrado")
	}
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &p, nil
}

func (r *productoRepository) FindByBarcode(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, "codigo_barras = ?", codigo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("producto no encontrado")
	}
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &p, nil
}

func (r *productoRepository) List(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Order("nombre_producto ASC").
		Find(&productos).Error
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return productos, nil
}

func (r *productoRepository) Update(ctx context.Context, p *model.Producto) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		if isUniqueViolation(err) {
			return apierror.Duplicate("ya existe un producto con ese código de barras", nil)
		}
		return apierror.Persistence(err)
	}
	return nil
}

func (r *productoRepository) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Delete(&model.Producto{}, "id = ?", id)
	if res.Error != nil {
		return apierror.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apierror.NotFound("producto no encontrado")
	}
	return nil
}

func (r *productoRepository) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int, error) {
	res := tx.Model(&model.Producto{}).
		Where("id = ? AND stock_actual + ? >= 0", id, delta).
		Update("stock_actual", gorm.Expr("stock_actual + ?", delta))
	if res.Error != nil {
		return 0, apierror.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing product from a guard rejection.
		var existe int64
		if err := tx.Model(&model.Producto{}).Where("id = ?", id).Count(&existe).Error; err != nil {
			return 0, apierror.Persistence(err)
		}
		if existe == 0 {
			return 0, apierror.NotFound("producto no encontrado")
		}
		return 0, apierror.StockInsuficiente("stock insuficiente para completar la operación", nil)
	}
	var stock int
	if err := tx.Model(&model.Producto{}).Where("id = ?", id).
		Select("stock_actual").Scan(&stock).Error; err != nil {
		return 0, apierror.Persistence(err)
	}
	return stock, nil
}

func (r *productoRepository) CountByCategoria(ctx context.Context, categoriaID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("categoria_id = ?", categoriaID).Count(&n).Error
	if err != nil {
		return 0, apierror.Persistence(err)
	}
	return n, nil
}

func (r *productoRepository) CountByProveedor(ctx context.Context, proveedorID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("proveedor_id = ?", proveedorID).Count(&n).Error
	if err != nil {
		return 0, apierror.Persistence(err)
	}
	return n, nil
}

func (r *productoRepository) NullifyCreadorTx(tx *gorm.DB, usuarioID uuid.UUID) error {
	err := tx.Model(&model.Producto{}).
		Where("creado_por = ?", usuarioID).
		Update("creado_por", nil).Error
	if err != nil {
		return apierror.Persistence(err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key value") ||
		strings.Contains(err.Error(), "SQLSTATE 23505"))
}
