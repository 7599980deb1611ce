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

// SalidaFilter narrows the dispatch listing. Nil fields are ignored.
// NombreProducto matches the single-item product reference; cart lines keep
// their own product join in detalle_salidas.
type SalidaFilter struct {
	FechaInicio    *time.Time
	FechaFin       *time.Time
	NombreCajero   *string
	NombreProducto *string
}

type SalidaRepository interface {
	// CreateTx inserts the header together with its line items, if any.
	CreateTx(tx *gorm.DB, s *model.Salida) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Salida, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Salida, error)
	// UpdateTx rewrites the editable header fields only; detalles and the
	// stock already moved are untouched.
	UpdateTx(tx *gorm.DB, s *model.Salida) error
	List(ctx context.Context, filter SalidaFilter) ([]model.Salida, error)
	ListDetalles(ctx context.Context) ([]model.DetalleSalida, error)
	ListPorCajeroHoy(ctx context.Context, usuarioID uuid.UUID) ([]model.Salida, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	DeleteDetallesByProductoTx(tx *gorm.DB, productoID uuid.UUID) (int64, error)
	NullifyUsuarioTx(tx *gorm.DB, usuarioID uuid.UUID) error
	DB() *gorm.DB
}

type salidaRepository struct {
	db *gorm.DB
}

func NewSalidaRepository(db *gorm.DB) SalidaRepository {
	return &salidaRepository{db: db}
}

func (r *salidaRepository) DB() *gorm.DB { return r.db }

func (r *salidaRepository) CreateTx(tx *gorm.DB, s *model.Salida) error {
	if err := tx.Create(s).Error; err != nil {
		return apierror.Persistence(err)
	}
	return nil
}

func (r *salidaRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Salida, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

func (r *salidaRepository) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Salida, error) {
	return r.findByID(tx, id)
}

func (r *salidaRepository) findByID(q *gorm.DB, id uuid.UUID) (*model.Salida, error) {
	var s model.Salida
	err := q.Preload("Producto").
		Preload("Detalles").
		Preload("Detalles.Producto").
		First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("salida no encontrada")
	}
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &s, nil
}

func (r *salidaRepository) UpdateTx(tx *gorm.DB, s *model.Salida) error {
	res := tx.Model(&model.Salida{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"cantidad":        s.Cantidad,
			"precio_unitario": s.PrecioUnitario,
			"nombre_cajero":   s.NombreCajero,
			"total":           s.Total,
		})
	if res.Error != nil {
		return apierror.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apierror.NotFound("salida no encontrada")
	}
	return nil
}

func (r *salidaRepository) List(ctx context.Context, filter SalidaFilter) ([]model.Salida, error) {
	q := r.db.WithContext(ctx).Preload("Producto").Preload("Detalles").Preload("Detalles.Producto")
	if filter.FechaInicio != nil {
		q = q.Where("fecha >= ?", *filter.FechaInicio)
	}
	if filter.FechaFin != nil {
		q = q.Where("fecha < ?", filter.FechaFin.AddDate(0, 0, 1))
	}
	if filter.NombreCajero != nil {
		q = q.Where("nombre_cajero ILIKE ?", "%"+*filter.NombreCajero+"%")
	}
	if filter.NombreProducto != nil {
		q = q.Joins("LEFT JOIN productos ON productos.id = salidas.producto_id").
			Where("productos.nombre_producto ILIKE ?", "%"+*filter.NombreProducto+"%")
	}
	var salidas []model.Salida
	if err := q.Order("fecha DESC").Find(&salidas).Error; err != nil {
		return nil, apierror.Persistence(err)
	}
	return salidas, nil
}

func (r *salidaRepository) ListDetalles(ctx context.Context) ([]model.DetalleSalida, error) {
	var detalles []model.DetalleSalida
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Order("id DESC").
		Find(&detalles).Error
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return detalles, nil
}

// inicioDelDia returns local midnight of t's day. Truncate would round in
// UTC and shift the window in any other timezone.
func inicioDelDia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (r *salidaRepository) ListPorCajeroHoy(ctx context.Context, usuarioID uuid.UUID) ([]model.Salida, error) {
	hoy := inicioDelDia(time.Now())
	var salidas []model.Salida
	err := r.db.WithContext(ctx).
		Preload("Detalles").
		Preload("Detalles.Producto").
		Where("usuario_id = ? AND fecha >= ? AND fecha < ?", usuarioID, hoy, hoy.AddDate(0, 0, 1)).
		Order("fecha DESC").
		Find(&salidas).Error
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return salidas, nil
}

func (r *salidaRepository) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	// detalle_salidas rows go with the header via ON DELETE CASCADE.
	res := tx.Delete(&model.Salida{}, "id = ?", id)
	if res.Error != nil {
		return apierror.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apierror.NotFound("salida no encontrada")
	}
	return nil
}

func (r *salidaRepository) DeleteDetallesByProductoTx(tx *gorm.DB, productoID uuid.UUID) (int64, error) {
	res := tx.Delete(&model.DetalleSalida{}, "producto_id = ?", productoID)
	if res.Error != nil {
		return 0, apierror.Persistence(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *salidaRepository) NullifyUsuarioTx(tx *gorm.DB, usuarioID uuid.UUID) error {
	err := tx.Model(&model.Salida{}).
		Where("usuario_id = ?", usuarioID).
		Update("usuario_id", nil).Error
	if err != nil {
		return apierror.Persistence(err)
	}
	return nil
}
