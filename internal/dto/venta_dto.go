package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Single-item dispatch (salida) ───────────────────────────────────────────

type RegistrarSalidaRequest struct {
	ProductoID     string          `json:"id_producto"     validate:"required,uuid"`
	UsuarioID      *string         `json:"id_usuario"      validate:"required,uuid"`
	NombreCajero   *string         `json:"nombre_cajero"`
	Cantidad       int             `json:"cantidad"        validate:"required,gt=0"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"required"`
}

// ActualizarSalidaRequest edits the dispatch record. The stock decrement
// applied at registration time is never recalculated by an edit.
type ActualizarSalidaRequest struct {
	Cantidad       int             `json:"cantidad"        validate:"required,gt=0"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"required"`
	NombreCajero   *string         `json:"nombre_cajero"`
}

type SalidaResponse struct {
	ID             string           `json:"id_salida"`
	ProductoID     *string          `json:"id_producto,omitempty"`
	NombreProducto *string          `json:"nombre_producto,omitempty"`
	UsuarioID      *string          `json:"id_usuario"`
	NombreCajero   *string          `json:"nombre_cajero"`
	Fecha          time.Time        `json:"fecha"`
	Cantidad       *int             `json:"cantidad,omitempty"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario,omitempty"`
	Total          decimal.Decimal  `json:"total"`
}

// FiltrarSalidasQuery carries the query-string filters of the dispatch
// listing.
type FiltrarSalidasQuery struct {
	FechaInicio  *string `form:"fecha_inicio"  validate:"omitempty,datetime=2006-01-02"`
	FechaFin     *string `form:"fecha_fin"     validate:"omitempty,datetime=2006-01-02"`
	NombreCajero *string `form:"nombre_cajero"`
	Producto     *string `form:"producto"`
}

// ─── Multi-item sale (venta) ─────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID     string          `json:"id_producto"     validate:"required,uuid"`
	Cantidad       int             `json:"cantidad"        validate:"required,gt=0"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"required"`
	Total          decimal.Decimal `json:"total"           validate:"required"`
}

type RegistrarVentaRequest struct {
	UsuarioID    *string            `json:"id_usuario"    validate:"required,uuid"`
	NombreCajero *string            `json:"nombre_cajero"`
	Total        decimal.Decimal    `json:"total"         validate:"required"`
	Efectivo     decimal.Decimal    `json:"efectivo"`
	Cambio       decimal.Decimal    `json:"cambio"`
	Productos    []ItemVentaRequest `json:"productos"     validate:"required,min=1,dive"`
}

type VentaResponse struct {
	ID     string          `json:"id_salida"`
	Total  decimal.Decimal `json:"total"`
	Cambio decimal.Decimal `json:"cambio"`
	Ticket *string         `json:"ticket,omitempty"`
}

type DetalleSalidaResponse struct {
	ID             string          `json:"id_detalle"`
	SalidaID       string          `json:"id_salida"`
	ProductoID     string          `json:"id_producto"`
	NombreProducto *string         `json:"nombre_producto,omitempty"`
	CodigoBarras   *string         `json:"codigo_barras,omitempty"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
}

// ProductoVendido is one line of a cashier's daily sales report.
type ProductoVendido struct {
	NombreProducto string          `json:"nombre_producto"`
	CodigoBarras   string          `json:"codigo_barras"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaCajeroItem struct {
	ID           string            `json:"id_venta"`
	FechaVenta   time.Time         `json:"fecha_venta"`
	Total        decimal.Decimal   `json:"total"`
	Efectivo     decimal.Decimal   `json:"efectivo"`
	Cambio       decimal.Decimal   `json:"cambio"`
	NombreCajero *string           `json:"nombre_cajero"`
	Productos    []ProductoVendido `json:"productos"`
}
