package dto

import "time"

type RegistrarMovimientoRequest struct {
	ProductoID      string  `json:"id_producto"       validate:"required,uuid"`
	TipoMovimiento  string  `json:"tipo_movimiento"   validate:"required,oneof=ENTRADA SALIDA AJUSTE"`
	Cantidad        int     `json:"cantidad"          validate:"required,gt=0"`
	StockResultante int     `json:"stock_resultante"  validate:"min=0"`
	Origen          *string `json:"origen_movimiento"`
}

type MovimientoResponse struct {
	ID              string    `json:"id_movimiento"`
	ProductoID      string    `json:"id_producto"`
	NombreProducto  *string   `json:"nombre_producto,omitempty"`
	CodigoBarras    *string   `json:"codigo_barras,omitempty"`
	TipoMovimiento  string    `json:"tipo_movimiento"`
	Cantidad        int       `json:"cantidad"`
	StockResultante int       `json:"stock_resultante"`
	Origen          string    `json:"origen_movimiento"`
	Fecha           time.Time `json:"fecha"`
}

// FiltrarMovimientosQuery carries the query-string filters of the history
// listing. Dates are inclusive day bounds in YYYY-MM-DD.
type FiltrarMovimientosQuery struct {
	FechaInicio    *string `form:"fecha_inicio"    validate:"omitempty,datetime=2006-01-02"`
	FechaFin       *string `form:"fecha_fin"       validate:"omitempty,datetime=2006-01-02"`
	TipoMovimiento *string `form:"tipo_movimiento" validate:"omitempty,oneof=ENTRADA SALIDA AJUSTE"`
}
