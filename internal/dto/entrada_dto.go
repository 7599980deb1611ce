package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CrearEntradaRequest struct {
	ProductoID     string          `json:"id_producto"     validate:"required,uuid"`
	Cantidad       int             `json:"cantidad"        validate:"required,gt=0"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"required"`
	UsuarioID      *string         `json:"id_usuario"      validate:"omitempty,uuid"`
	NombreUsuario  *string         `json:"nombre_usuario"`
}

type ActualizarEntradaRequest struct {
	ProductoID     string          `json:"id_producto"     validate:"required,uuid"`
	Cantidad       int             `json:"cantidad"        validate:"required,gt=0"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"required"`
}

type EntradaResponse struct {
	ID             string          `json:"id_entrada"`
	ProductoID     string          `json:"id_producto"`
	NombreProducto *string         `json:"nombre_producto,omitempty"`
	UsuarioID      *string         `json:"id_usuario"`
	NombreUsuario  *string         `json:"nombre_usuario"`
	Fecha          time.Time       `json:"fecha"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
}

// EntradaStatsItem is one row of the per-product receipts aggregate.
type EntradaStatsItem struct {
	ProductoID     string          `json:"id_producto"`
	NombreProducto string          `json:"nombre_producto"`
	TotalEntradas  int64           `json:"total_entradas"`
	CantidadTotal  int64           `json:"cantidad_total"`
	ValorTotal     decimal.Decimal `json:"valor_total"`
}

// PurgarEntradasRequest selects the retention window. Either a number of
// months to keep or an explicit date range, not both.
type PurgarEntradasRequest struct {
	MesesConservar *int    `json:"meses_conservar" validate:"omitempty,gt=0"`
	FechaInicio    *string `json:"fecha_inicio"    validate:"omitempty,datetime=2006-01-02"`
	FechaFin       *string `json:"fecha_fin"       validate:"omitempty,datetime=2006-01-02"`
}

type PurgarEntradasResponse struct {
	Mensaje    string `json:"mensaje"`
	Eliminados int64  `json:"eliminados"`
}
