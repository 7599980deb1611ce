package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is the catalog entry. CodigoBarras is the natural identity used
// for scan-to-identify flows and duplicate detection; StockActual is a cached
// counter kept consistent with the movement ledger and may only be mutated by
// the entrada/venta processors or an explicit ajuste, never overwritten
// directly by clients.
type Producto struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodigoBarras   string          `gorm:"uniqueIndex;not null"`
	NombreProducto string          `gorm:"index;not null"`
	CategoriaID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProveedorID    *uuid.UUID      `gorm:"type:uuid;index"`
	PrecioCompra   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioVenta    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// StockActual never goes below zero on a committed transaction — the
	// guarded UPDATE in the repository enforces it, a CHECK constraint backs it.
	StockActual int `gorm:"not null;default:0"`
	StockMinimo int `gorm:"not null;default:0"`
	StockMaximo int `gorm:"not null;default:0"`
	// CreadoPor is nulled when the user is deleted; NombreCreador is a
	// write-time snapshot kept for audit history.
	CreadoPor     *uuid.UUID `gorm:"type:uuid"`
	NombreCreador *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

func (Producto) TableName() string { return "productos" }
