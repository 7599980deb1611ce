package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Salida is the outbound transaction header. The same table serves both the
// single-item salida (ProductoID/Cantidad/PrecioUnitario set, no detalles)
// and the multi-item venta (detalle rows, Efectivo/Cambio set), mirroring the
// production schema. Headers and their detalles are created as one atomic
// unit and are immutable afterwards — no partial-void support; the only
// mutation is deletion, which reverses the stock decrement.
type Salida struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID    *uuid.UUID `gorm:"type:uuid"`
	NombreCajero *string
	Fecha        time.Time       `gorm:"autoCreateTime;index"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Efectivo     decimal.Decimal `gorm:"type:decimal(12,2)"`
	Cambio       decimal.Decimal `gorm:"type:decimal(12,2)"`

	// Single-item variant fields; nil/zero for multi-item ventas.
	ProductoID     *uuid.UUID      `gorm:"type:uuid;index"`
	Cantidad       int
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2)"`

	Detalles []DetalleSalida `gorm:"foreignKey:SalidaID"`
	Producto *Producto       `gorm:"foreignKey:ProductoID"`
}

func (Salida) TableName() string { return "salidas" }

// DetalleSalida is one line item of a multi-item venta. Its lifetime is bound
// to the owning Salida header.
type DetalleSalida struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SalidaID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleSalida) TableName() string { return "detalle_salidas" }
