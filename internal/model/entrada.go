package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Entrada is an inbound purchase receipt. UsuarioID is nulled when the user
// is deleted while NombreUsuario keeps the write-time snapshot — deliberate
// historical-preservation policy. Total is computed by the persistence layer
// (BeforeCreate / BeforeUpdate), never trusted from the client.
type Entrada struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	UsuarioID      *uuid.UUID `gorm:"type:uuid"`
	NombreUsuario  *string
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Fecha          time.Time       `gorm:"autoCreateTime;index"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Entrada) TableName() string { return "entradas" }

// BeforeCreate computes Total = Cantidad × PrecioUnitario server-side.
func (e *Entrada) BeforeCreate(*gorm.DB) error {
	e.Total = e.PrecioUnitario.Mul(decimal.NewFromInt(int64(e.Cantidad)))
	return nil
}

// BeforeUpdate recomputes Total when cantidad or precio change. Editing a
// receipt does NOT re-adjust the stock delta it originally applied.
func (e *Entrada) BeforeUpdate(*gorm.DB) error {
	e.Total = e.PrecioUnitario.Mul(decimal.NewFromInt(int64(e.Cantidad)))
	return nil
}
