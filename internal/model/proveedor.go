package model

import (
	"time"

	"github.com/google/uuid"
)

// Proveedor is a supplier with commercial data. Deletes are blocked while
// products reference the supplier.
type Proveedor struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NombreProveedor string    `gorm:"uniqueIndex;not null"`
	NIT             *string   `gorm:"column:nit"`
	Telefono        *string
	Email           *string
	Direccion       *string
	Ciudad          *string
	Pais            *string
	Activo          bool `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Productos []Producto `gorm:"foreignKey:ProveedorID"`
}

func (Proveedor) TableName() string { return "proveedores" }
