package model

import (
	"time"

	"github.com/google/uuid"
)

// Categoria classifies products. Deleting one is blocked while products
// reference it.
type Categoria struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NombreCategoria string    `gorm:"uniqueIndex;not null"`
	Descripcion     *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Categoria) TableName() string { return "categorias" }
