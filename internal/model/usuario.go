package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario is a system user. Deleting one cascades its permisos and nullifies
// the user reference on historical rows (entradas, salidas, productos) while
// the denormalized name snapshots on those rows survive.
type Usuario struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NombreUsuario  string    `gorm:"uniqueIndex;not null"`
	NombreReal     *string
	ContrasenaHash string    `gorm:"not null"`
	RolID          uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Rol      *Rol             `gorm:"foreignKey:RolID"`
	Permisos []PermisoUsuario `gorm:"foreignKey:UsuarioID"`
}

func (Usuario) TableName() string { return "usuarios" }

// Rol is a named role. Deletes are blocked while users reference it.
type Rol struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NombreRol string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

func (Rol) TableName() string { return "roles" }

// Modulo is an application module a user can be granted access to.
type Modulo struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NombreModulo string    `gorm:"uniqueIndex;not null"`
}

func (Modulo) TableName() string { return "modulos" }

// PermisoUsuario grants a user access to a module. Hard-deleted when the
// user is deleted.
type PermisoUsuario struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID uuid.UUID `gorm:"type:uuid;not null;index"`
	ModuloID  uuid.UUID `gorm:"type:uuid;not null;index"`

	Modulo *Modulo `gorm:"foreignKey:ModuloID"`
}

func (PermisoUsuario) TableName() string { return "permisos_usuario" }
