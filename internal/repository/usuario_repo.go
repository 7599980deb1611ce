package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sowin/internal/apierror"
	"sowin/internal/model"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	FindByNombre(ctx context.Context, nombre string) (*model.Usuario, error)
	List(ctx context.Context) ([]model.Usuario, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	ListModulos(ctx context.Context, usuarioID uuid.UUID) ([]string, error)
	DB() *gorm.DB
}

type usuarioRepository struct {
	db *gorm.DB
}

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository {
	return &usuarioRepository{db: db}
}

func (r *usuarioRepository) DB() *gorm.DB { return r.db }

func (r *usuarioRepository) Create(ctx context.Context, u *model.Usuario) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return apierror.Duplicate("ya existe un usuario con ese nombre", nil)
		}
		return apierror.Persistence(err)
	}
	return nil
}

func (r *usuarioRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Preload("Rol").First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("usuario no encontrado")
	}
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &u, nil
}

func (r *usuarioRepository) FindByNombre(ctx context.Context, nombre string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Preload("Rol").First(&u, "nombre_usuario = ?", nombre).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("usuario no encontrado")
	}
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &u, nil
}

func (r *usuarioRepository) List(ctx context.Context) ([]model.Usuario, error) {
	var usuarios []model.Usuario
	err := r.db.WithContext(ctx).Preload("Rol").Order("nombre_usuario ASC").Find(&usuarios).Error
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return usuarios, nil
}

func (r *usuarioRepository) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	// permisos_usuario rows cascade with the user.
	res := tx.Delete(&model.Usuario{}, "id = ?", id)
	if res.Error != nil {
		return apierror.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apierror.NotFound("usuario no encontrado")
	}
	return nil
}

func (r *usuarioRepository) ListModulos(ctx context.Context, usuarioID uuid.UUID) ([]string, error) {
	var modulos []string
	err := r.db.WithContext(ctx).Model(&model.PermisoUsuario{}).
		Select("modulos.nombre_modulo").
		Joins("JOIN modulos ON modulos.id = permisos_usuario.modulo_id").
		Where("permisos_usuario.usuario_id = ?", usuarioID).
		Scan(&modulos).Error
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return modulos, nil
}
