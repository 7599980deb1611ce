package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"sowin/internal/apierror"
	"sowin/internal/dto"
	"sowin/internal/repository"
)

// CascadaService owns the delete policies of the system. Three policies
// exist:
//
//	cascada   — the row and all its dependents go in one transaction
//	            (producto, salida con detalles, usuario→permisos)
//	bloqueo   — the delete is refused while dependents exist
//	            (categoria, proveedor, rol)
//	anulacion — dependents keep the row but lose the reference; denormalized
//	            name snapshots survive (usuario sobre entradas/salidas/productos)
type CascadaService interface {
	EliminarProducto(ctx context.Context, id uuid.UUID) (*dto.CascadaProductoResponse, error)
	EliminarCategoria(ctx context.Context, id uuid.UUID) error
	EliminarProveedor(ctx context.Context, id uuid.UUID) error
	EliminarUsuario(ctx context.Context, id uuid.UUID) error
}

// PoliticaEliminacion is the delete policy applied to an entity.
type PoliticaEliminacion int

const (
	PoliticaCascada PoliticaEliminacion = iota
	PoliticaBloqueo
	PoliticaAnulacion
)

// politicas is the per-entity policy table. Rol carries no delete endpoint;
// its bloqueo is enforced by the RESTRICT foreign key on usuarios.rol_id.
var politicas = map[string]PoliticaEliminacion{
	"producto":  PoliticaCascada,
	"categoria": PoliticaBloqueo,
	"proveedor": PoliticaBloqueo,
	"rol":       PoliticaBloqueo,
	"usuario":   PoliticaAnulacion,
}

// PoliticaDe returns the delete policy for an entity name.
func PoliticaDe(entidad string) (PoliticaEliminacion, bool) {
	p, ok := politicas[entidad]
	return p, ok
}

// bloquearSiDependientes implements the bloqueo policy: the delete is refused
// while dependents exist.
func bloquearSiDependientes(entidad string, dependientes int64, detalle string) error {
	if politicas[entidad] == PoliticaBloqueo && dependientes > 0 {
		return apierror.Conflict(detalle, nil)
	}
	return nil
}

type cascadaService struct {
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoRepository
	entradaRepo    repository.EntradaRepository
	salidaRepo     repository.SalidaRepository
	categoriaRepo  repository.CategoriaRepository
	proveedorRepo  repository.ProveedorRepository
	usuarioRepo    repository.UsuarioRepository
}

func NewCascadaService(
	productoRepo repository.ProductoRepository,
	movimientoRepo repository.MovimientoRepository,
	entradaRepo repository.EntradaRepository,
	salidaRepo repository.SalidaRepository,
	categoriaRepo repository.CategoriaRepository,
	proveedorRepo repository.ProveedorRepository,
	usuarioRepo repository.UsuarioRepository,
) CascadaService {
	return &cascadaService{
		productoRepo:   productoRepo,
		movimientoRepo: movimientoRepo,
		entradaRepo:    entradaRepo,
		salidaRepo:     salidaRepo,
		categoriaRepo:  categoriaRepo,
		proveedorRepo:  proveedorRepo,
		usuarioRepo:    usuarioRepo,
	}
}

// EliminarProducto tears down a product and its entire history in dependency
// order: detalle_salidas first, then movimientos, then entradas, then the
// product row. Stock is irrelevant at that point; the response reports how
// many dependent rows went with it.
func (s *cascadaService) EliminarProducto(ctx context.Context, id uuid.UUID) (*dto.CascadaProductoResponse, error) {
	if _, err := s.productoRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	var resumen dto.CascadaProductoResumen
	txErr := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		n, err := s.salidaRepo.DeleteDetallesByProductoTx(tx, id)
		if err != nil {
			return err
		}
		resumen.DetalleSalidas = n

		if n, err = s.movimientoRepo.DeleteByProductoTx(tx, id); err != nil {
			return err
		}
		resumen.Movimientos = n

		if n, err = s.entradaRepo.DeleteByProductoTx(tx, id); err != nil {
			return err
		}
		resumen.Entradas = n

		return s.productoRepo.DeleteTx(tx, id)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("producto_id", id.String()).
		Int64("detalle_salidas", resumen.DetalleSalidas).
		Int64("movimientos", resumen.Movimientos).
		Int64("entradas", resumen.Entradas).
		Msg("producto eliminado en cascada")

	return &dto.CascadaProductoResponse{
		Mensaje:    "producto e historial eliminados",
		Eliminados: resumen,
	}, nil
}

// EliminarCategoria refuses while products reference the category.
func (s *cascadaService) EliminarCategoria(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoriaRepo.FindByID(ctx, id); err != nil {
		return err
	}
	n, err := s.productoRepo.CountByCategoria(ctx, id)
	if err != nil {
		return err
	}
	if err := bloquearSiDependientes("categoria", n,
		fmt.Sprintf("la categoría tiene %d productos asociados", n)); err != nil {
		return err
	}
	return s.categoriaRepo.Delete(ctx, id)
}

// EliminarProveedor refuses while products reference the supplier.
func (s *cascadaService) EliminarProveedor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.proveedorRepo.FindByID(ctx, id); err != nil {
		return err
	}
	n, err := s.productoRepo.CountByProveedor(ctx, id)
	if err != nil {
		return err
	}
	if err := bloquearSiDependientes("proveedor", n,
		fmt.Sprintf("el proveedor tiene %d productos asociados", n)); err != nil {
		return err
	}
	return s.proveedorRepo.Delete(ctx, id)
}

// EliminarUsuario cascades the user's permisos and nullifies user references
// on historical rows; name snapshots on those rows survive the delete.
func (s *cascadaService) EliminarUsuario(ctx context.Context, id uuid.UUID) error {
	if _, err := s.usuarioRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return runTx(ctx, s.usuarioRepo.DB(), func(tx *gorm.DB) error {
		if err := s.entradaRepo.NullifyUsuarioTx(tx, id); err != nil {
			return err
		}
		if err := s.salidaRepo.NullifyUsuarioTx(tx, id); err != nil {
			return err
		}
		if err := s.productoRepo.NullifyCreadorTx(tx, id); err != nil {
			return err
		}
		return s.usuarioRepo.DeleteTx(tx, id)
	})
}
