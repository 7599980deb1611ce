package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sowin/internal/apierror"
	"sowin/internal/dto"
	"sowin/internal/model"
	"sowin/internal/repository"
)

// EntradaService processes inbound purchase receipts. Registrar commits the
// receipt row, the stock increment and the ENTRADA ledger entry atomically.
type EntradaService interface {
	Registrar(ctx context.Context, req dto.CrearEntradaRequest) (*dto.EntradaResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.EntradaResponse, error)
	Listar(ctx context.Context) ([]dto.EntradaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEntradaRequest) (*dto.EntradaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) ([]dto.EntradaStatsItem, error)
	Purgar(ctx context.Context, req dto.PurgarEntradasRequest) (*dto.PurgarEntradasResponse, error)
}

type entradaService struct {
	repo           repository.EntradaRepository
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoRepository
}

func NewEntradaService(repo repository.EntradaRepository, productoRepo repository.ProductoRepository, movimientoRepo repository.MovimientoRepository) EntradaService {
	return &entradaService{repo: repo, productoRepo: productoRepo, movimientoRepo: movimientoRepo}
}

func (s *entradaService) Registrar(ctx context.Context, req dto.CrearEntradaRequest) (*dto.EntradaResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, apierror.Validation("id_producto inválido")
	}
	p, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, err
	}

	e := &model.Entrada{
		ProductoID:     productoID,
		Cantidad:       req.Cantidad,
		PrecioUnitario: req.PrecioUnitario,
		NombreUsuario:  req.NombreUsuario,
	}
	if req.UsuarioID != nil {
		uid, err := uuid.Parse(*req.UsuarioID)
		if err != nil {
			return nil, apierror.Validation("id_usuario inválido")
		}
		e.UsuarioID = &uid
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		stock, err := s.productoRepo.UpdateStockTx(tx, productoID, req.Cantidad)
		if err != nil {
			return err
		}
		if err := s.repo.CreateTx(tx, e); err != nil {
			return err
		}
		mov := &model.Movimiento{
			ProductoID:       productoID,
			TipoMovimiento:   model.MovimientoEntrada,
			Cantidad:         req.Cantidad,
			StockResultante:  stock,
			OrigenMovimiento: model.OrigenCompra,
		}
		return s.movimientoRepo.CreateTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := entradaToResponse(e)
	resp.NombreProducto = &p.NombreProducto
	return resp, nil
}

func (s *entradaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.EntradaResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return entradaToResponse(e), nil
}

func (s *entradaService) Listar(ctx context.Context) ([]dto.EntradaResponse, error) {
	entradas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EntradaResponse, 0, len(entradas))
	for i := range entradas {
		out = append(out, *entradaToResponse(&entradas[i]))
	}
	return out, nil
}

// Actualizar edits the receipt record only. The stock increment applied at
// registration time is NOT recalculated; corrections go through an explicit
// stock adjustment.
func (s *entradaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEntradaRequest) (*dto.EntradaResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, apierror.Validation("id_producto inválido")
	}
	e.ProductoID = productoID
	e.Cantidad = req.Cantidad
	e.PrecioUnitario = req.PrecioUnitario
	e.Producto = nil

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateTx(tx, e)
	})
	if txErr != nil {
		return nil, txErr
	}
	return entradaToResponse(e), nil
}

// Eliminar drops the receipt record without reversing the stock it added.
// The asymmetry with sale deletion is intentional: a receipt delete is a
// paperwork correction, the goods remain on the shelf.
func (s *entradaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.DeleteTx(tx, id)
	})
}

func (s *entradaService) Stats(ctx context.Context) ([]dto.EntradaStatsItem, error) {
	stats, err := s.repo.StatsPorProducto(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EntradaStatsItem, 0, len(stats))
	for _, st := range stats {
		out = append(out, dto.EntradaStatsItem{
			ProductoID:     st.ProductoID.String(),
			NombreProducto: st.NombreProducto,
			TotalEntradas:  st.TotalEntradas,
			CantidadTotal:  st.CantidadTotal,
			ValorTotal:     st.ValorTotal,
		})
	}
	return out, nil
}

// Purgar removes old receipts for retention housekeeping. Stock is never
// touched; the purge erases history, not inventory.
func (s *entradaService) Purgar(ctx context.Context, req dto.PurgarEntradasRequest) (*dto.PurgarEntradasResponse, error) {
	switch {
	case req.MesesConservar != nil:
		limite := time.Now().AddDate(0, -*req.MesesConservar, 0)
		n, err := s.repo.PurgeOlderThan(ctx, limite)
		if err != nil {
			return nil, err
		}
		return &dto.PurgarEntradasResponse{
			Mensaje:    fmt.Sprintf("entradas anteriores a %s eliminadas", limite.Format("2006-01-02")),
			Eliminados: n,
		}, nil
	case req.FechaInicio != nil && req.FechaFin != nil:
		desde, err := time.Parse("2006-01-02", *req.FechaInicio)
		if err != nil {
			return nil, apierror.Validation("fecha_inicio inválida")
		}
		hasta, err := time.Parse("2006-01-02", *req.FechaFin)
		if err != nil {
			return nil, apierror.Validation("fecha_fin inválida")
		}
		if hasta.Before(desde) {
			return nil, apierror.Validation("fecha_fin anterior a fecha_inicio")
		}
		n, err := s.repo.PurgeRange(ctx, desde, hasta)
		if err != nil {
			return nil, err
		}
		return &dto.PurgarEntradasResponse{
			Mensaje:    "entradas del rango eliminadas",
			Eliminados: n,
		}, nil
	default:
		return nil, apierror.Validation("se requiere meses_conservar o un rango de fechas")
	}
}

func entradaToResponse(e *model.Entrada) *dto.EntradaResponse {
	resp := &dto.EntradaResponse{
		ID:             e.ID.String(),
		ProductoID:     e.ProductoID.String(),
		NombreUsuario:  e.NombreUsuario,
		Fecha:          e.Fecha,
		Cantidad:       e.Cantidad,
		PrecioUnitario: e.PrecioUnitario,
		Total:          e.Total,
	}
	if e.UsuarioID != nil {
		uid := e.UsuarioID.String()
		resp.UsuarioID = &uid
	}
	if e.Producto != nil {
		resp.NombreProducto = &e.Producto.NombreProducto
	}
	return resp
}
