package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sowin/internal/apierror"
	"sowin/internal/dto"
	"sowin/internal/model"
	"sowin/internal/repository"
)

// MovimientoService exposes the audit ledger. Registrar is a pure append:
// it does NOT touch productos.stock_actual — stock changes go through the
// entrada/venta processors or the stock-adjust operation, which write their
// own ledger entries.
type MovimientoService interface {
	Registrar(ctx context.Context, req dto.RegistrarMovimientoRequest) (*dto.MovimientoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.MovimientoResponse, error)
	Listar(ctx context.Context, q dto.FiltrarMovimientosQuery) ([]dto.MovimientoResponse, error)
	ListarPorProducto(ctx context.Context, productoID uuid.UUID) ([]dto.MovimientoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type movimientoService struct {
	repo         repository.MovimientoRepository
	productoRepo repository.ProductoRepository
}

func NewMovimientoService(repo repository.MovimientoRepository, productoRepo repository.ProductoRepository) MovimientoService {
	return &movimientoService{repo: repo, productoRepo: productoRepo}
}

func (s *movimientoService) Registrar(ctx context.Context, req dto.RegistrarMovimientoRequest) (*dto.MovimientoResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, apierror.Validation("id_producto inválido")
	}
	if _, err := s.productoRepo.FindByID(ctx, productoID); err != nil {
		return nil, err
	}

	m := &model.Movimiento{
		ProductoID:      productoID,
		TipoMovimiento:  req.TipoMovimiento,
		Cantidad:        req.Cantidad,
		StockResultante: req.StockResultante,
	}
	if req.Origen != nil && *req.Origen != "" {
		m.OrigenMovimiento = *req.Origen
	} else {
		m.OrigenMovimiento = model.OrigenAjusteInventario
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return movimientoToResponse(m), nil
}

func (s *movimientoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.MovimientoResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return movimientoToResponse(m), nil
}

func (s *movimientoService) Listar(ctx context.Context, q dto.FiltrarMovimientosQuery) ([]dto.MovimientoResponse, error) {
	filter := repository.MovimientoFilter{TipoMovimiento: q.TipoMovimiento}
	if q.FechaInicio != nil {
		t, err := time.Parse("2006-01-02", *q.FechaInicio)
		if err != nil {
			return nil, apierror.Validation("fecha_inicio inválida")
		}
		filter.FechaInicio = &t
	}
	if q.FechaFin != nil {
		t, err := time.Parse("2006-01-02", *q.FechaFin)
		if err != nil {
			return nil, apierror.Validation("fecha_fin inválida")
		}
		filter.FechaFin = &t
	}
	movimientos, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimientoResponse, 0, len(movimientos))
	for i := range movimientos {
		out = append(out, *movimientoToResponse(&movimientos[i]))
	}
	return out, nil
}

func (s *movimientoService) ListarPorProducto(ctx context.Context, productoID uuid.UUID) ([]dto.MovimientoResponse, error) {
	if _, err := s.productoRepo.FindByID(ctx, productoID); err != nil {
		return nil, err
	}
	movimientos, err := s.repo.ListByProducto(ctx, productoID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimientoResponse, 0, len(movimientos))
	for i := range movimientos {
		out = append(out, *movimientoToResponse(&movimientos[i]))
	}
	return out, nil
}

// Eliminar removes a ledger entry without compensating stock. The ledger is
// a historical record; deleting an entry does not rewrite what happened.
func (s *movimientoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func movimientoToResponse(m *model.Movimiento) *dto.MovimientoResponse {
	resp := &dto.MovimientoResponse{
		ID:              m.ID.String(),
		ProductoID:      m.ProductoID.String(),
		TipoMovimiento:  m.TipoMovimiento,
		Cantidad:        m.Cantidad,
		StockResultante: m.StockResultante,
		Origen:          m.OrigenMovimiento,
		Fecha:           m.Fecha,
	}
	if m.Producto != nil {
		resp.NombreProducto = &m.Producto.NombreProducto
		resp.CodigoBarras = &m.Producto.CodigoBarras
	}
	return resp
}
