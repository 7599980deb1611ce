package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"sowin/internal/apierror"
	"sowin/internal/dto"
	"sowin/internal/infra"
	"sowin/internal/model"
	"sowin/internal/repository"
	"sowin/internal/worker"
)

// VentaService processes outbound stock: single-item dispatches (salidas)
// and multi-item sales (ventas). Every committed outbound transaction holds
// three guarantees: stock never goes negative, the header and its lines are
// written atomically with the stock decrement, and a SALIDA ledger entry
// exists per affected product.
type VentaService interface {
	RegistrarSalida(ctx context.Context, req dto.RegistrarSalidaRequest) (*dto.SalidaResponse, error)
	RegistrarVenta(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.SalidaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSalidaRequest) (*dto.SalidaResponse, error)
	Listar(ctx context.Context, q dto.FiltrarSalidasQuery) ([]dto.SalidaResponse, error)
	ListarDetalles(ctx context.Context) ([]dto.DetalleSalidaResponse, error)
	VentasPorCajeroHoy(ctx context.Context, usuarioID uuid.UUID) ([]dto.VentaCajeroItem, error)
	TicketPDF(ctx context.Context, id uuid.UUID) (string, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type ventaService struct {
	repo           repository.SalidaRepository
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoRepository
	dispatcher     *worker.Dispatcher
	ticketPath     string
}

func NewVentaService(
	repo repository.SalidaRepository,
	productoRepo repository.ProductoRepository,
	movimientoRepo repository.MovimientoRepository,
	dispatcher *worker.Dispatcher,
	ticketPath string,
) VentaService {
	return &ventaService{
		repo:           repo,
		productoRepo:   productoRepo,
		movimientoRepo: movimientoRepo,
		dispatcher:     dispatcher,
		ticketPath:     ticketPath,
	}
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode with stub repositories).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func parseFecha(s *string, campo string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, apierror.Validation(campo + " inválida")
	}
	return &t, nil
}

// ── RegistrarSalida ──────────────────────────────────────────────────────────
// Single-item dispatch. The stock check runs BEFORE the transaction so the
// common insufficient-stock case fails fast with the product identity in the
// payload; the guarded UPDATE inside the transaction remains the authority
// under concurrency.

func (s *ventaService) RegistrarSalida(ctx context.Context, req dto.RegistrarSalidaRequest) (*dto.SalidaResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, apierror.Validation("id_producto inválido")
	}
	if req.UsuarioID == nil {
		return nil, apierror.Validation("id_usuario es obligatorio")
	}
	usuarioID, err := uuid.Parse(*req.UsuarioID)
	if err != nil {
		return nil, apierror.Validation("id_usuario inválido")
	}

	p, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, err
	}
	if p.StockActual < req.Cantidad {
		return nil, apierror.StockInsuficiente("stock insuficiente", productoResumen(p))
	}

	salida := &model.Salida{
		UsuarioID:      &usuarioID,
		NombreCajero:   req.NombreCajero,
		ProductoID:     &productoID,
		Cantidad:       req.Cantidad,
		PrecioUnitario: req.PrecioUnitario,
		Total:          req.PrecioUnitario.Mul(decimal.NewFromInt(int64(req.Cantidad))),
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		stock, err := s.productoRepo.UpdateStockTx(tx, productoID, -req.Cantidad)
		if err != nil {
			return err
		}
		if err := s.repo.CreateTx(tx, salida); err != nil {
			return err
		}
		mov := &model.Movimiento{
			ProductoID:       productoID,
			TipoMovimiento:   model.MovimientoSalida,
			Cantidad:         req.Cantidad,
			StockResultante:  stock,
			OrigenMovimiento: model.OrigenVenta,
		}
		return s.movimientoRepo.CreateTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notificarStockBajo(ctx, productoID)
	resp := salidaToResponse(salida)
	resp.NombreProducto = &p.NombreProducto
	return resp, nil
}

// ── RegistrarVenta ───────────────────────────────────────────────────────────
// Multi-item sale. All line decrements and inserts commit or none do: a
// guard rejection on line N rolls back lines 1..N-1 entirely. Lines are
// processed in request order.

func (s *ventaService) RegistrarVenta(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	if req.UsuarioID == nil {
		return nil, apierror.Validation("id_usuario es obligatorio")
	}
	usuarioID, err := uuid.Parse(*req.UsuarioID)
	if err != nil {
		return nil, apierror.Validation("id_usuario inválido")
	}
	if req.Total.IsZero() {
		return nil, apierror.Validation("total es obligatorio")
	}

	type lineaVenta struct {
		productoID uuid.UUID
		cantidad   int
		precio     decimal.Decimal
		total      decimal.Decimal
	}
	lineas := make([]lineaVenta, 0, len(req.Productos))
	for _, item := range req.Productos {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, apierror.Validation("id_producto inválido")
		}
		if item.Total.IsZero() {
			return nil, apierror.Validation("total de línea es obligatorio")
		}
		lineas = append(lineas, lineaVenta{
			productoID: pid,
			cantidad:   item.Cantidad,
			precio:     item.PrecioUnitario,
			total:      item.Total,
		})
	}

	salida := &model.Salida{
		UsuarioID:    &usuarioID,
		NombreCajero: req.NombreCajero,
		Total:        req.Total,
		Efectivo:     req.Efectivo,
		Cambio:       req.Cambio,
	}
	for _, l := range lineas {
		salida.Detalles = append(salida.Detalles, model.DetalleSalida{
			ProductoID:     l.productoID,
			Cantidad:       l.cantidad,
			PrecioUnitario: l.precio,
			Total:          l.total,
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, l := range lineas {
			stock, err := s.productoRepo.UpdateStockTx(tx, l.productoID, -l.cantidad)
			if err != nil {
				// Attach the offending product so the client can show which
				// line failed.
				if apierror.Is(err, apierror.KindStockInsuficiente) {
					if p, ferr := s.productoRepo.FindByIDTx(tx, l.productoID); ferr == nil {
						return apierror.StockInsuficiente("stock insuficiente", productoResumen(p))
					}
				}
				return err
			}
			mov := &model.Movimiento{
				ProductoID:       l.productoID,
				TipoMovimiento:   model.MovimientoSalida,
				Cantidad:         l.cantidad,
				StockResultante:  stock,
				OrigenMovimiento: model.OrigenVenta,
			}
			if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return s.repo.CreateTx(tx, salida)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Post-commit side effects are best-effort; the sale stands regardless.
	for _, l := range lineas {
		s.notificarStockBajo(ctx, l.productoID)
	}

	resp := &dto.VentaResponse{
		ID:     salida.ID.String(),
		Total:  salida.Total,
		Cambio: salida.Cambio,
	}
	if s.ticketPath != "" {
		if ruta, err := infra.GenerateTicketPDF(salida, s.ticketPath); err != nil {
			log.Warn().Err(err).Str("salida_id", salida.ID.String()).Msg("no se pudo generar el ticket")
		} else {
			resp.Ticket = &ruta
		}
	}
	return resp, nil
}

// notificarStockBajo enqueues a low-stock alert when the product is at or
// below its minimum. Fire and forget.
func (s *ventaService) notificarStockBajo(ctx context.Context, productoID uuid.UUID) {
	if s.dispatcher == nil {
		return
	}
	p, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil || p.StockMinimo <= 0 || p.StockActual > p.StockMinimo {
		return
	}
	if err := s.dispatcher.EnqueueAlertaStock(ctx, worker.AlertaStockPayload{
		ProductoID:     p.ID.String(),
		NombreProducto: p.NombreProducto,
		CodigoBarras:   p.CodigoBarras,
		StockActual:    p.StockActual,
		StockMinimo:    p.StockMinimo,
	}); err != nil {
		log.Warn().Err(err).Str("producto_id", p.ID.String()).Msg("no se pudo encolar la alerta de stock")
	}
}

func (s *ventaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.SalidaResponse, error) {
	salida, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return salidaToResponse(salida), nil
}

// Actualizar edits a single-item dispatch record: quantity, unit price and
// cashier name. Like receipt edits, the stock moved at registration time is
// NOT recalculated; a real correction is an anulación plus re-registration.
func (s *ventaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSalidaRequest) (*dto.SalidaResponse, error) {
	salida, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if salida.ProductoID == nil {
		return nil, apierror.Validation("una venta con detalles no se edita; anúlela y regístrela de nuevo")
	}
	salida.Cantidad = req.Cantidad
	salida.PrecioUnitario = req.PrecioUnitario
	if req.NombreCajero != nil {
		salida.NombreCajero = req.NombreCajero
	}
	salida.Total = req.PrecioUnitario.Mul(decimal.NewFromInt(int64(req.Cantidad)))

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateTx(tx, salida)
	})
	if txErr != nil {
		return nil, txErr
	}
	return salidaToResponse(salida), nil
}

func (s *ventaService) Listar(ctx context.Context, q dto.FiltrarSalidasQuery) ([]dto.SalidaResponse, error) {
	filter := repository.SalidaFilter{
		NombreCajero:   q.NombreCajero,
		NombreProducto: q.Producto,
	}
	var err error
	if filter.FechaInicio, err = parseFecha(q.FechaInicio, "fecha_inicio"); err != nil {
		return nil, err
	}
	if filter.FechaFin, err = parseFecha(q.FechaFin, "fecha_fin"); err != nil {
		return nil, err
	}
	salidas, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SalidaResponse, 0, len(salidas))
	for i := range salidas {
		out = append(out, *salidaToResponse(&salidas[i]))
	}
	return out, nil
}

func (s *ventaService) ListarDetalles(ctx context.Context) ([]dto.DetalleSalidaResponse, error) {
	detalles, err := s.repo.ListDetalles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DetalleSalidaResponse, 0, len(detalles))
	for i := range detalles {
		out = append(out, *detalleToResponse(&detalles[i]))
	}
	return out, nil
}

func (s *ventaService) VentasPorCajeroHoy(ctx context.Context, usuarioID uuid.UUID) ([]dto.VentaCajeroItem, error) {
	salidas, err := s.repo.ListPorCajeroHoy(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VentaCajeroItem, 0, len(salidas))
	for i := range salidas {
		v := &salidas[i]
		item := dto.VentaCajeroItem{
			ID:           v.ID.String(),
			FechaVenta:   v.Fecha,
			Total:        v.Total,
			Efectivo:     v.Efectivo,
			Cambio:       v.Cambio,
			NombreCajero: v.NombreCajero,
			Productos:    make([]dto.ProductoVendido, 0, len(v.Detalles)),
		}
		for _, d := range v.Detalles {
			pv := dto.ProductoVendido{
				Cantidad:       d.Cantidad,
				PrecioUnitario: d.PrecioUnitario,
				Subtotal:       d.Total,
			}
			if d.Producto != nil {
				pv.NombreProducto = d.Producto.NombreProducto
				pv.CodigoBarras = d.Producto.CodigoBarras
			}
			item.Productos = append(item.Productos, pv)
		}
		out = append(out, item)
	}
	return out, nil
}

// TicketPDF renders the sale ticket on demand and returns the file path.
// Regenerating an existing ticket is harmless, the render is deterministic
// for a given sale.
func (s *ventaService) TicketPDF(ctx context.Context, id uuid.UUID) (string, error) {
	if s.ticketPath == "" {
		return "", apierror.NotFound("generación de tickets no configurada")
	}
	salida, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	ruta, err := infra.GenerateTicketPDF(salida, s.ticketPath)
	if err != nil {
		return "", apierror.Persistence(err)
	}
	return ruta, nil
}

// ── Eliminar ─────────────────────────────────────────────────────────────────
// Deleting a sale reverses its stock decrements — every unit the sale took
// goes back on the shelf — and records the reversal in the ledger. This is
// the one outbound mutation that touches stock after commit; compare receipt
// deletion, which leaves stock alone.

func (s *ventaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		salida, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return err
		}

		type reversa struct {
			productoID uuid.UUID
			cantidad   int
		}
		var reversas []reversa
		if len(salida.Detalles) > 0 {
			for _, d := range salida.Detalles {
				reversas = append(reversas, reversa{productoID: d.ProductoID, cantidad: d.Cantidad})
			}
		} else if salida.ProductoID != nil {
			reversas = append(reversas, reversa{productoID: *salida.ProductoID, cantidad: salida.Cantidad})
		}

		for _, r := range reversas {
			stock, err := s.productoRepo.UpdateStockTx(tx, r.productoID, r.cantidad)
			if err != nil {
				// The product may have been deleted since the sale; its
				// history rows are already gone via cascade.
				if apierror.Is(err, apierror.KindNotFound) {
					continue
				}
				return err
			}
			mov := &model.Movimiento{
				ProductoID:       r.productoID,
				TipoMovimiento:   model.MovimientoEntrada,
				Cantidad:         r.cantidad,
				StockResultante:  stock,
				OrigenMovimiento: model.OrigenAnulacionVenta,
			}
			if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return s.repo.DeleteTx(tx, id)
	})
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func salidaToResponse(v *model.Salida) *dto.SalidaResponse {
	resp := &dto.SalidaResponse{
		ID:           v.ID.String(),
		NombreCajero: v.NombreCajero,
		Fecha:        v.Fecha,
		Total:        v.Total,
	}
	if v.UsuarioID != nil {
		uid := v.UsuarioID.String()
		resp.UsuarioID = &uid
	}
	if v.ProductoID != nil {
		pid := v.ProductoID.String()
		resp.ProductoID = &pid
		cantidad := v.Cantidad
		resp.Cantidad = &cantidad
		precio := v.PrecioUnitario
		resp.PrecioUnitario = &precio
	}
	if v.Producto != nil {
		resp.NombreProducto = &v.Producto.NombreProducto
	}
	return resp
}

func detalleToResponse(d *model.DetalleSalida) *dto.DetalleSalidaResponse {
	resp := &dto.DetalleSalidaResponse{
		ID:             d.ID.String(),
		SalidaID:       d.SalidaID.String(),
		ProductoID:     d.ProductoID.String(),
		Cantidad:       d.Cantidad,
		PrecioUnitario: d.PrecioUnitario,
		Total:          d.Total,
	}
	if d.Producto != nil {
		resp.NombreProducto = &d.Producto.NombreProducto
		resp.CodigoBarras = &d.Producto.CodigoBarras
	}
	return resp
}
