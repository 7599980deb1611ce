package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"sowin/internal/apierror"
	"sowin/internal/dto"
	"sowin/internal/model"
	"sowin/internal/repository"
)

const (
	barcodeCachePrefix = "cache:producto:barcode:"
	barcodeCacheTTL    = 5 * time.Minute
)

// ProductoService is the business logic contract of the product catalog.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	BuscarPorBarcode(ctx context.Context, codigo string) (*dto.BuscarProductoResponse, error)
	Listar(ctx context.Context) ([]dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
	ProcesarScan(ctx context.Context, req dto.BarcodeScanRequest) (*dto.BarcodeScanResponse, error)
	RegistrarDesdeBarcode(ctx context.Context, req dto.RegistrarDesdeBarcodeRequest) (*dto.ProductoResponse, error)
}

type productoService struct {
	repo           repository.ProductoRepository
	movimientoRepo repository.MovimientoRepository
	rdb            *redis.Client
}

func NewProductoService(repo repository.ProductoRepository, movimientoRepo repository.MovimientoRepository, rdb *redis.Client) ProductoService {
	return &productoService{repo: repo, movimientoRepo: movimientoRepo, rdb: rdb}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	categoriaID, err := uuid.Parse(req.CategoriaID)
	if err != nil {
		return nil, apierror.Validation("id_categoria inválido")
	}
	// Duplicate barcodes answer 409 with the existing product so the client
	// can resolve instead of retrying blindly.
	if existente, err := s.repo.FindByBarcode(ctx, req.CodigoBarras); err == nil {
		return nil, apierror.Duplicate("ya existe un producto con ese código de barras", productoResumen(existente))
	}

	p := &model.Producto{
		CodigoBarras:   req.CodigoBarras,
		NombreProducto: req.NombreProducto,
		CategoriaID:    categoriaID,
		PrecioCompra:   req.PrecioCompra,
		PrecioVenta:    req.PrecioVenta,
		StockActual:    req.StockActual,
		StockMinimo:    req.StockMinimo,
		StockMaximo:    req.StockMaximo,
		NombreCreador:  req.NombreCreador,
	}
	if req.ProveedorID != nil {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, apierror.Validation("id_proveedor inválido")
		}
		p.ProveedorID = &pid
	}
	if req.CreadoPor != nil {
		uid, err := uuid.Parse(*req.CreadoPor)
		if err != nil {
			return nil, apierror.Validation("creado_por inválido")
		}
		p.CreadoPor = &uid
	}

	if err := s.repo.Create(ctx, p); err != nil {
		// The unique index is the authority; the pre-check above only covers
		// the common case, not concurrent inserts.
		if apierror.Is(err, apierror.KindDuplicate) {
			if existente, ferr := s.repo.FindByBarcode(ctx, req.CodigoBarras); ferr == nil {
				return nil, apierror.Duplicate("ya existe un producto con ese código de barras", productoResumen(existente))
			}
		}
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

// BuscarPorBarcode never fails on a miss: the scan UI needs encontrado=false
// to branch into the registration flow.
func (s *productoService) BuscarPorBarcode(ctx context.Context, codigo string) (*dto.BuscarProductoResponse, error) {
	if cached := s.cacheGet(ctx, codigo); cached != nil {
		return &dto.BuscarProductoResponse{Encontrado: true, Producto: cached}, nil
	}
	p, err := s.repo.FindByBarcode(ctx, codigo)
	if apierror.Is(err, apierror.KindNotFound) {
		return &dto.BuscarProductoResponse{Encontrado: false}, nil
	}
	if err != nil {
		return nil, err
	}
	resp := productoToResponse(p)
	s.cacheSet(ctx, codigo, resp)
	return &dto.BuscarProductoResponse{Encontrado: true, Producto: resp}, nil
}

func (s *productoService) Listar(ctx context.Context) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		out = append(out, *productoToResponse(&productos[i]))
	}
	return out, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	categoriaID, err := uuid.Parse(req.CategoriaID)
	if err != nil {
		return nil, apierror.Validation("id_categoria inválido")
	}
	// Same duplicate contract as creation, excluding the product's own row.
	if existente, err := s.repo.FindByBarcode(ctx, req.CodigoBarras); err == nil && existente.ID != id {
		return nil, apierror.Duplicate("ya existe un producto con ese código de barras", productoResumen(existente))
	}

	codigoAnterior := p.CodigoBarras
	p.CodigoBarras = req.CodigoBarras
	p.NombreProducto = req.NombreProducto
	p.CategoriaID = categoriaID
	p.PrecioCompra = req.PrecioCompra
	p.PrecioVenta = req.PrecioVenta
	p.StockActual = req.StockActual
	p.StockMinimo = req.StockMinimo
	p.StockMaximo = req.StockMaximo
	p.ProveedorID = nil
	if req.ProveedorID != nil {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, apierror.Validation("id_proveedor inválido")
		}
		p.ProveedorID = &pid
	}

	if err := s.repo.Update(ctx, p); err != nil {
		// The unique index catches the concurrent case the pre-check missed.
		if apierror.Is(err, apierror.KindDuplicate) {
			if existente, ferr := s.repo.FindByBarcode(ctx, req.CodigoBarras); ferr == nil && existente.ID != id {
				return nil, apierror.Duplicate("ya existe un producto con ese código de barras", productoResumen(existente))
			}
		}
		return nil, err
	}
	s.cacheInvalidate(ctx, codigoAnterior, p.CodigoBarras)
	return productoToResponse(p), nil
}

// AjustarStock applies a manual delta under the same guard a sale uses, and
// appends the matching AJUSTE movement in one transaction.
func (s *productoService) AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	if req.Delta == 0 {
		return nil, apierror.Validation("delta no puede ser cero")
	}
	origen := model.OrigenAjusteInventario
	if req.Origen != nil && *req.Origen != "" {
		origen = *req.Origen
	}

	var actualizado *model.Producto
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		stock, err := s.repo.UpdateStockTx(tx, id, req.Delta)
		if err != nil {
			return err
		}
		cantidad := req.Delta
		if cantidad < 0 {
			cantidad = -cantidad
		}
		mov := &model.Movimiento{
			ProductoID:       id,
			TipoMovimiento:   model.MovimientoAjuste,
			Cantidad:         cantidad,
			StockResultante:  stock,
			OrigenMovimiento: origen,
		}
		if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
			return err
		}
		actualizado, err = s.repo.FindByIDTx(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cacheInvalidate(ctx, actualizado.CodigoBarras)
	return productoToResponse(actualizado), nil
}

// ProcesarScan resolves a raw scanner payload to a product, or tells the
// client to open the registration flow.
func (s *productoService) ProcesarScan(ctx context.Context, req dto.BarcodeScanRequest) (*dto.BarcodeScanResponse, error) {
	meta := dto.BarcodeScanMetadata{
		DeviceName:  req.DeviceName,
		ScanSession: req.ScanSession,
		SessionName: req.SessionName,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if req.Timestamp != nil && *req.Timestamp != "" {
		meta.Timestamp = *req.Timestamp
	}

	p, err := s.repo.FindByBarcode(ctx, req.Barcode)
	if apierror.Is(err, apierror.KindNotFound) {
		return &dto.BarcodeScanResponse{
			Success:      true,
			Mensaje:      "producto no registrado",
			CodigoBarras: req.Barcode,
			Accion:       "registro_requerido",
			Metadata:     meta,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	resumen := productoResumen(p)
	return &dto.BarcodeScanResponse{
		Success:  true,
		Mensaje:  "producto encontrado",
		Producto: &resumen,
		Accion:   "encontrado",
		Metadata: meta,
	}, nil
}

// RegistrarDesdeBarcode is the quick-capture path of the scan flow: minimal
// fields, idempotent on the barcode.
func (s *productoService) RegistrarDesdeBarcode(ctx context.Context, req dto.RegistrarDesdeBarcodeRequest) (*dto.ProductoResponse, error) {
	if existente, err := s.repo.FindByBarcode(ctx, req.CodigoBarras); err == nil {
		return nil, apierror.Duplicate("ya existe un producto con ese código de barras", productoResumen(existente))
	}

	p := &model.Producto{
		CodigoBarras:   req.CodigoBarras,
		NombreProducto: req.NombreProducto,
		PrecioCompra:   req.PrecioCompra,
		PrecioVenta:    req.PrecioVenta,
		StockActual:    req.StockActual,
	}
	if req.CategoriaID != nil {
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, apierror.Validation("id_categoria inválido")
		}
		p.CategoriaID = cid
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if apierror.Is(err, apierror.KindDuplicate) {
			if existente, ferr := s.repo.FindByBarcode(ctx, req.CodigoBarras); ferr == nil {
				return nil, apierror.Duplicate("ya existe un producto con ese código de barras", productoResumen(existente))
			}
		}
		return nil, err
	}
	return productoToResponse(p), nil
}

// ── Barcode cache ────────────────────────────────────────────────────────────

func (s *productoService) cacheGet(ctx context.Context, codigo string) *dto.ProductoResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, barcodeCachePrefix+codigo).Bytes()
	if err != nil {
		return nil
	}
	var resp dto.ProductoResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *productoService) cacheSet(ctx context.Context, codigo string, resp *dto.ProductoResponse) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, barcodeCachePrefix+codigo, raw, barcodeCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("codigo_barras", codigo).Msg("no se pudo cachear el producto")
	}
}

func (s *productoService) cacheInvalidate(ctx context.Context, codigos ...string) {
	if s.rdb == nil {
		return
	}
	for _, c := range codigos {
		if c == "" {
			continue
		}
		if err := s.rdb.Del(ctx, barcodeCachePrefix+c).Err(); err != nil {
			log.Warn().Err(err).Str("codigo_barras", c).Msg("no se pudo invalidar el cache")
		}
	}
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:             p.ID.String(),
		CodigoBarras:   p.CodigoBarras,
		NombreProducto: p.NombreProducto,
		CategoriaID:    p.CategoriaID.String(),
		PrecioCompra:   p.PrecioCompra,
		PrecioVenta:    p.PrecioVenta,
		StockActual:    p.StockActual,
		StockMinimo:    p.StockMinimo,
		StockMaximo:    p.StockMaximo,
		NombreCreador:  p.NombreCreador,
	}
	if p.ProveedorID != nil {
		pid := p.ProveedorID.String()
		resp.ProveedorID = &pid
	}
	if p.Categoria != nil {
		resp.NombreCategoria = &p.Categoria.NombreCategoria
	}
	return resp
}

func productoResumen(p *model.Producto) dto.ProductoResumen {
	return dto.ProductoResumen{
		ID:             p.ID.String(),
		CodigoBarras:   p.CodigoBarras,
		NombreProducto: p.NombreProducto,
		PrecioVenta:    p.PrecioVenta,
		StockActual:    p.StockActual,
	}
}
