package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	CodigoBarras  string          `json:"codigo_barras"   validate:"required,min=4,max=32"`
	NombreProducto string         `json:"nombre_producto" validate:"required,min=2,max=120"`
	CategoriaID   string          `json:"id_categoria"    validate:"required,uuid"`
	ProveedorID   *string         `json:"id_proveedor"    validate:"omitempty,uuid"`
	PrecioCompra  decimal.Decimal `json:"precio_compra"   validate:"required"`
	PrecioVenta   decimal.Decimal `json:"precio_venta"    validate:"required"`
	StockActual   int             `json:"stock_actual"    validate:"min=0"`
	StockMinimo   int             `json:"stock_minimo"    validate:"min=0"`
	StockMaximo   int             `json:"stock_maximo"    validate:"min=0"`
	CreadoPor     *string         `json:"creado_por"      validate:"omitempty,uuid"`
	NombreCreador *string         `json:"nombre_creador"`
}

type ActualizarProductoRequest struct {
	CodigoBarras   string          `json:"codigo_barras"   validate:"required,min=4,max=32"`
	NombreProducto string          `json:"nombre_producto" validate:"required,min=2,max=120"`
	CategoriaID    string          `json:"id_categoria"    validate:"required,uuid"`
	ProveedorID    *string         `json:"id_proveedor"    validate:"omitempty,uuid"`
	PrecioCompra   decimal.Decimal `json:"precio_compra"   validate:"required"`
	PrecioVenta    decimal.Decimal `json:"precio_venta"    validate:"required"`
	StockActual    int             `json:"stock_actual"    validate:"min=0"`
	StockMinimo    int             `json:"stock_minimo"    validate:"min=0"`
	StockMaximo    int             `json:"stock_maximo"    validate:"min=0"`
}

// AjustarStockRequest applies a manual stock delta; the movement ledger gets
// an AJUSTE entry in the same transaction.
type AjustarStockRequest struct {
	Delta  int     `json:"delta"  validate:"required"`
	Origen *string `json:"origen_movimiento"`
}

// ─── Barcode flows ───────────────────────────────────────────────────────────

// BarcodeScanRequest is the payload pushed by Barcode-to-PC style scanners.
type BarcodeScanRequest struct {
	Barcode     string  `json:"barcode" validate:"required"`
	DeviceName  *string `json:"device_name"`
	ScanSession *string `json:"scan_session"`
	SessionName *string `json:"session_name"`
	Timestamp   *string `json:"timestamp"`
}

type BarcodeScanMetadata struct {
	DeviceName  *string `json:"device_name"`
	ScanSession *string `json:"scan_session"`
	SessionName *string `json:"session_name,omitempty"`
	Timestamp   string  `json:"timestamp"`
}

type BarcodeScanResponse struct {
	Success      bool                `json:"success"`
	Mensaje      string              `json:"mensaje"`
	Producto     *ProductoResumen    `json:"producto,omitempty"`
	CodigoBarras string              `json:"codigo_barras,omitempty"`
	Accion       string              `json:"accion"` // "encontrado" | "registro_requerido"
	Metadata     BarcodeScanMetadata `json:"metadata"`
}

type RegistrarDesdeBarcodeRequest struct {
	CodigoBarras   string          `json:"codigo_barras"   validate:"required"`
	NombreProducto string          `json:"nombre_producto" validate:"required"`
	CategoriaID    *string         `json:"id_categoria"    validate:"omitempty,uuid"`
	PrecioCompra   decimal.Decimal `json:"precio_compra"`
	PrecioVenta    decimal.Decimal `json:"precio_venta"`
	StockActual    int             `json:"stock_actual"    validate:"min=0"`
	DeviceName     *string         `json:"device_name"`
	ScanSession    *string         `json:"scan_session"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID              string          `json:"id_producto"`
	CodigoBarras    string          `json:"codigo_barras"`
	NombreProducto  string          `json:"nombre_producto"`
	CategoriaID     string          `json:"id_categoria"`
	NombreCategoria *string         `json:"nombre_categoria,omitempty"`
	ProveedorID     *string         `json:"id_proveedor"`
	PrecioCompra    decimal.Decimal `json:"precio_compra"`
	PrecioVenta     decimal.Decimal `json:"precio_venta"`
	StockActual     int             `json:"stock_actual"`
	StockMinimo     int             `json:"stock_minimo"`
	StockMaximo     int             `json:"stock_maximo"`
	NombreCreador   *string         `json:"nombre_creador,omitempty"`
}

// ProductoResumen identifies a product in conflict payloads and scan replies.
type ProductoResumen struct {
	ID             string          `json:"id_producto"`
	CodigoBarras   string          `json:"codigo_barras"`
	NombreProducto string          `json:"nombre_producto"`
	PrecioVenta    decimal.Decimal `json:"precio_venta,omitempty"`
	StockActual    int             `json:"stock_actual,omitempty"`
}

// BuscarProductoResponse keeps the encontrado true/false contract of the
// scan-to-identify flow.
type BuscarProductoResponse struct {
	Encontrado bool              `json:"encontrado"`
	Producto   *ProductoResponse `json:"producto,omitempty"`
}

// CascadaProductoResponse summarizes a full product teardown.
type CascadaProductoResponse struct {
	Mensaje    string                 `json:"mensaje"`
	Eliminados CascadaProductoResumen `json:"eliminados"`
}

type CascadaProductoResumen struct {
	DetalleSalidas int64 `json:"detalle_salidas"`
	Movimientos    int64 `json:"movimientos"`
	Entradas       int64 `json:"entradas"`
}
