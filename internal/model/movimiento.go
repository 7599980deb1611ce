package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement types recorded in the ledger.
const (
	MovimientoEntrada = "ENTRADA"
	MovimientoSalida  = "SALIDA"
	MovimientoAjuste  = "AJUSTE"

	// OrigenAjusteInventario is the default origin tag when the caller
	// supplies none.
	OrigenAjusteInventario = "AJUSTE_INVENTARIO"
	// OrigenCompra tags ledger entries produced by purchase receipts.
	OrigenCompra = "COMPRA"
	// OrigenVenta tags ledger entries produced by sales and dispatches.
	OrigenVenta = "VENTA"
	// OrigenAnulacionVenta tags the reversal entries written when a sale is
	// deleted and its stock restored.
	OrigenAnulacionVenta = "ANULACION_VENTA"
)

// Movimiento is an append-only ledger entry recording a stock change and its
// cause. StockResultante is the point-in-time stock value after applying the
// movement — a snapshot, never recomputed. Entries are immutable once created
// except for explicit administrative deletion, and deleting one does not
// retroactively correct productos.stock_actual: the ledger records what
// happened, it is not a source of truth to replay.
type Movimiento struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID       uuid.UUID `gorm:"type:uuid;not null;index"`
	TipoMovimiento   string    `gorm:"type:varchar(20);not null"`
	Cantidad         int       `gorm:"not null"`
	StockResultante  int       `gorm:"not null"`
	OrigenMovimiento string    `gorm:"not null;default:'AJUSTE_INVENTARIO'"`
	Fecha            time.Time `gorm:"autoCreateTime;index"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Movimiento) TableName() string { return "movimientos" }
