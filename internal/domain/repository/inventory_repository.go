package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
)

// InventoryRepository define el puerto de stock por lotes. Las mutaciones de
// cantidad se expresan como updates condicionales atómicos ("descuenta si
// quantity >= N") para cerrar la ventana de carrera entre ventas concurrentes;
// nunca como read-modify-write en dos viajes.
type InventoryRepository interface {
	CreateRecord(record *entity.InventoryRecord) error
	// AddBatch agrega un lote al registro y suma su cantidad al total.
	AddBatch(recordID string, batch *entity.Batch) error
	GetRecord(companyID, productID, vendorID string) (*entity.InventoryRecord, error)
	GetRecordByID(id string) (*entity.InventoryRecord, error)
	GetBatch(batchID string) (*entity.Batch, error)
	// ReserveAndDecrement descuenta qty del lote y del total del registro en
	// forma atómica. Retorna *domain.InsufficientStockError si el lote no
	// alcanza, o domain.ErrNotFound si el lote no existe.
	ReserveAndDecrement(companyID, productID, batchID string, qty decimal.Decimal) error
	// Restore repone qty al lote y al total (devoluciones). Solo valida qty > 0.
	Restore(companyID, productID, batchID string, qty decimal.Decimal) error
	// FindAvailable retorna el stock agregado por producto; con includeBatches
	// incluye los lotes vivos ordenados del más antiguo al más reciente (FIFO),
	// excluyendo lotes en cero.
	FindAvailable(companyID string, includeBatches bool) ([]*entity.InventoryRecord, error)
}

// InventoryUnitRepository define el puerto para unidades físicas serializadas.
type InventoryUnitRepository interface {
	// CreateInStock registra la unidad en estado In Stock (ingreso de lote
	// serializado). Retorna *domain.DuplicateSerialError si el serial ya existe.
	CreateInStock(unit *entity.InventoryUnit) error
	// CreateSold registra la venta de la unidad: si el serial ya existe In
	// Stock lo transiciona a Sold; si no existe lo inserta directamente en
	// Sold. Retorna *domain.DuplicateSerialError si el serial ya está vendido
	// o defectuoso.
	CreateSold(unit *entity.InventoryUnit) error
	// ReturnUnit transiciona Sold -> In Stock de forma condicional. Retorna
	// *domain.InvalidReturnStateError si la unidad no está en Sold.
	ReturnUnit(companyID, productID, batchID, serialNumber string) error
	GetBySerial(companyID, serialNumber string) (*entity.InventoryUnit, error)
	ListByBatch(batchID string) ([]*entity.InventoryUnit, error)
}
