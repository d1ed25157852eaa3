package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord agrupa el stock de un producto por (empresa, producto,
// proveedor). Invariante: TotalQuantity == suma de Batches[i].Quantity y
// ninguna cantidad baja de cero; ambos los garantiza la capa de persistencia
// con updates condicionales.
type InventoryRecord struct {
	ID            string
	CompanyID     string
	ProductID     string
	VendorID      string // opcional: proveedor del que proviene el stock
	Barcode       string
	TotalQuantity decimal.Decimal
	Batches       []Batch
	IsDeleted     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Batch es un lote fechado de un producto, con su propia cantidad y precios.
// Los lotes se agregan y jamás se eliminan, para conservar la pista de
// auditoría aun cuando la cantidad llega a cero.
type Batch struct {
	ID            string
	RecordID      string
	Barcode       string
	Quantity      decimal.Decimal
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	AddedAt       time.Time
	ExpiresAt     *time.Time // nil = sin vencimiento
}
