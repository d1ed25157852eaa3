package entity

import "time"

// Estados de una unidad física serializada.
const (
	UnitInStock  = "In Stock"
	UnitSold     = "Sold"
	UnitReturned = "Returned"
	UnitFaulty   = "Faulty"
)

// InventoryUnit es una unidad física de un producto serializado. El serial es
// único global cuando existe. Invariante: unidades In Stock de un lote <=
// cantidad del lote.
type InventoryUnit struct {
	ID           string
	CompanyID    string
	ProductID    string
	RecordID     string
	BatchID      string
	SerialNumber string
	Status       string // ver constantes Unit*
	AddedOn      time.Time
	SoldOn       *time.Time
	ReturnedOn   *time.Time
	CreatedBy    string
}
