package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo (por empresa).
// Los campos descriptivos pueden cambiar; el precio de compra unitario y el
// flag de serialización quedan congelados una vez que el producto tiene
// asientos contables asociados.
type Product struct {
	ID                string
	CompanyID         string
	SKU               string // código único por empresa
	Name              string
	Description       string
	UnitPurchasePrice decimal.Decimal
	IsSerialized      bool // true = se controla por unidad física (serial)
	Attributes        json.RawMessage
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
