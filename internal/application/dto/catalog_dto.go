package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	UnitPurchasePrice decimal.Decimal `json:"unit_purchase_price"`
	IsSerialized      bool            `json:"is_serialized"`
}

// ProductResponse producto en respuestas.
type ProductResponse struct {
	ID                string          `json:"id"`
	CompanyID         string          `json:"company_id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	UnitPurchasePrice decimal.Decimal `json:"unit_purchase_price"`
	IsSerialized      bool            `json:"is_serialized"`
	CreatedAt         time.Time       `json:"created_at"`
}

// CreatePartyRequest body para POST /api/entities (clientes/proveedores).
type CreatePartyRequest struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"` // Customer, Vendor, Both
	TaxID string `json:"tax_id,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// PartyResponse tercero en respuestas.
type PartyResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	TaxID     string `json:"tax_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// AccountResponse account del directorio.
type AccountResponse struct {
	ID        string    `json:"id"`
	PartyID   string    `json:"entity_id"`
	CompanyID string    `json:"company_id"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
