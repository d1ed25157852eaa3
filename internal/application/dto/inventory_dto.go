package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchRequest lote a registrar en inventario. SerialNumbers solo aplica a
// productos serializados: un serial por unidad del lote.
type BatchRequest struct {
	Barcode       string          `json:"barcode"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	SerialNumbers []string        `json:"serial_numbers,omitempty"`
}

// CreateInventoryRequest body para POST /api/inventory.
type CreateInventoryRequest struct {
	ProductID string         `json:"product_id"`
	VendorID  string         `json:"vendor_id,omitempty"`
	Barcode   string         `json:"barcode"`
	Batches   []BatchRequest `json:"batches"`
}

// BatchResponse lote en respuestas.
type BatchResponse struct {
	ID            string          `json:"id"`
	Barcode       string          `json:"barcode"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	AddedAt       time.Time       `json:"added_at"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
}

// InventoryResponse stock agregado por producto; Batches solo si se pidió el
// detalle (FIFO, lotes en cero excluidos).
type InventoryResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	VendorID      string          `json:"vendor_id,omitempty"`
	Barcode       string          `json:"barcode"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	Batches       []BatchResponse `json:"batches,omitempty"`
}
