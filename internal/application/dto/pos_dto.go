package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea del carrito: producto, lote, cantidad y precio.
// SerialDetails solo aplica a productos serializados (un serial por unidad).
type SaleLineRequest struct {
	ProductID     string          `json:"product_id"`
	BatchID       string          `json:"batch_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	SerialDetails []string        `json:"serial_details,omitempty"`
}

// SaleRequest body para POST /api/pos/sales. Los totales los calcula el
// caller (front POS) y el backend los verifica contra las líneas.
type SaleRequest struct {
	Items            []SaleLineRequest `json:"items"`
	DiscountAmount   decimal.Decimal   `json:"discount_amount"`
	TaxAmount        decimal.Decimal   `json:"tax_amount"`
	TotalPayable     decimal.Decimal   `json:"total_payable"`
	PaidAmount       decimal.Decimal   `json:"paid_amount"`
	PaymentMethod    string            `json:"payment_method"`
	PaymentReference string            `json:"payment_reference,omitempty"`
	LinkedPartyID    string            `json:"linked_entity_id,omitempty"`
}

// SaleLineResponse línea confirmada de la venta.
type SaleLineResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	BatchID    string          `json:"batch_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Serials    []string        `json:"serials,omitempty"`
}

// SaleResponse venta confirmada.
type SaleResponse struct {
	ID                string             `json:"id"`
	CompanyID         string             `json:"company_id"`
	TransactionNumber string             `json:"transaction_number"`
	Date              time.Time          `json:"date"`
	Items             []SaleLineResponse `json:"items"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	DiscountAmount    decimal.Decimal    `json:"discount_amount"`
	TaxAmount         decimal.Decimal    `json:"tax_amount"`
	TotalPayable      decimal.Decimal    `json:"total_payable"`
	PaidAmount        decimal.Decimal    `json:"paid_amount"`
	ChangeGiven       decimal.Decimal    `json:"change_given"`
	PaymentMethod     string             `json:"payment_method"`
	LinkedPartyID     string             `json:"linked_entity_id,omitempty"`
	AccountID         string             `json:"account_id,omitempty"`
}

// SaleResult respuesta de ExecuteSale: la venta más la ruta del recibo si la
// generación post-commit tuvo éxito (vacía si falló; la venta ya quedó firme).
type SaleResult struct {
	Sale        SaleResponse `json:"sale"`
	ReceiptPath string       `json:"receipt_path,omitempty"`
}

// ReturnLineRequest línea devuelta; cantidad <= a la línea original.
type ReturnLineRequest struct {
	ProductID     string          `json:"product_id"`
	BatchID       string          `json:"batch_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	SerialDetails []string        `json:"serial_details,omitempty"`
}

// ReturnRequest body para POST /api/pos/returns.
type ReturnRequest struct {
	OriginalTransactionID string              `json:"original_transaction_id"`
	Items                 []ReturnLineRequest `json:"items"`
	TotalRefund           decimal.Decimal     `json:"total_refund"`
	RefundMethod          string              `json:"refund_method"`
	Reason                string              `json:"reason,omitempty"`
}

// ReturnResponse devolución confirmada.
type ReturnResponse struct {
	ID             string             `json:"id"`
	CompanyID      string             `json:"company_id"`
	OriginalSaleID string             `json:"original_transaction_id"`
	ReturnNumber   string             `json:"return_number"`
	Items          []SaleLineResponse `json:"items"`
	TotalRefund    decimal.Decimal    `json:"total_refund"`
	RefundMethod   string             `json:"refund_method"`
	Reason         string             `json:"reason,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ReturnResult respuesta de ExecuteReturn.
type ReturnResult struct {
	Return      ReturnResponse `json:"return"`
	ReceiptPath string         `json:"receipt_path,omitempty"`
}
