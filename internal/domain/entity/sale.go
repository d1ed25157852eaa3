package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados en el POS.
const (
	PaymentCash         = "Cash"
	PaymentCreditCard   = "Credit Card"
	PaymentBankTransfer = "Bank Transfer"
)

// SaleTransaction es una venta POS confirmada. Inmutable después del commit;
// una devolución la referencia por ID.
type SaleTransaction struct {
	ID                string
	CompanyID         string
	TransactionNumber string
	Date              time.Time
	Lines             []SaleLine
	Subtotal          decimal.Decimal
	DiscountAmount    decimal.Decimal
	TaxAmount         decimal.Decimal
	TotalPayable      decimal.Decimal
	PaidAmount        decimal.Decimal
	ChangeGiven       decimal.Decimal
	PaymentMethod     string
	PaymentReference  string
	LinkedPartyID     string // vacío = venta de mostrador sin tercero
	AccountID         string
	CreatedBy         string
	CreatedAt         time.Time
}

// SaleLine es una línea de venta: producto, lote y cantidad a precio unitario.
type SaleLine struct {
	ID         string
	SaleID     string
	ProductID  string
	BatchID    string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Serials    []string // solo productos serializados
}
