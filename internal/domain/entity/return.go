package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de reembolso de una devolución.
const (
	RefundCash       = "Cash"
	RefundCreditNote = "Credit Note"
)

// ReturnTransaction es la devolución (parcial o total) de una venta POS.
// Solo se crea después de verificar que la venta original existe.
type ReturnTransaction struct {
	ID             string
	CompanyID      string
	OriginalSaleID string
	ReturnNumber   string // RTN-YYYYMMDD-<sufijo empresa>-NNNNNN
	CounterNumber  int64  // consecutivo por empresa
	Lines          []ReturnLine
	TotalRefund    decimal.Decimal
	RefundMethod   string // Cash, Credit Note
	Reason         string
	LinkedPartyID  string
	AccountID      string
	CreatedBy      string
	CreatedAt      time.Time
}

// ReturnLine es una línea devuelta; cantidad <= a la vendida en la línea
// original.
type ReturnLine struct {
	ID         string
	ReturnID   string
	ProductID  string
	BatchID    string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Serials    []string
}
