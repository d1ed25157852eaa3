package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
)

// Tipos de documento que originan un asiento.
const (
	RefPOSTransaction = "POS Transactions"
	RefReturns        = "Returns"
	RefPayments       = "Payments"
	RefInventory      = "Inventory"
)

// LedgerEntry es un hecho contable inmutable. Las correcciones se registran
// como asientos de reverso, nunca como ediciones. Cada EntryGroupID agrupa
// exactamente dos filas (débito + crédito) con el mismo monto.
type LedgerEntry struct {
	ID              string
	TransactionID   string // documento de negocio que originó el asiento
	EntryGroupID    string // par débito/crédito generado por el poster
	CompanyID       string
	Account         ledger.AccountKind
	EntryType       ledger.EntryType
	Amount          decimal.Decimal // siempre >= 0
	TransactionType ledger.TransactionType
	ReferenceType   string // ver constantes Ref*
	Description     string
	LinkedPartyID   string // tercero asociado, vacío para ventas de mostrador
	AccountID       string // account (party, company) al que se atribuye
	Date            time.Time
	CreatedBy       string
	CreatedAt       time.Time
}
