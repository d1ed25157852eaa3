package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryResponse asiento en respuestas.
type LedgerEntryResponse struct {
	ID              string          `json:"id"`
	TransactionID   string          `json:"transaction_id"`
	EntryGroupID    string          `json:"entry_group_id"`
	Account         string          `json:"account"`
	EntryType       string          `json:"entry_type"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transaction_type"`
	Description     string          `json:"description,omitempty"`
	LinkedPartyID   string          `json:"linked_entity_id,omitempty"`
	AccountID       string          `json:"account_id,omitempty"`
	Date            time.Time       `json:"date"`
}

// BalanceResponse saldo derivado de un tercero.
type BalanceResponse struct {
	AmountDue      decimal.Decimal `json:"amount_due"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	DiscountGiven  decimal.Decimal `json:"discount_given"`
	TaxCharged     decimal.Decimal `json:"tax_charged"`
	Balance        decimal.Decimal `json:"balance"`
}

// StatementResponse estado de cuenta: asientos + saldo derivado.
type StatementResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
	Balance BalanceResponse       `json:"balance"`
}

// CreateExpenseRequest body para POST /api/expenses.
type CreateExpenseRequest struct {
	Description   string          `json:"description"`
	DebitAccount  string          `json:"debit_account,omitempty"`  // por defecto General Expense
	CreditAccount string          `json:"credit_account,omitempty"` // por defecto Cash/Bank
	Amount        decimal.Decimal `json:"amount"`
	LinkedPartyID string          `json:"linked_entity_id,omitempty"`
}

// ExpenseListResponse gastos con el total de débitos del rango.
type ExpenseListResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
	Total   decimal.Decimal       `json:"total"`
}
