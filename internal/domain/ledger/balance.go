package ledger

import "github.com/shopspring/decimal"

// Posting es la vista mínima de un asiento que necesita la derivación de
// saldos: cuenta, lado y monto.
type Posting struct {
	Account AccountKind
	Side    EntryType
	Amount  decimal.Decimal
}

// AccountBalance es el saldo derivado de un account por replay de asientos.
type AccountBalance struct {
	AmountDue      decimal.Decimal // débitos a Accounts Receivable
	AmountReceived decimal.Decimal // débitos a Cash/Bank + débitos a Vendor Payable
	DiscountGiven  decimal.Decimal // débitos a Discount Expense
	TaxCharged     decimal.Decimal // créditos a Tax Payable
	Balance        decimal.Decimal // AmountDue - AmountReceived
}

// DeriveBalance calcula el saldo plegando sobre los asientos (servicio de
// dominio puro, sin estado). Ningún contador materializado se considera fuente
// de verdad: el saldo siempre es reproducible desde el log de asientos.
func DeriveBalance(postings []Posting) AccountBalance {
	var b AccountBalance
	b.AmountDue = decimal.Zero
	b.AmountReceived = decimal.Zero
	b.DiscountGiven = decimal.Zero
	b.TaxCharged = decimal.Zero
	for _, p := range postings {
		switch {
		case p.Side == Debit && p.Account == AccountsReceivable:
			b.AmountDue = b.AmountDue.Add(p.Amount)
		case p.Side == Debit && (p.Account == CashBank || p.Account == VendorPayable):
			b.AmountReceived = b.AmountReceived.Add(p.Amount)
		case p.Side == Debit && p.Account == DiscountExpense:
			b.DiscountGiven = b.DiscountGiven.Add(p.Amount)
		case p.Side == Credit && p.Account == TaxPayable:
			b.TaxCharged = b.TaxCharged.Add(p.Amount)
		}
	}
	b.Balance = b.AmountDue.Sub(b.AmountReceived)
	return b
}
