// Package ledger define el plan de cuentas cerrado y la derivación de saldos.
// Las cuentas dejan de ser texto libre: un AccountKind inválido no compila ni
// pasa la validación del poster.
package ledger

// AccountKind identifica una cuenta del plan contable fijo del POS.
type AccountKind string

// Plan de cuentas usado por el poster de partida doble.
const (
	CashBank           AccountKind = "Cash/Bank"
	SalesRevenue       AccountKind = "Sales Revenue"
	AccountsReceivable AccountKind = "Accounts Receivable"
	AccountsPayable    AccountKind = "Accounts Payable"
	VendorPayable      AccountKind = "Vendor Payable"
	TaxPayable         AccountKind = "Tax Payable"
	DiscountExpense    AccountKind = "Discount Expense"
	SalesReturn        AccountKind = "Sales Return"
	ExpenseGeneral     AccountKind = "General Expense"
)

// Valid reporta si la cuenta pertenece al plan contable.
func (k AccountKind) Valid() bool {
	switch k {
	case CashBank, SalesRevenue, AccountsReceivable, AccountsPayable,
		VendorPayable, TaxPayable, DiscountExpense, SalesReturn, ExpenseGeneral:
		return true
	}
	return false
}

// EntryType lado del asiento: débito o crédito.
type EntryType string

const (
	Debit  EntryType = "debit"
	Credit EntryType = "credit"
)

// TransactionType clasifica el hecho económico que origina el asiento.
type TransactionType string

const (
	TxSale     TransactionType = "Sale"
	TxPurchase TransactionType = "Purchase"
	TxReturn   TransactionType = "Return"
	TxPayment  TransactionType = "Payment"
	TxDiscount TransactionType = "Discount"
	TxTax      TransactionType = "Tax"
	TxExpense  TransactionType = "Expense"
	TxRefund   TransactionType = "Refund"
)
