package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// Venta a crédito de 100 con abono de 40: el saldo pendiente es 60.
func TestDeriveBalance_VentaCreditoConAbono(t *testing.T) {
	postings := []ledger.Posting{
		{Account: ledger.AccountsReceivable, Side: ledger.Debit, Amount: d(100)},
		{Account: ledger.SalesRevenue, Side: ledger.Credit, Amount: d(100)},
		{Account: ledger.CashBank, Side: ledger.Debit, Amount: d(40)},
		{Account: ledger.AccountsReceivable, Side: ledger.Credit, Amount: d(40)},
	}

	b := ledger.DeriveBalance(postings)

	assert.True(t, b.AmountDue.Equal(d(100)), "amountDue debe sumar débitos a AR")
	assert.True(t, b.AmountReceived.Equal(d(40)), "amountReceived debe sumar débitos a Cash/Bank")
	assert.True(t, b.Balance.Equal(d(60)), "balance = amountDue - amountReceived")
}

func TestDeriveBalance_DescuentoEImpuesto(t *testing.T) {
	postings := []ledger.Posting{
		{Account: ledger.CashBank, Side: ledger.Debit, Amount: d(95)},
		{Account: ledger.SalesRevenue, Side: ledger.Credit, Amount: d(95)},
		{Account: ledger.CashBank, Side: ledger.Debit, Amount: d(19)},
		{Account: ledger.TaxPayable, Side: ledger.Credit, Amount: d(19)},
		{Account: ledger.DiscountExpense, Side: ledger.Debit, Amount: d(5)},
		{Account: ledger.SalesRevenue, Side: ledger.Credit, Amount: d(5)},
	}

	b := ledger.DeriveBalance(postings)

	assert.True(t, b.DiscountGiven.Equal(d(5)))
	assert.True(t, b.TaxCharged.Equal(d(19)))
	assert.True(t, b.AmountDue.IsZero(), "venta de contado no genera cartera")
}

// La derivación es una función pura: aplicarla dos veces sobre el mismo set
// produce exactamente el mismo resultado.
func TestDeriveBalance_Idempotente(t *testing.T) {
	postings := []ledger.Posting{
		{Account: ledger.AccountsReceivable, Side: ledger.Debit, Amount: d(32)},
		{Account: ledger.SalesRevenue, Side: ledger.Credit, Amount: d(32)},
		{Account: ledger.CashBank, Side: ledger.Debit, Amount: d(10)},
		{Account: ledger.AccountsReceivable, Side: ledger.Credit, Amount: d(10)},
	}

	first := ledger.DeriveBalance(postings)
	second := ledger.DeriveBalance(postings)

	assert.Equal(t, first, second)
}

func TestDeriveBalance_SinAsientos(t *testing.T) {
	b := ledger.DeriveBalance(nil)
	assert.True(t, b.Balance.IsZero())
	assert.True(t, b.AmountDue.IsZero())
}

func TestAccountKind_Valid(t *testing.T) {
	assert.True(t, ledger.CashBank.Valid())
	assert.True(t, ledger.SalesReturn.Valid())
	assert.False(t, ledger.AccountKind("Caja Menor").Valid())
	assert.False(t, ledger.AccountKind("").Valid())
}
