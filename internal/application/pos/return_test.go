package pos

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger-api/internal/application/accounting"
	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
)

// newReturnFixture arma el estado con una venta previa ya confirmada: 3
// unidades simples de batch-1 y 2 serializadas de batch-ser.
func newReturnFixture(t *testing.T) (*fakeState, *ReturnUseCase, *dto.SaleResult) {
	t.Helper()
	state, saleUC := newSaleFixture()

	in := dto.SaleRequest{
		Items: []dto.SaleLineRequest{
			{ProductID: "prod-1", BatchID: "batch-1", Quantity: dec("3"), UnitPrice: dec("12.50")},
			{
				ProductID: "prod-ser", BatchID: "batch-ser",
				Quantity: dec("2"), UnitPrice: dec("450"),
				SerialDetails: []string{"SN-001", "SN-002"},
			},
		},
		TotalPayable:  dec("937.50"),
		PaidAmount:    dec("937.50"),
		PaymentMethod: entity.PaymentCash,
		LinkedPartyID: "party-1",
	}
	sale, err := saleUC.ExecuteSale(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)

	uc := NewReturnUseCase(
		&fakeTxRunner{state: state},
		&fakeProductRepo{state: state},
		&fakeCompanyRepo{state: state},
		accounting.NewPoster(),
		nil,
		nil,
		nil,
		nil,
	)
	return state, uc, sale
}

func TestExecuteReturn_CashRefund(t *testing.T) {
	state, uc, sale := newReturnFixture(t)
	entriesBefore := len(state.entries)

	in := dto.ReturnRequest{
		OriginalTransactionID: sale.Sale.ID,
		Items: []dto.ReturnLineRequest{
			{ProductID: "prod-1", BatchID: "batch-1", Quantity: dec("2"), UnitPrice: dec("12.50")},
		},
		TotalRefund:  dec("25"),
		RefundMethod: entity.RefundCash,
		Reason:       "producto vencido",
	}
	result, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)

	// Inventario repuesto: 10 - 3 vendidas + 2 devueltas.
	assert.True(t, state.batches["batch-1"].Quantity.Equal(dec("9")))

	// Número de devolución con el sufijo de la empresa y consecutivo.
	ret := state.returns[result.Return.ID]
	require.NotNil(t, ret)
	assert.True(t, strings.HasPrefix(ret.ReturnNumber, "RTN-"))
	assert.True(t, strings.HasSuffix(ret.ReturnNumber, "-1234-000001"))
	assert.Equal(t, "party-1", ret.LinkedPartyID)
	assert.Equal(t, state.sales[sale.Sale.ID].AccountID, ret.AccountID)
	assert.NotEmpty(t, ret.AccountID)

	// Reversión contable: débito Sales Return, crédito Cash/Bank, mismo grupo.
	require.Len(t, state.entries, entriesBefore+2)
	debit, credit := state.entries[entriesBefore], state.entries[entriesBefore+1]
	assert.Equal(t, ledger.SalesReturn, debit.Account)
	assert.Equal(t, ledger.Debit, debit.EntryType)
	assert.Equal(t, ledger.CashBank, credit.Account)
	assert.Equal(t, ledger.Credit, credit.EntryType)
	assert.Equal(t, debit.EntryGroupID, credit.EntryGroupID)
	assert.Equal(t, ledger.TxReturn, debit.TransactionType)

	// Reembolso: pago negativo en estado Refunded, enganchado al par.
	require.Len(t, state.payments, 2)
	refund := state.payments[1]
	assert.Equal(t, entity.PaymentRefunded, refund.Status)
	assert.True(t, refund.AmountPaid.Equal(dec("-25")))
	assert.Equal(t, debit.EntryGroupID, refund.EntryGroupID)

	// La venta original no se tocó.
	assert.True(t, state.sales[sale.Sale.ID].TotalPayable.Equal(dec("937.50")))
}

func TestExecuteReturn_CreditNote(t *testing.T) {
	state, uc, sale := newReturnFixture(t)
	entriesBefore := len(state.entries)
	paymentsBefore := len(state.payments)

	in := dto.ReturnRequest{
		OriginalTransactionID: sale.Sale.ID,
		Items: []dto.ReturnLineRequest{
			{ProductID: "prod-1", BatchID: "batch-1", Quantity: dec("1"), UnitPrice: dec("12.50")},
		},
		TotalRefund:  dec("12.50"),
		RefundMethod: entity.RefundCreditNote,
	}
	_, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)

	// Nota crédito: el contrapartida es un pasivo, y no sale efectivo.
	require.Len(t, state.entries, entriesBefore+2)
	credit := state.entries[entriesBefore+1]
	assert.Equal(t, ledger.AccountsPayable, credit.Account)
	assert.Len(t, state.payments, paymentsBefore)
}

func TestExecuteReturn_SerializedUnitBackInStock(t *testing.T) {
	state, uc, sale := newReturnFixture(t)

	in := dto.ReturnRequest{
		OriginalTransactionID: sale.Sale.ID,
		Items: []dto.ReturnLineRequest{
			{
				ProductID: "prod-ser", BatchID: "batch-ser",
				Quantity: dec("1"), UnitPrice: dec("450"),
				SerialDetails: []string{"SN-001"},
			},
		},
		TotalRefund:  dec("450"),
		RefundMethod: entity.RefundCash,
	}
	_, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)

	unit := state.units[testCompanyID+"|SN-001"]
	require.NotNil(t, unit)
	assert.Equal(t, entity.UnitInStock, unit.Status)
	require.NotNil(t, unit.ReturnedOn)

	// La otra unidad sigue vendida.
	assert.Equal(t, entity.UnitSold, state.units[testCompanyID+"|SN-002"].Status)
	assert.True(t, state.batches["batch-ser"].Quantity.Equal(dec("4")))
}

func TestExecuteReturn_OriginalNotFound(t *testing.T) {
	_, uc, _ := newReturnFixture(t)

	in := dto.ReturnRequest{
		OriginalTransactionID: "no-existe",
		Items: []dto.ReturnLineRequest{
			{ProductID: "prod-1", BatchID: "batch-1", Quantity: dec("1"), UnitPrice: dec("12.50")},
		},
		TotalRefund:  dec("12.50"),
		RefundMethod: entity.RefundCash,
	}
	_, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, in)
	var notFound *domain.OriginalTransactionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "no-existe", notFound.TransactionID)
}

func TestExecuteReturn_SerialNotSoldRollsBack(t *testing.T) {
	state, uc, sale := newReturnFixture(t)
	stockBefore := state.batches["batch-ser"].Quantity

	// SN-999 nunca se vendió: la devolución completa debe revertirse, incluida
	// la reposición de inventario ya aplicada.
	in := dto.ReturnRequest{
		OriginalTransactionID: sale.Sale.ID,
		Items: []dto.ReturnLineRequest{
			{
				ProductID: "prod-ser", BatchID: "batch-ser",
				Quantity: dec("1"), UnitPrice: dec("450"),
				SerialDetails: []string{"SN-999"},
			},
		},
		TotalRefund:  dec("450"),
		RefundMethod: entity.RefundCash,
	}
	_, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, in)
	var stateErr *domain.InvalidReturnStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "SN-999", stateErr.SerialNumber)
	assert.True(t, state.batches["batch-ser"].Quantity.Equal(stockBefore))
	assert.Empty(t, state.returns)
}

func TestExecuteReturn_AlreadyReturnedSerial(t *testing.T) {
	state, uc, sale := newReturnFixture(t)

	in := dto.ReturnRequest{
		OriginalTransactionID: sale.Sale.ID,
		Items: []dto.ReturnLineRequest{
			{
				ProductID: "prod-ser", BatchID: "batch-ser",
				Quantity: dec("1"), UnitPrice: dec("450"),
				SerialDetails: []string{"SN-001"},
			},
		},
		TotalRefund:  dec("450"),
		RefundMethod: entity.RefundCash,
	}
	_, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)
	returnsAfterFirst := len(state.returns)

	// El mismo serial por segunda vez: ya está In Stock, no en Sold.
	_, err = uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, in)
	var stateErr *domain.InvalidReturnStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Len(t, state.returns, returnsAfterFirst)
}

func TestExecuteReturn_CannotExceedSoldQuantity(t *testing.T) {
	_, uc, sale := newReturnFixture(t)

	in := dto.ReturnRequest{
		OriginalTransactionID: sale.Sale.ID,
		Items: []dto.ReturnLineRequest{
			{ProductID: "prod-1", BatchID: "batch-1", Quantity: dec("5"), UnitPrice: dec("12.50")},
		},
		TotalRefund:  dec("62.50"),
		RefundMethod: entity.RefundCash,
	}
	_, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExecuteReturn_CumulativeReturnsCapped(t *testing.T) {
	_, uc, sale := newReturnFixture(t)

	first := dto.ReturnRequest{
		OriginalTransactionID: sale.Sale.ID,
		Items: []dto.ReturnLineRequest{
			{ProductID: "prod-1", BatchID: "batch-1", Quantity: dec("2"), UnitPrice: dec("12.50")},
		},
		TotalRefund:  dec("25"),
		RefundMethod: entity.RefundCash,
	}
	_, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, first)
	require.NoError(t, err)

	// Se vendieron 3 y ya se devolvieron 2: devolver otras 2 excede.
	second := first
	_, err = uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, second)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExecuteReturn_RefundMustMatchLines(t *testing.T) {
	_, uc, sale := newReturnFixture(t)

	in := dto.ReturnRequest{
		OriginalTransactionID: sale.Sale.ID,
		Items: []dto.ReturnLineRequest{
			{ProductID: "prod-1", BatchID: "batch-1", Quantity: dec("2"), UnitPrice: dec("12.50")},
		},
		TotalRefund:  dec("30"), // las líneas suman 25
		RefundMethod: entity.RefundCash,
	}
	_, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, in)
	var totalsErr *domain.InvalidTotalsError
	require.ErrorAs(t, err, &totalsErr)
	assert.True(t, totalsErr.Expected.Equal(dec("25")))
}

func TestExecuteReturn_ReturnNumbersAreSequential(t *testing.T) {
	state, uc, sale := newReturnFixture(t)

	base := dto.ReturnRequest{
		OriginalTransactionID: sale.Sale.ID,
		Items: []dto.ReturnLineRequest{
			{ProductID: "prod-1", BatchID: "batch-1", Quantity: dec("1"), UnitPrice: dec("12.50")},
		},
		TotalRefund:  dec("12.50"),
		RefundMethod: entity.RefundCash,
	}
	first, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, base)
	require.NoError(t, err)
	second, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, base)
	require.NoError(t, err)

	assert.EqualValues(t, 1, state.returns[first.Return.ID].CounterNumber)
	assert.EqualValues(t, 2, state.returns[second.Return.ID].CounterNumber)
	assert.NotEqual(t, first.Return.ReturnNumber, second.Return.ReturnNumber)
}

func TestExecuteReturn_SerialCountMustMatchQuantity(t *testing.T) {
	state, uc, sale := newReturnFixture(t)

	// Devolver 1 listando los dos seriales vendidos: repondría 1 al lote pero
	// revertiría 2 unidades físicas.
	in := dto.ReturnRequest{
		OriginalTransactionID: sale.Sale.ID,
		Items: []dto.ReturnLineRequest{
			{
				ProductID: "prod-ser", BatchID: "batch-ser",
				Quantity: dec("1"), UnitPrice: dec("450"),
				SerialDetails: []string{"SN-001", "SN-002"},
			},
		},
		TotalRefund:  dec("450"),
		RefundMethod: entity.RefundCash,
	}
	_, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Nada cambió: lote intacto y ambas unidades siguen vendidas.
	assert.True(t, state.batches["batch-ser"].Quantity.Equal(dec("3")))
	assert.Equal(t, entity.UnitSold, state.units[testCompanyID+"|SN-001"].Status)
	assert.Equal(t, entity.UnitSold, state.units[testCompanyID+"|SN-002"].Status)
}

func TestExecuteReturn_SerializedReturnRequiresSerials(t *testing.T) {
	state, uc, sale := newReturnFixture(t)

	// Sin seriales la devolución repondría cantidad dejando las unidades
	// en estado vendido.
	in := dto.ReturnRequest{
		OriginalTransactionID: sale.Sale.ID,
		Items: []dto.ReturnLineRequest{
			{ProductID: "prod-ser", BatchID: "batch-ser", Quantity: dec("1"), UnitPrice: dec("450")},
		},
		TotalRefund:  dec("450"),
		RefundMethod: entity.RefundCash,
	}
	_, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, state.batches["batch-ser"].Quantity.Equal(dec("3")))
}

func TestExecuteReturn_SerialsOnNonSerializedLine(t *testing.T) {
	_, uc, sale := newReturnFixture(t)

	in := dto.ReturnRequest{
		OriginalTransactionID: sale.Sale.ID,
		Items: []dto.ReturnLineRequest{
			{
				ProductID: "prod-1", BatchID: "batch-1",
				Quantity: dec("1"), UnitPrice: dec("12.50"),
				SerialDetails: []string{"SN-XXX"},
			},
		},
		TotalRefund:  dec("12.50"),
		RefundMethod: entity.RefundCash,
	}
	_, err := uc.ExecuteReturn(context.Background(), testCompanyID, testUserID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
