package pos

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger-api/internal/application/accounting"
	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
)

const (
	testCompanyID = "co-000000001234"
	testUserID    = "user-1"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// newSaleFixture arma el estado base: un producto simple con un lote de 10 y
// un producto serializado con un lote de 5.
func newSaleFixture() (*fakeState, *SaleUseCase) {
	state := newFakeState()
	state.company = &entity.Company{ID: testCompanyID, Name: "Tienda Central"}
	state.products["prod-1"] = &entity.Product{
		ID: "prod-1", CompanyID: testCompanyID, SKU: "SKU-1", Name: "Café molido 500g",
	}
	state.products["prod-ser"] = &entity.Product{
		ID: "prod-ser", CompanyID: testCompanyID, SKU: "SKU-S", Name: "Teléfono X1", IsSerialized: true,
	}
	state.batches["batch-1"] = &entity.Batch{
		ID: "batch-1", RecordID: "rec-1", Quantity: dec("10"),
		PurchasePrice: dec("8.00"), SellingPrice: dec("12.50"),
	}
	state.batches["batch-ser"] = &entity.Batch{
		ID: "batch-ser", RecordID: "rec-2", Quantity: dec("5"),
		PurchasePrice: dec("300"), SellingPrice: dec("450"),
	}

	uc := NewSaleUseCase(
		&fakeTxRunner{state: state},
		&fakeProductRepo{state: state},
		&fakeCompanyRepo{state: state},
		accounting.NewPoster(),
		nil, // sin recibos en tests
		nil, // audit no-op
		nil, // cache no-op
		nil, // logger opcional
		DiscountCreditMirror,
	)
	return state, uc
}

func cashSaleRequest(qty, unitPrice string) dto.SaleRequest {
	total := dec(qty).Mul(dec(unitPrice))
	return dto.SaleRequest{
		Items: []dto.SaleLineRequest{
			{ProductID: "prod-1", BatchID: "batch-1", Quantity: dec(qty), UnitPrice: dec(unitPrice)},
		},
		TotalPayable:  total,
		PaidAmount:    total,
		PaymentMethod: entity.PaymentCash,
	}
}

func TestExecuteSale_CashSale(t *testing.T) {
	state, uc := newSaleFixture()

	result, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, cashSaleRequest("3", "12.50"))
	require.NoError(t, err)
	require.NotNil(t, result)

	// Inventario descontado.
	assert.True(t, state.batches["batch-1"].Quantity.Equal(dec("7")))

	// Venta persistida con consecutivo.
	sale := state.sales[result.Sale.ID]
	require.NotNil(t, sale)
	assert.True(t, strings.HasPrefix(sale.TransactionNumber, "POS-"))
	assert.True(t, sale.Subtotal.Equal(dec("37.50")))
	assert.True(t, sale.ChangeGiven.IsZero())

	// Exactamente un par contable: débito Cash/Bank, crédito Sales Revenue,
	// mismo grupo.
	require.Len(t, state.entries, 2)
	debit, credit := state.entries[0], state.entries[1]
	assert.Equal(t, ledger.Debit, debit.EntryType)
	assert.Equal(t, ledger.CashBank, debit.Account)
	assert.Equal(t, ledger.Credit, credit.EntryType)
	assert.Equal(t, ledger.SalesRevenue, credit.Account)
	assert.Equal(t, debit.EntryGroupID, credit.EntryGroupID)
	assert.True(t, debit.Amount.Equal(credit.Amount))

	// Pago completo registrado.
	require.Len(t, state.payments, 1)
	assert.Equal(t, entity.PaymentCompleted, state.payments[0].Status)
	assert.True(t, state.payments[0].AmountPaid.Equal(dec("37.50")))
}

func TestExecuteSale_CreditSaleWithDiscountAndTax(t *testing.T) {
	state, uc := newSaleFixture()

	// Subtotal 125, descuento 5, impuesto 19 => total 139; abono parcial 39.
	in := dto.SaleRequest{
		Items: []dto.SaleLineRequest{
			{ProductID: "prod-1", BatchID: "batch-1", Quantity: dec("10"), UnitPrice: dec("12.50")},
		},
		DiscountAmount: dec("5"),
		TaxAmount:      dec("19"),
		TotalPayable:   dec("139"),
		PaidAmount:     dec("39"),
		PaymentMethod:  entity.PaymentBankTransfer,
		LinkedPartyID:  "party-1",
	}
	result, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)

	// Account aprovisionado perezosamente y enganchado a la venta.
	acc := state.accounts["party-1|"+testCompanyID]
	require.NotNil(t, acc)
	assert.Equal(t, entity.AccountActive, acc.Status)
	assert.Equal(t, acc.ID, result.Sale.AccountID)

	// Cuatro hechos = ocho asientos: ingreso, impuesto, descuento, abono.
	require.Len(t, state.entries, 8)

	// El libro queda globalmente balanceado.
	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range state.entries {
		switch e.EntryType {
		case ledger.Debit:
			debits = debits.Add(e.Amount)
		case ledger.Credit:
			credits = credits.Add(e.Amount)
		}
	}
	assert.True(t, debits.Equal(credits), "débitos %s != créditos %s", debits, credits)

	// Venta a crédito: el ingreso debita cartera, y el abono la baja.
	assert.Equal(t, ledger.AccountsReceivable, state.entries[0].Account)
	received := state.entries[6]
	assert.Equal(t, ledger.CashBank, received.Account)
	assert.True(t, received.Amount.Equal(dec("39")))

	// Saldo derivado del tercero: debe 125+19 y abonó 39.
	postings := make([]ledger.Posting, 0, len(state.entries))
	for _, e := range state.entries {
		postings = append(postings, ledger.Posting{Account: e.Account, Side: e.EntryType, Amount: e.Amount})
	}
	balance := ledger.DeriveBalance(postings)
	assert.True(t, balance.AmountDue.Equal(dec("144")))
	assert.True(t, balance.DiscountGiven.Equal(dec("5")))
	assert.True(t, balance.TaxCharged.Equal(dec("19")))
	assert.True(t, balance.Balance.Equal(dec("105")), "saldo %s", balance.Balance)

	// Pago parcial queda Pending.
	require.Len(t, state.payments, 1)
	assert.Equal(t, entity.PaymentPending, state.payments[0].Status)
}

func TestExecuteSale_InsufficientStockRollsBackEverything(t *testing.T) {
	state, uc := newSaleFixture()

	// La primera línea alcanza; la segunda pide más de lo que hay en el lote.
	in := dto.SaleRequest{
		Items: []dto.SaleLineRequest{
			{ProductID: "prod-1", BatchID: "batch-1", Quantity: dec("4"), UnitPrice: dec("10")},
			{ProductID: "prod-1", BatchID: "batch-1", Quantity: dec("20"), UnitPrice: dec("10")},
		},
		TotalPayable:  dec("240"),
		PaidAmount:    dec("240"),
		PaymentMethod: entity.PaymentCash,
	}
	_, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, in)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "batch-1", stockErr.BatchID)

	// Nada sobrevivió: ni el descuento de la primera línea, ni venta, ni
	// asientos, ni pago.
	assert.True(t, state.batches["batch-1"].Quantity.Equal(dec("10")))
	assert.Empty(t, state.sales)
	assert.Empty(t, state.entries)
	assert.Empty(t, state.payments)
}

func TestExecuteSale_SequentialSalesDrainTheBatch(t *testing.T) {
	state, uc := newSaleFixture()
	state.batches["batch-1"].Quantity = dec("1")

	_, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, cashSaleRequest("1", "12.50"))
	require.NoError(t, err)

	// La segunda venta sobre el mismo lote agotado debe fallar limpia.
	_, err = uc.ExecuteSale(context.Background(), testCompanyID, testUserID, cashSaleRequest("1", "12.50"))
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.IsZero())
	assert.Len(t, state.sales, 1)
	assert.Len(t, state.entries, 2)
}

func TestExecuteSale_TotalsMismatch(t *testing.T) {
	state, uc := newSaleFixture()

	in := cashSaleRequest("3", "12.50")
	in.TotalPayable = dec("40") // el correcto es 37.50
	in.PaidAmount = dec("40")

	_, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, in)
	var totalsErr *domain.InvalidTotalsError
	require.ErrorAs(t, err, &totalsErr)
	assert.True(t, totalsErr.Expected.Equal(dec("37.50")))
	assert.True(t, totalsErr.Given.Equal(dec("40")))

	// Se rechaza antes de tocar nada.
	assert.True(t, state.batches["batch-1"].Quantity.Equal(dec("10")))
	assert.Empty(t, state.sales)
}

func TestExecuteSale_SerializedCreatesSoldUnits(t *testing.T) {
	state, uc := newSaleFixture()

	in := dto.SaleRequest{
		Items: []dto.SaleLineRequest{
			{
				ProductID: "prod-ser", BatchID: "batch-ser",
				Quantity: dec("2"), UnitPrice: dec("450"),
				SerialDetails: []string{"SN-001", "SN-002"},
			},
		},
		TotalPayable:  dec("900"),
		PaidAmount:    dec("900"),
		PaymentMethod: entity.PaymentCreditCard,
	}
	_, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)

	assert.True(t, state.batches["batch-ser"].Quantity.Equal(dec("3")))
	for _, serial := range []string{"SN-001", "SN-002"} {
		unit := state.units[testCompanyID+"|"+serial]
		require.NotNil(t, unit, "unidad %s", serial)
		assert.Equal(t, entity.UnitSold, unit.Status)
		assert.Equal(t, "batch-ser", unit.BatchID)
		require.NotNil(t, unit.SoldOn)
	}
}

func TestExecuteSale_DuplicateSerialInRequest(t *testing.T) {
	_, uc := newSaleFixture()

	in := dto.SaleRequest{
		Items: []dto.SaleLineRequest{
			{
				ProductID: "prod-ser", BatchID: "batch-ser",
				Quantity: dec("2"), UnitPrice: dec("450"),
				SerialDetails: []string{"SN-001", "SN-001"},
			},
		},
		TotalPayable:  dec("900"),
		PaidAmount:    dec("900"),
		PaymentMethod: entity.PaymentCash,
	}
	_, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, in)
	var dupErr *domain.DuplicateSerialError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "SN-001", dupErr.SerialNumber)
}

func TestExecuteSale_SerialCountMustMatchQuantity(t *testing.T) {
	_, uc := newSaleFixture()

	in := dto.SaleRequest{
		Items: []dto.SaleLineRequest{
			{
				ProductID: "prod-ser", BatchID: "batch-ser",
				Quantity: dec("2"), UnitPrice: dec("450"),
				SerialDetails: []string{"SN-001"},
			},
		},
		TotalPayable:  dec("900"),
		PaidAmount:    dec("900"),
		PaymentMethod: entity.PaymentCash,
	}
	_, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExecuteSale_ProductFromAnotherCompany(t *testing.T) {
	state, uc := newSaleFixture()
	state.products["prod-1"].CompanyID = "otra-empresa"

	_, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, cashSaleRequest("1", "12.50"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestExecuteSale_Overpayment(t *testing.T) {
	state, uc := newSaleFixture()

	in := cashSaleRequest("2", "12.50")
	in.PaidAmount = dec("30")

	result, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)
	assert.True(t, result.Sale.ChangeGiven.Equal(dec("5")))

	// Sobra de efectivo: el asiento sigue siendo por el subtotal, no por lo
	// entregado.
	require.Len(t, state.entries, 2)
	assert.True(t, state.entries[0].Amount.Equal(dec("25")))
}

func TestExecuteSale_AccountReusedOnSecondSale(t *testing.T) {
	state, uc := newSaleFixture()

	in := cashSaleRequest("1", "12.50")
	in.LinkedPartyID = "party-9"
	first, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)

	second, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)

	assert.Equal(t, first.Sale.AccountID, second.Sale.AccountID)
	assert.Len(t, state.accounts, 1)
}

func TestExecuteSale_PersistedSaleCarriesAccountID(t *testing.T) {
	state, uc := newSaleFixture()

	in := cashSaleRequest("1", "12.50")
	in.LinkedPartyID = "party-1"
	result, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)
	require.NotEmpty(t, result.Sale.AccountID)

	// El vínculo con el account debe quedar en la fila guardada, no solo en
	// la respuesta.
	persisted := state.sales[result.Sale.ID]
	require.NotNil(t, persisted)
	assert.Equal(t, result.Sale.AccountID, persisted.AccountID)
}

func TestExecuteSale_ConcurrentSalesOnlyOneWins(t *testing.T) {
	state, _ := newSaleFixture()
	var mu sync.Mutex
	uc := NewSaleUseCase(
		&lockedTxRunner{mu: &mu, inner: &fakeTxRunner{state: state}},
		&lockedProductRepo{fakeProductRepo: &fakeProductRepo{state: state}, mu: &mu},
		&fakeCompanyRepo{state: state},
		accounting.NewPoster(),
		nil,
		nil,
		nil,
		nil,
		DiscountCreditMirror,
	)

	// Dos ventas de 6 contra un lote de 10: solo una cabe.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.ExecuteSale(context.Background(), testCompanyID, testUserID, cashSaleRequest("6", "12.50"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var failed int
	for err := range errs {
		if err == nil {
			continue
		}
		var stockErr *domain.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		failed++
	}
	assert.Equal(t, 1, failed)
	assert.True(t, state.batches["batch-1"].Quantity.Equal(dec("4")))
	assert.Len(t, state.sales, 1)
	assert.Len(t, state.payments, 1)
}
