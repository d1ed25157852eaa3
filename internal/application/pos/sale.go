package pos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/application/accounting"
	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
	"github.com/jhoicas/pos-ledger-api/pkg/logger"
)

// DiscountCreditPolicy decide contra qué cuenta se acredita el descuento.
// El origen del sistema fue inconsistente entre revisiones, así que queda
// como política configurable en vez de supuesto fijo.
type DiscountCreditPolicy string

const (
	// DiscountCreditMirror acredita contra la misma cuenta usada como débito
	// del ingreso (Cash/Bank o Accounts Receivable). Variante por defecto.
	DiscountCreditMirror DiscountCreditPolicy = "revenue-debit"
	// DiscountCreditRevenue acredita siempre contra Sales Revenue.
	DiscountCreditRevenue DiscountCreditPolicy = "sales-revenue"
)

// Nombres de consecutivos por empresa.
const (
	counterSales   = "POSTransactionCounter"
	counterReturns = "POSReturnCounter"
)

// SaleUseCase orquesta la venta POS: validar stock, descontar lotes, persistir
// la venta, asentar partida doble, registrar el pago y pedir el recibo. Todo
// menos el recibo ocurre dentro de una sola transacción de BD.
type SaleUseCase struct {
	txRunner       TxRunner
	productRepo    repository.ProductRepository
	companyRepo    repository.CompanyRepository
	poster         *accounting.Poster
	receipts       ReceiptRenderer
	audit          AuditSink
	cache          accounting.BalanceCache
	log            *logger.Logger
	discountCredit DiscountCreditPolicy
}

// NewSaleUseCase construye el caso de uso. receipts y audit pueden ser nil
// (se degradan a no-op); cache nil desactiva la invalidación.
func NewSaleUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	companyRepo repository.CompanyRepository,
	poster *accounting.Poster,
	receipts ReceiptRenderer,
	audit AuditSink,
	cache accounting.BalanceCache,
	log *logger.Logger,
	discountCredit DiscountCreditPolicy,
) *SaleUseCase {
	if audit == nil {
		audit = NoopAuditSink{}
	}
	if cache == nil {
		cache = accounting.NoopBalanceCache{}
	}
	if discountCredit == "" {
		discountCredit = DiscountCreditMirror
	}
	return &SaleUseCase{
		txRunner:       txRunner,
		productRepo:    productRepo,
		companyRepo:    companyRepo,
		poster:         poster,
		receipts:       receipts,
		audit:          audit,
		cache:          cache,
		log:            log,
		discountCredit: discountCredit,
	}
}

// ExecuteSale procesa la venta completa. Cualquier error antes del commit
// revierte todas las escrituras; el recibo se genera después del commit y su
// fallo solo se loguea.
func (uc *SaleUseCase) ExecuteSale(ctx context.Context, companyID, userID string, in dto.SaleRequest) (*dto.SaleResult, error) {
	if companyID == "" || userID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	switch in.PaymentMethod {
	case entity.PaymentCash, entity.PaymentCreditCard, entity.PaymentBankTransfer:
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.PaidAmount.LessThan(decimal.Zero) || in.DiscountAmount.LessThan(decimal.Zero) || in.TaxAmount.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	// Validar productos y líneas (solo lectura, fuera de la tx). La cantidad
	// por lote se re-verifica al descontar, dentro de la tx, para cerrar la
	// carrera entre la validación y el commit.
	products := make(map[string]*entity.Product, len(in.Items))
	subtotal := decimal.Zero
	for i := range in.Items {
		item := &in.Items[i]
		if item.ProductID == "" || item.BatchID == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if item.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, ok := products[item.ProductID]
		if !ok {
			var err error
			product, err = uc.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			if product == nil {
				return nil, domain.ErrNotFound
			}
			if product.CompanyID != companyID {
				return nil, domain.ErrForbidden
			}
			products[item.ProductID] = product
		}
		subtotal = subtotal.Add(item.Quantity.Mul(item.UnitPrice))
	}

	// Los totales llegan del caller pero deben cuadrar, antes de tocar nada.
	expected := subtotal.Sub(in.DiscountAmount).Add(in.TaxAmount)
	if !expected.Equal(in.TotalPayable) {
		return nil, &domain.InvalidTotalsError{Expected: expected, Given: in.TotalPayable}
	}

	// Validación de serializados: cantidad entera, un serial por unidad y sin
	// repetidos dentro del request.
	seen := make(map[string]struct{})
	for i := range in.Items {
		item := &in.Items[i]
		if !products[item.ProductID].IsSerialized {
			if len(item.SerialDetails) > 0 {
				return nil, domain.ErrInvalidInput
			}
			continue
		}
		if !item.Quantity.Equal(item.Quantity.Truncate(0)) {
			return nil, domain.ErrInvalidInput
		}
		if int64(len(item.SerialDetails)) != item.Quantity.IntPart() {
			return nil, domain.ErrInvalidInput
		}
		for _, serial := range item.SerialDetails {
			if serial == "" {
				return nil, domain.ErrInvalidInput
			}
			if _, dup := seen[serial]; dup {
				return nil, &domain.DuplicateSerialError{SerialNumber: serial}
			}
			seen[serial] = struct{}{}
		}
	}

	now := time.Now()
	saleID := uuid.New().String()
	sale := &entity.SaleTransaction{
		ID:               saleID,
		CompanyID:        companyID,
		Date:             now,
		Subtotal:         subtotal,
		DiscountAmount:   in.DiscountAmount,
		TaxAmount:        in.TaxAmount,
		TotalPayable:     in.TotalPayable,
		PaidAmount:       in.PaidAmount,
		ChangeGiven:      changeGiven(in.PaidAmount, in.TotalPayable),
		PaymentMethod:    in.PaymentMethod,
		PaymentReference: in.PaymentReference,
		LinkedPartyID:    in.LinkedPartyID,
		CreatedBy:        userID,
		CreatedAt:        now,
	}

	err := uc.txRunner.RunPOS(ctx, func(repos TxRepos) error {
		// 1) Descontar inventario por línea (update condicional atómico;
		// si el lote no alcanza retorna InsufficientStockError y rollback).
		for _, item := range in.Items {
			if err := repos.Inventory.ReserveAndDecrement(companyID, item.ProductID, item.BatchID, item.Quantity); err != nil {
				return err
			}
		}

		// 2) Unidades serializadas: una fila Sold por unidad física.
		for _, item := range in.Items {
			if len(item.SerialDetails) == 0 {
				continue
			}
			batch, err := repos.Inventory.GetBatch(item.BatchID)
			if err != nil {
				return err
			}
			if batch == nil {
				return domain.ErrNotFound
			}
			soldOn := now
			for _, serial := range item.SerialDetails {
				unit := &entity.InventoryUnit{
					ID:           uuid.New().String(),
					CompanyID:    companyID,
					ProductID:    item.ProductID,
					RecordID:     batch.RecordID,
					BatchID:      item.BatchID,
					SerialNumber: serial,
					Status:       entity.UnitSold,
					AddedOn:      now,
					SoldOn:       &soldOn,
					CreatedBy:    userID,
				}
				if err := repos.Units.CreateSold(unit); err != nil {
					return err
				}
			}
		}

		// 3) Account del tercero: aprovisionamiento perezoso e idempotente.
		// Va antes de persistir la venta para que la fila guarde el vínculo.
		if in.LinkedPartyID != "" {
			account, err := repos.Accounts.FindOrCreate(in.LinkedPartyID, companyID, entity.PartyCustomer, userID)
			if err != nil {
				return err
			}
			sale.AccountID = account.ID
		}

		// 4) Número de transacción y persistencia de la venta con líneas.
		seq, err := repos.Counters.Next(companyID, counterSales)
		if err != nil {
			return err
		}
		sale.TransactionNumber = fmt.Sprintf("POS-%s-%06d", now.Format("20060102"), seq)
		for _, item := range in.Items {
			sale.Lines = append(sale.Lines, entity.SaleLine{
				ID:         uuid.New().String(),
				SaleID:     saleID,
				ProductID:  item.ProductID,
				BatchID:    item.BatchID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
				TotalPrice: item.Quantity.Mul(item.UnitPrice),
				Serials:    item.SerialDetails,
			})
		}
		if err := repos.Sales.Create(sale); err != nil {
			return err
		}

		// 5) Asientos de partida doble, en orden fijo: ingreso, impuesto,
		// descuento, pago recibido. El orden importa para estados de cuenta
		// legibles, no para el balance.
		paymentGroupID, err := uc.postSaleFacts(repos.Ledger, sale)
		if err != nil {
			return err
		}

		// 6) Registro de pago.
		status := entity.PaymentPending
		if sale.PaidAmount.GreaterThanOrEqual(sale.TotalPayable) {
			status = entity.PaymentCompleted
		}
		payment := &entity.Payment{
			ID:           uuid.New().String(),
			CompanyID:    companyID,
			SaleID:       saleID,
			EntryGroupID: paymentGroupID,
			Method:       in.PaymentMethod,
			AmountPaid:   in.PaidAmount,
			Status:       status,
			Reference:    in.PaymentReference,
			PaidBy:       in.LinkedPartyID,
			PaymentDate:  now,
			CreatedBy:    userID,
			CreatedAt:    now,
		}
		return repos.Payments.Create(payment)
	})
	if err != nil {
		return nil, err
	}

	// 7) Efectos post-commit, best-effort: recibo, auditoría e invalidación
	// del cache de saldos. Nada de esto puede revertir la venta.
	receiptPath := uc.renderSaleReceipt(ctx, sale, products)
	uc.audit.Notify(entity.AuditLog{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		ActorID:     userID,
		Action:      entity.AuditCreate,
		EntityType:  "Sale",
		EntityID:    saleID,
		Description: fmt.Sprintf("Venta POS %s por %s", sale.TransactionNumber, sale.TotalPayable.StringFixed(2)),
		CreatedAt:   time.Now(),
	})
	if in.LinkedPartyID != "" {
		_ = uc.cache.Delete(ctx, accounting.BalanceKey(companyID, in.LinkedPartyID))
	}

	return &dto.SaleResult{Sale: toSaleResponse(sale), ReceiptPath: receiptPath}, nil
}

// postSaleFacts asienta los hechos financieros de la venta. Retorna el
// entryGroupID del pago recibido (si aplica) para engancharlo al Payment.
func (uc *SaleUseCase) postSaleFacts(ledgerRepo repository.LedgerRepository, sale *entity.SaleTransaction) (paymentGroupID string, err error) {
	// Venta a crédito o parcial: el ingreso se debita contra cartera.
	revenueDebit := ledger.CashBank
	creditSale := sale.PaidAmount.LessThan(sale.TotalPayable)
	if creditSale {
		revenueDebit = ledger.AccountsReceivable
	}

	base := accounting.Fact{
		TransactionID: sale.ID,
		CompanyID:     sale.CompanyID,
		ReferenceType: entity.RefPOSTransaction,
		LinkedPartyID: sale.LinkedPartyID,
		AccountID:     sale.AccountID,
		Date:          sale.Date,
		CreatedBy:     sale.CreatedBy,
	}

	// a) Ingreso por el subtotal.
	revenue := base
	revenue.TransactionType = ledger.TxSale
	revenue.Description = fmt.Sprintf("Venta %s", sale.TransactionNumber)
	revenue.DebitAccount = revenueDebit
	revenue.DebitAmount = sale.Subtotal
	revenue.CreditAccount = ledger.SalesRevenue
	revenue.CreditAmount = sale.Subtotal
	if _, err := uc.poster.Post(ledgerRepo, revenue); err != nil {
		return "", err
	}

	// b) Impuesto.
	if sale.TaxAmount.GreaterThan(decimal.Zero) {
		tax := base
		tax.TransactionType = ledger.TxTax
		tax.Description = fmt.Sprintf("Impuesto venta %s", sale.TransactionNumber)
		tax.DebitAccount = revenueDebit
		tax.DebitAmount = sale.TaxAmount
		tax.CreditAccount = ledger.TaxPayable
		tax.CreditAmount = sale.TaxAmount
		if _, err := uc.poster.Post(ledgerRepo, tax); err != nil {
			return "", err
		}
	}

	// c) Descuento; la cuenta de crédito depende de la política configurada.
	if sale.DiscountAmount.GreaterThan(decimal.Zero) {
		discountCredit := revenueDebit
		if uc.discountCredit == DiscountCreditRevenue {
			discountCredit = ledger.SalesRevenue
		}
		discount := base
		discount.TransactionType = ledger.TxDiscount
		discount.Description = fmt.Sprintf("Descuento venta %s", sale.TransactionNumber)
		discount.DebitAccount = ledger.DiscountExpense
		discount.DebitAmount = sale.DiscountAmount
		discount.CreditAccount = discountCredit
		discount.CreditAmount = sale.DiscountAmount
		if _, err := uc.poster.Post(ledgerRepo, discount); err != nil {
			return "", err
		}
	}

	// d) Abono recibido en venta a crédito: baja cartera contra caja.
	if creditSale && sale.PaidAmount.GreaterThan(decimal.Zero) {
		received := base
		received.TransactionType = ledger.TxPayment
		received.ReferenceType = entity.RefPayments
		received.Description = fmt.Sprintf("Abono venta %s", sale.TransactionNumber)
		received.DebitAccount = ledger.CashBank
		received.DebitAmount = sale.PaidAmount
		received.CreditAccount = ledger.AccountsReceivable
		received.CreditAmount = sale.PaidAmount
		groupID, err := uc.poster.Post(ledgerRepo, received)
		if err != nil {
			return "", err
		}
		return groupID, nil
	}
	return "", nil
}

// renderSaleReceipt genera el recibo post-commit. Nunca retorna error: un
// fallo del render deja la ruta vacía y queda en el log.
func (uc *SaleUseCase) renderSaleReceipt(ctx context.Context, sale *entity.SaleTransaction, products map[string]*entity.Product) string {
	if uc.receipts == nil {
		return ""
	}
	company, err := uc.companyRepo.GetByID(sale.CompanyID)
	if err != nil || company == nil {
		company = &entity.Company{ID: sale.CompanyID}
	}
	data := ReceiptData{
		Company:    company,
		DocumentID: sale.ID,
		Number:     sale.TransactionNumber,
		Date:       sale.Date.Format("2006-01-02 15:04"),
		Subtotal:   sale.Subtotal,
		Discount:   sale.DiscountAmount,
		Tax:        sale.TaxAmount,
		Total:      sale.TotalPayable,
		Paid:       sale.PaidAmount,
		Change:     sale.ChangeGiven,
	}
	for _, line := range sale.Lines {
		name := line.ProductID
		if p := products[line.ProductID]; p != nil {
			name = p.Name
		}
		data.Lines = append(data.Lines, ReceiptLine{
			ProductName: name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.TotalPrice,
		})
	}
	path, err := uc.receipts.RenderSaleReceipt(ctx, data)
	if err != nil {
		if uc.log != nil {
			uc.log.Warn().Err(err).Str("sale_id", sale.ID).Msg("no se pudo generar el recibo; la venta queda firme")
		}
		return ""
	}
	return path
}

// GetSale obtiene una venta por ID (con líneas).
func (uc *SaleUseCase) GetSale(_ context.Context, saleRepo repository.SaleRepository, companyID, id string) (*dto.SaleResponse, error) {
	sale, err := saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	resp := toSaleResponse(sale)
	return &resp, nil
}

func changeGiven(paid, total decimal.Decimal) decimal.Decimal {
	if paid.GreaterThan(total) {
		return paid.Sub(total)
	}
	return decimal.Zero
}

func toSaleResponse(sale *entity.SaleTransaction) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:                sale.ID,
		CompanyID:         sale.CompanyID,
		TransactionNumber: sale.TransactionNumber,
		Date:              sale.Date,
		Subtotal:          sale.Subtotal,
		DiscountAmount:    sale.DiscountAmount,
		TaxAmount:         sale.TaxAmount,
		TotalPayable:      sale.TotalPayable,
		PaidAmount:        sale.PaidAmount,
		ChangeGiven:       sale.ChangeGiven,
		PaymentMethod:     sale.PaymentMethod,
		LinkedPartyID:     sale.LinkedPartyID,
		AccountID:         sale.AccountID,
	}
	for _, line := range sale.Lines {
		resp.Items = append(resp.Items, dto.SaleLineResponse{
			ID:         line.ID,
			ProductID:  line.ProductID,
			BatchID:    line.BatchID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice,
			Serials:    line.Serials,
		})
	}
	return resp
}
