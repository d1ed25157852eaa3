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

// ReturnUseCase orquesta la devolución: reponer inventario, revertir unidades
// serializadas, asentar la reversión contable y registrar el reembolso. Igual
// que la venta, todo dentro de una transacción única.
type ReturnUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	companyRepo repository.CompanyRepository
	poster      *accounting.Poster
	receipts    ReceiptRenderer
	audit       AuditSink
	cache       accounting.BalanceCache
	log         *logger.Logger
}

// NewReturnUseCase construye el caso de uso de devoluciones.
func NewReturnUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	companyRepo repository.CompanyRepository,
	poster *accounting.Poster,
	receipts ReceiptRenderer,
	audit AuditSink,
	cache accounting.BalanceCache,
	log *logger.Logger,
) *ReturnUseCase {
	if audit == nil {
		audit = NoopAuditSink{}
	}
	if cache == nil {
		cache = accounting.NoopBalanceCache{}
	}
	return &ReturnUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		companyRepo: companyRepo,
		poster:      poster,
		receipts:    receipts,
		audit:       audit,
		cache:       cache,
		log:         log,
	}
}

// ExecuteReturn procesa la devolución contra una venta existente. La venta
// original nunca se modifica; la devolución es un documento nuevo que la
// referencia.
func (uc *ReturnUseCase) ExecuteReturn(ctx context.Context, companyID, userID string, in dto.ReturnRequest) (*dto.ReturnResult, error) {
	if companyID == "" || userID == "" || len(in.Items) == 0 || in.OriginalTransactionID == "" {
		return nil, domain.ErrInvalidInput
	}
	switch in.RefundMethod {
	case entity.RefundCash, entity.RefundCreditNote:
	default:
		return nil, domain.ErrInvalidInput
	}
	if !in.TotalRefund.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	// El total de reembolso debe cuadrar con las líneas devueltas.
	expected := decimal.Zero
	for i := range in.Items {
		item := &in.Items[i]
		if item.ProductID == "" || item.BatchID == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if item.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		expected = expected.Add(item.Quantity.Mul(item.UnitPrice))
	}
	if !expected.Equal(in.TotalRefund) {
		return nil, &domain.InvalidTotalsError{Expected: expected, Given: in.TotalRefund}
	}

	// Misma validación de serializados que la venta: un serial por unidad
	// devuelta, cantidad entera y sin repetidos dentro del request. Sin esto
	// una línea podría reponer N al lote pero revertir más (o menos) unidades
	// físicas.
	products := make(map[string]*entity.Product, len(in.Items))
	seen := make(map[string]struct{})
	for i := range in.Items {
		item := &in.Items[i]
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
		if !product.IsSerialized {
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
	returnID := uuid.New().String()
	ret := &entity.ReturnTransaction{
		ID:             returnID,
		CompanyID:      companyID,
		OriginalSaleID: in.OriginalTransactionID,
		TotalRefund:    in.TotalRefund,
		RefundMethod:   in.RefundMethod,
		Reason:         in.Reason,
		CreatedBy:      userID,
		CreatedAt:      now,
	}
	var original *entity.SaleTransaction

	err := uc.txRunner.RunPOS(ctx, func(repos TxRepos) error {
		// 1) La venta original debe existir y pertenecer a la empresa.
		var err error
		original, err = repos.Sales.GetByID(in.OriginalTransactionID)
		if err != nil {
			return err
		}
		if original == nil || original.CompanyID != companyID {
			return &domain.OriginalTransactionNotFoundError{TransactionID: in.OriginalTransactionID}
		}

		// 2) Las líneas devueltas deben corresponder a líneas vendidas, sin
		// exceder la cantidad original menos lo ya devuelto.
		returned, err := repos.Returns.SumReturnedByLine(in.OriginalTransactionID)
		if err != nil {
			return err
		}
		for _, item := range in.Items {
			sold := decimal.Zero
			for _, line := range original.Lines {
				if line.ProductID == item.ProductID && line.BatchID == item.BatchID {
					sold = sold.Add(line.Quantity)
				}
			}
			if sold.IsZero() {
				return domain.ErrInvalidInput
			}
			already := returned[item.ProductID+"|"+item.BatchID]
			if item.Quantity.Add(already).GreaterThan(sold) {
				return domain.ErrInvalidInput
			}
		}

		// 3) Reponer el inventario en los lotes originales.
		for _, item := range in.Items {
			if err := repos.Inventory.Restore(companyID, item.ProductID, item.BatchID, item.Quantity); err != nil {
				return err
			}
		}

		// 4) Unidades serializadas: Sold -> In Stock con transición
		// condicional; una unidad no vendida no se puede devolver.
		for _, item := range in.Items {
			for _, serial := range item.SerialDetails {
				unit, err := repos.Units.GetBySerial(companyID, serial)
				if err != nil {
					return err
				}
				if unit == nil || unit.Status != entity.UnitSold || unit.BatchID != item.BatchID {
					return &domain.InvalidReturnStateError{SerialNumber: serial}
				}
				if err := repos.Units.ReturnUnit(companyID, item.ProductID, item.BatchID, serial); err != nil {
					return err
				}
			}
		}

		// 5) Consecutivo de devolución: RTN-YYYYMMDD-<empresa>-NNNNNN.
		seq, err := repos.Counters.Next(companyID, counterReturns)
		if err != nil {
			return err
		}
		ret.CounterNumber = seq
		ret.ReturnNumber = fmt.Sprintf("RTN-%s-%s-%06d", now.Format("20060102"), companySuffix(companyID), seq)
		ret.LinkedPartyID = original.LinkedPartyID
		ret.AccountID = original.AccountID
		for _, item := range in.Items {
			ret.Lines = append(ret.Lines, entity.ReturnLine{
				ID:         uuid.New().String(),
				ReturnID:   returnID,
				ProductID:  item.ProductID,
				BatchID:    item.BatchID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
				TotalPrice: item.Quantity.Mul(item.UnitPrice),
				Serials:    item.SerialDetails,
			})
		}
		if err := repos.Returns.Create(ret); err != nil {
			return err
		}

		// 6) Reversión contable: débito Sales Return, crédito según método
		// de reembolso (efectivo baja caja; nota crédito genera un pasivo).
		refundCredit := ledger.CashBank
		if in.RefundMethod == entity.RefundCreditNote {
			refundCredit = ledger.AccountsPayable
		}
		fact := accounting.Fact{
			TransactionID:   returnID,
			CompanyID:       companyID,
			TransactionType: ledger.TxReturn,
			ReferenceType:   entity.RefReturns,
			Description:     fmt.Sprintf("Devolución %s de venta %s", ret.ReturnNumber, original.TransactionNumber),
			DebitAccount:    ledger.SalesReturn,
			DebitAmount:     in.TotalRefund,
			CreditAccount:   refundCredit,
			CreditAmount:    in.TotalRefund,
			LinkedPartyID:   original.LinkedPartyID,
			AccountID:       original.AccountID,
			Date:            now,
			CreatedBy:       userID,
		}
		groupID, err := uc.poster.Post(repos.Ledger, fact)
		if err != nil {
			return err
		}

		// 7) Reembolso en efectivo: pago negativo con estado Refunded.
		if in.RefundMethod == entity.RefundCash {
			refund := &entity.Payment{
				ID:           uuid.New().String(),
				CompanyID:    companyID,
				SaleID:       original.ID,
				EntryGroupID: groupID,
				Method:       entity.PaymentCash,
				AmountPaid:   in.TotalRefund.Neg(),
				Status:       entity.PaymentRefunded,
				Reference:    ret.ReturnNumber,
				PaidBy:       original.LinkedPartyID,
				PaymentDate:  now,
				CreatedBy:    userID,
				CreatedAt:    now,
			}
			if err := repos.Payments.Create(refund); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	receiptPath := uc.renderReturnReceipt(ctx, ret, original)
	uc.audit.Notify(entity.AuditLog{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		ActorID:     userID,
		Action:      entity.AuditCreate,
		EntityType:  "Return",
		EntityID:    returnID,
		Description: fmt.Sprintf("Devolución %s por %s", ret.ReturnNumber, ret.TotalRefund.StringFixed(2)),
		CreatedAt:   time.Now(),
	})
	if original.LinkedPartyID != "" {
		_ = uc.cache.Delete(ctx, accounting.BalanceKey(companyID, original.LinkedPartyID))
	}

	return &dto.ReturnResult{Return: toReturnResponse(ret), ReceiptPath: receiptPath}, nil
}

// GetReturn obtiene una devolución por ID.
func (uc *ReturnUseCase) GetReturn(_ context.Context, returnRepo repository.ReturnRepository, companyID, id string) (*dto.ReturnResponse, error) {
	ret, err := returnRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, domain.ErrNotFound
	}
	if ret.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	resp := toReturnResponse(ret)
	return &resp, nil
}

func (uc *ReturnUseCase) renderReturnReceipt(ctx context.Context, ret *entity.ReturnTransaction, original *entity.SaleTransaction) string {
	if uc.receipts == nil {
		return ""
	}
	company, err := uc.companyRepo.GetByID(ret.CompanyID)
	if err != nil || company == nil {
		company = &entity.Company{ID: ret.CompanyID}
	}
	data := ReceiptData{
		Company:      company,
		DocumentID:   ret.ID,
		Number:       ret.ReturnNumber,
		Date:         ret.CreatedAt.Format("2006-01-02 15:04"),
		Total:        ret.TotalRefund,
		RefundMethod: ret.RefundMethod,
		Reason:       ret.Reason,
	}
	productNames := make(map[string]string)
	for _, line := range ret.Lines {
		name, ok := productNames[line.ProductID]
		if !ok {
			name = line.ProductID
			if p, err := uc.productRepo.GetByID(line.ProductID); err == nil && p != nil {
				name = p.Name
			}
			productNames[line.ProductID] = name
		}
		data.Lines = append(data.Lines, ReceiptLine{
			ProductName: name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.TotalPrice,
		})
	}
	path, err := uc.receipts.RenderReturnReceipt(ctx, data)
	if err != nil {
		if uc.log != nil {
			uc.log.Warn().Err(err).Str("return_id", ret.ID).Str("sale_id", original.ID).Msg("no se pudo generar el recibo de devolución")
		}
		return ""
	}
	return path
}

// companySuffix toma los últimos 4 caracteres del ID de la empresa para el
// consecutivo de devolución.
func companySuffix(companyID string) string {
	if len(companyID) <= 4 {
		return companyID
	}
	return companyID[len(companyID)-4:]
}

func toReturnResponse(ret *entity.ReturnTransaction) dto.ReturnResponse {
	resp := dto.ReturnResponse{
		ID:             ret.ID,
		CompanyID:      ret.CompanyID,
		OriginalSaleID: ret.OriginalSaleID,
		ReturnNumber:   ret.ReturnNumber,
		TotalRefund:    ret.TotalRefund,
		RefundMethod:   ret.RefundMethod,
		Reason:         ret.Reason,
		CreatedAt:      ret.CreatedAt,
	}
	for _, line := range ret.Lines {
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
