package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta el callback con repos de inventario atados a una
// transacción: registro + lotes + unidades serializadas entran juntos o no
// entran.
type TxRunner interface {
	RunInventory(ctx context.Context, fn func(inv repository.InventoryRepository, units repository.InventoryUnitRepository) error) error
}

// InventoryUseCase administra el ingreso de stock por lotes.
type InventoryUseCase struct {
	txRunner    TxRunner
	invRepo     repository.InventoryRepository // lecturas fuera de tx
	productRepo repository.ProductRepository
}

// NewInventoryUseCase construye el caso de uso de inventario.
func NewInventoryUseCase(txRunner TxRunner, invRepo repository.InventoryRepository, productRepo repository.ProductRepository) *InventoryUseCase {
	return &InventoryUseCase{txRunner: txRunner, invRepo: invRepo, productRepo: productRepo}
}

// CreateInventory registra stock de un producto. Si ya existe el registro
// (empresa, producto, proveedor) solo agrega los lotes nuevos; si no, lo crea
// con ellos. Para productos serializados cada unidad entra In Stock con su
// serial.
func (uc *InventoryUseCase) CreateInventory(ctx context.Context, companyID, userID string, in dto.CreateInventoryRequest) (*dto.InventoryResponse, error) {
	if companyID == "" || in.ProductID == "" || len(in.Batches) == 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	for i := range in.Batches {
		if err := validateBatch(product, &in.Batches[i]); err != nil {
			return nil, err
		}
	}

	var record *entity.InventoryRecord
	err = uc.txRunner.RunInventory(ctx, func(inv repository.InventoryRepository, units repository.InventoryUnitRepository) error {
		var err error
		record, err = inv.GetRecord(companyID, in.ProductID, in.VendorID)
		if err != nil {
			return err
		}
		now := time.Now()
		if record == nil {
			record = &entity.InventoryRecord{
				ID:            uuid.New().String(),
				CompanyID:     companyID,
				ProductID:     in.ProductID,
				VendorID:      in.VendorID,
				Barcode:       in.Barcode,
				TotalQuantity: decimal.Zero,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := inv.CreateRecord(record); err != nil {
				return err
			}
		}
		for i := range in.Batches {
			br := &in.Batches[i]
			batch := &entity.Batch{
				ID:            uuid.New().String(),
				RecordID:      record.ID,
				Barcode:       br.Barcode,
				Quantity:      br.Quantity,
				PurchasePrice: br.PurchasePrice,
				SellingPrice:  br.SellingPrice,
				AddedAt:       now,
				ExpiresAt:     br.ExpiresAt,
			}
			if err := inv.AddBatch(record.ID, batch); err != nil {
				return err
			}
			record.TotalQuantity = record.TotalQuantity.Add(br.Quantity)
			record.Batches = append(record.Batches, *batch)

			for _, serial := range br.SerialNumbers {
				unit := &entity.InventoryUnit{
					ID:           uuid.New().String(),
					CompanyID:    companyID,
					ProductID:    in.ProductID,
					RecordID:     record.ID,
					BatchID:      batch.ID,
					SerialNumber: serial,
					Status:       entity.UnitInStock,
					AddedOn:      now,
					CreatedBy:    userID,
				}
				if err := units.CreateInStock(unit); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toInventoryResponse(record, true)
	return &resp, nil
}

// AddBatch agrega un lote a un registro existente.
func (uc *InventoryUseCase) AddBatch(ctx context.Context, companyID, userID, recordID string, in dto.BatchRequest) (*dto.BatchResponse, error) {
	record, err := uc.invRepo.GetRecordByID(recordID)
	if err != nil {
		return nil, err
	}
	if record == nil || record.IsDeleted {
		return nil, domain.ErrNotFound
	}
	if record.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	product, err := uc.productRepo.GetByID(record.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := validateBatch(product, &in); err != nil {
		return nil, err
	}

	now := time.Now()
	batch := &entity.Batch{
		ID:            uuid.New().String(),
		RecordID:      recordID,
		Barcode:       in.Barcode,
		Quantity:      in.Quantity,
		PurchasePrice: in.PurchasePrice,
		SellingPrice:  in.SellingPrice,
		AddedAt:       now,
		ExpiresAt:     in.ExpiresAt,
	}
	err = uc.txRunner.RunInventory(ctx, func(inv repository.InventoryRepository, units repository.InventoryUnitRepository) error {
		if err := inv.AddBatch(recordID, batch); err != nil {
			return err
		}
		for _, serial := range in.SerialNumbers {
			unit := &entity.InventoryUnit{
				ID:           uuid.New().String(),
				CompanyID:    companyID,
				ProductID:    record.ProductID,
				RecordID:     recordID,
				BatchID:      batch.ID,
				SerialNumber: serial,
				Status:       entity.UnitInStock,
				AddedOn:      now,
				CreatedBy:    userID,
			}
			if err := units.CreateInStock(unit); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toBatchResponse(batch)
	return &resp, nil
}

// ListAvailable retorna el stock disponible de la empresa; con includeBatches
// incluye el detalle de lotes FIFO sin los lotes en cero.
func (uc *InventoryUseCase) ListAvailable(_ context.Context, companyID string, includeBatches bool) ([]dto.InventoryResponse, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	records, err := uc.invRepo.FindAvailable(companyID, includeBatches)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toInventoryResponse(r, includeBatches))
	}
	return out, nil
}

func validateBatch(product *entity.Product, br *dto.BatchRequest) error {
	if !br.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if br.PurchasePrice.LessThan(decimal.Zero) || br.SellingPrice.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if !product.IsSerialized {
		if len(br.SerialNumbers) > 0 {
			return domain.ErrInvalidInput
		}
		return nil
	}
	if !br.Quantity.Equal(br.Quantity.Truncate(0)) {
		return domain.ErrInvalidInput
	}
	if int64(len(br.SerialNumbers)) != br.Quantity.IntPart() {
		return domain.ErrInvalidInput
	}
	seen := make(map[string]struct{}, len(br.SerialNumbers))
	for _, s := range br.SerialNumbers {
		if s == "" {
			return domain.ErrInvalidInput
		}
		if _, dup := seen[s]; dup {
			return &domain.DuplicateSerialError{SerialNumber: s}
		}
		seen[s] = struct{}{}
	}
	return nil
}

func toBatchResponse(b *entity.Batch) dto.BatchResponse {
	return dto.BatchResponse{
		ID:            b.ID,
		Barcode:       b.Barcode,
		Quantity:      b.Quantity,
		PurchasePrice: b.PurchasePrice,
		SellingPrice:  b.SellingPrice,
		AddedAt:       b.AddedAt,
		ExpiresAt:     b.ExpiresAt,
	}
}

func toInventoryResponse(r *entity.InventoryRecord, includeBatches bool) dto.InventoryResponse {
	resp := dto.InventoryResponse{
		ID:            r.ID,
		ProductID:     r.ProductID,
		VendorID:      r.VendorID,
		Barcode:       r.Barcode,
		TotalQuantity: r.TotalQuantity,
	}
	if includeBatches {
		for i := range r.Batches {
			resp.Batches = append(resp.Batches, toBatchResponse(&r.Batches[i]))
		}
	}
	return resp
}
