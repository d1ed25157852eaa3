package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL
// (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// CreateRecord persiste el registro de inventario (sin lotes).
func (r *InventoryRepo) CreateRecord(record *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory_records (id, company_id, product_id, vendor_id, barcode, total_quantity, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		record.ID, record.CompanyID, record.ProductID, nullIfEmpty(record.VendorID),
		record.Barcode, record.TotalQuantity, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert inventory record: %w", err)
	}
	return nil
}

// AddBatch inserta el lote y suma su cantidad al total del registro, en dos
// sentencias que el caller debe envolver en una tx.
func (r *InventoryRepo) AddBatch(recordID string, batch *entity.Batch) error {
	query := `
		INSERT INTO inventory_batches (id, record_id, barcode, quantity, purchase_price, selling_price, added_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, recordID, batch.Barcode, batch.Quantity,
		batch.PurchasePrice, batch.SellingPrice, batch.AddedAt, batch.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	tag, err := r.q.Exec(context.Background(), `
		UPDATE inventory_records
		SET total_quantity = total_quantity + $2, updated_at = now()
		WHERE id = $1`, recordID, batch.Quantity)
	if err != nil {
		return fmt.Errorf("update record total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetRecord busca el registro por (empresa, producto, proveedor), con lotes.
func (r *InventoryRepo) GetRecord(companyID, productID, vendorID string) (*entity.InventoryRecord, error) {
	query := `
		SELECT id, company_id, product_id, COALESCE(vendor_id, ''), barcode, total_quantity, is_deleted, created_at, updated_at
		FROM inventory_records
		WHERE company_id = $1 AND product_id = $2 AND vendor_id IS NOT DISTINCT FROM $3 AND is_deleted = false`
	var rec entity.InventoryRecord
	err := r.q.QueryRow(context.Background(), query, companyID, productID, nullIfEmpty(vendorID)).Scan(
		&rec.ID, &rec.CompanyID, &rec.ProductID, &rec.VendorID, &rec.Barcode,
		&rec.TotalQuantity, &rec.IsDeleted, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory record: %w", err)
	}
	if err := r.loadBatches(&rec, false); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRecordByID obtiene el registro con todos sus lotes.
func (r *InventoryRepo) GetRecordByID(id string) (*entity.InventoryRecord, error) {
	query := `
		SELECT id, company_id, product_id, COALESCE(vendor_id, ''), barcode, total_quantity, is_deleted, created_at, updated_at
		FROM inventory_records WHERE id = $1`
	var rec entity.InventoryRecord
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&rec.ID, &rec.CompanyID, &rec.ProductID, &rec.VendorID, &rec.Barcode,
		&rec.TotalQuantity, &rec.IsDeleted, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory record by id: %w", err)
	}
	if err := r.loadBatches(&rec, false); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetBatch obtiene un lote por ID.
func (r *InventoryRepo) GetBatch(batchID string) (*entity.Batch, error) {
	query := `
		SELECT id, record_id, barcode, quantity, purchase_price, selling_price, added_at, expires_at
		FROM inventory_batches WHERE id = $1`
	var b entity.Batch
	err := r.q.QueryRow(context.Background(), query, batchID).Scan(
		&b.ID, &b.RecordID, &b.Barcode, &b.Quantity,
		&b.PurchasePrice, &b.SellingPrice, &b.AddedAt, &b.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &b, nil
}

// ReserveAndDecrement descuenta qty del lote con un update condicional: la
// cláusula quantity >= $N cierra la carrera entre ventas concurrentes sin
// SELECT FOR UPDATE. Cero filas afectadas significa que otro llegó primero (o
// el lote no existe) y la venta completa debe abortar.
func (r *InventoryRepo) ReserveAndDecrement(companyID, productID, batchID string, qty decimal.Decimal) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	query := `
		UPDATE inventory_batches b
		SET quantity = b.quantity - $4
		FROM inventory_records rec
		WHERE b.id = $3 AND b.record_id = rec.id
		  AND rec.company_id = $1 AND rec.product_id = $2 AND rec.is_deleted = false
		  AND b.quantity >= $4`
	tag, err := r.q.Exec(context.Background(), query, companyID, productID, batchID, qty)
	if err != nil {
		return fmt.Errorf("decrement batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		available, err := r.batchQuantity(companyID, productID, batchID)
		if err != nil {
			return err
		}
		if available == nil {
			return domain.ErrNotFound
		}
		return &domain.InsufficientStockError{
			ProductID: productID,
			BatchID:   batchID,
			Requested: qty,
			Available: *available,
		}
	}
	_, err = r.q.Exec(context.Background(), `
		UPDATE inventory_records
		SET total_quantity = total_quantity - $2, updated_at = now()
		WHERE id = (SELECT record_id FROM inventory_batches WHERE id = $1)`, batchID, qty)
	if err != nil {
		return fmt.Errorf("decrement record total: %w", err)
	}
	return nil
}

// Restore repone qty al lote y al total del registro (devoluciones).
func (r *InventoryRepo) Restore(companyID, productID, batchID string, qty decimal.Decimal) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	query := `
		UPDATE inventory_batches b
		SET quantity = b.quantity + $4
		FROM inventory_records rec
		WHERE b.id = $3 AND b.record_id = rec.id
		  AND rec.company_id = $1 AND rec.product_id = $2`
	tag, err := r.q.Exec(context.Background(), query, companyID, productID, batchID, qty)
	if err != nil {
		return fmt.Errorf("restore batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	_, err = r.q.Exec(context.Background(), `
		UPDATE inventory_records
		SET total_quantity = total_quantity + $2, updated_at = now()
		WHERE id = (SELECT record_id FROM inventory_batches WHERE id = $1)`, batchID, qty)
	if err != nil {
		return fmt.Errorf("restore record total: %w", err)
	}
	return nil
}

// FindAvailable lista los registros con stock de la empresa; con
// includeBatches carga los lotes vivos en orden FIFO excluyendo los vacíos.
func (r *InventoryRepo) FindAvailable(companyID string, includeBatches bool) ([]*entity.InventoryRecord, error) {
	query := `
		SELECT id, company_id, product_id, COALESCE(vendor_id, ''), barcode, total_quantity, is_deleted, created_at, updated_at
		FROM inventory_records
		WHERE company_id = $1 AND is_deleted = false AND total_quantity > 0
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		var rec entity.InventoryRecord
		if err := rows.Scan(
			&rec.ID, &rec.CompanyID, &rec.ProductID, &rec.VendorID, &rec.Barcode,
			&rec.TotalQuantity, &rec.IsDeleted, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		list = append(list, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if includeBatches {
		for _, rec := range list {
			if err := r.loadBatches(rec, true); err != nil {
				return nil, err
			}
		}
	}
	return list, nil
}

func (r *InventoryRepo) batchQuantity(companyID, productID, batchID string) (*decimal.Decimal, error) {
	var available decimal.Decimal
	err := r.q.QueryRow(context.Background(), `
		SELECT b.quantity
		FROM inventory_batches b
		JOIN inventory_records rec ON rec.id = b.record_id
		WHERE b.id = $3 AND rec.company_id = $1 AND rec.product_id = $2`,
		companyID, productID, batchID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch quantity: %w", err)
	}
	return &available, nil
}

func (r *InventoryRepo) loadBatches(rec *entity.InventoryRecord, onlyAvailable bool) error {
	query := `
		SELECT id, record_id, barcode, quantity, purchase_price, selling_price, added_at, expires_at
		FROM inventory_batches WHERE record_id = $1 ORDER BY added_at`
	if onlyAvailable {
		query = `
		SELECT id, record_id, barcode, quantity, purchase_price, selling_price, added_at, expires_at
		FROM inventory_batches WHERE record_id = $1 AND quantity > 0 ORDER BY added_at`
	}
	rows, err := r.q.Query(context.Background(), query, rec.ID)
	if err != nil {
		return fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b entity.Batch
		if err := rows.Scan(
			&b.ID, &b.RecordID, &b.Barcode, &b.Quantity,
			&b.PurchasePrice, &b.SellingPrice, &b.AddedAt, &b.ExpiresAt,
		); err != nil {
			return fmt.Errorf("scan batch: %w", err)
		}
		rec.Batches = append(rec.Batches, b)
	}
	return rows.Err()
}
