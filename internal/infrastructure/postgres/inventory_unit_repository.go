package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

var _ repository.InventoryUnitRepository = (*InventoryUnitRepo)(nil)

// InventoryUnitRepo implementación de InventoryUnitRepository (usable con
// pool o tx).
type InventoryUnitRepo struct {
	q Querier
}

// NewInventoryUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryUnitRepository(q Querier) *InventoryUnitRepo {
	return &InventoryUnitRepo{q: q}
}

// CreateInStock inserta la unidad en estado In Stock (ingreso de lote
// serializado). El serial es único por empresa.
func (r *InventoryUnitRepo) CreateInStock(unit *entity.InventoryUnit) error {
	query := `
		INSERT INTO inventory_units (id, company_id, product_id, record_id, batch_id, serial_number, status, added_on, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		unit.ID, unit.CompanyID, unit.ProductID, unit.RecordID, unit.BatchID,
		unit.SerialNumber, entity.UnitInStock, unit.AddedOn, unit.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateSerialError{SerialNumber: unit.SerialNumber}
		}
		return fmt.Errorf("insert unit: %w", err)
	}
	return nil
}

// CreateSold registra la venta de la unidad: primero intenta la transición
// condicional In Stock -> Sold; si el serial no existe lo inserta directo en
// Sold. Un serial ya vendido o defectuoso produce DuplicateSerialError.
func (r *InventoryUnitRepo) CreateSold(unit *entity.InventoryUnit) error {
	tag, err := r.q.Exec(context.Background(), `
		UPDATE inventory_units
		SET status = $3, sold_on = $4, batch_id = $5
		WHERE company_id = $1 AND serial_number = $2 AND status = $6`,
		unit.CompanyID, unit.SerialNumber, entity.UnitSold, unit.SoldOn, unit.BatchID, entity.UnitInStock,
	)
	if err != nil {
		return fmt.Errorf("sell unit: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	query := `
		INSERT INTO inventory_units (id, company_id, product_id, record_id, batch_id, serial_number, status, added_on, sold_on, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.q.Exec(context.Background(), query,
		unit.ID, unit.CompanyID, unit.ProductID, unit.RecordID, unit.BatchID,
		unit.SerialNumber, entity.UnitSold, unit.AddedOn, unit.SoldOn, unit.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Existe pero no estaba In Stock: doble venta del mismo serial.
			return &domain.DuplicateSerialError{SerialNumber: unit.SerialNumber}
		}
		return fmt.Errorf("insert sold unit: %w", err)
	}
	return nil
}

// ReturnUnit transiciona Sold -> In Stock de forma condicional. Cero filas
// afectadas significa que la unidad no estaba vendida (o no es de ese lote).
func (r *InventoryUnitRepo) ReturnUnit(companyID, productID, batchID, serialNumber string) error {
	tag, err := r.q.Exec(context.Background(), `
		UPDATE inventory_units
		SET status = $5, returned_on = now(), sold_on = NULL
		WHERE company_id = $1 AND product_id = $2 AND batch_id = $3 AND serial_number = $4 AND status = $6`,
		companyID, productID, batchID, serialNumber, entity.UnitInStock, entity.UnitSold,
	)
	if err != nil {
		return fmt.Errorf("return unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.InvalidReturnStateError{SerialNumber: serialNumber}
	}
	return nil
}

// GetBySerial busca la unidad por serial dentro de la empresa.
func (r *InventoryUnitRepo) GetBySerial(companyID, serialNumber string) (*entity.InventoryUnit, error) {
	query := `
		SELECT id, company_id, product_id, record_id, batch_id, serial_number, status, added_on, sold_on, returned_on, COALESCE(created_by, '')
		FROM inventory_units WHERE company_id = $1 AND serial_number = $2`
	var u entity.InventoryUnit
	err := r.q.QueryRow(context.Background(), query, companyID, serialNumber).Scan(
		&u.ID, &u.CompanyID, &u.ProductID, &u.RecordID, &u.BatchID,
		&u.SerialNumber, &u.Status, &u.AddedOn, &u.SoldOn, &u.ReturnedOn, &u.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return &u, nil
}

// ListByBatch lista las unidades de un lote.
func (r *InventoryUnitRepo) ListByBatch(batchID string) ([]*entity.InventoryUnit, error) {
	query := `
		SELECT id, company_id, product_id, record_id, batch_id, serial_number, status, added_on, sold_on, returned_on, COALESCE(created_by, '')
		FROM inventory_units WHERE batch_id = $1 ORDER BY serial_number`
	rows, err := r.q.Query(context.Background(), query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryUnit
	for rows.Next() {
		var u entity.InventoryUnit
		if err := rows.Scan(
			&u.ID, &u.CompanyID, &u.ProductID, &u.RecordID, &u.BatchID,
			&u.SerialNumber, &u.Status, &u.AddedOn, &u.SoldOn, &u.ReturnedOn, &u.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}
