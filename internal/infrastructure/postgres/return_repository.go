package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo implementación de ReturnRepository (usable con pool o tx).
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

// Create persiste la devolución y sus líneas.
func (r *ReturnRepo) Create(ret *entity.ReturnTransaction) error {
	query := `
		INSERT INTO returns (id, company_id, original_sale_id, return_number, counter_number, total_refund, refund_method, reason, linked_party_id, account_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		ret.ID, ret.CompanyID, ret.OriginalSaleID, ret.ReturnNumber, ret.CounterNumber,
		ret.TotalRefund, ret.RefundMethod, nullIfEmpty(ret.Reason),
		nullIfEmpty(ret.LinkedPartyID), nullIfEmpty(ret.AccountID), ret.CreatedBy, ret.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("return number already exists: %w", err)
		}
		return fmt.Errorf("insert return: %w", err)
	}
	for i := range ret.Lines {
		line := &ret.Lines[i]
		_, err := r.q.Exec(context.Background(), `
			INSERT INTO return_lines (id, return_id, product_id, batch_id, quantity, unit_price, total_price, serials)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			line.ID, ret.ID, line.ProductID, line.BatchID,
			line.Quantity, line.UnitPrice, line.TotalPrice, line.Serials,
		)
		if err != nil {
			return fmt.Errorf("insert return line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la devolución con líneas.
func (r *ReturnRepo) GetByID(id string) (*entity.ReturnTransaction, error) {
	query := `
		SELECT id, company_id, original_sale_id, return_number, counter_number, total_refund, refund_method, COALESCE(reason, ''), COALESCE(linked_party_id, ''), COALESCE(account_id, ''), created_by, created_at
		FROM returns WHERE id = $1`
	var ret entity.ReturnTransaction
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&ret.ID, &ret.CompanyID, &ret.OriginalSaleID, &ret.ReturnNumber, &ret.CounterNumber,
		&ret.TotalRefund, &ret.RefundMethod, &ret.Reason,
		&ret.LinkedPartyID, &ret.AccountID, &ret.CreatedBy, &ret.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get return: %w", err)
	}
	if err := r.loadLines(&ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

// ListByCompany lista devoluciones de la empresa, más recientes primero.
func (r *ReturnRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.ReturnTransaction, int, error) {
	var total int
	if err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM returns WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count returns: %w", err)
	}
	query := `
		SELECT id, company_id, original_sale_id, return_number, counter_number, total_refund, refund_method, COALESCE(reason, ''), COALESCE(linked_party_id, ''), COALESCE(account_id, ''), created_by, created_at
		FROM returns WHERE company_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReturnTransaction
	for rows.Next() {
		var ret entity.ReturnTransaction
		if err := rows.Scan(
			&ret.ID, &ret.CompanyID, &ret.OriginalSaleID, &ret.ReturnNumber, &ret.CounterNumber,
			&ret.TotalRefund, &ret.RefundMethod, &ret.Reason,
			&ret.LinkedPartyID, &ret.AccountID, &ret.CreatedBy, &ret.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan return: %w", err)
		}
		list = append(list, &ret)
	}
	return list, total, rows.Err()
}

// SumReturnedByLine suma lo ya devuelto de una venta por (producto, lote).
func (r *ReturnRepo) SumReturnedByLine(originalSaleID string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT rl.product_id, rl.batch_id, sum(rl.quantity)
		FROM return_lines rl
		JOIN returns ret ON ret.id = rl.return_id
		WHERE ret.original_sale_id = $1
		GROUP BY rl.product_id, rl.batch_id`
	rows, err := r.q.Query(context.Background(), query, originalSaleID)
	if err != nil {
		return nil, fmt.Errorf("sum returned lines: %w", err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var productID, batchID string
		var qty decimal.Decimal
		if err := rows.Scan(&productID, &batchID, &qty); err != nil {
			return nil, fmt.Errorf("scan returned sum: %w", err)
		}
		out[productID+"|"+batchID] = qty
	}
	return out, rows.Err()
}

func (r *ReturnRepo) loadLines(ret *entity.ReturnTransaction) error {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, return_id, product_id, batch_id, quantity, unit_price, total_price, COALESCE(serials, '{}')
		FROM return_lines WHERE return_id = $1 ORDER BY id`, ret.ID)
	if err != nil {
		return fmt.Errorf("list return lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line entity.ReturnLine
		if err := rows.Scan(
			&line.ID, &line.ReturnID, &line.ProductID, &line.BatchID,
			&line.Quantity, &line.UnitPrice, &line.TotalPrice, &line.Serials,
		); err != nil {
			return fmt.Errorf("scan return line: %w", err)
		}
		ret.Lines = append(ret.Lines, line)
	}
	return rows.Err()
}
