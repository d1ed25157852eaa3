package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera de la venta y sus líneas.
func (r *SaleRepo) Create(sale *entity.SaleTransaction) error {
	query := `
		INSERT INTO sales (id, company_id, transaction_number, date, subtotal, discount_amount, tax_amount, total_payable, paid_amount, change_given, payment_method, payment_reference, linked_party_id, account_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.CompanyID, sale.TransactionNumber, sale.Date,
		sale.Subtotal, sale.DiscountAmount, sale.TaxAmount, sale.TotalPayable,
		sale.PaidAmount, sale.ChangeGiven, sale.PaymentMethod, nullIfEmpty(sale.PaymentReference),
		nullIfEmpty(sale.LinkedPartyID), nullIfEmpty(sale.AccountID), sale.CreatedBy, sale.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction number already exists: %w", err)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	for i := range sale.Lines {
		line := &sale.Lines[i]
		_, err := r.q.Exec(context.Background(), `
			INSERT INTO sale_lines (id, sale_id, product_id, batch_id, quantity, unit_price, total_price, serials)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			line.ID, sale.ID, line.ProductID, line.BatchID,
			line.Quantity, line.UnitPrice, line.TotalPrice, line.Serials,
		)
		if err != nil {
			return fmt.Errorf("insert sale line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus líneas, o nil si no existe.
func (r *SaleRepo) GetByID(id string) (*entity.SaleTransaction, error) {
	query := `
		SELECT id, company_id, transaction_number, date, subtotal, discount_amount, tax_amount, total_payable, paid_amount, change_given, payment_method, COALESCE(payment_reference, ''), COALESCE(linked_party_id, ''), COALESCE(account_id, ''), created_by, created_at
		FROM sales WHERE id = $1`
	var s entity.SaleTransaction
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.CompanyID, &s.TransactionNumber, &s.Date,
		&s.Subtotal, &s.DiscountAmount, &s.TaxAmount, &s.TotalPayable,
		&s.PaidAmount, &s.ChangeGiven, &s.PaymentMethod, &s.PaymentReference,
		&s.LinkedPartyID, &s.AccountID, &s.CreatedBy, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadLines(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByCompany lista ventas de la empresa, más recientes primero.
func (r *SaleRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.SaleTransaction, int, error) {
	var total int
	if err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM sales WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}
	query := `
		SELECT id, company_id, transaction_number, date, subtotal, discount_amount, tax_amount, total_payable, paid_amount, change_given, payment_method, COALESCE(payment_reference, ''), COALESCE(linked_party_id, ''), COALESCE(account_id, ''), created_by, created_at
		FROM sales WHERE company_id = $1
		ORDER BY date DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleTransaction
	for rows.Next() {
		var s entity.SaleTransaction
		if err := rows.Scan(
			&s.ID, &s.CompanyID, &s.TransactionNumber, &s.Date,
			&s.Subtotal, &s.DiscountAmount, &s.TaxAmount, &s.TotalPayable,
			&s.PaidAmount, &s.ChangeGiven, &s.PaymentMethod, &s.PaymentReference,
			&s.LinkedPartyID, &s.AccountID, &s.CreatedBy, &s.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, &s)
	}
	return list, total, rows.Err()
}

func (r *SaleRepo) loadLines(s *entity.SaleTransaction) error {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, sale_id, product_id, batch_id, quantity, unit_price, total_price, COALESCE(serials, '{}')
		FROM sale_lines WHERE sale_id = $1 ORDER BY id`, s.ID)
	if err != nil {
		return fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line entity.SaleLine
		if err := rows.Scan(
			&line.ID, &line.SaleID, &line.ProductID, &line.BatchID,
			&line.Quantity, &line.UnitPrice, &line.TotalPrice, &line.Serials,
		); err != nil {
			return fmt.Errorf("scan sale line: %w", err)
		}
		s.Lines = append(s.Lines, line)
	}
	return rows.Err()
}
