package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create persiste el pago (monto negativo en reembolsos).
func (r *PaymentRepo) Create(payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, company_id, sale_id, entry_group_id, method, amount_paid, status, reference, paid_by, payment_date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		payment.ID, payment.CompanyID, payment.SaleID, nullIfEmpty(payment.EntryGroupID),
		payment.Method, payment.AmountPaid, payment.Status, nullIfEmpty(payment.Reference),
		nullIfEmpty(payment.PaidBy), payment.PaymentDate, payment.CreatedBy, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ListBySale lista los pagos de una venta en orden cronológico.
func (r *PaymentRepo) ListBySale(saleID string) ([]*entity.Payment, error) {
	query := `
		SELECT id, company_id, sale_id, COALESCE(entry_group_id, ''), method, amount_paid, status, COALESCE(reference, ''), COALESCE(paid_by, ''), payment_date, created_by, created_at
		FROM payments WHERE sale_id = $1 ORDER BY payment_date`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(
			&p.ID, &p.CompanyID, &p.SaleID, &p.EntryGroupID, &p.Method, &p.AmountPaid,
			&p.Status, &p.Reference, &p.PaidBy, &p.PaymentDate, &p.CreatedBy, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
