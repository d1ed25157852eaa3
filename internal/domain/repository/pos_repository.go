package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas POS.
type SaleRepository interface {
	// Create persiste la venta con sus líneas.
	Create(sale *entity.SaleTransaction) error
	// GetByID retorna la venta con líneas, o nil si no existe.
	GetByID(id string) (*entity.SaleTransaction, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.SaleTransaction, int, error)
}

// ReturnRepository define el puerto de persistencia para devoluciones.
type ReturnRepository interface {
	Create(ret *entity.ReturnTransaction) error
	GetByID(id string) (*entity.ReturnTransaction, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.ReturnTransaction, int, error)
	// SumReturnedByLine suma lo ya devuelto de una venta, agrupado por
	// "productID|batchID", para impedir devolver más de lo vendido.
	SumReturnedByLine(originalSaleID string) (map[string]decimal.Decimal, error)
}

// PaymentRepository define el puerto de persistencia para pagos.
type PaymentRepository interface {
	Create(payment *entity.Payment) error
	ListBySale(saleID string) ([]*entity.Payment, error)
}

// CounterRepository entrega consecutivos por (empresa, nombre) con un upsert
// atómico (número de devolución, etc.).
type CounterRepository interface {
	Next(companyID, name string) (int64, error)
}

// AuditLogRepository define el puerto del log de auditoría.
type AuditLogRepository interface {
	Create(log *entity.AuditLog) error
	ListByCompany(companyID string, limit, offset int) ([]*entity.AuditLog, error)
}
