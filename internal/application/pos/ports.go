package pos

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// TxRepos agrupa los repositorios atados a la transacción en curso. El runner
// los construye sobre la tx y los pasa al callback; todo lo que escriban
// comparte el mismo commit/rollback.
type TxRepos struct {
	Inventory repository.InventoryRepository
	Units     repository.InventoryUnitRepository
	Sales     repository.SaleRepository
	Returns   repository.ReturnRepository
	Payments  repository.PaymentRepository
	Ledger    repository.LedgerRepository
	Accounts  repository.AccountRepository
	Counters  repository.CounterRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD. Garantiza la atomicidad
// del motor de ventas: si fn retorna error no sobrevive ninguna escritura
// (ni descuentos parciales de inventario, ni asientos huérfanos, ni ventas a
// medias).
type TxRunner interface {
	RunPOS(ctx context.Context, fn func(repos TxRepos) error) error
}

// ReceiptLine línea del recibo.
type ReceiptLine struct {
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// ReceiptData datos para el render del recibo (venta o devolución).
type ReceiptData struct {
	Company      *entity.Company
	DocumentID   string // ID de la venta o devolución
	Number       string // número de transacción o de devolución
	Date         string
	Lines        []ReceiptLine
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	Paid         decimal.Decimal
	Change       decimal.Decimal
	RefundMethod string // solo devoluciones
	Reason       string // solo devoluciones
}

// ReceiptRenderer genera el recibo en disco y retorna la ruta. Se invoca
// estrictamente después del commit; un fallo aquí se loguea y jamás revierte
// la venta.
type ReceiptRenderer interface {
	RenderSaleReceipt(ctx context.Context, data ReceiptData) (path string, err error)
	RenderReturnReceipt(ctx context.Context, data ReceiptData) (path string, err error)
}

// AuditSink recibe eventos de auditoría fire-and-forget (post-commit).
type AuditSink interface {
	Notify(event entity.AuditLog)
}

// NoopAuditSink descarta los eventos (tests y wiring mínimo).
type NoopAuditSink struct{}

func (NoopAuditSink) Notify(_ entity.AuditLog) {}
