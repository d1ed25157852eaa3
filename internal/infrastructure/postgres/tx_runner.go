package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/pos-ledger-api/internal/application/accounting"
	"github.com/jhoicas/pos-ledger-api/internal/application/inventory"
	"github.com/jhoicas/pos-ledger-api/internal/application/pos"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

var _ pos.TxRunner = (*TxRunner)(nil)
var _ accounting.LedgerTxRunner = (*TxRunner)(nil)
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunPOS inicia una transacción con todos los repos del motor de ventas
// atados a ella y hace Commit o Rollback. Ventas y devoluciones pasan por
// aquí: inventario, documentos, asientos y pagos comparten el mismo destino.
func (r *TxRunner) RunPOS(ctx context.Context, fn func(repos pos.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := pos.TxRepos{
		Inventory: NewInventoryRepository(tx),
		Units:     NewInventoryUnitRepository(tx),
		Sales:     NewSaleRepository(tx),
		Returns:   NewReturnRepository(tx),
		Payments:  NewPaymentRepository(tx),
		Ledger:    NewLedgerRepository(tx),
		Accounts:  NewAccountRepository(tx),
		Counters:  NewCounterRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunLedger inicia una transacción corta solo con el repo de libro mayor
// (gastos y asientos fuera del flujo POS).
func (r *TxRunner) RunLedger(ctx context.Context, fn func(ledgerRepo repository.LedgerRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewLedgerRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunInventory inicia una transacción con los repos de inventario (registro,
// lotes y unidades serializadas entran juntos).
func (r *TxRunner) RunInventory(ctx context.Context, fn func(inv repository.InventoryRepository, units repository.InventoryUnitRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewInventoryRepository(tx), NewInventoryUnitRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
