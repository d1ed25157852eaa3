package accounting

import (
	"context"
	"time"

	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// LedgerTxRunner ejecuta una función dentro de una transacción de BD con el
// repo de libro mayor atado a esa tx (gastos y otros asientos fuera del POS).
type LedgerTxRunner interface {
	RunLedger(ctx context.Context, fn func(ledgerRepo repository.LedgerRepository) error) error
}

// BalanceCache cachea saldos derivados como optimización read-through. Nunca
// es fuente de verdad: el poster invalida la clave del tercero al escribir
// asientos nuevos y el saldo siempre puede recalcularse por replay.
type BalanceCache interface {
	Get(ctx context.Context, key string) (*ledger.AccountBalance, bool, error)
	Set(ctx context.Context, key string, value *ledger.AccountBalance, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// NoopBalanceCache desactiva el cacheo (wiring sin Redis).
type NoopBalanceCache struct{}

func (NoopBalanceCache) Get(_ context.Context, _ string) (*ledger.AccountBalance, bool, error) {
	return nil, false, nil
}

func (NoopBalanceCache) Set(_ context.Context, _ string, _ *ledger.AccountBalance, _ time.Duration) error {
	return nil
}

func (NoopBalanceCache) Delete(_ context.Context, _ string) error { return nil }
