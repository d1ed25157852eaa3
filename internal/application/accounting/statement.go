package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// TTL del cache de saldos. Corto a propósito: el cache es solo una
// optimización de lectura y la invalidación explícita manda.
const balanceCacheTTL = 5 * time.Minute

// StatementUseCase consulta el libro mayor y deriva saldos por tercero.
type StatementUseCase struct {
	ledgerRepo repository.LedgerRepository
	partyRepo  repository.PartyRepository
	cache      BalanceCache
}

// NewStatementUseCase construye el caso de uso. cache puede ser NoopBalanceCache.
func NewStatementUseCase(ledgerRepo repository.LedgerRepository, partyRepo repository.PartyRepository, cache BalanceCache) *StatementUseCase {
	if cache == nil {
		cache = NoopBalanceCache{}
	}
	return &StatementUseCase{ledgerRepo: ledgerRepo, partyRepo: partyRepo, cache: cache}
}

// BalanceKey clave de cache del saldo de un tercero.
func BalanceKey(companyID, partyID string) string {
	return fmt.Sprintf("balance:%s:%s", companyID, partyID)
}

// GetPartyBalance deriva el saldo de un tercero plegando sus asientos.
// Pasa primero por el cache read-through; en miss se recalcula por replay.
func (uc *StatementUseCase) GetPartyBalance(ctx context.Context, companyID, partyID string) (*ledger.AccountBalance, error) {
	if companyID == "" || partyID == "" {
		return nil, domain.ErrInvalidInput
	}
	party, err := uc.partyRepo.GetByID(partyID)
	if err != nil {
		return nil, err
	}
	if party == nil || party.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	key := BalanceKey(companyID, partyID)
	if cached, ok, err := uc.cache.Get(ctx, key); err == nil && ok {
		return cached, nil
	}

	entries, err := uc.ledgerRepo.ListByParty(companyID, partyID)
	if err != nil {
		return nil, fmt.Errorf("list party entries: %w", err)
	}
	balance := ledger.DeriveBalance(toPostings(entries))

	// Error de cache no afecta la respuesta
	_ = uc.cache.Set(ctx, key, &balance, balanceCacheTTL)
	return &balance, nil
}

// GetStatement lista los asientos del tercero junto con su saldo derivado.
func (uc *StatementUseCase) GetStatement(ctx context.Context, companyID, partyID string) ([]*entity.LedgerEntry, *ledger.AccountBalance, error) {
	entries, err := uc.ledgerRepo.ListByParty(companyID, partyID)
	if err != nil {
		return nil, nil, fmt.Errorf("list party entries: %w", err)
	}
	balance, err := uc.GetPartyBalance(ctx, companyID, partyID)
	if err != nil {
		return nil, nil, err
	}
	return entries, balance, nil
}

// ListEntries lista el libro mayor con filtros y paginación.
func (uc *StatementUseCase) ListEntries(_ context.Context, filter repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	if filter.CompanyID == "" {
		return nil, 0, domain.ErrInvalidInput
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return uc.ledgerRepo.List(filter)
}

func toPostings(entries []*entity.LedgerEntry) []ledger.Posting {
	postings := make([]ledger.Posting, 0, len(entries))
	for _, e := range entries {
		postings = append(postings, ledger.Posting{Account: e.Account, Side: e.EntryType, Amount: e.Amount})
	}
	return postings
}
