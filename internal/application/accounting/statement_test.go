package accounting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

type memPartyRepo struct {
	parties map[string]*entity.Party
}

func (m *memPartyRepo) Create(party *entity.Party) error { m.parties[party.ID] = party; return nil }
func (m *memPartyRepo) GetByID(id string) (*entity.Party, error) {
	return m.parties[id], nil
}
func (m *memPartyRepo) Search(_, _ string, _, _ int) ([]*entity.Party, int, error) {
	return nil, 0, nil
}
func (m *memPartyRepo) Update(_ *entity.Party) error { return nil }
func (m *memPartyRepo) SoftDelete(_ string) error    { return nil }

// memBalanceCache cache en memoria que cuenta hits y misses.
type memBalanceCache struct {
	values map[string]*ledger.AccountBalance
	hits   int
	sets   int
}

func newMemBalanceCache() *memBalanceCache {
	return &memBalanceCache{values: make(map[string]*ledger.AccountBalance)}
}

func (c *memBalanceCache) Get(_ context.Context, key string) (*ledger.AccountBalance, bool, error) {
	v, ok := c.values[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *memBalanceCache) Set(_ context.Context, key string, value *ledger.AccountBalance, _ time.Duration) error {
	c.sets++
	c.values[key] = value
	return nil
}

func (c *memBalanceCache) Delete(_ context.Context, key string) error {
	delete(c.values, key)
	return nil
}

func statementFixture(t *testing.T) (*memLedgerRepo, *memBalanceCache, *StatementUseCase) {
	t.Helper()
	ledgerRepo := &memLedgerRepo{}
	partyRepo := &memPartyRepo{parties: map[string]*entity.Party{
		"party-1": {ID: "party-1", CompanyID: "co-1", Name: "Comercial Andina"},
	}}
	cache := newMemBalanceCache()
	uc := NewStatementUseCase(ledgerRepo, partyRepo, cache)

	// Venta a crédito de 150 y abono de 60, contra party-1.
	poster := NewPoster()
	sale := saleFact()
	sale.DebitAccount = ledger.AccountsReceivable
	sale.DebitAmount = decimal.NewFromInt(150)
	sale.CreditAmount = decimal.NewFromInt(150)
	sale.LinkedPartyID = "party-1"
	_, err := poster.Post(ledgerRepo, sale)
	require.NoError(t, err)

	payment := saleFact()
	payment.TransactionType = ledger.TxPayment
	payment.DebitAccount = ledger.CashBank
	payment.DebitAmount = decimal.NewFromInt(60)
	payment.CreditAccount = ledger.AccountsReceivable
	payment.CreditAmount = decimal.NewFromInt(60)
	payment.LinkedPartyID = "party-1"
	_, err = poster.Post(ledgerRepo, payment)
	require.NoError(t, err)

	return ledgerRepo, cache, uc
}

func TestGetPartyBalance_DerivesFromEntries(t *testing.T) {
	_, _, uc := statementFixture(t)

	balance, err := uc.GetPartyBalance(context.Background(), "co-1", "party-1")
	require.NoError(t, err)
	assert.True(t, balance.AmountDue.Equal(decimal.NewFromInt(150)))
	assert.True(t, balance.AmountReceived.Equal(decimal.NewFromInt(60)))
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(90)))
}

func TestGetPartyBalance_ReadThroughCache(t *testing.T) {
	_, cache, uc := statementFixture(t)

	_, err := uc.GetPartyBalance(context.Background(), "co-1", "party-1")
	require.NoError(t, err)
	assert.Equal(t, 0, cache.hits)
	assert.Equal(t, 1, cache.sets)

	// Segunda consulta: sale del cache sin recalcular.
	_, err = uc.GetPartyBalance(context.Background(), "co-1", "party-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 1, cache.sets)
}

func TestGetPartyBalance_RecalculatesAfterInvalidation(t *testing.T) {
	ledgerRepo, cache, uc := statementFixture(t)

	first, err := uc.GetPartyBalance(context.Background(), "co-1", "party-1")
	require.NoError(t, err)

	// Nuevo abono e invalidación (lo que hace el flujo POS post-commit).
	poster := NewPoster()
	payment := saleFact()
	payment.TransactionType = ledger.TxPayment
	payment.DebitAccount = ledger.CashBank
	payment.DebitAmount = decimal.NewFromInt(90)
	payment.CreditAccount = ledger.AccountsReceivable
	payment.CreditAmount = decimal.NewFromInt(90)
	payment.LinkedPartyID = "party-1"
	_, err = poster.Post(ledgerRepo, payment)
	require.NoError(t, err)
	require.NoError(t, cache.Delete(context.Background(), BalanceKey("co-1", "party-1")))

	second, err := uc.GetPartyBalance(context.Background(), "co-1", "party-1")
	require.NoError(t, err)
	assert.True(t, first.Balance.Equal(decimal.NewFromInt(90)))
	assert.True(t, second.Balance.IsZero(), "saldo %s", second.Balance)
}

func TestGetPartyBalance_UnknownParty(t *testing.T) {
	_, _, uc := statementFixture(t)

	_, err := uc.GetPartyBalance(context.Background(), "co-1", "party-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetPartyBalance_PartyOfAnotherCompany(t *testing.T) {
	_, _, uc := statementFixture(t)

	_, err := uc.GetPartyBalance(context.Background(), "co-2", "party-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetStatement_ReturnsEntriesAndBalance(t *testing.T) {
	_, _, uc := statementFixture(t)

	entries, balance, err := uc.GetStatement(context.Background(), "co-1", "party-1")
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(90)))
}

func TestListEntries_RequiresCompany(t *testing.T) {
	_, _, uc := statementFixture(t)

	_, _, err := uc.ListEntries(context.Background(), repository.LedgerFilter{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type failingLedgerRepo struct {
	*memLedgerRepo
	err error
}

func (f *failingLedgerRepo) ListByParty(_, _ string) ([]*entity.LedgerEntry, error) {
	return nil, f.err
}

func TestGetPartyBalance_RepoErrorIsWrapped(t *testing.T) {
	cause := errors.New("connection reset")
	partyRepo := &memPartyRepo{parties: map[string]*entity.Party{
		"party-1": {ID: "party-1", CompanyID: "co-1", Name: "Comercial Andina"},
	}}
	uc := NewStatementUseCase(&failingLedgerRepo{memLedgerRepo: &memLedgerRepo{}, err: cause}, partyRepo, newMemBalanceCache())

	_, err := uc.GetPartyBalance(context.Background(), "co-1", "party-1")
	require.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, "list party entries")
}
