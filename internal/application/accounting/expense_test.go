package accounting

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// memLedgerTxRunner pasa el repo directo; el rollback real lo cubre la capa
// de infraestructura.
type memLedgerTxRunner struct {
	repo *memLedgerRepo
}

func (r *memLedgerTxRunner) RunLedger(_ context.Context, fn func(ledgerRepo repository.LedgerRepository) error) error {
	return fn(r.repo)
}

func TestCreateExpense_PostsDebitAndCredit(t *testing.T) {
	repo := &memLedgerRepo{}
	uc := NewExpenseUseCase(&memLedgerTxRunner{repo: repo}, NewPoster(), repo)

	txID, err := uc.CreateExpense(context.Background(), ExpenseInput{
		CompanyID:   "co-1",
		Description: "Arriendo local agosto",
		Amount:      decimal.NewFromInt(800),
		CreatedBy:   "user-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, txID)

	require.Len(t, repo.entries, 2)
	debit, credit := repo.entries[0], repo.entries[1]
	assert.Equal(t, ledger.ExpenseGeneral, debit.Account)
	assert.Equal(t, ledger.CashBank, credit.Account)
	assert.Equal(t, ledger.TxExpense, debit.TransactionType)
	assert.Equal(t, txID, debit.TransactionID)
}

func TestCreateExpense_RejectsNonPositiveAmount(t *testing.T) {
	repo := &memLedgerRepo{}
	uc := NewExpenseUseCase(&memLedgerTxRunner{repo: repo}, NewPoster(), repo)

	_, err := uc.CreateExpense(context.Background(), ExpenseInput{
		CompanyID: "co-1",
		Amount:    decimal.Zero,
		CreatedBy: "user-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, repo.entries)
}

func TestListExpenses_SumsOnlyDebits(t *testing.T) {
	repo := &memLedgerRepo{}
	uc := NewExpenseUseCase(&memLedgerTxRunner{repo: repo}, NewPoster(), repo)

	for _, amount := range []int64{100, 250} {
		_, err := uc.CreateExpense(context.Background(), ExpenseInput{
			CompanyID: "co-1",
			Amount:    decimal.NewFromInt(amount),
			CreatedBy: "user-1",
		})
		require.NoError(t, err)
	}

	entries, total, err := uc.ListExpenses(repository.LedgerFilter{CompanyID: "co-1"})
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.True(t, total.Equal(decimal.NewFromInt(350)), "total %s", total)
}
