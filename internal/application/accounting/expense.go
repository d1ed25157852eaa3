package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// ExpenseInput entrada para registrar un gasto.
type ExpenseInput struct {
	CompanyID     string
	Description   string
	DebitAccount  ledger.AccountKind // normalmente General Expense
	CreditAccount ledger.AccountKind // normalmente Cash/Bank
	Amount        decimal.Decimal
	LinkedPartyID string
	AccountID     string
	CreatedBy     string
}

// ExpenseUseCase registra gastos como asientos de partida doble. Es el segundo
// consumidor del poster, fuera del flujo POS.
type ExpenseUseCase struct {
	txRunner   LedgerTxRunner
	poster     *Poster
	ledgerRepo repository.LedgerRepository // solo lecturas; las escrituras van por la tx
}

// NewExpenseUseCase construye el caso de uso.
func NewExpenseUseCase(txRunner LedgerTxRunner, poster *Poster, ledgerRepo repository.LedgerRepository) *ExpenseUseCase {
	return &ExpenseUseCase{txRunner: txRunner, poster: poster, ledgerRepo: ledgerRepo}
}

// CreateExpense registra el gasto (débito a la cuenta de gasto, crédito a
// Cash/Bank) dentro de una transacción corta.
func (uc *ExpenseUseCase) CreateExpense(ctx context.Context, in ExpenseInput) (transactionID string, err error) {
	if in.CompanyID == "" || in.CreatedBy == "" {
		return "", domain.ErrInvalidInput
	}
	if !in.Amount.GreaterThan(decimal.Zero) {
		return "", domain.ErrInvalidInput
	}
	debit := in.DebitAccount
	if debit == "" {
		debit = ledger.ExpenseGeneral
	}
	credit := in.CreditAccount
	if credit == "" {
		credit = ledger.CashBank
	}

	transactionID = uuid.New().String()
	err = uc.txRunner.RunLedger(ctx, func(ledgerRepo repository.LedgerRepository) error {
		_, postErr := uc.poster.Post(ledgerRepo, Fact{
			TransactionID:   transactionID,
			CompanyID:       in.CompanyID,
			TransactionType: ledger.TxExpense,
			ReferenceType:   entity.RefPayments,
			Description:     in.Description,
			DebitAccount:    debit,
			DebitAmount:     in.Amount,
			CreditAccount:   credit,
			CreditAmount:    in.Amount,
			LinkedPartyID:   in.LinkedPartyID,
			AccountID:       in.AccountID,
			Date:            time.Now(),
			CreatedBy:       in.CreatedBy,
		})
		return postErr
	})
	if err != nil {
		return "", err
	}
	return transactionID, nil
}

// ListExpenses lista los asientos de gasto de la empresa en un rango, sumando
// solo los débitos (el valor real del gasto).
func (uc *ExpenseUseCase) ListExpenses(filter repository.LedgerFilter) ([]*entity.LedgerEntry, decimal.Decimal, error) {
	filter.TransactionType = ledger.TxExpense
	entries, _, err := uc.ledgerRepo.List(filter)
	if err != nil {
		return nil, decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range entries {
		if e.EntryType == ledger.Debit {
			total = total.Add(e.Amount)
		}
	}
	return entries, total, nil
}
