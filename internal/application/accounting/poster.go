package accounting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// Fact es un hecho económico a registrar en partida doble.
type Fact struct {
	TransactionID   string
	CompanyID       string
	TransactionType ledger.TransactionType
	ReferenceType   string
	Description     string
	DebitAccount    ledger.AccountKind
	DebitAmount     decimal.Decimal
	CreditAccount   ledger.AccountKind
	CreditAmount    decimal.Decimal
	LinkedPartyID   string
	AccountID       string
	Date            time.Time
	CreatedBy       string
}

// Poster emite asientos balanceados. Es el único componente que escribe en el
// libro mayor: ningún otro código llama LedgerRepository.InsertPair, con lo
// que el balance global es imposible de violar por construcción.
type Poster struct{}

// NewPoster construye el poster (sin estado).
func NewPoster() *Poster { return &Poster{} }

// Post valida el hecho y escribe exactamente dos filas (débito + crédito) que
// comparten un EntryGroupID recién generado. El repo llega del caller para que
// el par participe en la transacción en curso (patrón de integración en-tx).
// Retorna *domain.UnbalancedEntryError si débito != crédito; en ese caso no se
// escribe nada.
func (p *Poster) Post(ledgerRepo repository.LedgerRepository, f Fact) (groupID string, err error) {
	if !f.DebitAmount.Equal(f.CreditAmount) {
		return "", &domain.UnbalancedEntryError{DebitAmount: f.DebitAmount, CreditAmount: f.CreditAmount}
	}
	if f.DebitAmount.LessThan(decimal.Zero) {
		return "", domain.ErrInvalidInput
	}
	if !f.DebitAccount.Valid() || !f.CreditAccount.Valid() {
		return "", domain.ErrInvalidInput
	}
	if f.CompanyID == "" || f.TransactionID == "" {
		return "", domain.ErrInvalidInput
	}

	date := f.Date
	if date.IsZero() {
		date = time.Now()
	}
	groupID = uuid.New().String()
	now := time.Now()

	debit := &entity.LedgerEntry{
		ID:              uuid.New().String(),
		TransactionID:   f.TransactionID,
		EntryGroupID:    groupID,
		CompanyID:       f.CompanyID,
		Account:         f.DebitAccount,
		EntryType:       ledger.Debit,
		Amount:          f.DebitAmount,
		TransactionType: f.TransactionType,
		ReferenceType:   f.ReferenceType,
		Description:     f.Description,
		LinkedPartyID:   f.LinkedPartyID,
		AccountID:       f.AccountID,
		Date:            date,
		CreatedBy:       f.CreatedBy,
		CreatedAt:       now,
	}
	credit := &entity.LedgerEntry{
		ID:              uuid.New().String(),
		TransactionID:   f.TransactionID,
		EntryGroupID:    groupID,
		CompanyID:       f.CompanyID,
		Account:         f.CreditAccount,
		EntryType:       ledger.Credit,
		Amount:          f.CreditAmount,
		TransactionType: f.TransactionType,
		ReferenceType:   f.ReferenceType,
		Description:     f.Description,
		LinkedPartyID:   f.LinkedPartyID,
		AccountID:       f.AccountID,
		Date:            date,
		CreatedBy:       f.CreatedBy,
		CreatedAt:       now,
	}

	if err := ledgerRepo.InsertPair(debit, credit); err != nil {
		return "", err
	}
	return groupID, nil
}
