package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
)

// LedgerFilter filtros de consulta para el libro mayor.
type LedgerFilter struct {
	CompanyID       string
	LinkedPartyID   string
	AccountID       string
	TransactionType ledger.TransactionType // vacío = todas
	From            *time.Time
	To              *time.Time
	Limit           int
	Offset          int
}

// LedgerRepository define el puerto del libro mayor append-only. InsertPair es
// el único camino de escritura y lo invoca exclusivamente el poster de partida
// doble; no existe update ni delete de asientos confirmados.
type LedgerRepository interface {
	InsertPair(debit, credit *entity.LedgerEntry) error
	List(filter LedgerFilter) ([]*entity.LedgerEntry, int, error)
	ListByParty(companyID, partyID string) ([]*entity.LedgerEntry, error)
	// SumByAccount agrega débitos y créditos de una cuenta en un rango.
	SumByAccount(companyID string, account ledger.AccountKind, from, to *time.Time) (debits, credits decimal.Decimal, err error)
	// CountByParty cuenta asientos vivos de un tercero (guard de integridad
	// referencial antes de un soft-delete).
	CountByParty(companyID, partyID string) (int64, error)
}
