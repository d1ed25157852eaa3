package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación de LedgerRepository sobre PostgreSQL. La tabla es
// append-only: este repo no expone UPDATE ni DELETE y la base refuerza lo
// mismo con permisos.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `id, transaction_id, entry_group_id, company_id, account, entry_type, amount,
		transaction_type, reference_type, COALESCE(description, ''), COALESCE(linked_party_id, ''), COALESCE(account_id, ''),
		date, COALESCE(created_by, ''), created_at`

// InsertPair escribe el débito y el crédito en una sola sentencia, de modo
// que ni siquiera dentro de la tx existe un instante con el par a medias.
func (r *LedgerRepo) InsertPair(debit, credit *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, transaction_id, entry_group_id, company_id, account, entry_type, amount, transaction_type, reference_type, description, linked_party_id, account_id, date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15),
		       ($16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30)`
	_, err := r.q.Exec(context.Background(), query,
		debit.ID, debit.TransactionID, debit.EntryGroupID, debit.CompanyID, debit.Account, debit.EntryType,
		debit.Amount, debit.TransactionType, debit.ReferenceType, nullIfEmpty(debit.Description),
		nullIfEmpty(debit.LinkedPartyID), nullIfEmpty(debit.AccountID), debit.Date, nullIfEmpty(debit.CreatedBy), debit.CreatedAt,
		credit.ID, credit.TransactionID, credit.EntryGroupID, credit.CompanyID, credit.Account, credit.EntryType,
		credit.Amount, credit.TransactionType, credit.ReferenceType, nullIfEmpty(credit.Description),
		nullIfEmpty(credit.LinkedPartyID), nullIfEmpty(credit.AccountID), credit.Date, nullIfEmpty(credit.CreatedBy), credit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger pair: %w", err)
	}
	return nil
}

// List consulta el libro mayor con filtros dinámicos y paginación.
func (r *LedgerRepo) List(filter repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	var where []string
	var args []any
	add := func(cond string, val any) {
		args = append(args, val)
		where = append(where, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	add("company_id = ?", filter.CompanyID)
	if filter.LinkedPartyID != "" {
		add("linked_party_id = ?", filter.LinkedPartyID)
	}
	if filter.AccountID != "" {
		add("account_id = ?", filter.AccountID)
	}
	if filter.TransactionType != "" {
		add("transaction_type = ?", filter.TransactionType)
	}
	if filter.From != nil {
		add("date >= ?", *filter.From)
	}
	if filter.To != nil {
		add("date <= ?", *filter.To)
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT count(*) FROM ledger_entries WHERE " + whereClause
	if err := r.q.QueryRow(context.Background(), countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM ledger_entries
		WHERE %s
		ORDER BY date DESC, created_at DESC
		LIMIT $%d OFFSET $%d`, ledgerColumns, whereClause, len(args)-1, len(args))

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	list, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByParty retorna todos los asientos de un tercero, del más antiguo al
// más reciente: es la entrada del replay de saldos y el orden importa para
// estados de cuenta legibles.
func (r *LedgerRepo) ListByParty(companyID, partyID string) ([]*entity.LedgerEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM ledger_entries
		WHERE company_id = $1 AND linked_party_id = $2
		ORDER BY date, created_at`, ledgerColumns)
	rows, err := r.q.Query(context.Background(), query, companyID, partyID)
	if err != nil {
		return nil, fmt.Errorf("list party entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// SumByAccount agrega débitos y créditos de una cuenta en un rango.
func (r *LedgerRepo) SumByAccount(companyID string, account ledger.AccountKind, from, to *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(sum(amount) FILTER (WHERE entry_type = 'debit'), 0),
		       COALESCE(sum(amount) FILTER (WHERE entry_type = 'credit'), 0)
		FROM ledger_entries
		WHERE company_id = $1 AND account = $2
		  AND ($3::timestamptz IS NULL OR date >= $3)
		  AND ($4::timestamptz IS NULL OR date <= $4)`
	var debits, credits decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, companyID, account, from, to).Scan(&debits, &credits)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("sum by account: %w", err)
	}
	return debits, credits, nil
}

// CountByParty cuenta los asientos de un tercero (guard de borrado).
func (r *LedgerRepo) CountByParty(companyID, partyID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM ledger_entries WHERE company_id = $1 AND linked_party_id = $2`,
		companyID, partyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count party entries: %w", err)
	}
	return n, nil
}

func scanEntries(rows pgx.Rows) ([]*entity.LedgerEntry, error) {
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.TransactionID, &e.EntryGroupID, &e.CompanyID, &e.Account, &e.EntryType,
			&e.Amount, &e.TransactionType, &e.ReferenceType, &e.Description,
			&e.LinkedPartyID, &e.AccountID, &e.Date, &e.CreatedBy, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
