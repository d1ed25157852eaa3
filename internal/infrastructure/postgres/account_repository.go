package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo implementación de AccountRepository (usable con pool o tx).
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

const accountColumns = `id, party_id, company_id, kind, status, is_deleted, COALESCE(created_by, ''), created_at, updated_at`

// FindOrCreate aprovisiona el account si no existe. El INSERT ... ON CONFLICT
// sobre la constraint única (party_id, company_id) lo hace idempotente bajo
// concurrencia: dos ventas simultáneas del mismo tercero obtienen la misma
// fila sin check-then-insert.
func (r *AccountRepo) FindOrCreate(partyID, companyID, kind, createdBy string) (*entity.Account, error) {
	query := fmt.Sprintf(`
		INSERT INTO accounts (id, party_id, company_id, kind, status, is_deleted, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, $6, now(), now())
		ON CONFLICT (party_id, company_id) DO UPDATE SET updated_at = accounts.updated_at
		RETURNING %s`, accountColumns)
	var a entity.Account
	err := r.q.QueryRow(context.Background(), query,
		uuid.New().String(), partyID, companyID, kind, entity.AccountActive, nullIfEmpty(createdBy),
	).Scan(&a.ID, &a.PartyID, &a.CompanyID, &a.Kind, &a.Status, &a.IsDeleted, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("find or create account: %w", err)
	}
	return &a, nil
}

// GetByID obtiene un account por ID.
func (r *AccountRepo) GetByID(id string) (*entity.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	var a entity.Account
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&a.ID, &a.PartyID, &a.CompanyID, &a.Kind, &a.Status, &a.IsDeleted, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// GetByParty obtiene el account de un tercero en la empresa.
func (r *AccountRepo) GetByParty(partyID, companyID string) (*entity.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE party_id = $1 AND company_id = $2`, accountColumns)
	var a entity.Account
	err := r.q.QueryRow(context.Background(), query, partyID, companyID).Scan(
		&a.ID, &a.PartyID, &a.CompanyID, &a.Kind, &a.Status, &a.IsDeleted, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by party: %w", err)
	}
	return &a, nil
}

// UpdateStatus cambia el estado del account.
func (r *AccountRepo) UpdateStatus(id, status, updatedBy string) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE accounts SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update account status: %w", err)
	}
	_ = updatedBy // el quién queda en el audit log, no en la fila
	return nil
}

// SoftDelete marca el flag de borrado; la fila y sus asientos permanecen.
func (r *AccountRepo) SoftDelete(id, deletedBy string) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE accounts SET is_deleted = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("soft delete account: %w", err)
	}
	_ = deletedBy
	return nil
}

// ListByCompany lista accounts vivos de la empresa, opcionalmente por tipo.
func (r *AccountRepo) ListByCompany(companyID, kind string, limit, offset int) ([]*entity.Account, int, error) {
	var total int
	err := r.q.QueryRow(context.Background(), `
		SELECT count(*) FROM accounts
		WHERE company_id = $1 AND is_deleted = false AND ($2 = '' OR kind = $2)`,
		companyID, kind).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM accounts
		WHERE company_id = $1 AND is_deleted = false AND ($2 = '' OR kind = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`, accountColumns)
	rows, err := r.q.Query(context.Background(), query, companyID, kind, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Account
	for rows.Next() {
		var a entity.Account
		if err := rows.Scan(
			&a.ID, &a.PartyID, &a.CompanyID, &a.Kind, &a.Status, &a.IsDeleted, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan account: %w", err)
		}
		list = append(list, &a)
	}
	return list, total, rows.Err()
}
