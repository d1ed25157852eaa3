package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

var _ repository.PartyRepository = (*PartyRepo)(nil)

// PartyRepo implementación de PartyRepository (usable con pool o tx).
type PartyRepo struct {
	q Querier
}

// NewPartyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

const partyColumns = `id, company_id, name, search_name, kind, COALESCE(tax_id, ''), COALESCE(email, ''), COALESCE(phone, ''), is_deleted, created_at, updated_at`

// Create persiste el tercero con su nombre de búsqueda normalizado.
func (r *PartyRepo) Create(party *entity.Party) error {
	query := `
		INSERT INTO parties (id, company_id, name, search_name, kind, tax_id, email, phone, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		party.ID, party.CompanyID, party.Name, party.SearchName, party.Kind,
		nullIfEmpty(party.TaxID), nullIfEmpty(party.Email), nullIfEmpty(party.Phone),
		party.CreatedAt, party.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert party: %w", err)
	}
	return nil
}

// GetByID obtiene un tercero por ID.
func (r *PartyRepo) GetByID(id string) (*entity.Party, error) {
	query := fmt.Sprintf(`SELECT %s FROM parties WHERE id = $1`, partyColumns)
	var p entity.Party
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.SearchName, &p.Kind,
		&p.TaxID, &p.Email, &p.Phone, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get party: %w", err)
	}
	return &p, nil
}

// Search busca por search_name (ya normalizado por el caso de uso) con LIKE.
func (r *PartyRepo) Search(companyID, normalizedQuery string, limit, offset int) ([]*entity.Party, int, error) {
	pattern := "%" + normalizedQuery + "%"
	var total int
	err := r.q.QueryRow(context.Background(), `
		SELECT count(*) FROM parties
		WHERE company_id = $1 AND is_deleted = false AND search_name LIKE $2`,
		companyID, pattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count parties: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM parties
		WHERE company_id = $1 AND is_deleted = false AND search_name LIKE $2
		ORDER BY name
		LIMIT $3 OFFSET $4`, partyColumns)
	rows, err := r.q.Query(context.Background(), query, companyID, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search parties: %w", err)
	}
	defer rows.Close()
	var list []*entity.Party
	for rows.Next() {
		var p entity.Party
		if err := rows.Scan(
			&p.ID, &p.CompanyID, &p.Name, &p.SearchName, &p.Kind,
			&p.TaxID, &p.Email, &p.Phone, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan party: %w", err)
		}
		list = append(list, &p)
	}
	return list, total, rows.Err()
}

// Update actualiza los datos del tercero.
func (r *PartyRepo) Update(party *entity.Party) error {
	query := `
		UPDATE parties
		SET name = $2, search_name = $3, kind = $4, tax_id = $5, email = $6, phone = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		party.ID, party.Name, party.SearchName, party.Kind,
		nullIfEmpty(party.TaxID), nullIfEmpty(party.Email), nullIfEmpty(party.Phone),
		party.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update party: %w", err)
	}
	return nil
}

// SoftDelete marca el flag de borrado.
func (r *PartyRepo) SoftDelete(id string) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE parties SET is_deleted = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("soft delete party: %w", err)
	}
	return nil
}
