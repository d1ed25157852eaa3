package repository

import "github.com/jhoicas/pos-ledger-api/internal/domain/entity"

// AccountRepository define el puerto del directorio de accounts (un registro
// por tercero+empresa).
type AccountRepository interface {
	// FindOrCreate aprovisiona el account Active si no existe. Es idempotente
	// bajo concurrencia: se apoya en la constraint única (party_id, company_id),
	// no en un check-then-insert.
	FindOrCreate(partyID, companyID, kind, createdBy string) (*entity.Account, error)
	GetByID(id string) (*entity.Account, error)
	GetByParty(partyID, companyID string) (*entity.Account, error)
	UpdateStatus(id, status, updatedBy string) error
	// SoftDelete marca el flag; los accounts jamás se eliminan físicamente.
	SoftDelete(id, deletedBy string) error
	ListByCompany(companyID, kind string, limit, offset int) ([]*entity.Account, int, error)
}

// PartyRepository define el puerto de persistencia para terceros
// (clientes/proveedores).
type PartyRepository interface {
	Create(party *entity.Party) error
	GetByID(id string) (*entity.Party, error)
	// Search busca por nombre normalizado (minúsculas sin tildes).
	Search(companyID, normalizedQuery string, limit, offset int) ([]*entity.Party, int, error)
	Update(party *entity.Party) error
	SoftDelete(id string) error
}
