package directory

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// DirectoryUseCase administra terceros (clientes/proveedores) y sus accounts.
// Es el dueño del guard de borrado: un tercero con historia contable no se
// puede eliminar, ni siquiera con soft-delete del account activo.
type DirectoryUseCase struct {
	partyRepo   repository.PartyRepository
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerRepository
}

// NewDirectoryUseCase construye el caso de uso de directorio.
func NewDirectoryUseCase(partyRepo repository.PartyRepository, accountRepo repository.AccountRepository, ledgerRepo repository.LedgerRepository) *DirectoryUseCase {
	return &DirectoryUseCase{partyRepo: partyRepo, accountRepo: accountRepo, ledgerRepo: ledgerRepo}
}

// CreateParty registra un tercero con su nombre de búsqueda normalizado.
func (uc *DirectoryUseCase) CreateParty(companyID string, in dto.CreatePartyRequest) (*dto.PartyResponse, error) {
	if companyID == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	switch in.Kind {
	case entity.PartyCustomer, entity.PartyVendor, entity.PartyBoth:
	default:
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	party := &entity.Party{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		Name:       in.Name,
		SearchName: NormalizeName(in.Name),
		Kind:       in.Kind,
		TaxID:      in.TaxID,
		Email:      in.Email,
		Phone:      in.Phone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.partyRepo.Create(party); err != nil {
		return nil, err
	}
	resp := toPartyResponse(party)
	return &resp, nil
}

// GetParty obtiene un tercero por ID (de la misma empresa).
func (uc *DirectoryUseCase) GetParty(companyID, id string) (*dto.PartyResponse, error) {
	party, err := uc.partyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if party == nil || party.IsDeleted || party.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	resp := toPartyResponse(party)
	return &resp, nil
}

// SearchParties busca por nombre insensible a mayúsculas y tildes.
func (uc *DirectoryUseCase) SearchParties(companyID, query string, page dto.PageRequest) ([]dto.PartyResponse, int, error) {
	if companyID == "" {
		return nil, 0, domain.ErrInvalidInput
	}
	page.DefaultPage()
	parties, total, err := uc.partyRepo.Search(companyID, NormalizeName(query), page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.PartyResponse, 0, len(parties))
	for _, p := range parties {
		out = append(out, toPartyResponse(p))
	}
	return out, total, nil
}

// UpdateParty actualiza los datos del tercero y recalcula el nombre de
// búsqueda.
func (uc *DirectoryUseCase) UpdateParty(companyID, id string, in dto.CreatePartyRequest) (*dto.PartyResponse, error) {
	party, err := uc.partyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if party == nil || party.IsDeleted || party.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if in.Name != "" {
		party.Name = in.Name
		party.SearchName = NormalizeName(in.Name)
	}
	if in.Kind != "" {
		switch in.Kind {
		case entity.PartyCustomer, entity.PartyVendor, entity.PartyBoth:
			party.Kind = in.Kind
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	if in.TaxID != "" {
		party.TaxID = in.TaxID
	}
	if in.Email != "" {
		party.Email = in.Email
	}
	if in.Phone != "" {
		party.Phone = in.Phone
	}
	party.UpdatedAt = time.Now()
	if err := uc.partyRepo.Update(party); err != nil {
		return nil, err
	}
	resp := toPartyResponse(party)
	return &resp, nil
}

// DeleteParty marca el tercero como borrado, solo si no tiene asientos
// contables. La historia financiera jamás pierde su referencia.
func (uc *DirectoryUseCase) DeleteParty(companyID, id, deletedBy string) error {
	party, err := uc.partyRepo.GetByID(id)
	if err != nil {
		return err
	}
	if party == nil || party.IsDeleted || party.CompanyID != companyID {
		return domain.ErrNotFound
	}
	count, err := uc.ledgerRepo.CountByParty(companyID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrConflict
	}
	if account, err := uc.accountRepo.GetByParty(id, companyID); err == nil && account != nil {
		if err := uc.accountRepo.SoftDelete(account.ID, deletedBy); err != nil {
			return err
		}
	}
	return uc.partyRepo.SoftDelete(id)
}

// GetPartyAccount retorna el account del tercero, si ya fue aprovisionado.
func (uc *DirectoryUseCase) GetPartyAccount(companyID, partyID string) (*dto.AccountResponse, error) {
	account, err := uc.accountRepo.GetByParty(partyID, companyID)
	if err != nil {
		return nil, err
	}
	if account == nil || account.IsDeleted {
		return nil, domain.ErrNotFound
	}
	resp := toAccountResponse(account)
	return &resp, nil
}

// UpdateAccountStatus cambia el estado del account (Active, Inactive,
// Suspended). Un account suspendido sigue existiendo: sus asientos son
// intocables.
func (uc *DirectoryUseCase) UpdateAccountStatus(companyID, accountID, status, updatedBy string) error {
	switch status {
	case entity.AccountActive, entity.AccountInactive, entity.AccountSuspended:
	default:
		return domain.ErrInvalidInput
	}
	account, err := uc.accountRepo.GetByID(accountID)
	if err != nil {
		return err
	}
	if account == nil || account.IsDeleted || account.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return uc.accountRepo.UpdateStatus(accountID, status, updatedBy)
}

// ListAccounts lista los accounts de la empresa, opcionalmente por tipo.
func (uc *DirectoryUseCase) ListAccounts(companyID, kind string, page dto.PageRequest) ([]dto.AccountResponse, int, error) {
	if companyID == "" {
		return nil, 0, domain.ErrInvalidInput
	}
	page.DefaultPage()
	accounts, total, err := uc.accountRepo.ListByCompany(companyID, kind, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return out, total, nil
}

// DeleteAccount hace soft-delete del account. Si el tercero tiene asientos,
// el account se marca pero las filas contables quedan intactas (solo flag).
func (uc *DirectoryUseCase) DeleteAccount(companyID, accountID, deletedBy string) error {
	account, err := uc.accountRepo.GetByID(accountID)
	if err != nil {
		return err
	}
	if account == nil || account.IsDeleted || account.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return uc.accountRepo.SoftDelete(accountID, deletedBy)
}

func toPartyResponse(p *entity.Party) dto.PartyResponse {
	return dto.PartyResponse{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		Name:      p.Name,
		Kind:      p.Kind,
		TaxID:     p.TaxID,
		Email:     p.Email,
		Phone:     p.Phone,
	}
}

func toAccountResponse(a *entity.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        a.ID,
		PartyID:   a.PartyID,
		CompanyID: a.CompanyID,
		Kind:      a.Kind,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}
