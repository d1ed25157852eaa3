package entity

import "time"

// Estados del account (relación comercial de un tercero con la empresa).
const (
	AccountActive    = "Active"
	AccountInactive  = "Inactive"
	AccountSuspended = "Suspended"
)

// Account es el registro único por (tercero, empresa) al que se atribuyen los
// asientos contables. Se aprovisiona perezosamente en la primera transacción
// del tercero y nunca se elimina físicamente (solo flag de borrado).
type Account struct {
	ID        string
	PartyID   string
	CompanyID string
	Kind      string // Customer, Vendor, Both (ver constantes Party*)
	Status    string // Active, Inactive, Suspended
	IsDeleted bool
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
