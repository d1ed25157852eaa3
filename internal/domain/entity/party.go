package entity

import "time"

// Tipos de relación comercial de un tercero con la empresa.
const (
	PartyCustomer = "Customer"
	PartyVendor   = "Vendor"
	PartyBoth     = "Both"
)

// Party representa un tercero (cliente o proveedor) de la empresa.
// SearchName guarda el nombre normalizado (minúsculas, sin tildes) para
// búsqueda insensible a acentos.
type Party struct {
	ID         string
	CompanyID  string
	Name       string
	SearchName string
	Kind       string // Customer, Vendor, Both
	TaxID      string
	Email      string
	Phone      string
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
