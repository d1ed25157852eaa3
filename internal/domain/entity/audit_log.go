package entity

import "time"

// Acciones auditables.
const (
	AuditCreate = "Create"
	AuditUpdate = "Update"
	AuditDelete = "Delete"
)

// AuditLog es un evento de auditoría fire-and-forget. No es necesario para la
// corrección del núcleo financiero; se emite después del commit.
type AuditLog struct {
	ID          string
	CompanyID   string
	ActorID     string
	Action      string // Create, Update, Delete
	EntityType  string // "Sale", "Return", "Account", ...
	EntityID    string
	Description string
	CreatedAt   time.Time
}
