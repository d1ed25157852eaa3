package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pago.
const (
	PaymentCompleted = "Completed"
	PaymentPending   = "Pending"
	PaymentFailed    = "Failed"
	PaymentRefunded  = "Refunded"
)

// Payment registra el dinero recibido (o devuelto, con monto negativo y
// estado Refunded) asociado a una venta POS.
type Payment struct {
	ID           string
	CompanyID    string
	SaleID       string
	EntryGroupID string // par contable que respalda el pago, si existe
	Method       string
	AmountPaid   decimal.Decimal // negativo en reembolsos
	Status       string
	Reference    string
	PaidBy       string // tercero que paga, vacío en mostrador
	PaymentDate  time.Time
	CreatedBy    string
	CreatedAt    time.Time
}
