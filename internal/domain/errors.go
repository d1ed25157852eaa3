package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// InsufficientStockError se retorna cuando un lote no tiene cantidad suficiente
// para cubrir lo solicitado. Aborta la venta completa (rollback).
type InsufficientStockError struct {
	ProductID string
	BatchID   string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: producto %s lote %s solicitado %s disponible %s",
		e.ProductID, e.BatchID, e.Requested.String(), e.Available.String())
}

// UnbalancedEntryError se retorna cuando débito y crédito no coinciden.
// Es un error de programación o del caller; nunca se corrige en silencio.
type UnbalancedEntryError struct {
	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("asiento desbalanceado: débito %s != crédito %s",
		e.DebitAmount.String(), e.CreditAmount.String())
}

// InvalidTotalsError se retorna cuando los totales enviados por el caller no
// cuadran (totalPayable != subtotal - descuento + impuesto). Se verifica antes
// de cualquier mutación.
type InvalidTotalsError struct {
	Expected decimal.Decimal
	Given    decimal.Decimal
}

func (e *InvalidTotalsError) Error() string {
	return fmt.Sprintf("totales inconsistentes: esperado %s, recibido %s",
		e.Expected.String(), e.Given.String())
}

// OriginalTransactionNotFoundError se retorna al procesar una devolución cuya
// venta original no existe o no pertenece a la empresa.
type OriginalTransactionNotFoundError struct {
	TransactionID string
}

func (e *OriginalTransactionNotFoundError) Error() string {
	return fmt.Sprintf("venta original no encontrada: %s", e.TransactionID)
}

// InvalidReturnStateError se retorna cuando un serial a devolver no está en
// estado Sold (ya devuelto, defectuoso o inexistente).
type InvalidReturnStateError struct {
	SerialNumber string
}

func (e *InvalidReturnStateError) Error() string {
	return fmt.Sprintf("el serial %s no está en estado vendido", e.SerialNumber)
}

// DuplicateSerialError se retorna cuando la venta trae seriales repetidos o un
// serial que ya existe en inventario.
type DuplicateSerialError struct {
	SerialNumber string
}

func (e *DuplicateSerialError) Error() string {
	return fmt.Sprintf("serial duplicado: %s", e.SerialNumber)
}
