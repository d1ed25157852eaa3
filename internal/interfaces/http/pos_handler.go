package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/application/pos"
	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// POSHandler maneja las peticiones del punto de venta: ventas y devoluciones.
// Las lecturas usan repos atados al pool; las escrituras pasan por los casos
// de uso transaccionales.
type POSHandler struct {
	saleUC     *pos.SaleUseCase
	returnUC   *pos.ReturnUseCase
	saleRepo   repository.SaleRepository
	returnRepo repository.ReturnRepository
}

// NewPOSHandler construye el handler.
func NewPOSHandler(saleUC *pos.SaleUseCase, returnUC *pos.ReturnUseCase, saleRepo repository.SaleRepository, returnRepo repository.ReturnRepository) *POSHandler {
	return &POSHandler{saleUC: saleUC, returnUC: returnUC, saleRepo: saleRepo, returnRepo: returnRepo}
}

// CreateSale ejecuta una venta completa: descuenta inventario, registra la
// venta, postea los asientos y crea el pago, todo en una transacción.
// POST /api/pos/sales
func (h *POSHandler) CreateSale(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.saleUC.ExecuteSale(c.Context(), companyID, userID, in)
	if err != nil {
		return posError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// GetSale obtiene una venta con sus líneas.
// GET /api/pos/sales/:id
func (h *POSHandler) GetSale(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	sale, err := h.saleUC.GetSale(c.Context(), h.saleRepo, companyID, c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(sale)
}

// CreateReturn ejecuta una devolución contra una venta original.
// POST /api/pos/returns
func (h *POSHandler) CreateReturn(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.returnUC.ExecuteReturn(c.Context(), companyID, userID, in)
	if err != nil {
		return posError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// GetReturn obtiene una devolución con sus líneas.
// GET /api/pos/returns/:id
func (h *POSHandler) GetReturn(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	ret, err := h.returnUC.GetReturn(c.Context(), h.returnRepo, companyID, c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "devolución no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(ret)
}

// posError mapea los errores del motor POS a códigos HTTP. Los errores
// tipados del dominio llevan detalle suficiente para el front.
func posError(c *fiber.Ctx, err error) error {
	var insufficientStock *domain.InsufficientStockError
	var invalidTotals *domain.InvalidTotalsError
	var duplicateSerial *domain.DuplicateSerialError
	var originalNotFound *domain.OriginalTransactionNotFoundError
	var invalidReturnState *domain.InvalidReturnStateError

	switch {
	case errors.As(err, &insufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: insufficientStock.Error()})
	case errors.As(err, &invalidTotals):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_TOTALS", Message: invalidTotals.Error()})
	case errors.As(err, &duplicateSerial):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_SERIAL", Message: duplicateSerial.Error()})
	case errors.As(err, &originalNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "ORIGINAL_NOT_FOUND", Message: originalNotFound.Error()})
	case errors.As(err, &invalidReturnState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_RETURN_STATE", Message: invalidReturnState.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
