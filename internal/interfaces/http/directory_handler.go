package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger-api/internal/application/directory"
	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain"
)

// DirectoryHandler maneja terceros (clientes/proveedores) y sus accounts.
type DirectoryHandler struct {
	uc *directory.DirectoryUseCase
}

// NewDirectoryHandler construye el handler.
func NewDirectoryHandler(uc *directory.DirectoryUseCase) *DirectoryHandler {
	return &DirectoryHandler{uc: uc}
}

// CreateParty registra un tercero.
// POST /api/entities
func (h *DirectoryHandler) CreateParty(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreatePartyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	party, err := h.uc.CreateParty(companyID, in)
	if err != nil {
		return directoryError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(party)
}

// GetParty obtiene un tercero.
// GET /api/entities/:id
func (h *DirectoryHandler) GetParty(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	party, err := h.uc.GetParty(companyID, c.Params("id"))
	if err != nil {
		return directoryError(c, err)
	}
	return c.JSON(party)
}

// SearchParties busca terceros por nombre normalizado (insensible a acentos).
// GET /api/entities?q=&limit=&offset=
func (h *DirectoryHandler) SearchParties(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	parties, total, err := h.uc.SearchParties(companyID, c.Query("q"), page)
	if err != nil {
		return directoryError(c, err)
	}
	return c.JSON(fiber.Map{
		"entities": parties,
		"page":     dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// UpdateParty actualiza un tercero.
// PUT /api/entities/:id
func (h *DirectoryHandler) UpdateParty(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreatePartyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	party, err := h.uc.UpdateParty(companyID, c.Params("id"), in)
	if err != nil {
		return directoryError(c, err)
	}
	return c.JSON(party)
}

// DeleteParty elimina (soft) un tercero. Rechazado si tiene asientos.
// DELETE /api/entities/:id
func (h *DirectoryHandler) DeleteParty(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.DeleteParty(companyID, c.Params("id"), userID); err != nil {
		return directoryError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPartyAccount devuelve el account del tercero.
// GET /api/entities/:id/account
func (h *DirectoryHandler) GetPartyAccount(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	account, err := h.uc.GetPartyAccount(companyID, c.Params("id"))
	if err != nil {
		return directoryError(c, err)
	}
	return c.JSON(account)
}

// ListAccounts lista accounts filtrables por kind.
// GET /api/accounts?kind=&limit=&offset=
func (h *DirectoryHandler) ListAccounts(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	accounts, total, err := h.uc.ListAccounts(companyID, c.Query("kind"), page)
	if err != nil {
		return directoryError(c, err)
	}
	return c.JSON(fiber.Map{
		"accounts": accounts,
		"page":     dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// UpdateAccountStatus cambia el estado de un account (active/frozen/closed).
// PATCH /api/accounts/:id/status
func (h *DirectoryHandler) UpdateAccountStatus(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.UpdateAccountStatus(companyID, c.Params("id"), in.Status, userID); err != nil {
		return directoryError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAccount elimina (soft) un account sin asientos.
// DELETE /api/accounts/:id
func (h *DirectoryHandler) DeleteAccount(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.DeleteAccount(companyID, c.Params("id"), userID); err != nil {
		return directoryError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func directoryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el recurso tiene movimientos asociados"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
