package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger-api/internal/application/accounting"
	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// LedgerHandler maneja las consultas del libro mayor y el registro de gastos.
type LedgerHandler struct {
	statementUC *accounting.StatementUseCase
	expenseUC   *accounting.ExpenseUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(statementUC *accounting.StatementUseCase, expenseUC *accounting.ExpenseUseCase) *LedgerHandler {
	return &LedgerHandler{statementUC: statementUC, expenseUC: expenseUC}
}

// ListEntries lista asientos del libro mayor con filtros.
// GET /api/ledger/entries?entity_id=&account_id=&type=&from=&to=&limit=&offset=
func (h *LedgerHandler) ListEntries(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	filter, err := parseLedgerFilter(c, companyID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	entries, total, err := h.statementUC.ListEntries(c.Context(), filter)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{
		"entries": toEntryResponses(entries),
		"page":    dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	})
}

// GetBalance devuelve el saldo derivado de un tercero.
// GET /api/ledger/balances/:entityId
func (h *LedgerHandler) GetBalance(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	balance, err := h.statementUC.GetPartyBalance(c.Context(), companyID, c.Params("entityId"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tercero no encontrado"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "entityId requerido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toBalanceResponse(balance))
}

// GetStatement devuelve el estado de cuenta de un tercero: asientos + saldo.
// GET /api/ledger/statements/:entityId
func (h *LedgerHandler) GetStatement(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	entries, balance, err := h.statementUC.GetStatement(c.Context(), companyID, c.Params("entityId"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tercero no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.StatementResponse{
		Entries: toEntryResponses(entries),
		Balance: toBalanceResponse(balance),
	})
}

// CreateExpense registra un gasto como asiento de partida doble.
// POST /api/expenses
func (h *LedgerHandler) CreateExpense(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	txID, err := h.expenseUC.CreateExpense(c.Context(), accounting.ExpenseInput{
		CompanyID:     companyID,
		Description:   in.Description,
		DebitAccount:  ledger.AccountKind(in.DebitAccount),
		CreditAccount: ledger.AccountKind(in.CreditAccount),
		Amount:        in.Amount,
		LinkedPartyID: in.LinkedPartyID,
		CreatedBy:     userID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "monto y descripción son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transaction_id": txID})
}

// ListExpenses lista gastos del rango con su total.
// GET /api/expenses?from=&to=&limit=&offset=
func (h *LedgerHandler) ListExpenses(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	filter, err := parseLedgerFilter(c, companyID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	entries, total, err := h.expenseUC.ListExpenses(filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ExpenseListResponse{
		Entries: toEntryResponses(entries),
		Total:   total,
	})
}

// parseLedgerFilter arma el filtro de asientos desde los query params.
func parseLedgerFilter(c *fiber.Ctx, companyID string) (repository.LedgerFilter, error) {
	filter := repository.LedgerFilter{
		CompanyID:       companyID,
		LinkedPartyID:   c.Query("entity_id"),
		AccountID:       c.Query("account_id"),
		TransactionType: ledger.TransactionType(c.Query("type")),
		Limit:           c.QueryInt("limit", 50),
		Offset:          c.QueryInt("offset", 0),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return filter, errors.New("from debe ser RFC3339")
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return filter, errors.New("to debe ser RFC3339")
		}
		filter.To = &t
	}
	return filter, nil
}

func toEntryResponses(entries []*entity.LedgerEntry) []dto.LedgerEntryResponse {
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LedgerEntryResponse{
			ID:              e.ID,
			TransactionID:   e.TransactionID,
			EntryGroupID:    e.EntryGroupID,
			Account:         string(e.Account),
			EntryType:       string(e.EntryType),
			Amount:          e.Amount,
			TransactionType: string(e.TransactionType),
			Description:     e.Description,
			LinkedPartyID:   e.LinkedPartyID,
			AccountID:       e.AccountID,
			Date:            e.Date,
		})
	}
	return out
}

func toBalanceResponse(b *ledger.AccountBalance) dto.BalanceResponse {
	return dto.BalanceResponse{
		AmountDue:      b.AmountDue,
		AmountReceived: b.AmountReceived,
		DiscountGiven:  b.DiscountGiven,
		TaxCharged:     b.TaxCharged,
		Balance:        b.Balance,
	}
}
