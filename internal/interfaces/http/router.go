package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger-api/internal/application/accounting"
	"github.com/jhoicas/pos-ledger-api/internal/application/auth"
	"github.com/jhoicas/pos-ledger-api/internal/application/catalog"
	"github.com/jhoicas/pos-ledger-api/internal/application/directory"
	"github.com/jhoicas/pos-ledger-api/internal/application/inventory"
	"github.com/jhoicas/pos-ledger-api/internal/application/pos"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CatalogUC   *catalog.CatalogUseCase
	InventoryUC *inventory.InventoryUseCase
	DirectoryUC *directory.DirectoryUseCase
	SaleUC      *pos.SaleUseCase
	ReturnUC    *pos.ReturnUseCase
	StatementUC *accounting.StatementUseCase
	ExpenseUC   *accounting.ExpenseUseCase
	CompanyRepo repository.CompanyRepository
	SaleRepo    repository.SaleRepository
	ReturnRepo  repository.ReturnRepository
	AuditRepo   repository.AuditLogRepository
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (alta de tenants; pública para el bootstrap inicial)
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyRepo)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo de productos (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.CatalogUC)
	products.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), productHandler.Update)

	// Inventario por lotes (protegido; escrituras solo admin/bodeguero)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	invGroup.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), inventoryHandler.Create)
	invGroup.Post("/:id/batches", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), inventoryHandler.AddBatch)
	invGroup.Get("/", inventoryHandler.ListAvailable)

	// Terceros y accounts (protegido)
	directoryHandler := NewDirectoryHandler(deps.DirectoryUC)
	parties := protected.Group("/entities")
	parties.Post("/", directoryHandler.CreateParty)
	parties.Get("/", directoryHandler.SearchParties)
	parties.Get("/:id", directoryHandler.GetParty)
	parties.Put("/:id", directoryHandler.UpdateParty)
	parties.Delete("/:id", RequireRole(entity.RoleAdmin), directoryHandler.DeleteParty)
	parties.Get("/:id/account", directoryHandler.GetPartyAccount)

	accounts := protected.Group("/accounts")
	accounts.Get("/", directoryHandler.ListAccounts)
	accounts.Patch("/:id/status", RequireRole(entity.RoleAdmin), directoryHandler.UpdateAccountStatus)
	accounts.Delete("/:id", RequireRole(entity.RoleAdmin), directoryHandler.DeleteAccount)

	// POS: ventas y devoluciones (protegido; cajero o admin)
	posGroup := protected.Group("/pos", RequireRole(entity.RoleAdmin, entity.RoleCajero))
	posHandler := NewPOSHandler(deps.SaleUC, deps.ReturnUC, deps.SaleRepo, deps.ReturnRepo)
	posGroup.Post("/sales", posHandler.CreateSale)
	posGroup.Get("/sales/:id", posHandler.GetSale)
	posGroup.Post("/returns", posHandler.CreateReturn)
	posGroup.Get("/returns/:id", posHandler.GetReturn)

	// Libro mayor y gastos (protegido)
	ledgerHandler := NewLedgerHandler(deps.StatementUC, deps.ExpenseUC)
	ledgerGroup := protected.Group("/ledger")
	ledgerGroup.Get("/entries", ledgerHandler.ListEntries)
	ledgerGroup.Get("/balances/:entityId", ledgerHandler.GetBalance)
	ledgerGroup.Get("/statements/:entityId", ledgerHandler.GetStatement)

	expenses := protected.Group("/expenses", RequireRole(entity.RoleAdmin))
	expenses.Post("/", ledgerHandler.CreateExpense)
	expenses.Get("/", ledgerHandler.ListExpenses)

	// Log de auditoría (protegido; solo admin)
	auditHandler := NewAuditHandler(deps.AuditRepo)
	protected.Get("/audit", RequireRole(entity.RoleAdmin), auditHandler.List)
}
