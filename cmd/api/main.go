package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/pos-ledger-api/internal/application/accounting"
	"github.com/jhoicas/pos-ledger-api/internal/application/auth"
	"github.com/jhoicas/pos-ledger-api/internal/application/catalog"
	"github.com/jhoicas/pos-ledger-api/internal/application/directory"
	"github.com/jhoicas/pos-ledger-api/internal/application/inventory"
	"github.com/jhoicas/pos-ledger-api/internal/application/pos"
	infraaudit "github.com/jhoicas/pos-ledger-api/internal/infrastructure/audit"
	infracache "github.com/jhoicas/pos-ledger-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/pos-ledger-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pos-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/pos-ledger-api/pkg/config"
	"github.com/jhoicas/pos-ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios atados al pool (lecturas y escrituras fuera del motor POS)
	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	partyRepo := postgres.NewPartyRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	returnRepo := postgres.NewReturnRepository(pool)
	inventoryRepo := postgres.NewInventoryRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Cache de saldos: Redis si hay dirección configurada, noop si no
	var balanceCache accounting.BalanceCache = accounting.NoopBalanceCache{}
	if cfg.Redis.Addr != "" {
		redisClient, err := infracache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisClient.Close()
		balanceCache = infracache.NewRedisBalanceCache(redisClient)
	}

	auditSink := infraaudit.NewSink(auditRepo, cfg.POS.AuditBuffer, log.Zerolog())
	defer auditSink.Close()

	receiptGen := infrapdf.NewReceiptGenerator(cfg.POS.ReceiptDir)
	poster := accounting.NewPoster()

	saleUC := pos.NewSaleUseCase(
		txRunner, productRepo, companyRepo, poster,
		receiptGen, auditSink, balanceCache, log,
		pos.DiscountCreditPolicy(cfg.POS.DiscountCredit),
	)
	returnUC := pos.NewReturnUseCase(
		txRunner, productRepo, companyRepo, poster,
		receiptGen, auditSink, balanceCache, log,
	)
	statementUC := accounting.NewStatementUseCase(ledgerRepo, partyRepo, balanceCache)
	expenseUC := accounting.NewExpenseUseCase(txRunner, poster, ledgerRepo)
	inventoryUC := inventory.NewInventoryUseCase(txRunner, inventoryRepo, productRepo)
	catalogUC := catalog.NewCatalogUseCase(productRepo)
	directoryUC := directory.NewDirectoryUseCase(partyRepo, accountRepo, ledgerRepo)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CatalogUC:   catalogUC,
		InventoryUC: inventoryUC,
		DirectoryUC: directoryUC,
		SaleUC:      saleUC,
		ReturnUC:    returnUC,
		StatementUC: statementUC,
		ExpenseUC:   expenseUC,
		CompanyRepo: companyRepo,
		SaleRepo:    saleRepo,
		ReturnRepo:  returnRepo,
		AuditRepo:   auditRepo,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
