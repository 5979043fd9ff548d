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
	"github.com/tu-usuario/tienda-backoffice/internal/application/auth"
	"github.com/tu-usuario/tienda-backoffice/internal/application/finance"
	"github.com/tu-usuario/tienda-backoffice/internal/application/inventory"
	"github.com/tu-usuario/tienda-backoffice/internal/application/orders"
	"github.com/tu-usuario/tienda-backoffice/internal/application/returns"
	infrapdf "github.com/tu-usuario/tienda-backoffice/internal/infrastructure/pdf"
	"github.com/tu-usuario/tienda-backoffice/internal/infrastructure/postgres"
	"github.com/tu-usuario/tienda-backoffice/internal/infrastructure/webhook"
	httpRouter "github.com/tu-usuario/tienda-backoffice/internal/interfaces/http"
	"github.com/tu-usuario/tienda-backoffice/pkg/config"
	"github.com/tu-usuario/tienda-backoffice/pkg/logger"
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

	// Repos sobre el pool (lecturas fuera de transacción)
	variantRepo := postgres.NewVariantRepository(pool)
	movRepo := postgres.NewStockMovementRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	returnRepo := postgres.NewReturnRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	accountRepo := postgres.NewFinanceAccountRepository(pool)
	categoryRepo := postgres.NewFinanceCategoryRepository(pool)
	trxRepo := postgres.NewFinanceTransactionRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	txRunner := postgres.NewTxRunner(pool)
	notifier := webhook.NewNotifier(cfg.Webhook, log)
	creditNotePDF := infrapdf.NewCreditNoteGenerator(cfg.App.Name)

	inventoryUC := inventory.NewStockLedgerUseCase(txRunner, variantRepo, movRepo, log)
	ordersUC := orders.NewSettlementUseCase(txRunner, inventoryUC, orderRepo, notifier, log)
	returnsUC := returns.NewReturnsUseCase(txRunner, inventoryUC, returnRepo, profileRepo, notifier, creditNotePDF, log)
	financeUC := finance.NewFinanceUseCase(txRunner, accountRepo, categoryRepo, trxRepo, settingsRepo, log)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
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
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		InventoryUC: inventoryUC,
		OrdersUC:    ordersUC,
		ReturnsUC:   returnsUC,
		FinanceUC:   financeUC,
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
