package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/tienda-backoffice/internal/application/auth"
	"github.com/tu-usuario/tienda-backoffice/internal/application/finance"
	"github.com/tu-usuario/tienda-backoffice/internal/application/inventory"
	"github.com/tu-usuario/tienda-backoffice/internal/application/orders"
	"github.com/tu-usuario/tienda-backoffice/internal/application/returns"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	InventoryUC *inventory.StockLedgerUseCase
	OrdersUC    *orders.SettlementUseCase
	ReturnsUC   *returns.ReturnsUseCase
	FinanceUC   *finance.FinanceUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (login público; registro de operadores solo admin)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", AuthMiddleware(deps.JWTSecret), AdminOnly(), authHandler.Register)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Libro de stock
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Post("/adjust", inventoryHandler.QuickAdjust)
	invGroup.Get("/variants/:variant_id/movements", inventoryHandler.ListMovements)
	invGroup.Get("/variants/:variant_id/verify", inventoryHandler.VerifyStock)

	// Liquidación de órdenes
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrdersUC)
	ordersGroup.Post("/:id/items", orderHandler.AddItem)
	ordersGroup.Put("/:id/items/:itemId", orderHandler.UpdateItem)
	ordersGroup.Delete("/:id/items/:itemId", orderHandler.RemoveItem)
	ordersGroup.Post("/:id/recalculate", orderHandler.Recalculate)
	ordersGroup.Post("/:id/items/:itemId/exchange", orderHandler.ExchangeItem)

	// Motor de devoluciones
	returnsGroup := protected.Group("/returns")
	returnHandler := NewReturnHandler(deps.ReturnsUC)
	returnsGroup.Post("/", returnHandler.Create)
	returnsGroup.Get("/", returnHandler.List)
	returnsGroup.Post("/process", returnHandler.Process)
	returnsGroup.Get("/:id", returnHandler.GetByID)
	returnsGroup.Post("/:id/complete", returnHandler.Complete)
	returnsGroup.Post("/:id/reject", returnHandler.Reject)
	returnsGroup.Get("/:id/credit-note", returnHandler.CreditNote)

	// Libro financiero (solo admin)
	financeGroup := protected.Group("/finance", AdminOnly())
	financeHandler := NewFinanceHandler(deps.FinanceUC)
	financeGroup.Post("/accounts", financeHandler.CreateAccount)
	financeGroup.Get("/accounts", financeHandler.ListAccounts)
	financeGroup.Put("/accounts/:id", financeHandler.UpdateAccount)
	financeGroup.Delete("/accounts/:id", financeHandler.DeleteAccount)
	financeGroup.Post("/categories", financeHandler.CreateCategory)
	financeGroup.Get("/categories", financeHandler.ListCategories)
	financeGroup.Put("/categories/:id", financeHandler.UpdateCategory)
	financeGroup.Delete("/categories/:id", financeHandler.DeleteCategory)
	financeGroup.Post("/transactions", financeHandler.PostTransaction)
	financeGroup.Get("/transactions/:id", financeHandler.GetTransaction)
	financeGroup.Get("/summary/daily", financeHandler.DailySummary)
}
