package http

import (
	"github.com/gofiber/fiber/v2"
	appstock "github.com/jhoicas/labstock-api/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Receive   *appstock.ReceiveLotUseCase
	Allocate  *appstock.AllocateUseCase
	Adjust    *appstock.AdjustLotUseCase
	Lifecycle *appstock.LotLifecycleUseCase
	Queries   *appstock.StockQueryUseCase
	Alerts    *appstock.AlertUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todo el motor de stock requiere Bearer Token
	protected := api.Group("/stock", AuthMiddleware(deps.JWTSecret))

	stockHandler := NewStockHandler(deps.Receive, deps.Allocate, deps.Adjust, deps.Lifecycle, deps.Queries)
	alertHandler := NewAlertHandler(deps.Alerts)

	// Entradas y salidas
	protected.Post("/entries", RequireRole("admin", "laboratorista"), stockHandler.ReceiveEntry)
	protected.Post("/allocations", RequireRole("admin", "laboratorista"), stockHandler.Allocate)
	protected.Post("/consume", RequireRole("admin", "laboratorista"), stockHandler.ConsumeRequirements)

	// Ajustes administrativos (solo admin)
	protected.Post("/lots/:id/adjust", RequireRole("admin"), stockHandler.AdjustLot)

	// Consultas
	protected.Get("/articles/:id/lots", stockHandler.ListLots)
	protected.Get("/articles/:id/movements", stockHandler.ListMovements)
	protected.Get("/valuation", stockHandler.Valuation)
	protected.Get("/alerts", alertHandler.Evaluate)

	// Ciclo de vida de lotes (solo admin)
	protected.Delete("/lots/:id", RequireRole("admin"), stockHandler.SoftDeleteLot)
	protected.Delete("/lots/:id/hard", RequireRole("admin"), stockHandler.HardDeleteLot)
}
