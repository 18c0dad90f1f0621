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
	"github.com/shopspring/decimal"

	appstock "github.com/jhoicas/labstock-api/internal/application/stock"
	"github.com/jhoicas/labstock-api/internal/domain/alerting"
	"github.com/jhoicas/labstock-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/labstock-api/internal/interfaces/http"
	"github.com/jhoicas/labstock-api/pkg/codegen"
	"github.com/jhoicas/labstock-api/pkg/config"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

const swaggerSpecPath = "./docs/swagger.json"

// swaggerSpec arma la configuración del visor de documentación si la
// especificación existe en disco. El middleware de swagger hace os.Stat al
// montarse y entra en pánico si el archivo falta, así que un binario
// desplegado sin docs/ debe arrancar igual, solo que sin /docs.
func swaggerSpec(filePath string) (swagger.Config, bool) {
	if _, err := os.Stat(filePath); err != nil {
		return swagger.Config{}, false
	}
	return swagger.Config{
		BasePath: "/",
		FilePath: filePath,
		Path:     "docs",
		Title:    "LabStock API",
	}, true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
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

	articleRepo := postgres.NewArticleRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movRepo := postgres.NewMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	codes := codegen.New()

	receiveUC := appstock.NewReceiveLotUseCase(txRunner, articleRepo, codes)
	allocateUC := appstock.NewAllocateUseCase(txRunner, articleRepo, codes)
	adjustUC := appstock.NewAdjustLotUseCase(txRunner, codes)
	lifecycleUC := appstock.NewLotLifecycleUseCase(txRunner, time.Duration(cfg.Stock.DeleteGuardHours)*time.Hour)
	queryUC := appstock.NewStockQueryUseCase(lotRepo, movRepo, cfg.Stock.ExpiryHorizonDays)
	alertUC := appstock.NewAlertUseCase(stockRepo, lotRepo, movRepo, articleRepo, alerting.Params{
		ExpiryHorizonDays:     cfg.Stock.ExpiryHorizonDays,
		OverstockFactor:       decimal.NewFromFloat(cfg.Stock.OverstockFactor),
		ConsumptionWindowDays: cfg.Stock.ConsumptionWindowDays,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if swaggerCfg, ok := swaggerSpec(swaggerSpecPath); ok {
		app.Use(swagger.New(swaggerCfg))
	} else {
		log.Warn().Str("file", swaggerSpecPath).Msg("especificación OpenAPI no encontrada; /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Receive:   receiveUC,
		Allocate:  allocateUC,
		Adjust:    adjustUC,
		Lifecycle: lifecycleUC,
		Queries:   queryUC,
		Alerts:    alertUC,
		JWTSecret: cfg.JWT.Secret,
	})

	httpLog := log.Component("http")
	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			httpLog.Error().Err(err).Msg("servidor HTTP finalizado")
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
