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
	"github.com/jhoicas/retail-backoffice/internal/application/auth"
	"github.com/jhoicas/retail-backoffice/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice/internal/application/ports"
	"github.com/jhoicas/retail-backoffice/internal/application/receptions"
	"github.com/jhoicas/retail-backoffice/internal/application/reports"
	"github.com/jhoicas/retail-backoffice/internal/application/sales"
	"github.com/jhoicas/retail-backoffice/internal/application/usecase"
	infrakafka "github.com/jhoicas/retail-backoffice/internal/infrastructure/kafka"
	inframetrics "github.com/jhoicas/retail-backoffice/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/retail-backoffice/internal/infrastructure/pdf"
	infraredis "github.com/jhoicas/retail-backoffice/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/retail-backoffice/internal/interfaces/http"
	"github.com/jhoicas/retail-backoffice/pkg/config"
	"github.com/jhoicas/retail-backoffice/pkg/jwt"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// Caché de stock (opcional)
	var stockCache ports.StockCache = ports.NopStockCache{}
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, caché de stock deshabilitada")
		} else {
			defer client.Close()
			stockCache = infraredis.NewStockCache(client, cfg.Redis.TTL)
		}
	}

	// Eventos de dominio (opcional)
	var publisher ports.EventPublisher = ports.NopEventPublisher{}
	if cfg.Kafka.Enabled() {
		p, err := infrakafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix, log)
		if err != nil {
			log.Warn().Err(err).Msg("kafka no disponible, eventos deshabilitados")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := inframetrics.NewRecorder(registry)

	// Motor de inventario
	accessor := inventory.NewStockAccessor(inventory.NewLedger())
	effects := inventory.NewEffectsNotifier(stockCache, publisher, log)
	rules := sales.Rules{
		AnnulmentWindow:      cfg.Sales.AnnulmentWindow,
		MinAnnulReasonLength: cfg.Sales.MinAnnulReasonLength,
	}

	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.Expiration)*time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar JWT (JWT_SECRET)")
	}
	authUC := auth.NewAuthUseCase(store.users, tokens)
	if err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("crear administrador inicial")
	}

	deps := httpRouter.RouterDeps{
		AuthUC:        authUC,
		UserUC:        usecase.NewUserUseCase(store.users),
		ProductUC:     usecase.NewProductUseCase(store.products, store.categories, store.tx, accessor, effects, stockCache, log),
		CategoryUC:    usecase.NewCategoryUseCase(store.categories),
		SupplierUC:    usecase.NewSupplierUseCase(store.suppliers),
		AdjustStock:   inventory.NewAdjustStockUseCase(store.tx, accessor, effects, recorder, log),
		Ledger:        inventory.NewLedgerQueryUseCase(store.movements, store.reports),
		CreateSale:    sales.NewCreateSaleUseCase(store.tx, accessor, effects, recorder, log),
		AnnulSale:     sales.NewAnnulSaleUseCase(store.tx, accessor, effects, recorder, log, rules),
		SaleQuery:     sales.NewQueryUseCase(store.sales),
		SaleReceipt:   sales.NewReceiptUseCase(store.sales, store.products, infrapdf.NewReceiptGenerator(cfg.App.BusinessName)),
		CreateRecep:   receptions.NewCreateReceptionUseCase(store.tx, store.suppliers, recorder, log),
		ProcessRecep:  receptions.NewProcessReceptionUseCase(store.tx, accessor, effects, recorder, log),
		CancelRecep:   receptions.NewCancelReceptionUseCase(store.tx, recorder, log),
		RecepQuery:    receptions.NewQueryUseCase(store.receptions),
		ReportsUC:     reports.NewReportsUseCase(store.reports),
		DashboardUC:   reports.NewDashboardUseCase(store.reports, store.products),
		Replenishment: reports.NewReplenishmentUseCase(store.products, store.reports),
		Gatherer:      registry,
		Tokens:        tokens,
		Log:           log,
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Retail Back-office API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, deps)

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
