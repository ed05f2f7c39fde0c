package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/retail-backoffice/internal/application/auth"
	"github.com/jhoicas/retail-backoffice/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice/internal/application/receptions"
	"github.com/jhoicas/retail-backoffice/internal/application/reports"
	"github.com/jhoicas/retail-backoffice/internal/application/sales"
	"github.com/jhoicas/retail-backoffice/internal/application/usecase"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	UserUC        *usecase.UserUseCase
	ProductUC     *usecase.ProductUseCase
	CategoryUC    *usecase.CategoryUseCase
	SupplierUC    *usecase.SupplierUseCase
	AdjustStock   *inventory.AdjustStockUseCase
	Ledger        *inventory.LedgerQueryUseCase
	CreateSale    *sales.CreateSaleUseCase
	AnnulSale     *sales.AnnulSaleUseCase
	SaleQuery     *sales.QueryUseCase
	SaleReceipt   *sales.ReceiptUseCase
	CreateRecep   *receptions.CreateReceptionUseCase
	ProcessRecep  *receptions.ProcessReceptionUseCase
	CancelRecep   *receptions.CancelReceptionUseCase
	RecepQuery    *receptions.QueryUseCase
	ReportsUC     *reports.ReportsUseCase
	DashboardUC   *reports.DashboardUseCase
	Replenishment *reports.ReplenishmentUseCase
	// Gatherer expone /metrics; nil = sin endpoint de métricas.
	Gatherer prometheus.Gatherer
	Tokens   TokenVerifier
	Log      *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	app.Use(RequestLogger(log.Component("http")))

	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Auth: login público, registro solo admin
	authHandler := NewAuthHandler(deps.AuthUC, log)
	api.Post("/auth/login", authHandler.Login)

	protected := api.Group("/", AuthMiddleware(deps.Tokens))
	adminOnly := RequireRole(entity.RoleAdmin)
	warehouse := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)
	seller := RequireRole(entity.RoleAdmin, entity.RoleVendedor)

	protected.Post("/auth/register", adminOnly, authHandler.Register)

	// Users
	userHandler := NewUserHandler(deps.UserUC, log)
	protected.Get("/users/me", userHandler.Me)
	users := protected.Group("/users", adminOnly)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)

	// Products: lectura para cualquier rol, escritura solo admin
	productHandler := NewProductHandler(deps.ProductUC, log)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/code/:code", productHandler.GetByCode)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/stock", productHandler.GetStock)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Deactivate)

	// Catálogo
	catalogHandler := NewCatalogHandler(deps.CategoryUC, deps.SupplierUC, log)
	categories := protected.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)
	categories.Post("/", adminOnly, catalogHandler.CreateCategory)
	categories.Put("/:id", adminOnly, catalogHandler.UpdateCategory)
	suppliers := protected.Group("/suppliers", warehouse)
	suppliers.Get("/", catalogHandler.ListSuppliers)
	suppliers.Get("/:id", catalogHandler.GetSupplier)
	suppliers.Post("/", adminOnly, catalogHandler.CreateSupplier)
	suppliers.Put("/:id", adminOnly, catalogHandler.UpdateSupplier)

	// Inventario
	inventoryHandler := NewInventoryHandler(deps.AdjustStock, deps.Ledger, deps.Replenishment, log)
	inv := protected.Group("/inventory", warehouse)
	inv.Post("/adjustments", inventoryHandler.Adjust)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/movements/reference/:type/:id", inventoryHandler.ListByReference)
	inv.Get("/replenishment", inventoryHandler.GetReplenishmentList)
	inv.Get("/reconcile", adminOnly, inventoryHandler.Reconcile)

	// Ventas
	saleHandler := NewSaleHandler(deps.CreateSale, deps.AnnulSale, deps.SaleQuery, deps.SaleReceipt, log)
	salesGroup := protected.Group("/sales", seller)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", saleHandler.DownloadReceipt)
	salesGroup.Post("/:id/annul", adminOnly, saleHandler.Annul)

	// Recepciones
	receptionHandler := NewReceptionHandler(deps.CreateRecep, deps.ProcessRecep, deps.CancelRecep, deps.RecepQuery, log)
	recs := protected.Group("/receptions", warehouse)
	recs.Post("/", receptionHandler.Create)
	recs.Get("/", receptionHandler.List)
	recs.Get("/:id", receptionHandler.GetByID)
	recs.Post("/:id/process", receptionHandler.Process)
	recs.Post("/:id/cancel", receptionHandler.Cancel)

	// Reportes (solo admin)
	reportHandler := NewReportHandler(deps.ReportsUC, deps.DashboardUC, log)
	rep := protected.Group("/reports", adminOnly)
	rep.Get("/dashboard", reportHandler.Dashboard)
	rep.Get("/sales-summary", reportHandler.SalesSummary)
	rep.Get("/payment-methods", reportHandler.ByPaymentMethod)
	rep.Get("/top-products", reportHandler.TopProducts)
}

// RequestLogger registra método, ruta, estado y duración de cada petición.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		ev := log.Debug()
		if status >= fiber.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Msg("http")
		return err
	}
}
