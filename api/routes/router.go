package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ichaoui56/e-commerce-backoffice/api/controllers"
	"github.com/ichaoui56/e-commerce-backoffice/api/middleware"
	"github.com/ichaoui56/e-commerce-backoffice/internal/auth"
	"github.com/ichaoui56/e-commerce-backoffice/internal/categories"
	"github.com/ichaoui56/e-commerce-backoffice/internal/dashboard"
	"github.com/ichaoui56/e-commerce-backoffice/internal/inventory"
	"github.com/ichaoui56/e-commerce-backoffice/internal/orders"
	"github.com/ichaoui56/e-commerce-backoffice/internal/products"
	"github.com/ichaoui56/e-commerce-backoffice/internal/reports"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/auth/session"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/config"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/metrics"
	pkgredis "github.com/ichaoui56/e-commerce-backoffice/pkg/redis"
)

// redisStore is the slice of the redis client used by the HTTP layer.
type redisStore interface {
	pkgredis.IdempotencyStore
	pkgredis.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies carries everything NewRouter mounts.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redisStore
	Sessions session.AccessSessionChecker
	Metrics  *metrics.HTTPMetrics
	// Gatherer backs the metrics endpoint; nil leaves it unmounted.
	Gatherer prometheus.Gatherer

	Auth       auth.Service
	Categories categories.Service
	Products   products.Service
	Inventory  inventory.Service
	Orders     orders.Service
	Dashboard  dashboard.Service
	Reports    *reports.Exporter
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if cfg.Metrics.Enabled && deps.Gatherer != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.LoginThrottle(cfg.AuthRateLimit, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
			r.Get("/session", controllers.AuthSession(deps.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.AdminRoleAdmin))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(deps.Categories, logg))
			r.Post("/", controllers.CategoryCreate(deps.Categories, logg))
			r.Get("/tree", controllers.CategoryTree(deps.Categories, logg))
			r.Get("/{categoryId}", controllers.CategoryGet(deps.Categories, logg))
			r.Put("/{categoryId}", controllers.CategoryUpdate(deps.Categories, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(deps.Categories, logg))
		})

		r.Route("/colors", func(r chi.Router) {
			r.Get("/", controllers.ColorList(deps.Products, logg))
			r.Post("/", controllers.ColorCreate(deps.Products, logg))
		})
		r.Route("/sizes", func(r chi.Router) {
			r.Get("/", controllers.SizeList(deps.Products, logg))
			r.Post("/", controllers.SizeCreate(deps.Products, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Post("/", controllers.ProductCreate(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.Products, logg))
			r.Put("/{productId}", controllers.ProductUpdate(deps.Products, logg))
			r.Delete("/{productId}", controllers.ProductDelete(deps.Products, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/low-stock", controllers.InventoryLowStock(deps.Inventory, logg))
			r.Get("/export", controllers.InventoryExport(exporterOrNil(deps.Reports), logg))
			r.Put("/{sizeStockId}", controllers.InventoryUpdate(deps.Inventory, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Post("/", controllers.OrderCreate(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(deps.Orders, logg))
			r.Delete("/{orderId}", controllers.OrderDelete(deps.Orders, logg))
			r.Post("/{orderId}/approve", controllers.OrderApprove(deps.Orders, logg))
			r.Patch("/{orderId}/status", controllers.OrderUpdateStatus(deps.Orders, logg))
			r.Get("/{orderId}/events", controllers.OrderEvents(deps.Orders, logg))
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/stats", controllers.DashboardStats(deps.Dashboard, logg))
			r.Get("/activity", controllers.DashboardActivity(deps.Dashboard, logg))
			r.Get("/stock", controllers.DashboardStock(deps.Dashboard, logg))
		})
	})

	return r
}

func exporterOrNil(exporter *reports.Exporter) controllers.InventoryExporter {
	if exporter == nil {
		return nil
	}
	return exporter
}
