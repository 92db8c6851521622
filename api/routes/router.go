package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/warehouse-backend/api/controllers"
	inventorycontrollers "github.com/angelmondragon/warehouse-backend/api/controllers/inventory"
	ordercontrollers "github.com/angelmondragon/warehouse-backend/api/controllers/orders"
	"github.com/angelmondragon/warehouse-backend/api/middleware"
	"github.com/angelmondragon/warehouse-backend/internal/inventory"
	"github.com/angelmondragon/warehouse-backend/internal/orders"
	"github.com/angelmondragon/warehouse-backend/pkg/config"
	"github.com/angelmondragon/warehouse-backend/pkg/db"
	"github.com/angelmondragon/warehouse-backend/pkg/logger"
	"github.com/angelmondragon/warehouse-backend/pkg/metrics"
	"github.com/angelmondragon/warehouse-backend/pkg/redis"
)

// Cache is the Redis surface the router needs: readiness pings and the
// idempotency store. Pass nil when Redis is not configured.
type Cache interface {
	redis.Pinger
	redis.IdempotencyStore
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cache Cache,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	inventoryService inventory.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
	)

	var (
		cachePinger      controllers.Pinger
		idempotencyStore redis.IdempotencyStore
	)
	if cache != nil {
		cachePinger = cache
		idempotencyStore = cache
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cachePinger))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", inventorycontrollers.List(inventoryService, logg))
			r.Post("/", inventorycontrollers.Create(inventoryService, logg))
			r.Get("/{id}", inventorycontrollers.Detail(inventoryService, logg))
			r.Patch("/{id}", inventorycontrollers.Update(inventoryService, logg))
			r.Delete("/{id}", inventorycontrollers.Delete(inventoryService, logg))
			r.Get("/{id}/movements", inventorycontrollers.Movements(inventoryService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(ordersService, logg))
			r.Post("/", ordercontrollers.Create(ordersService, logg))
			r.Get("/{id}", ordercontrollers.Detail(ordersService, logg))
			r.Patch("/{id}", ordercontrollers.UpdateStatus(ordersService, logg))
			r.Put("/{id}/items", ordercontrollers.ReplaceItems(ordersService, logg))
			r.Delete("/{id}", ordercontrollers.Cancel(ordersService, logg))
		})
	})

	return r
}
