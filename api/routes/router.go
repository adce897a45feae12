package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/floorline/backoffice/api/controllers"
	ordercontrollers "github.com/floorline/backoffice/api/controllers/orders"
	pricingcontrollers "github.com/floorline/backoffice/api/controllers/pricing"
	"github.com/floorline/backoffice/api/middleware"
	"github.com/floorline/backoffice/internal/orders"
	"github.com/floorline/backoffice/internal/quotes"
	"github.com/floorline/backoffice/pkg/config"
	"github.com/floorline/backoffice/pkg/logger"
	"github.com/floorline/backoffice/pkg/redis"
)

// Dependencies collects everything the HTTP surface needs. Nil pingers and a
// nil idempotency store are tolerated.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	PubSub      controllers.Pinger
	Idempotency redis.IdempotencyStore
	Orders      orders.Service
	Quotes      quotes.Service

	// Metrics serves /metrics; promhttp.Handler() when nil.
	Metrics http.Handler
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins...),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, map[string]controllers.Pinger{
			"db":     deps.DB,
			"redis":  deps.Redis,
			"pubsub": deps.PubSub,
		}))
	})

	metricsHandler := deps.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Staff(logg))
		r.Use(middleware.Idempotency(deps.Idempotency, logg))

		r.Get("/ping", controllers.Ping())

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(deps.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
			r.Delete("/{orderId}", ordercontrollers.Delete(deps.Orders, logg))
			r.Post("/{orderId}/receive", ordercontrollers.Receive(deps.Orders, logg))
			r.Post("/{orderId}/damage", ordercontrollers.ReportDamage(deps.Orders, logg))
		})

		r.Get("/projects/{projectId}/orders", ordercontrollers.ListProject(deps.Orders, logg))

		r.Route("/pricing", func(r chi.Router) {
			r.Post("/calculate", pricingcontrollers.Calculate(logg))
			r.Post("/policy", pricingcontrollers.Policy(deps.Quotes, logg))
			r.Post("/cartons", pricingcontrollers.Cartons(logg))
			r.Post("/line-quote", pricingcontrollers.LineQuote(deps.Quotes, logg))
		})
	})

	return r
}
