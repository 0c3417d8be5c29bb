package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/caravel-dist/caravel-dist/internal/activity"
	"github.com/caravel-dist/caravel-dist/internal/auth"
	"github.com/caravel-dist/caravel-dist/internal/customers"
	"github.com/caravel-dist/caravel-dist/internal/orders"
	"github.com/caravel-dist/caravel-dist/internal/products"
	"github.com/caravel-dist/caravel-dist/internal/reports"
	"github.com/caravel-dist/caravel-dist/internal/stock"
	"github.com/caravel-dist/caravel-dist/internal/users"
	"github.com/caravel-dist/caravel-dist/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	TokenStore       *auth.TokenStore
	AuthHandler      *auth.Handler
	ProductsHandler  *products.Handler
	CustomersHandler *customers.Handler
	OrdersHandler    *orders.Handler
	StockHandler     *stock.Handler
	UsersHandler     *users.Handler
	ReportsHandler   *reports.Handler
	ActivityHandler  *activity.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi router. Everything under /api/v1 except the
// auth endpoints requires a Bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Tighter limit on credential endpoints than the global one.
			r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			params.AuthHandler.MountRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(params.TokenStore))

			r.Route("/products", params.ProductsHandler.MountRoutes)
			r.Route("/customers", params.CustomersHandler.MountRoutes)
			r.Route("/orders", params.OrdersHandler.MountRoutes)
			r.Route("/stock-movements", params.StockHandler.MountRoutes)
			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/reports", params.ReportsHandler.MountRoutes)
			r.Route("/activity", params.ActivityHandler.MountRoutes)
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
