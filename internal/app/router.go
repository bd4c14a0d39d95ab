package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/leadkhata/leadkhata/internal/auth"
	"github.com/leadkhata/leadkhata/internal/customer"
	"github.com/leadkhata/leadkhata/internal/dashboard"
	"github.com/leadkhata/leadkhata/internal/leadextraction"
	"github.com/leadkhata/leadkhata/internal/leadselling"
	"github.com/leadkhata/leadkhata/internal/ledger"
	"github.com/leadkhata/leadkhata/internal/migration"
	"github.com/leadkhata/leadkhata/internal/report"
	"github.com/leadkhata/leadkhata/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthHandler       *auth.Handler
	AuthMiddleware    *auth.Middleware
	CustomerHandler   *customer.Handler
	LedgerHandler     *ledger.Handler
	ExtractionHandler *leadextraction.Handler
	SellingHandler    *leadselling.Handler
	DashboardHandler  *dashboard.Handler
	ReportHandler     *report.Handler
	MigrationHandler  *migration.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
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

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAdmin)

			r.Route("/customers", params.CustomerHandler.MountRoutes)
			r.Route("/ledger", params.LedgerHandler.MountRoutes)
			r.Route("/lead-extractions", params.ExtractionHandler.MountRoutes)
			r.Route("/lead-sales", params.SellingHandler.MountRoutes)
			r.Route("/dashboard", params.DashboardHandler.MountRoutes)
			r.Route("/reports", params.ReportHandler.MountRoutes)
			r.Route("/admin/migrations", params.MigrationHandler.MountRoutes)
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
