package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/facet-erp/facet-erp/internal/cards"
	documenthttp "github.com/facet-erp/facet-erp/internal/document/http"
	"github.com/facet-erp/facet-erp/internal/inventory"
	"github.com/facet-erp/facet-erp/internal/observability"
	"github.com/facet-erp/facet-erp/internal/recipients"
	"github.com/facet-erp/facet-erp/internal/sales"
	"github.com/facet-erp/facet-erp/internal/vendors"
	"github.com/facet-erp/facet-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	DocumentHandler  *documenthttp.Handler
	RecipientHandler *recipients.Handler
	InventoryHandler *inventory.Handler
	SalesHandler     *sales.Handler
	VendorHandler    *vendors.Handler
	CardHandler      *cards.Handler
	JobHandler       *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.DocumentHandler.MountRoutes(r)
	params.RecipientHandler.MountRoutes(r)
	params.InventoryHandler.MountRoutes(r)
	params.SalesHandler.MountRoutes(r)
	params.VendorHandler.MountRoutes(r)
	params.CardHandler.MountRoutes(r)

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
