package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gatehouse-app/gatehouse/internal/logistics"
	"github.com/gatehouse-app/gatehouse/internal/observability"
	"github.com/gatehouse-app/gatehouse/internal/partner"
	"github.com/gatehouse-app/gatehouse/internal/visitor"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	VisitorHandler   *visitor.Handler
	PartnerHandler   *partner.Handler
	LogisticsHandler *logistics.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Gatehouse defaults.
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

	// Visitor routes live at the root to keep the kiosk frontend paths stable.
	params.VisitorHandler.MountRoutes(r)

	r.Route("/business-partner", params.PartnerHandler.MountRoutes)
	r.Route("/supplier", params.PartnerHandler.MountSupplierRoutes)
	r.Route("/delivery", params.LogisticsHandler.MountRoutes)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
