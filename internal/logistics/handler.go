package logistics

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse-app/gatehouse/internal/platform/httpx"
)

// Handler exposes the delivery schedule endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates the logistics HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers /delivery routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/today", h.today)
}

// today handles GET /delivery/today.
func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.TodayDeliveries(r.Context())
	if err != nil {
		h.logger.Error("today deliveries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Delivery data retrieved successfully", plans)
}
