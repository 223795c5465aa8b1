package visitor

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatehouse-app/gatehouse/internal/observability"
	"github.com/gatehouse-app/gatehouse/internal/platform/httpx"
)

// Handler exposes the visitor check-in endpoints consumed by the kiosk.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	metrics  *observability.Metrics
}

// NewHandler creates the visitor HTTP handler.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	v := validator.New()
	// Report field errors under their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{logger: logger, service: service, validate: v, metrics: metrics}
}

// MountRoutes registers visitor routes at the router root; the kiosk
// frontend depends on these exact paths.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/visitor", h.index)
	r.Get("/index", h.display)
	r.Post("/create", h.create)
	r.Put("/checkout/{visitor_id}", h.checkout)
	r.Get("/print-data/{visitor_id}", h.printData)
}

// index handles GET /visitor: today's visitors ordered by check-in.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	visitors, err := h.service.ListToday(r.Context())
	if err != nil {
		h.logger.Error("list today visitors", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Display List Visitor Successfully", ToResponses(visitors))
}

// display handles GET /index: the full unordered listing.
func (h *Handler) display(w http.ResponseWriter, r *http.Request) {
	visitors, err := h.service.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list all visitors", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Display List Visitor Successfully", ToResponses(visitors))
}

// create handles POST /create: check-in.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fmt.Sprintf("failed on %s", fe.Tag())
			}
			httpx.FailFields(w, "validation failed", fields)
			return
		}
		httpx.Fail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := h.service.CheckIn(r.Context(), req)
	if err != nil {
		h.logger.Error("check in", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.RecordCheckin(created.Needs)
	httpx.OK(w, fmt.Sprintf("%q Check In", created.Name), ToResponse(*created))
}

// checkout handles PUT /checkout/{visitor_id}.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "visitor_id")
	updated, err := h.service.CheckOut(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "Visitor not found")
			return
		}
		h.logger.Error("check out", slog.String("visitor_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, fmt.Sprintf("%q Check Out", updated.Name), ToResponse(*updated))
}

// printData handles GET /print-data/{visitor_id}: raw fields for the
// receipt frontend.
func (h *Handler) printData(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "visitor_id")
	v, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "Visitor not found")
			return
		}
		h.logger.Error("print data", slog.String("visitor_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Print data retrieved successfully", ToPrintData(*v))
}
