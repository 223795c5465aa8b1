package partner

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse-app/gatehouse/internal/platform/httpx"
	"github.com/gatehouse-app/gatehouse/internal/visitor"
)

// Handler exposes business-partner and supplier endpoints, including the
// unified visitor views that join the two domains.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	visitors *visitor.Service
}

// NewHandler creates the partner HTTP handler.
func NewHandler(logger *slog.Logger, service *Service, visitors *visitor.Service) *Handler {
	return &Handler{logger: logger, service: service, visitors: visitors}
}

// MountRoutes registers /business-partner routes. Fixed paths come before
// the {bpCode} wildcard, mirroring the original route table.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.index)
	r.Get("/search", h.search)
	r.Get("/type/{type}", h.byType)
	r.Get("/active", h.active)
	r.Get("/test-connection", h.testConnection)
	r.Post("/update-relationships", h.updateRelationships)
	r.Get("/{bpCode}", h.show)
	r.Get("/{bpCode}/visitors", h.unifiedVisitors)
	r.Get("/{bpCode}/dashboard", h.dashboard)
}

// MountSupplierRoutes registers the /supplier dropdown endpoints.
func (h *Handler) MountSupplierRoutes(r chi.Router) {
	r.Get("/", h.suppliers)
	r.Get("/search", h.supplierSearch)
	r.Get("/test-connection", h.testConnection)
	r.Get("/{bpCode}", h.supplierShow)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// index handles GET /business-partner: paginated listing, or a capped
// search result when the search parameter is present.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	perPage := queryInt(r, "per_page", 15)
	page := queryInt(r, "page", 1)

	if search != "" {
		partners, err := h.service.Search(r.Context(), search, perPage)
		if err != nil {
			h.logger.Error("search partners", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.OK(w, "Business partners retrieved successfully", partners)
		return
	}

	partners, pagination, err := h.service.ListAll(r.Context(), perPage, page)
	if err != nil {
		h.logger.Error("list partners", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Business partners retrieved successfully", map[string]any{
		"items":      partners,
		"pagination": pagination,
	})
}

// search handles GET /business-partner/search.
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", 50)

	partners, err := h.service.Search(r.Context(), term, limit)
	if err != nil {
		h.logger.Error("search partners", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Search completed successfully", map[string]any{
		"items":       partners,
		"total_count": len(partners),
	})
}

// byType handles GET /business-partner/type/{type}.
func (h *Handler) byType(w http.ResponseWriter, r *http.Request) {
	partners, err := h.service.ListByType(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		h.logger.Error("list partners by type", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Business partners retrieved successfully", partners)
}

// active handles GET /business-partner/active.
func (h *Handler) active(w http.ResponseWriter, r *http.Request) {
	partners, err := h.service.ListActive(r.Context())
	if err != nil {
		h.logger.Error("list active partners", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Active business partners retrieved successfully", partners)
}

// testConnection handles GET .../test-connection against the partner master.
func (h *Handler) testConnection(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Ping(r.Context())
	if err != nil {
		httpx.Fail(w, http.StatusInternalServerError, "Database connection failed: "+err.Error())
		return
	}
	httpx.OK(w, "Database connection successful", map[string]any{"total_partners": count})
}

// updateRelationships handles POST /business-partner/update-relationships:
// the one-time parent-link backfill, safe to re-run.
func (h *Handler) updateRelationships(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.Backfill(r.Context())
	if err != nil {
		h.logger.Error("backfill parent links", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Parent-child relationships updated successfully", map[string]any{
		"updated_count": updated,
	})
}

// show handles GET /business-partner/{bpCode}: the record plus its unified
// family.
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "bpCode")

	p, err := h.service.GetPartner(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "Business partner not found")
			return
		}
		h.logger.Error("get partner", slog.String("bp_code", code), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	family, err := h.service.GetUnified(r.Context(), code)
	if err != nil {
		h.logger.Error("get unified partners", slog.String("bp_code", code), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	unified := make([]Detail, 0, len(family))
	for _, rel := range family {
		unified = append(unified, NewDetail(rel, family))
	}
	httpx.OK(w, "Business partner retrieved successfully", map[string]any{
		"partner":          NewDetail(*p, family),
		"unified_partners": unified,
	})
}

func parseVisitorFilters(r *http.Request) visitor.Filters {
	q := r.URL.Query()
	var f visitor.Filters
	if raw := q.Get("visitor_date_from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			f.DateFrom = &t
		}
	}
	if raw := q.Get("visitor_date_to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			f.DateTo = &t
		}
	}
	f.Needs = q.Get("visitor_needs")
	f.Status = q.Get("status")
	return f
}

// unifiedVisitors handles GET /business-partner/{bpCode}/visitors.
func (h *Handler) unifiedVisitors(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "bpCode")

	p, err := h.service.GetPartner(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "Business partner not found")
			return
		}
		h.logger.Error("get partner", slog.String("bp_code", code), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	codes, err := h.service.Resolve(r.Context(), code)
	if err != nil {
		h.logger.Error("resolve partner codes", slog.String("bp_code", code), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	visitors, err := h.visitors.ListUnified(r.Context(), codes, parseVisitorFilters(r))
	if err != nil {
		h.logger.Error("list unified visitors", slog.String("bp_code", code), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Visitors retrieved successfully", map[string]any{
		"partner":     p,
		"visitors":    visitor.ToResponses(visitors),
		"total_count": len(visitors),
	})
}

// dashboard handles GET /business-partner/{bpCode}/dashboard.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "bpCode")

	p, err := h.service.GetPartner(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "Business partner not found")
			return
		}
		h.logger.Error("get partner", slog.String("bp_code", code), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	codes, err := h.service.Resolve(r.Context(), code)
	if err != nil {
		h.logger.Error("resolve partner codes", slog.String("bp_code", code), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	counts, err := h.visitors.DashboardCounts(r.Context(), codes)
	if err != nil {
		h.logger.Error("dashboard counts", slog.String("bp_code", code), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Dashboard data retrieved successfully", map[string]any{
		"partner":   p,
		"dashboard": counts,
	})
}

// suppliers handles GET /supplier: the dropdown listing.
func (h *Handler) suppliers(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")
	limit := queryInt(r, "limit", 100)

	options, err := h.service.ActiveSuppliers(r.Context(), term, limit)
	if err != nil {
		h.logger.Error("list suppliers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Suppliers retrieved successfully", map[string]any{
		"items": options,
		"total": len(options),
	})
}

// supplierSearch handles GET /supplier/search: autocomplete, term required.
func (h *Handler) supplierSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", 50)

	if Normalize(term) == "" {
		httpx.OK(w, "Please provide search term", []SupplierOption{})
		return
	}

	options, err := h.service.ActiveSuppliers(r.Context(), term, limit)
	if err != nil {
		h.logger.Error("search suppliers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Search completed successfully", map[string]any{
		"items":       options,
		"total":       len(options),
		"search_term": term,
	})
}

// supplierShow handles GET /supplier/{bpCode}: canonical active codes only.
func (h *Handler) supplierShow(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "bpCode")
	option, err := h.service.SupplierByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "Supplier not found")
			return
		}
		h.logger.Error("get supplier", slog.String("bp_code", code), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Supplier retrieved successfully", option)
}
