package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/nimbusops/console/internal/platform"
	"github.com/nimbusops/console/internal/theme"
	"github.com/nimbusops/console/internal/web/component"
)

// piiDefaultLimit is the page size when the request does not set one.
const piiDefaultLimit = 50

// PII handles the detection log viewer: list, search, detail, and export.
type PII struct {
	logger *slog.Logger
	client *platform.Client
	theme  *theme.Manager
}

// NewPII creates a PII handler. logger is required.
func NewPII(logger *slog.Logger, client *platform.Client, tm *theme.Manager) *PII {
	if logger == nil {
		panic("NewPII: logger is required")
	}
	return &PII{logger: logger, client: client, theme: tm}
}

// RegisterRoutes registers the PII routes on the given mux.
func (h *PII) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /pii", h.List)
	mux.HandleFunc("GET /pii/export", h.Export)
	mux.HandleFunc("GET /pii/{id}", h.Detail)
}

// parsePIIQuery reads the filter form values from the request.
func parsePIIQuery(r *http.Request) (platform.PIIQuery, component.PIIFilterProps) {
	v := r.URL.Query()
	filters := component.PIIFilterProps{
		Q:          v.Get("q"),
		EntityType: v.Get("entity_type"),
		Engine:     v.Get("engine"),
		SourceType: v.Get("source_type"),
		StartDate:  v.Get("start_date"),
		EndDate:    v.Get("end_date"),
	}

	q := platform.PIIQuery{
		Q:          filters.Q,
		EntityType: filters.EntityType,
		Engine:     filters.Engine,
		SourceType: filters.SourceType,
		Limit:      piiDefaultLimit,
	}
	if page, err := strconv.Atoi(v.Get("page")); err == nil && page > 0 {
		q.Page = page
	} else {
		q.Page = 1
	}
	if limit, err := strconv.Atoi(v.Get("limit")); err == nil && limit > 0 && limit <= 500 {
		q.Limit = limit
	}
	if t, err := time.Parse("2006-01-02", filters.StartDate); err == nil {
		q.StartDate = t
	}
	if t, err := time.Parse("2006-01-02", filters.EndDate); err == nil {
		q.EndDate = t
	}
	return q, filters
}

// List renders the log viewer page. A free-text q switches to the search
// endpoint; plain filters use the list endpoint.
func (h *PII) List(w http.ResponseWriter, r *http.Request) {
	q, filters := parsePIIQuery(r)

	var (
		page platform.PIIPage
		err  error
	)
	if q.Q != "" {
		page, err = h.client.SearchPIILogs(r.Context(), q)
	} else {
		page, err = h.client.ListPIILogs(r.Context(), q)
	}
	if err != nil {
		h.logger.Error("failed to load pii logs", "error", err)
		http.Error(w, "could not load PII logs", http.StatusBadGateway)
		return
	}

	props := component.PIIPageProps{
		Filters: filters,
		Page:    page,
		Pagination: component.PaginationProps{
			Page:     page.Page,
			Limit:    page.Limit,
			Total:    page.Total,
			BasePath: "/pii",
			Query:    component.FilterQuery(filters),
		},
	}

	// Stats are decoration; the table renders without them.
	if stats, err := h.client.PIILogStats(r.Context()); err != nil {
		h.logger.Warn("failed to load pii stats", "error", err)
	} else {
		props.Stats = &stats
	}

	renderPage(w, r, h.logger, h.theme, "PII Logs", "pii", component.PIIPage(props))
}

// Detail renders one detection record.
func (h *PII) Detail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	log, err := h.client.GetPIILog(r.Context(), id)
	if err != nil {
		if errors.Is(err, platform.ErrBackendStatus) {
			http.Error(w, "detection not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load pii log", "id", id, "error", err)
		http.Error(w, "could not load detection", http.StatusBadGateway)
		return
	}

	renderPage(w, r, h.logger, h.theme, "PII Detection", "pii", component.PIIDetail(log))
}

// Export streams the backend's export file through to the browser.
func (h *PII) Export(w http.ResponseWriter, r *http.Request) {
	q, _ := parsePIIQuery(r)

	rc, err := h.client.ExportPIILogs(r.Context(), q)
	if err != nil {
		h.logger.Error("failed to export pii logs", "error", err)
		http.Error(w, "could not export PII logs", http.StatusBadGateway)
		return
	}
	defer func() {
		if err := rc.Close(); err != nil {
			h.logger.Debug("failed to close export stream", "error", err)
		}
	}()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="pii-logs.csv"`)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Debug("pii export interrupted", "error", err)
	}
}
