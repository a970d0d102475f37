/*
handlers.go - HTTP API handlers for the KPI engine

PURPOSE:
  Exposes the KPI engine via REST API. Handles HTTP request/response and
  JSON serialization, and delegates to the engine and the widget store.

ENDPOINTS:
  Compute (stateless):
    POST   /api/kpi                     Compute one KPI
    POST   /api/kpi/batch               Compute many KPIs concurrently

  Widgets:
    GET    /api/widgets                 List widgets
    POST   /api/widgets                 Create widget
    GET    /api/widgets/{id}            Get widget
    PUT    /api/widgets/{id}/settings   Merge settings (empty value = default)
    PUT    /api/widgets/{id}/encodings  Replace encoding map
    DELETE /api/widgets/{id}            Delete widget
    POST   /api/widgets/{id}/kpi        Compute with stored configuration

  Settings:
    GET    /api/settings/defaults       Default table, host keys

REQUEST FLOW:
  1. Decode JSON (numbers kept as json.Number)
  2. Parse settings once
  3. Engine.Explain
  4. Serialize with the widget's formatter applied

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed JSON, invalid settings, invalid widget
  - 404: Widget not found
  - 500: Store failures
  A KPI that cannot be shown is NOT an error: 200 with "kpi": null and a
  reason.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sourcegraph/conc/pool"
	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/settings"
	"github.com/warp/kpi-engine/widget"
)

// MaxBatchSize bounds POST /api/kpi/batch.
const MaxBatchSize = 100

// maxBodyBytes bounds every request body.
const maxBodyBytes = 8 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  widget.Store
	Engine *kpi.Engine
	Logger *slog.Logger

	// AllowedOrigins for CORS. Dashboards embed the widget from their own
	// origin.
	AllowedOrigins []string
}

// NewHandler creates a new handler with the given store and engine.
func NewHandler(store widget.Store, engine *kpi.Engine, logger *slog.Logger) *Handler {
	if engine == nil {
		engine = kpi.New()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		Store:          store,
		Engine:         engine,
		Logger:         logger,
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
	}
}

// =============================================================================
// COMPUTE HANDLERS
// =============================================================================

// ComputeKPI computes one KPI from the request body.
// POST /api/kpi
func (h *Handler) ComputeKPI(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.compute(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ComputeBatch computes independent KPIs concurrently. Results keep the
// request order; an invalid item reports its error in place.
// POST /api/kpi/batch
func (h *Handler) ComputeBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []ComputeRequest
	if err := decodeJSON(w, r, &reqs); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(reqs) > MaxBatchSize {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Batch too large: %d items, max %d", len(reqs), MaxBatchSize), nil)
		return
	}

	results := make([]KPIResponse, len(reqs))
	p := pool.New().WithMaxGoroutines(runtime.GOMAXPROCS(0))
	for i, req := range reqs {
		p.Go(func() {
			resp, err := h.compute(req)
			if err != nil {
				resp = KPIResponse{Error: err.Error()}
			}
			results[i] = resp
		})
	}
	p.Wait()

	h.Logger.Debug("kpi batch computed", "items", len(reqs))
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) compute(req ComputeRequest) (KPIResponse, error) {
	s, err := settings.ParseValues(req.Settings)
	if err != nil {
		return KPIResponse{}, err
	}
	res, err := h.Engine.Explain(req.Table, req.Encodings, s)
	return kpiResponse(res, err, s), nil
}

func kpiResponse(res *kpi.Result, reason error, s settings.Settings) KPIResponse {
	if res == nil {
		resp := KPIResponse{Reason: "no result"}
		if reason != nil {
			resp.Reason = reason.Error()
			resp.Actionable = kpi.IsUserActionable(reason)
		}
		return resp
	}
	return KPIResponse{KPI: toKPIDTO(res, s)}
}

// =============================================================================
// WIDGET HANDLERS
// =============================================================================

// ListWidgets returns all widgets.
// GET /api/widgets
func (h *Handler) ListWidgets(w http.ResponseWriter, r *http.Request) {
	widgets, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list widgets", err)
		return
	}

	dtos := make([]WidgetDTO, len(widgets))
	for i, wd := range widgets {
		dtos[i] = toWidgetDTO(wd)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateWidget stores a new widget with a generated id.
// POST /api/widgets
func (h *Handler) CreateWidget(w http.ResponseWriter, r *http.Request) {
	var req CreateWidgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	wd := widget.New(strings.TrimSpace(req.Name), req.Encodings, req.Settings)
	if err := wd.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid widget", err)
		return
	}
	if err := h.Store.Save(r.Context(), wd); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save widget", err)
		return
	}

	h.Logger.Info("widget created", "id", wd.ID, "name", wd.Name)
	h.respondWidget(w, r, wd.ID, http.StatusCreated)
}

// GetWidget returns one widget.
// GET /api/widgets/{id}
func (h *Handler) GetWidget(w http.ResponseWriter, r *http.Request) {
	h.respondWidget(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

// UpdateWidgetSettings merges the body into the stored settings.
// PUT /api/widgets/{id}/settings
func (h *Handler) UpdateWidgetSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := decodeJSON(w, r, &values); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.updateWidget(w, r, func(wd *widget.Widget) {
		wd.Settings = wd.MergeSettings(values)
	})
}

// UpdateWidgetEncodings replaces the stored encoding map.
// PUT /api/widgets/{id}/encodings
func (h *Handler) UpdateWidgetEncodings(w http.ResponseWriter, r *http.Request) {
	var enc kpi.EncodingMap
	if err := decodeJSON(w, r, &enc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.updateWidget(w, r, func(wd *widget.Widget) {
		wd.Encodings = enc
	})
}

// DeleteWidget removes a widget.
// DELETE /api/widgets/{id}
func (h *Handler) DeleteWidget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, "Failed to delete widget", err)
		return
	}

	h.Logger.Info("widget deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ComputeWidgetKPI computes a KPI from the body table using the widget's
// stored encodings and settings.
// POST /api/widgets/{id}/kpi
func (h *Handler) ComputeWidgetKPI(w http.ResponseWriter, r *http.Request) {
	var table kpi.Table
	if err := decodeJSON(w, r, &table); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	wd, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Failed to get widget", err)
		return
	}

	s, err := wd.ParsedSettings()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid widget settings", err)
		return
	}
	res, reason := h.Engine.Explain(table, wd.Encodings, s)
	writeJSON(w, http.StatusOK, kpiResponse(res, reason, s))
}

func (h *Handler) updateWidget(w http.ResponseWriter, r *http.Request, apply func(*widget.Widget)) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	wd, err := h.Store.Get(ctx, id)
	if err != nil {
		writeStoreError(w, "Failed to get widget", err)
		return
	}

	apply(wd)
	wd.UpdatedAt = time.Now().UTC()
	if err := wd.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid widget", err)
		return
	}
	if err := h.Store.Save(ctx, *wd); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save widget", err)
		return
	}

	h.Logger.Info("widget updated", "id", id)
	h.respondWidget(w, r, id, http.StatusOK)
}

// respondWidget reloads the widget so the response carries store timestamps.
func (h *Handler) respondWidget(w http.ResponseWriter, r *http.Request, id string, status int) {
	wd, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get widget", err)
		return
	}
	writeJSON(w, status, toWidgetDTO(*wd))
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetDefaultSettings returns the default table under host keys.
// GET /api/settings/defaults
func (h *Handler) GetDefaultSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settings.Defaults().Encode())
}

// =============================================================================
// HELPERS
// =============================================================================

// decodeJSON reads one JSON value from the body. Numbers decode as
// json.Number so cell values keep their precision.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps store errors: not found is 404, the rest 500.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, widget.ErrWidgetNotFound) {
		writeError(w, http.StatusNotFound, "Widget not found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, message, err)
}
