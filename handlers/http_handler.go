package handlers

import (
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/giygas/pharmainsight-api/interfaces"
	"github.com/giygas/pharmainsight-api/logging"
	"github.com/go-chi/chi/v5"
)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	lookuper      interfaces.Lookuper
	validator     interfaces.InputValidator
	healthChecker interfaces.HealthChecker
	status        interfaces.StatusStore
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(lookuper interfaces.Lookuper, validator interfaces.InputValidator,
	healthChecker interfaces.HealthChecker, status interfaces.StatusStore) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		lookuper:      lookuper,
		validator:     validator,
		healthChecker: healthChecker,
		status:        status,
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Uptime        string         `json:"uptime"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// LookupMedicine handles GET /medicine/{name}
func (h *HTTPHandlerImpl) LookupMedicine(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	// chi routes on RawPath when the path has escapes like %2F, and on the
	// already decoded Path otherwise
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}
	h.lookupAndRespond(w, r, name)
}

// LookupMedicineQuery handles GET /medicine?name=
func (h *HTTPHandlerImpl) LookupMedicineQuery(w http.ResponseWriter, r *http.Request) {
	h.lookupAndRespond(w, r, r.URL.Query().Get("name"))
}

// SearchForm handles POST /search with the "medicine" form field
func (h *HTTPHandlerImpl) SearchForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logging.Warn("Invalid search form", "error", err)
		RespondWithError(w, http.StatusBadRequest, kindInvalidInput, "Invalid form data")
		return
	}
	h.lookupAndRespond(w, r, r.PostFormValue("medicine"))
}

func (h *HTTPHandlerImpl) lookupAndRespond(w http.ResponseWriter, r *http.Request, name string) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format != "" && format != formatJSON && format != formatText && format != formatYAML {
		RespondWithError(w, http.StatusBadRequest, kindInvalidInput, "Unsupported format, use json, text or yaml")
		return
	}

	if err := h.validator.ValidateMedicineName(name); err != nil {
		logging.Warn("Unusual user input", "name", name, "error", err)
		RespondWithError(w, http.StatusBadRequest, kindInvalidInput, err.Error())
		return
	}

	outcome := h.lookuper.Lookup(r.Context(), name)
	if !outcome.OK() {
		respondWithLookupError(w, outcome.Err)
		return
	}

	switch format {
	case formatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(RenderText(outcome.Record)))

	case formatYAML:
		body, err := RenderYAML(outcome.Record)
		if err != nil {
			logging.Error("Failed to marshal YAML response", "error", err)
			RespondWithError(w, http.StatusInternalServerError, kindInternal, "Failed to render record")
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(body)

	default:
		RespondWithJSON(w, http.StatusOK, outcome.Record)
	}
}

// HealthCheck returns the service and upstream status
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, httpStatus := h.healthChecker.HealthCheck()

	var uptime time.Duration
	if start := h.status.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:        status,
		UptimeSeconds: uptime.Seconds(),
		Uptime:        formatUptimeHuman(uptime),
		Data:          details,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	}

	RespondWithJSON(w, httpStatus, response)
}
