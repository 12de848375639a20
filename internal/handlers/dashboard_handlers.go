package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"epiwatch/internal/dataset"
	"epiwatch/internal/views"
	"epiwatch/pkg/logging"
	"epiwatch/pkg/metrics"
)

// DashboardHandler handles the dashboard API endpoints.
type DashboardHandler struct {
	store       *dataset.Store
	evolution   *views.EvolutionView
	correlation *views.CorrelationView
	logger      *logging.Logger
	metrics     *metrics.Collector
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(
	store *dataset.Store,
	evolution *views.EvolutionView,
	correlation *views.CorrelationView,
	logger *logging.Logger,
	metricsCollector *metrics.Collector,
) *DashboardHandler {
	return &DashboardHandler{
		store:       store,
		evolution:   evolution,
		correlation: correlation,
		logger:      logger,
		metrics:     metricsCollector,
	}
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// MetaResponse describes the selectable parameter space of both views.
type MetaResponse struct {
	Diseases  []string          `json:"diseases"`
	WeekMin   int               `json:"week_min"`
	WeekMax   int               `json:"week_max"`
	Variables map[string]string `json:"climate_variables"`
}

// GetMeta handles GET /api/dashboard/meta
func (h *DashboardHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/dashboard/meta", time.Now())

	minWeek, maxWeek := h.store.WeekBounds()
	response := MetaResponse{
		Diseases:  h.store.Diseases(),
		WeekMin:   minWeek,
		WeekMax:   maxWeek,
		Variables: views.ClimateVariables,
	}

	h.metrics.RecordAPIRequest("/api/dashboard/meta", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetEvolution handles GET /api/dashboard/evolution
func (h *DashboardHandler) GetEvolution(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/dashboard/evolution", time.Now())

	h.metrics.RecordAPIRequest("/api/dashboard/evolution", "GET", "200")
	h.sendJSON(w, h.evolution.Data(), http.StatusOK)
}

// UpdateEvolutionParams handles PUT /api/dashboard/evolution/params
func (h *DashboardHandler) UpdateEvolutionParams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("/api/dashboard/evolution/params", time.Now())

	var patch views.EvolutionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.sendError(w, r, "invalid JSON body", http.StatusBadRequest)
		return
	}

	data, err := h.evolution.SetParams(patch)
	if err != nil {
		h.handleParamError(w, r, "/api/dashboard/evolution/params", err)
		return
	}

	h.logger.Info(ctx, "[VIEW_PARAMS_UPDATED] Evolution parameters changed", logging.Fields{
		"params": data.Params,
	})
	h.metrics.RecordAPIRequest("/api/dashboard/evolution/params", "PUT", "200")
	h.sendJSON(w, data, http.StatusOK)
}

// GetCorrelation handles GET /api/dashboard/correlation
func (h *DashboardHandler) GetCorrelation(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/dashboard/correlation", time.Now())

	h.metrics.RecordAPIRequest("/api/dashboard/correlation", "GET", "200")
	h.sendJSON(w, h.correlation.Data(), http.StatusOK)
}

// UpdateCorrelationParams handles PUT /api/dashboard/correlation/params
func (h *DashboardHandler) UpdateCorrelationParams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("/api/dashboard/correlation/params", time.Now())

	var patch views.CorrelationPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.sendError(w, r, "invalid JSON body", http.StatusBadRequest)
		return
	}

	data, err := h.correlation.SetParams(patch)
	if err != nil {
		h.handleParamError(w, r, "/api/dashboard/correlation/params", err)
		return
	}

	h.logger.Info(ctx, "[VIEW_PARAMS_UPDATED] Correlation parameters changed", logging.Fields{
		"params": data.Params,
	})
	h.metrics.RecordAPIRequest("/api/dashboard/correlation/params", "PUT", "200")
	h.sendJSON(w, data, http.StatusOK)
}

// GetMerged handles GET /api/dashboard/merged, the diagnostic listing of the
// unified table. Climate weeks without case records are visible here.
func (h *DashboardHandler) GetMerged(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/dashboard/merged", time.Now())

	// Default pagination
	page := 1
	limit := 100

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	filter := dataset.MergedFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if disease := r.URL.Query().Get("disease"); disease != "" {
		if !h.store.HasDisease(disease) {
			h.sendError(w, r, "unknown disease", http.StatusBadRequest)
			return
		}
		filter.Disease = &disease
	}

	if variable := r.URL.Query().Get("variable"); variable != "" {
		filter.Variable = &variable
	}

	rows, total := h.store.MergedPage(filter)
	totalPages := (total + limit - 1) / limit

	response := PaginatedResponse{
		Data:       rows,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}

	h.metrics.RecordAPIRequest("/api/dashboard/merged", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *DashboardHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// handleParamError maps view parameter errors to 400 responses.
func (h *DashboardHandler) handleParamError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	var paramErr *views.ParamError
	if errors.As(err, &paramErr) {
		h.metrics.RecordAPIError("param_error", endpoint)
		h.sendError(w, r, paramErr.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Error(r.Context(), "[API_PARAMS_ERROR] Parameter update failed", logging.Fields{
		"endpoint": endpoint,
	}, err)
	h.metrics.RecordAPIError("internal_error", endpoint)
	h.sendError(w, r, "failed to update parameters", http.StatusInternalServerError)
}

// observe records request latency for an endpoint.
func (h *DashboardHandler) observe(endpoint string, start time.Time) {
	h.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// sendJSON sends a JSON response.
func (h *DashboardHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response.
func (h *DashboardHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all dashboard API routes.
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/dashboard/meta", h.GetMeta).Methods("GET")
	router.HandleFunc("/api/dashboard/evolution", h.GetEvolution).Methods("GET")
	router.HandleFunc("/api/dashboard/evolution/params", h.UpdateEvolutionParams).Methods("PUT")
	router.HandleFunc("/api/dashboard/correlation", h.GetCorrelation).Methods("GET")
	router.HandleFunc("/api/dashboard/correlation/params", h.UpdateCorrelationParams).Methods("PUT")
	router.HandleFunc("/api/dashboard/merged", h.GetMerged).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
