package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/warp/tip-engine/allocation"
	"github.com/warp/tip-engine/factory"
	"github.com/warp/tip-engine/metrics"
	"github.com/warp/tip-engine/roster"
)

const (
	maxBodyBytes = 1 << 20

	calculationFailed = "An error occurred during calculation."
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Requests *factory.RequestFactory
	// Templates is nil when no template store is configured.
	Templates *roster.Service
	Metrics   *metrics.Metrics
	Log       *log.Logger
}

// NewHandler creates a new handler. templates and m may be nil.
func NewHandler(templates *roster.Service, m *metrics.Metrics, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(os.Stderr, "[api] ", log.LstdFlags)
	}
	return &Handler{
		Requests:  factory.NewRequestFactory(),
		Templates: templates,
		Metrics:   m,
		Log:       logger,
	}
}

// =============================================================================
// CALCULATION
// =============================================================================

// Calculate runs the engine on the posted request and echoes the body back
// as rawData.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	parsed, err := h.Requests.Parse(body)
	if err != nil {
		h.Metrics.ObserveCalculation("", metrics.ResultInvalid, 0)
		writeError(w, http.StatusBadRequest, "Invalid calculation request", err)
		return
	}

	start := time.Now()
	result, err := allocation.Compute(parsed.Request)
	h.respondCalculation(w, parsed.Request.Scenario, result, err, time.Since(start), parsed.Raw)
}

func (h *Handler) respondCalculation(
	w http.ResponseWriter,
	scenario allocation.Scenario,
	result *allocation.Result,
	err error,
	elapsed time.Duration,
	raw json.RawMessage,
) {
	label := string(scenario)
	if !scenario.Known() {
		label = "unknown"
	}

	if err != nil {
		h.Metrics.ObserveCalculation(label, metrics.ResultError, elapsed)
		h.Log.Printf("calculation failed: %v", err)
		writeError(w, http.StatusInternalServerError, calculationFailed, err)
		return
	}
	h.Metrics.ObserveCalculation(label, metrics.ResultSuccess, elapsed)

	for _, v := range result.Verify(allocation.DefaultTolerance) {
		h.Metrics.AddViolation(string(v.Kind))
		h.Log.Printf("calculation %s: %s", scenario, v)
	}

	writeJSON(w, http.StatusOK, CalculateResponse{Result: result, RawData: raw})
}

// =============================================================================
// CATALOGUES
// =============================================================================

func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, allocation.Scenarios())
}

func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, allocation.DefaultPositions())
}

func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	spans := []allocation.TimeSpan{allocation.TimeSpanWeekly, allocation.TimeSpanBiWeekly}
	periods := make([]PeriodDTO, len(spans))
	for i, span := range spans {
		periods[i] = PeriodDTO{TimeSpan: span, Days: span.Days(), DayKeys: span.DayKeys()}
	}
	writeJSON(w, http.StatusOK, periods)
}

// =============================================================================
// HEALTH
// =============================================================================

// Health pings the template store when it supports it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.Templates == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	pinger, ok := h.Templates.Store().(roster.Pinger)
	if !ok {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := pinger.Ping(ctx); err != nil {
		h.Log.Printf("health: store ping failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Store: "unreachable"})
		return
	}
	resp.Store = "ok"
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	return body, nil
}

// writeJSON encodes before writing the status. A value that cannot be
// encoded is reported as a 500.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: "Failed to encode response", Details: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
