/*
handlers_test.go - HTTP tests for the calculation, catalogue and health routes

Tests for:
- POST /api/calculate success, validation failure and engine failure
- Catalogue endpoints
- Demo requests round-tripping through the engine
- /healthz and /metrics
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tip-engine/allocation"
	"github.com/warp/tip-engine/metrics"
	"github.com/warp/tip-engine/roster"
	"github.com/warp/tip-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testEnv struct {
	router  http.Handler
	handler *Handler
	logs    *bytes.Buffer
}

func newTestEnv(t *testing.T, store roster.Store) *testEnv {
	t.Helper()
	logs := &bytes.Buffer{}
	var svc *roster.Service
	if store != nil {
		svc = roster.NewService(store)
	}
	h := NewHandler(svc, metrics.New(prometheus.NewRegistry()), log.New(logs, "", 0))
	return &testEnv{
		router:  NewRouter(h, RouterConfig{Verifier: testVerifier}),
		handler: h,
		logs:    logs,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const calculateBody = `{
  "timeSpan": "Weekly",
  "employees": [
    {"name": "Ana", "position": "Server", "daysWorked": {"day1": {"hours": 6}, "day2": {"hours": 4}}},
    {"name": "Cal", "position": "Busser", "daysWorked": {"day1": {"hours": "10"}}}
  ],
  "dailyTips": {
    "day1": {"creditCardTips": 100, "cashTips": 20, "serviceChargeTips": 0},
    "day2": {"creditCardTips": 60, "cashTips": 0, "serviceChargeTips": 20}
  },
  "scenario": "hours-worked"
}`

// =============================================================================
// CALCULATE
// =============================================================================

func TestCalculate_Success(t *testing.T) {
	// GIVEN: A weekly hours-worked request
	// WHEN: Posting it to /api/calculate
	// THEN: The result is returned with the body echoed as rawData

	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodPost, "/api/calculate", calculateBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Summary         allocation.Summary           `json:"summary"`
		EmployeeResults []allocation.EmployeeResult  `json:"employeeResults"`
		PositionSummary []allocation.PositionSummary `json:"positionSummary"`
		DailyBreakdown  allocation.DailyBreakdown    `json:"dailyBreakdown"`
		RawData         json.RawMessage              `json:"rawData"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.InDelta(t, 200.0, resp.Summary.TotalTipPool, 1e-9)
	assert.Equal(t, 2, resp.Summary.TotalEmployees)
	require.Len(t, resp.EmployeeResults, 2)
	assert.InDelta(t, 100.0, resp.EmployeeResults[0].EarnedTips, 1e-9)
	assert.Len(t, resp.PositionSummary, 2)
	assert.Len(t, resp.DailyBreakdown, 2)
	assert.JSONEq(t, calculateBody, string(resp.RawData))
	assert.Empty(t, env.logs.String())
}

func TestCalculate_ValidationError(t *testing.T) {
	env := newTestEnv(t, nil)
	body := strings.Replace(calculateBody, `"cashTips": 20`, `"cashTips": -20`, 1)

	rec := env.do(t, http.MethodPost, "/api/calculate", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Invalid calculation request", resp.Error)
	assert.Contains(t, resp.Details, "dailyTips.day1.cashTips")
}

func TestCalculate_EmptyBody(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodPost, "/api/calculate", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculate_UnknownScenario(t *testing.T) {
	// GIVEN: A well-formed request naming a scenario the engine does not know
	// WHEN: Posting it
	// THEN: The generic calculation failure is returned with no partial result

	env := newTestEnv(t, nil)
	body := strings.Replace(calculateBody, `"hours-worked"`, `"coin-flip"`, 1)

	rec := env.do(t, http.MethodPost, "/api/calculate", body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "An error occurred during calculation.", raw["error"])
	assert.Contains(t, raw["details"], "coin-flip")
	assert.NotContains(t, raw, "summary")
	assert.Contains(t, env.logs.String(), "calculation failed")
}

func TestCalculate_LogsConsistencyViolations(t *testing.T) {
	// GIVEN: A percentage split whose percentages sum to less than 100
	// WHEN: Calculating
	// THEN: The result is still returned and the shortfall is logged

	env := newTestEnv(t, nil)
	body := `{
	  "employees": [{"name": "Ana", "position": "Server", "daysWorked": {"day1": {"hours": 5}}}],
	  "dailyTips": {"day1": {"cashTips": 100}},
	  "scenario": "percentage-split",
	  "scenarioDetails": {"percentages": {"Server": 60}}
	}`
	rec := env.do(t, http.MethodPost, "/api/calculate", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, env.logs.String(), "conservation")
}

func TestCalculate_HugeHoursStillEncode(t *testing.T) {
	// GIVEN: Hours whose period sum overflows float64
	// WHEN: Posting them
	// THEN: A complete, finite result is returned

	env := newTestEnv(t, nil)
	body := `{
	  "employees": [{"name": "Ana", "position": "Server", "daysWorked": {"day1": {"hours": 1e308}, "day2": {"hours": 1e308}}}],
	  "dailyTips": {"day1": {"cashTips": 100}},
	  "scenario": "hours-worked"
	}`
	rec := env.do(t, http.MethodPost, "/api/calculate", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotZero(t, rec.Body.Len())

	var result allocation.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.EmployeeResults, 1)
	assert.False(t, math.IsInf(result.Summary.TotalHoursWorked, 0))
	assert.InDelta(t, 100.0, result.EmployeeResults[0].EarnedTips, 1e-9)
}

func TestCalculate_NumberTooLargeIsRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	body := strings.Replace(calculateBody, `"hours": 6`, `"hours": 1e400`, 1)

	rec := env.do(t, http.MethodPost, "/api/calculate", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "too large")
}

func TestCalculate_MissingScenario(t *testing.T) {
	// GIVEN: A roster with no scenario named
	// WHEN: Posting it
	// THEN: It fails like an unknown scenario

	env := newTestEnv(t, nil)
	body := strings.Replace(calculateBody, `,
  "scenario": "hours-worked"`, "", 1)
	require.NotContains(t, body, "scenario")

	rec := env.do(t, http.MethodPost, "/api/calculate", body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An error occurred during calculation.", decode[ErrorResponse](t, rec).Error)
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"rate": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Failed to encode response", resp.Error)
	assert.Contains(t, resp.Details, "unsupported value")
}

// =============================================================================
// CATALOGUES AND DEMOS
// =============================================================================

func TestCatalogues(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	scenarios := decode[[]allocation.ScenarioInfo](t, rec)
	assert.Len(t, scenarios, 5)

	rec = env.do(t, http.MethodGet, "/api/positions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[[]string](t, rec), "Bartender")

	rec = env.do(t, http.MethodGet, "/api/periods", "")
	require.Equal(t, http.StatusOK, rec.Code)
	periods := decode[[]PeriodDTO](t, rec)
	require.Len(t, periods, 2)
	assert.Equal(t, 14, periods[1].Days)
	assert.Equal(t, allocation.Day(14), periods[1].DayKeys[13])
}

func TestDemos_EveryRequestCalculatesCleanly(t *testing.T) {
	// GIVEN: The demo catalogue
	// WHEN: Fetching each sample request and posting it to /api/calculate
	// THEN: Each computes under its own scenario without consistency violations

	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/demos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]DemoDTO](t, rec)
	require.Len(t, list, 5)

	for _, d := range list {
		t.Run(d.ID, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/demos/"+d.ID, "")
			require.Equal(t, http.StatusOK, rec.Code)

			rec = env.do(t, http.MethodPost, "/api/calculate", rec.Body.String())
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var result allocation.Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.Equal(t, d.Scenario, result.Summary.Scenario)
			assert.Greater(t, result.Summary.TotalTipPool, 0.0)
			assert.Empty(t, result.Verify(1e-6))
		})
	}

	rec = env.do(t, http.MethodGet, "/api/demos/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// HEALTH AND METRICS
// =============================================================================

type failingPingStore struct {
	*memory.Store
}

func (failingPingStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	rec := newTestEnv(t, nil).do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[HealthResponse](t, rec).Status)

	rec = newTestEnv(t, memory.New()).do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	env := newTestEnv(t, failingPingStore{memory.New()})
	rec = env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode[HealthResponse](t, rec).Status)
	assert.Contains(t, env.logs.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/calculate", calculateBody)

	rec := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tips_calculations_total{result="success",scenario="hours-worked"} 1`)
}
