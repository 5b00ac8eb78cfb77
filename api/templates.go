package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/tip-engine/allocation"
	"github.com/warp/tip-engine/auth"
	"github.com/warp/tip-engine/factory"
	"github.com/warp/tip-engine/metrics"
	"github.com/warp/tip-engine/roster"
	"github.com/warp/tip-engine/wizard"
)

// =============================================================================
// TEMPLATE HANDLERS (all behind auth.Middleware)
// =============================================================================

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	templates, err := h.Templates.List(r.Context(), owner)
	if err != nil {
		h.templateError(w, "list", err)
		return
	}
	h.Metrics.IncTemplateOp("list", metrics.ResultSuccess)
	writeJSON(w, http.StatusOK, TemplateListResponse{Templates: templates})
}

func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	in, ok := decodeInput(w, r)
	if !ok {
		h.Metrics.IncTemplateOp("create", metrics.ResultInvalid)
		return
	}
	tmpl, err := h.Templates.Create(r.Context(), owner, in)
	if err != nil {
		h.templateError(w, "create", err)
		return
	}
	h.Metrics.IncTemplateOp("create", metrics.ResultSuccess)
	writeJSON(w, http.StatusCreated, tmpl)
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	tmpl, err := h.Templates.Get(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		h.templateError(w, "get", err)
		return
	}
	h.Metrics.IncTemplateOp("get", metrics.ResultSuccess)
	writeJSON(w, http.StatusOK, tmpl)
}

func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	in, ok := decodeInput(w, r)
	if !ok {
		h.Metrics.IncTemplateOp("update", metrics.ResultInvalid)
		return
	}
	tmpl, err := h.Templates.Update(r.Context(), owner, chi.URLParam(r, "id"), in)
	if err != nil {
		h.templateError(w, "update", err)
		return
	}
	h.Metrics.IncTemplateOp("update", metrics.ResultSuccess)
	writeJSON(w, http.StatusOK, tmpl)
}

func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	if err := h.Templates.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		h.templateError(w, "delete", err)
		return
	}
	h.Metrics.IncTemplateOp("delete", metrics.ResultSuccess)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Template deleted"})
}

// CalculateFromTemplate runs a calculation seeded from a saved template.
// The body has the calculation request shape; timeSpan, employees, scenario
// and scenarioDetails fall back to the template when omitted.
func (h *Handler) CalculateFromTemplate(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	tmpl, err := h.Templates.Get(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		h.templateError(w, "get", err)
		return
	}
	h.Metrics.IncTemplateOp("get", metrics.ResultSuccess)

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}
	var rj factory.RequestJSON
	if err := json.Unmarshal(body, &rj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid calculation request", err)
		return
	}
	if rj.TimeSpan == "" {
		rj.TimeSpan = string(tmpl.TimeSpan)
	}
	if rj.Scenario == "" {
		rj.Scenario = string(tmpl.Scenario)
	}
	parsed, err := h.Requests.FromJSON(rj)
	if err != nil {
		h.Metrics.ObserveCalculation("", metrics.ResultInvalid, 0)
		writeError(w, http.StatusBadRequest, "Invalid calculation request", err)
		return
	}

	wz := wizard.FromTemplate(*tmpl)
	if err := wz.SetPeriod(parsed.TimeSpan, parsed.Request.DailyTips); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid calculation request", err)
		return
	}
	employees := parsed.Request.Employees
	if len(rj.Employees) == 0 {
		employees = wz.Employees()
	}
	if err := wz.SetRoster(employees); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid calculation request", err)
		return
	}
	details := parsed.Request.Details
	if rj.ScenarioDetails == nil {
		details = tmpl.Details
	}

	start := time.Now()
	var result *allocation.Result
	err = wz.SetPolicy(parsed.Request.Scenario, details)
	if err == nil {
		result, err = wz.Calculate()
	}
	h.respondCalculation(w, parsed.Request.Scenario, result, err, time.Since(start), json.RawMessage(body))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok || p.ID == "" {
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return "", false
	}
	return p.ID, true
}

func decodeInput(w http.ResponseWriter, r *http.Request) (roster.Input, bool) {
	var in roster.Input
	body, err := readBody(w, r)
	if err == nil {
		err = json.Unmarshal(body, &in)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid template", err)
		return roster.Input{}, false
	}
	return in, true
}

func (h *Handler) templateError(w http.ResponseWriter, op string, err error) {
	switch {
	case roster.IsNotFound(err):
		h.Metrics.IncTemplateOp(op, metrics.ResultInvalid)
		writeError(w, http.StatusNotFound, "Template not found", err)
	case errors.Is(err, roster.ErrForbidden):
		h.Metrics.IncTemplateOp(op, metrics.ResultInvalid)
		writeError(w, http.StatusForbidden, "Not authorized to access this template", nil)
	case roster.IsClientError(err):
		h.Metrics.IncTemplateOp(op, metrics.ResultInvalid)
		writeError(w, http.StatusBadRequest, "Invalid template", err)
	default:
		h.Metrics.IncTemplateOp(op, metrics.ResultError)
		h.Log.Printf("template %s failed: %v", op, err)
		writeError(w, http.StatusInternalServerError, "Template operation failed", err)
	}
}
