/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures exchanged over HTTP that are not already
  owned by a domain package. The calculation request body is decoded by
  the factory package; templates travel as roster.Input / roster.Template.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Complex response wrappers

SEE ALSO:
  - handlers.go: Uses these types
  - factory/request.go: Calculation request wire format
*/
package api

import (
	"encoding/json"

	"github.com/warp/tip-engine/allocation"
	"github.com/warp/tip-engine/roster"
)

// CalculateResponse is the engine result with the request echoed back.
type CalculateResponse struct {
	*allocation.Result
	RawData json.RawMessage `json:"rawData"`
}

// PeriodDTO describes a selectable period length.
type PeriodDTO struct {
	TimeSpan allocation.TimeSpan `json:"timeSpan"`
	Days     int                 `json:"days"`
	DayKeys  []allocation.DayKey `json:"dayKeys"`
}

// DemoDTO describes a demo team.
type DemoDTO struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Scenario    allocation.Scenario `json:"scenario"`
}

// TemplateListResponse wraps a user's templates.
type TemplateListResponse struct {
	Templates []roster.Template `json:"templates"`
}

// HealthResponse reports process and store health.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
