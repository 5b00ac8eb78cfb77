/*
Package roster holds saved roster templates and the rules around them.

PURPOSE:
  A template remembers a team and its distribution policy so a manager does
  not re-enter them every pay period. It carries no hours or tips; those are
  entered fresh for each calculation (see the wizard package).

KEY CONCEPTS:
  - Template: Owned roster plus scenario and parameters
  - Store: Persistence contract implemented under store/
  - Service: Ownership checks, validation, IDs and timestamps

SEE ALSO:
  - store/memory, store/sqlite, store/postgres, store/mongo: Store backends
  - wizard/wizard.go: Starts a calculation from a template
*/
package roster

import (
	"fmt"
	"strings"
	"time"

	"github.com/warp/tip-engine/allocation"
)

// Template is a saved roster configuration.
type Template struct {
	ID        string                     `json:"id"`
	OwnerID   string                     `json:"ownerId"`
	Name      string                     `json:"templateName"`
	Location  string                     `json:"location,omitempty"`
	TimeSpan  allocation.TimeSpan        `json:"timeSpan"`
	Employees []Member                   `json:"employees"`
	Scenario  allocation.Scenario        `json:"scenario"`
	Details   allocation.ScenarioDetails `json:"scenarioDetails"`
	CreatedAt time.Time                  `json:"createdAt"`
	UpdatedAt time.Time                  `json:"updatedAt"`
}

// Member is a roster entry without hours.
type Member struct {
	Name     string `json:"name"`
	Position string `json:"position"`
}

// EmployeesForPeriod converts members into engine employees with no days
// worked yet.
func (t Template) EmployeesForPeriod() []allocation.Employee {
	out := make([]allocation.Employee, len(t.Employees))
	for i, m := range t.Employees {
		out[i] = allocation.Employee{
			Name:       m.Name,
			Position:   m.Position,
			DaysWorked: map[allocation.DayKey]allocation.DayWork{},
		}
	}
	return out
}

// Validate checks the fields every backend relies on.
func Validate(t Template) error {
	if strings.TrimSpace(t.Name) == "" {
		return invalidTemplate("templateName is required")
	}
	if _, err := allocation.ParseTimeSpan(string(t.TimeSpan)); err != nil {
		return invalidTemplate(err.Error())
	}
	if t.Scenario == "" {
		return invalidTemplate("scenario is required")
	}
	if !t.Scenario.Known() {
		return invalidTemplate(fmt.Sprintf("unknown scenario %q", t.Scenario))
	}
	for i, m := range t.Employees {
		if strings.TrimSpace(m.Name) == "" {
			return invalidTemplate(fmt.Sprintf("employees[%d].name is required", i))
		}
		if strings.TrimSpace(m.Position) == "" {
			return invalidTemplate(fmt.Sprintf("employees[%d].position is required", i))
		}
	}
	for position, rate := range t.Details.Points {
		if rate < 0 {
			return invalidTemplate(fmt.Sprintf("points rate for %q must not be negative", position))
		}
	}
	for position, pct := range t.Details.Percentages {
		if pct < 0 || pct > 100 {
			return invalidTemplate(fmt.Sprintf("percentage for %q must be between 0 and 100", position))
		}
	}
	return nil
}

// Clone returns a copy that shares no slices or maps with t.
func (t Template) Clone() Template {
	out := t
	out.Employees = append([]Member(nil), t.Employees...)
	out.Details = t.Details.Clone()
	return out
}
