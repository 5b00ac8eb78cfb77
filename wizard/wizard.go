/*
Package wizard drives a calculation through the same steps as the entry form.

PURPOSE:
  The form collects a calculation in stages: the period and its daily tips,
  then the roster with hours, then the policy. Only after all three are in
  place is the engine run, exactly once. This package holds that sequence as
  a UI-free state machine so the CLI and tests can follow the same path.

STATES:
  collect-period  -> SetPeriod  -> collect-roster
  collect-roster  -> SetRoster  -> collect-policy
  collect-policy  -> SetPolicy  -> collect-policy (policy recorded)
  collect-policy  -> Calculate  -> computed
  Back() steps one state backwards from any state except computed.
  Reset() returns to collect-period with everything cleared.

SEE ALSO:
  - allocation/engine.go: Compute, called by Calculate
  - roster/template.go: Template, the source for FromTemplate
*/
package wizard

import (
	"errors"
	"fmt"

	"github.com/warp/tip-engine/allocation"
	"github.com/warp/tip-engine/roster"
)

// =============================================================================
// STATES
// =============================================================================

type State string

const (
	StateCollectPeriod State = "collect-period"
	StateCollectRoster State = "collect-roster"
	StateCollectPolicy State = "collect-policy"
	StateComputed      State = "computed"
)

var (
	ErrInvalidTransition = errors.New("wizard: invalid transition")
	ErrOutsidePeriod     = errors.New("wizard: day outside period")
	ErrNoPolicy          = errors.New("wizard: no policy selected")
)

// TransitionError reports an operation attempted in the wrong state.
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("wizard: cannot %s in state %s", e.Op, e.State)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// =============================================================================
// WIZARD
// =============================================================================

// Wizard is not safe for concurrent use.
type Wizard struct {
	state     State
	timeSpan  allocation.TimeSpan
	dailyTips []allocation.DayTips
	employees []allocation.Employee
	scenario  allocation.Scenario
	details   allocation.ScenarioDetails
	result    *allocation.Result
}

func New() *Wizard {
	return &Wizard{state: StateCollectPeriod}
}

// FromTemplate starts a wizard with the template's period length, roster and
// policy pre-filled. Hours and tips still have to be entered.
func FromTemplate(t roster.Template) *Wizard {
	clone := t.Clone()
	return &Wizard{
		state:     StateCollectPeriod,
		timeSpan:  clone.TimeSpan,
		employees: clone.EmployeesForPeriod(),
		scenario:  clone.Scenario,
		details:   clone.Details,
	}
}

func (w *Wizard) State() State { return w.state }
func (w *Wizard) TimeSpan() allocation.TimeSpan { return w.timeSpan }
func (w *Wizard) DailyTips() []allocation.DayTips { return append([]allocation.DayTips(nil), w.dailyTips...) }
func (w *Wizard) Employees() []allocation.Employee { return cloneEmployees(w.employees) }
func (w *Wizard) Scenario() allocation.Scenario { return w.scenario }
func (w *Wizard) Details() allocation.ScenarioDetails { return w.details.Clone() }

// Result is nil until Calculate succeeds.
func (w *Wizard) Result() *allocation.Result { return w.result }

// Request assembles what has been collected so far.
func (w *Wizard) Request() allocation.Request {
	return allocation.Request{
		Employees: cloneEmployees(w.employees),
		DailyTips: w.DailyTips(),
		Scenario:  w.scenario,
		Details:   w.details.Clone(),
	}
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// SelectTimeSpan changes the period length while collecting the period.
// Switching to a different length discards the daily tips entered so far.
func (w *Wizard) SelectTimeSpan(span allocation.TimeSpan) error {
	if w.state != StateCollectPeriod {
		return &TransitionError{Op: "select time span", State: w.state}
	}
	if _, err := allocation.ParseTimeSpan(string(span)); err != nil {
		return fmt.Errorf("wizard: %w", err)
	}
	if span != w.timeSpan {
		w.dailyTips = nil
	}
	w.timeSpan = span
	return nil
}

// SetPeriod records the period and its daily tips, then moves to
// collect-roster. Every tip day must fall inside the span.
func (w *Wizard) SetPeriod(span allocation.TimeSpan, tips []allocation.DayTips) error {
	if err := w.SelectTimeSpan(span); err != nil {
		return err
	}
	for _, t := range tips {
		if !span.Contains(t.Day) {
			return fmt.Errorf("%w: %s not in %s", ErrOutsidePeriod, t.Day, span)
		}
	}
	w.dailyTips = append([]allocation.DayTips(nil), tips...)
	w.pruneDaysWorked()
	w.state = StateCollectRoster
	return nil
}

// SetRoster records the employees and their hours, then moves to
// collect-policy. Worked days must fall inside the period.
func (w *Wizard) SetRoster(employees []allocation.Employee) error {
	if w.state != StateCollectRoster {
		return &TransitionError{Op: "set roster", State: w.state}
	}
	for _, emp := range employees {
		for day := range emp.DaysWorked {
			if !w.timeSpan.Contains(day) {
				return fmt.Errorf("%w: %s worked %s, not in %s", ErrOutsidePeriod, emp.Name, day, w.timeSpan)
			}
		}
	}
	w.employees = cloneEmployees(employees)
	w.state = StateCollectPolicy
	return nil
}

// SetPolicy records the scenario and its parameters. It may be called again
// to change the choice before Calculate.
func (w *Wizard) SetPolicy(scenario allocation.Scenario, details allocation.ScenarioDetails) error {
	if w.state != StateCollectPolicy {
		return &TransitionError{Op: "set policy", State: w.state}
	}
	if !scenario.Known() {
		return &allocation.UnknownScenarioError{Scenario: scenario}
	}
	w.scenario = scenario
	w.details = details.Clone()
	return nil
}

// Calculate runs the engine on the collected request. On failure the wizard
// stays in collect-policy with no result.
func (w *Wizard) Calculate() (*allocation.Result, error) {
	if w.state != StateCollectPolicy {
		return nil, &TransitionError{Op: "calculate", State: w.state}
	}
	if w.scenario == "" {
		return nil, ErrNoPolicy
	}
	result, err := allocation.Compute(w.Request())
	if err != nil {
		return nil, err
	}
	w.result = result
	w.state = StateComputed
	return result, nil
}

// Back returns to the previous step, keeping what was entered.
func (w *Wizard) Back() error {
	switch w.state {
	case StateCollectRoster:
		w.state = StateCollectPeriod
	case StateCollectPolicy:
		w.state = StateCollectRoster
	default:
		return &TransitionError{Op: "go back", State: w.state}
	}
	return nil
}

// Reset clears everything, including a computed result.
func (w *Wizard) Reset() {
	*w = Wizard{state: StateCollectPeriod}
}

// =============================================================================
// HELPERS
// =============================================================================

// pruneDaysWorked drops hours for days that no longer exist after the
// period was shortened.
func (w *Wizard) pruneDaysWorked() {
	for i := range w.employees {
		for day := range w.employees[i].DaysWorked {
			if !w.timeSpan.Contains(day) {
				delete(w.employees[i].DaysWorked, day)
			}
		}
	}
}

func cloneEmployees(in []allocation.Employee) []allocation.Employee {
	out := make([]allocation.Employee, len(in))
	for i, emp := range in {
		days := make(map[allocation.DayKey]allocation.DayWork, len(emp.DaysWorked))
		for k, v := range emp.DaysWorked {
			days[k] = v
		}
		emp.DaysWorked = days
		out[i] = emp
	}
	return out
}
