/*
Package allocation distributes a pooled sum of gratuities among employees.

PURPOSE:
  This package is the calculation core. It takes a roster with hours worked
  per day, the daily tip totals broken out by tip type, and one distribution
  policy with its parameters, and produces an earnings breakdown at three
  granularities: employee, position and day.

KEY CONCEPTS IN THIS FILE (types.go):
  - Scenario: Tag naming the chosen distribution policy
  - Request: Fully formed input (roster, daily tips, scenario, parameters)
  - Result: Immutable output (summary, employee, position and daily rollups)

DESIGN PRINCIPLES:
  1. Purity: Compute has no I/O, no shared state and no side effects
  2. Totality: Every division is zero-guarded; output never holds NaN or Inf
  3. One hard failure: An unrecognized scenario tag is the only error
  4. Determinism: Day order and employee order are preserved in the output

USAGE:
  result, err := allocation.Compute(allocation.Request{
      Employees: employees,
      DailyTips: tips,
      Scenario:  allocation.ScenarioHoursWorked,
  })

SEE ALSO:
  - engine.go: Compute and the per-employee tallies
  - policy.go: The five distribution policies
  - rollup.go: Position and daily breakdowns
  - day.go: Day keys, weekday labels, time spans
*/
package allocation

import (
	"bytes"
	"encoding/json"
)

// =============================================================================
// SCENARIO - Tag naming the distribution policy
// =============================================================================

type Scenario string

const (
	ScenarioHoursWorked     Scenario = "hours-worked"
	ScenarioPointsSystem    Scenario = "points-system"
	ScenarioPercentageSplit Scenario = "percentage-split"
	ScenarioTipOut          Scenario = "tip-out"
	ScenarioHybrid          Scenario = "hybrid"
)

// Hybrid split applied when the request leaves either side unspecified.
const (
	DefaultHybridHoursPercent  = 70.0
	DefaultHybridPointsPercent = 30.0
)

// =============================================================================
// REQUEST - Input contract
// =============================================================================

// Request is one calculation. It is assumed well-typed; the factory package
// performs validation at the boundary.
type Request struct {
	Employees []Employee
	// DailyTips is ordered by day. Day keys are unique.
	DailyTips []DayTips
	Scenario  Scenario
	Details   ScenarioDetails
}

// Employee is one roster entry. Only days actually worked are present in
// DaysWorked.
type Employee struct {
	ID         string             `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string             `json:"name" yaml:"name"`
	Position   string             `json:"position" yaml:"position"`
	DaysWorked map[DayKey]DayWork `json:"daysWorked" yaml:"daysWorked"`
}

// DayWork holds what an employee worked on a single day.
type DayWork struct {
	Hours float64 `json:"hours" yaml:"hours"`
}

// DayTips holds the tips collected on one day, by tip type.
type DayTips struct {
	Day               DayKey
	CreditCardTips    float64
	CashTips          float64
	ServiceChargeTips float64
}

// ScenarioDetails carries policy parameters. Each policy reads only the
// maps it needs; missing positions count as 0.
type ScenarioDetails struct {
	Points      map[string]float64 `json:"points,omitempty" yaml:"points,omitempty"`
	Percentages map[string]float64 `json:"percentages,omitempty" yaml:"percentages,omitempty"`
	HybridSplit *HybridSplit       `json:"hybridSplit,omitempty" yaml:"hybridSplit,omitempty"`
}

// Clone returns a copy that shares no maps or pointers with d.
func (d ScenarioDetails) Clone() ScenarioDetails {
	out := ScenarioDetails{
		Points:      cloneRates(d.Points),
		Percentages: cloneRates(d.Percentages),
	}
	if split := d.HybridSplit; split != nil {
		c := HybridSplit{}
		if split.Hours != nil {
			v := *split.Hours
			c.Hours = &v
		}
		if split.Points != nil {
			v := *split.Points
			c.Points = &v
		}
		out.HybridSplit = &c
	}
	return out
}

func cloneRates(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// HybridSplit divides the pool between an hours-weighted and a
// points-weighted sub-pool. The two sides are not renormalized.
type HybridSplit struct {
	Hours  *float64 `json:"hours,omitempty" yaml:"hours,omitempty"`
	Points *float64 `json:"points,omitempty" yaml:"points,omitempty"`
}

// Percents returns the split with defaults applied to unset sides.
func (h *HybridSplit) Percents() (hours, points float64) {
	hours, points = DefaultHybridHoursPercent, DefaultHybridPointsPercent
	if h == nil {
		return hours, points
	}
	if h.Hours != nil {
		hours = finite(*h.Hours)
	}
	if h.Points != nil {
		points = finite(*h.Points)
	}
	return hours, points
}

// =============================================================================
// RESULT - Output contract (never mutated after Compute returns)
// =============================================================================

type Result struct {
	Summary         Summary           `json:"summary"`
	EmployeeResults []EmployeeResult  `json:"employeeResults"`
	PositionSummary []PositionSummary `json:"positionSummary"`
	DailyBreakdown  DailyBreakdown    `json:"dailyBreakdown"`
}

type Summary struct {
	Scenario               Scenario `json:"scenario"`
	TotalTipPool           float64  `json:"totalTipPool"`
	TotalCreditCardTips    float64  `json:"totalCreditCardTips"`
	TotalCashTips          float64  `json:"totalCashTips"`
	TotalServiceChargeTips float64  `json:"totalServiceChargeTips"`
	TotalHoursWorked       float64  `json:"totalHoursWorked"`
	TotalPointsEarned      float64  `json:"totalPointsEarned"`
	// TotalHourlyRate is the blended rate: pool / total hours.
	TotalHourlyRate float64 `json:"totalHourlyRate"`
	TotalEmployees  int     `json:"totalEmployees"`
}

type EmployeeResult struct {
	Employee
	TotalHours              float64 `json:"totalHours"`
	PointsRate              float64 `json:"pointsRate"`
	TotalPoints             float64 `json:"totalPoints"`
	EarnedTips              float64 `json:"earnedTips"`
	EarnedCreditCardTips    float64 `json:"earnedCreditCardTips"`
	EarnedCashTips          float64 `json:"earnedCashTips"`
	EarnedServiceChargeTips float64 `json:"earnedServiceChargeTips"`
	HourlyRate              float64 `json:"hourlyRate"`
}

type PositionSummary struct {
	Position               string  `json:"position"`
	EmployeeCount          int     `json:"employeeCount"`
	TotalHours             float64 `json:"totalHours"`
	TotalTips              float64 `json:"totalTips"`
	TotalCreditCardTips    float64 `json:"totalCreditCardTips"`
	TotalCashTips          float64 `json:"totalCashTips"`
	TotalServiceChargeTips float64 `json:"totalServiceChargeTips"`
	// HourlyRate is recomputed from the group totals, not averaged.
	HourlyRate float64 `json:"hourlyRate"`
}

type DayBreakdown struct {
	Day               DayKey        `json:"day"`
	Weekday           string        `json:"weekday"`
	DayLabel          string        `json:"dayLabel"`
	CreditCardTips    float64       `json:"creditCardTips"`
	CashTips          float64       `json:"cashTips"`
	ServiceChargeTips float64       `json:"serviceChargeTips"`
	TotalTips         float64       `json:"totalTips"`
	TotalHours        float64       `json:"totalHours"`
	HourlyRate        float64       `json:"hourlyRate"`
	EmployeeDetails   []DayEmployee `json:"employeeDetails"`
}

// DayEmployee is one employee's slice of a day's pool. The slice uses the
// employee's period-level share of the total pool, not that day's hours.
type DayEmployee struct {
	Name              string  `json:"name"`
	Position          string  `json:"position"`
	HoursWorked       float64 `json:"hoursWorked"`
	CreditCardTips    float64 `json:"creditCardTips"`
	CashTips          float64 `json:"cashTips"`
	ServiceChargeTips float64 `json:"serviceChargeTips"`
	TotalTips         float64 `json:"totalTips"`
	HourlyRate        float64 `json:"hourlyRate"`
}

// DailyBreakdown is ordered by day and encodes as a JSON object keyed by
// day key, keeping that order.
type DailyBreakdown []DayBreakdown

// Get returns the breakdown for a day.
func (d DailyBreakdown) Get(day DayKey) (DayBreakdown, bool) {
	for _, b := range d {
		if b.Day == day {
			return b, true
		}
	}
	return DayBreakdown{}, false
}

func (d DailyBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(b.Day))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *DailyBreakdown) UnmarshalJSON(data []byte) error {
	var byDay map[DayKey]DayBreakdown
	if err := json.Unmarshal(data, &byDay); err != nil {
		return err
	}
	out := make(DailyBreakdown, 0, len(byDay))
	for _, key := range SortDayKeys(keysOf(byDay)) {
		b := byDay[key]
		b.Day = key
		out = append(out, b)
	}
	*d = out
	return nil
}

func keysOf[V any](m map[DayKey]V) []DayKey {
	keys := make([]DayKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
