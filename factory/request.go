/*
Package factory provides JSON/YAML to Go conversion of calculation requests.

PURPOSE:
  Converts the loosely typed request body produced by forms and scripts into
  a strongly typed allocation.Request. Wrong shapes are rejected here, at the
  edge, with the offending field named. The engine then only ever sees
  well-typed input.

JSON SCHEMA:
  {
    "timeSpan": "Weekly",
    "employees": [
      {"name": "Ana", "position": "Server", "daysWorked": {"day1": {"hours": 6}}}
    ],
    "dailyTips": {
      "day1": {"creditCardTips": 320.5, "cashTips": "45", "serviceChargeTips": 0}
    },
    "scenario": "hybrid",
    "scenarioDetails": {
      "points": {"Server": 1.2},
      "percentages": {"Server": 100},
      "hybridSplit": {"hours": 70, "points": 30}
    }
  }

RULES:
  - Numbers may be JSON numbers or numeric strings; null and "" mean 0
  - Booleans, objects and arrays in numeric fields are rejected
  - Tips, hours and points rates must be >= 0; percentages in [0, 100]
  - Day keys must be day<N> with N >= 1, and inside timeSpan when given
  - daysWorked entries may be {"hours": n} or a bare number
  - Unknown scenario tags pass through; the engine rejects them

USAGE:
  f := factory.NewRequestFactory()
  parsed, err := f.Parse(body)
  result, err := allocation.Compute(parsed.Request)

SEE ALSO:
  - number.go: Numeric field decoding
  - allocation/types.go: The target Request type
*/
package factory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/tip-engine/allocation"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RequestJSON is the wire form of a calculation request.
type RequestJSON struct {
	TimeSpan        string                  `json:"timeSpan,omitempty"`
	Employees       []EmployeeJSON          `json:"employees"`
	DailyTips       map[string]TipEntryJSON `json:"dailyTips"`
	Scenario        string                  `json:"scenario"`
	ScenarioDetails *DetailsJSON            `json:"scenarioDetails,omitempty"`
}

type EmployeeJSON struct {
	ID         string                 `json:"id,omitempty"`
	Name       string                 `json:"name"`
	Position   string                 `json:"position"`
	DaysWorked map[string]DayWorkJSON `json:"daysWorked"`
}

// DayWorkJSON accepts {"hours": n} or a bare n.
type DayWorkJSON struct {
	Hours Number `json:"hours"`
	null  bool
}

func (d *DayWorkJSON) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		d.null = true
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Hours Number `json:"hours"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		d.Hours = obj.Hours
		return nil
	}
	return d.Hours.UnmarshalJSON(trimmed)
}

type TipEntryJSON struct {
	CreditCardTips    Number `json:"creditCardTips"`
	CashTips          Number `json:"cashTips"`
	ServiceChargeTips Number `json:"serviceChargeTips"`
}

type DetailsJSON struct {
	Points      map[string]Number `json:"points,omitempty"`
	Percentages map[string]Number `json:"percentages,omitempty"`
	HybridSplit *HybridSplitJSON  `json:"hybridSplit,omitempty"`
}

type HybridSplitJSON struct {
	Hours  *Number `json:"hours,omitempty"`
	Points *Number `json:"points,omitempty"`
}

// Parsed is a validated request plus what the boundary needs around it.
type Parsed struct {
	Request  allocation.Request
	TimeSpan allocation.TimeSpan
	// Raw is the body as received (YAML input is re-encoded as JSON).
	Raw json.RawMessage
}

// =============================================================================
// REQUEST FACTORY
// =============================================================================

// RequestFactory converts request bodies to allocation requests.
type RequestFactory struct{}

// NewRequestFactory creates a new request factory.
func NewRequestFactory() *RequestFactory {
	return &RequestFactory{}
}

// ParseRequest decodes and validates a JSON body.
func ParseRequest(data []byte) (allocation.Request, error) {
	parsed, err := NewRequestFactory().Parse(data)
	if err != nil {
		return allocation.Request{}, err
	}
	return parsed.Request, nil
}

// ParseRequestYAML decodes and validates a YAML document of the same shape.
func ParseRequestYAML(data []byte) (allocation.Request, error) {
	parsed, err := NewRequestFactory().ParseYAML(data)
	if err != nil {
		return allocation.Request{}, err
	}
	return parsed.Request, nil
}

// Parse decodes a JSON body into a validated request.
func (f *RequestFactory) Parse(data []byte) (*Parsed, error) {
	var rj RequestJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return nil, decodeError(err)
	}
	parsed, err := f.FromJSON(rj)
	if err != nil {
		return nil, err
	}
	parsed.Raw = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	return parsed, nil
}

// ParseYAML decodes YAML by way of its JSON equivalent so both formats share
// one set of rules.
func (f *RequestFactory) ParseYAML(data []byte) (*Parsed, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("malformed YAML: %v", err)}
	}
	body, err := json.Marshal(normalizeYAML(doc))
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("unsupported YAML value: %v", err)}
	}
	return f.Parse(body)
}

// FromJSON validates the wire form and builds the engine request.
func (f *RequestFactory) FromJSON(rj RequestJSON) (*Parsed, error) {
	var span allocation.TimeSpan
	if rj.TimeSpan != "" {
		var err error
		span, err = allocation.ParseTimeSpan(rj.TimeSpan)
		if err != nil {
			return nil, invalid("timeSpan", "must be %q or %q", allocation.TimeSpanWeekly, allocation.TimeSpanBiWeekly)
		}
	}

	tips, err := parseDailyTips(rj.DailyTips, span)
	if err != nil {
		return nil, err
	}

	employees := make([]allocation.Employee, 0, len(rj.Employees))
	for i, ej := range rj.Employees {
		emp, err := parseEmployee(fmt.Sprintf("employees[%d]", i), ej, span)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}

	details, err := parseDetails(rj.ScenarioDetails)
	if err != nil {
		return nil, err
	}

	return &Parsed{
		Request: allocation.Request{
			Employees: employees,
			DailyTips: tips,
			Scenario:  allocation.Scenario(rj.Scenario),
			Details:   details,
		},
		TimeSpan: span,
	}, nil
}

// =============================================================================
// FIELD PARSERS
// =============================================================================

func parseDailyTips(raw map[string]TipEntryJSON, span allocation.TimeSpan) ([]allocation.DayTips, error) {
	keys := make([]allocation.DayKey, 0, len(raw))
	for k := range raw {
		key, err := parseDay("dailyTips."+k, k, span)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	out := make([]allocation.DayTips, 0, len(keys))
	for _, key := range allocation.SortDayKeys(keys) {
		entry := raw[string(key)]
		path := "dailyTips." + string(key)

		cc, err := nonNegative(path+".creditCardTips", entry.CreditCardTips)
		if err != nil {
			return nil, err
		}
		cash, err := nonNegative(path+".cashTips", entry.CashTips)
		if err != nil {
			return nil, err
		}
		service, err := nonNegative(path+".serviceChargeTips", entry.ServiceChargeTips)
		if err != nil {
			return nil, err
		}
		out = append(out, allocation.DayTips{
			Day:               key,
			CreditCardTips:    cc,
			CashTips:          cash,
			ServiceChargeTips: service,
		})
	}
	return out, nil
}

func parseEmployee(path string, ej EmployeeJSON, span allocation.TimeSpan) (allocation.Employee, error) {
	worked := make(map[allocation.DayKey]allocation.DayWork, len(ej.DaysWorked))
	for k, dw := range ej.DaysWorked {
		dayPath := path + ".daysWorked." + k
		key, err := parseDay(dayPath, k, span)
		if err != nil {
			return allocation.Employee{}, err
		}
		if dw.null {
			continue
		}
		hours, err := nonNegative(dayPath+".hours", dw.Hours)
		if err != nil {
			return allocation.Employee{}, err
		}
		worked[key] = allocation.DayWork{Hours: hours}
	}
	return allocation.Employee{
		ID:         ej.ID,
		Name:       ej.Name,
		Position:   ej.Position,
		DaysWorked: worked,
	}, nil
}

func parseDetails(dj *DetailsJSON) (allocation.ScenarioDetails, error) {
	var details allocation.ScenarioDetails
	if dj == nil {
		return details, nil
	}

	if dj.Points != nil {
		details.Points = make(map[string]float64, len(dj.Points))
		for position, n := range dj.Points {
			v, err := nonNegative("scenarioDetails.points."+position, n)
			if err != nil {
				return details, err
			}
			details.Points[position] = v
		}
	}

	if dj.Percentages != nil {
		details.Percentages = make(map[string]float64, len(dj.Percentages))
		for position, n := range dj.Percentages {
			v, err := percentage("scenarioDetails.percentages."+position, n)
			if err != nil {
				return details, err
			}
			details.Percentages[position] = v
		}
	}

	if split := dj.HybridSplit; split != nil {
		details.HybridSplit = &allocation.HybridSplit{}
		if split.Hours != nil && !split.Hours.IsZero() {
			v, err := percentage("scenarioDetails.hybridSplit.hours", *split.Hours)
			if err != nil {
				return details, err
			}
			details.HybridSplit.Hours = &v
		}
		if split.Points != nil && !split.Points.IsZero() {
			v, err := percentage("scenarioDetails.hybridSplit.points", *split.Points)
			if err != nil {
				return details, err
			}
			details.HybridSplit.Points = &v
		}
	}
	return details, nil
}

// DetailsToJSON is the inverse of the details parser, for building request
// bodies from saved parameters.
func DetailsToJSON(d allocation.ScenarioDetails) *DetailsJSON {
	dj := &DetailsJSON{}
	if d.Points != nil {
		dj.Points = make(map[string]Number, len(d.Points))
		for position, v := range d.Points {
			dj.Points[position] = NewNumber(v)
		}
	}
	if d.Percentages != nil {
		dj.Percentages = make(map[string]Number, len(d.Percentages))
		for position, v := range d.Percentages {
			dj.Percentages[position] = NewNumber(v)
		}
	}
	if split := d.HybridSplit; split != nil {
		dj.HybridSplit = &HybridSplitJSON{}
		if split.Hours != nil {
			n := NewNumber(*split.Hours)
			dj.HybridSplit.Hours = &n
		}
		if split.Points != nil {
			n := NewNumber(*split.Points)
			dj.HybridSplit.Points = &n
		}
	}
	return dj
}

func parseDay(path, raw string, span allocation.TimeSpan) (allocation.DayKey, error) {
	key, err := allocation.ParseDayKey(raw)
	if err != nil {
		return "", invalid(path, "is not a day key (want day<N>)")
	}
	if span != "" && !span.Contains(key) {
		return "", invalid(path, "is outside the %s period (%d days)", span, span.Days())
	}
	return key, nil
}

var hundred = decimal.NewFromInt(100)

func nonNegative(path string, n Number) (float64, error) {
	d, err := n.Decimal()
	if err != nil {
		return 0, invalid(path, "%v", err)
	}
	if d.IsNegative() {
		return 0, invalid(path, "must not be negative")
	}
	f, err := toFloat(d)
	if err != nil {
		return 0, invalid(path, "%v", err)
	}
	return f, nil
}

func percentage(path string, n Number) (float64, error) {
	d, err := n.Decimal()
	if err != nil {
		return 0, invalid(path, "%v", err)
	}
	if d.IsNegative() || d.GreaterThan(hundred) {
		return 0, invalid(path, "must be between 0 and 100")
	}
	return d.InexactFloat64(), nil
}

// =============================================================================
// DECODING HELPERS
// =============================================================================

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return invalid(typeErr.Field, "must be %s", typeErr.Type)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ValidationError{Message: fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)}
	}
	return &ValidationError{Message: err.Error()}
}

// normalizeYAML turns map[any]any nodes into map[string]any so the document
// can be re-encoded as JSON.
func normalizeYAML(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			node[k] = normalizeYAML(child)
		}
		return node
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[fmt.Sprint(k)] = normalizeYAML(child)
		}
		return out
	case []any:
		for i, child := range node {
			node[i] = normalizeYAML(child)
		}
		return node
	default:
		return v
	}
}
