package factory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tip-engine/allocation"
	"github.com/warp/tip-engine/factory"
)

const weeklyRequest = `{
  "timeSpan": "Weekly",
  "employees": [
    {"name": "Ana", "position": "Server", "daysWorked": {"day1": {"hours": 6}, "day3": {"hours": "4.5"}}},
    {"name": "Ben", "position": "Busser", "daysWorked": {"day2": 8}}
  ],
  "dailyTips": {
    "day3": {"creditCardTips": 100, "cashTips": "20.25"},
    "day1": {"creditCardTips": "300", "cashTips": 50, "serviceChargeTips": null},
    "day2": {"creditCardTips": 0, "cashTips": "", "serviceChargeTips": 12}
  },
  "scenario": "hybrid",
  "scenarioDetails": {
    "points": {"Server": 1.5, "Busser": "1"},
    "percentages": {"Server": 70, "Busser": 30},
    "hybridSplit": {"hours": 60}
  }
}`

func requireValidationError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, factory.ErrInvalidRequest), "expected ErrInvalidRequest, got %v", err)
	var ve *factory.ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %T", err)
	assert.Equal(t, field, ve.Field)
}

// =============================================================================
// HAPPY PATH
// =============================================================================

func TestParse_Weekly(t *testing.T) {
	// GIVEN: A request mixing numbers, numeric strings, nulls and bare hours
	// WHEN: Parsing
	// THEN: Every field is coerced and daily tips come out in day order

	parsed, err := factory.NewRequestFactory().Parse([]byte(weeklyRequest))
	require.NoError(t, err)

	req := parsed.Request
	assert.Equal(t, allocation.TimeSpanWeekly, parsed.TimeSpan)
	assert.Equal(t, allocation.ScenarioHybrid, req.Scenario)

	require.Len(t, req.DailyTips, 3)
	assert.Equal(t, allocation.Day(1), req.DailyTips[0].Day)
	assert.Equal(t, 300.0, req.DailyTips[0].CreditCardTips)
	assert.Equal(t, 0.0, req.DailyTips[0].ServiceChargeTips)
	assert.Equal(t, 0.0, req.DailyTips[1].CashTips)
	assert.Equal(t, 12.0, req.DailyTips[1].ServiceChargeTips)
	assert.Equal(t, 20.25, req.DailyTips[2].CashTips)

	require.Len(t, req.Employees, 2)
	assert.Equal(t, 4.5, req.Employees[0].DaysWorked[allocation.Day(3)].Hours)
	assert.Equal(t, 8.0, req.Employees[1].DaysWorked[allocation.Day(2)].Hours)

	assert.Equal(t, 1.0, req.Details.Points["Busser"])
	assert.Equal(t, 70.0, req.Details.Percentages["Server"])
	hours, points := req.Details.HybridSplit.Percents()
	assert.Equal(t, 60.0, hours)
	assert.Equal(t, allocation.DefaultHybridPointsPercent, points)

	assert.JSONEq(t, weeklyRequest, string(parsed.Raw))
}

func TestParse_UnknownScenarioPassesThrough(t *testing.T) {
	req, err := factory.ParseRequest([]byte(`{"employees": [], "dailyTips": {}, "scenario": "bogus"}`))
	require.NoError(t, err)
	assert.Equal(t, allocation.Scenario("bogus"), req.Scenario)
	assert.Empty(t, req.Employees)
}

func TestParse_MissingScenarioPassesThrough(t *testing.T) {
	// GIVEN: A request with no scenario
	// WHEN: Parsing it
	// THEN: The empty tag is left for the engine to reject

	req, err := factory.ParseRequest([]byte(`{"employees": [{"name": "Ana", "position": "Host"}]}`))
	require.NoError(t, err)
	assert.Equal(t, allocation.Scenario(""), req.Scenario)

	_, err = allocation.Compute(req)
	assert.ErrorIs(t, err, allocation.ErrUnknownScenario)
}

func TestNumber_TooLarge(t *testing.T) {
	var n factory.Number
	require.NoError(t, n.UnmarshalJSON([]byte("1e400")))
	_, err := n.Float()
	assert.Error(t, err)
}

func TestParse_NullDayWorkedIsSkipped(t *testing.T) {
	req, err := factory.ParseRequest([]byte(`{
		"employees": [{"name": "Ana", "position": "Host", "daysWorked": {"day1": null, "day2": {"hours": 3}}}],
		"dailyTips": {"day1": {"cashTips": 10}},
		"scenario": "hours-worked"
	}`))
	require.NoError(t, err)
	_, worked := req.Employees[0].DaysWorked[allocation.Day(1)]
	assert.False(t, worked)
	assert.Len(t, req.Employees[0].DaysWorked, 1)
}

func TestParse_NoTimeSpanAllowsAnyDay(t *testing.T) {
	req, err := factory.ParseRequest([]byte(`{
		"dailyTips": {"day21": {"cashTips": 10}},
		"scenario": "hours-worked"
	}`))
	require.NoError(t, err)
	assert.Equal(t, allocation.Day(21), req.DailyTips[0].Day)
}

func TestParseYAML(t *testing.T) {
	doc := `
timeSpan: Bi-Weekly
scenario: points-system
employees:
  - name: Ana
    position: Bartender
    daysWorked:
      day9: {hours: 7}
dailyTips:
  day9:
    creditCardTips: 140
    cashTips: "35.5"
scenarioDetails:
  points:
    Bartender: 2
`
	parsed, err := factory.NewRequestFactory().ParseYAML([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, allocation.TimeSpanBiWeekly, parsed.TimeSpan)
	assert.Equal(t, 35.5, parsed.Request.DailyTips[0].CashTips)
	assert.Equal(t, 7.0, parsed.Request.Employees[0].DaysWorked[allocation.Day(9)].Hours)
	assert.Equal(t, 2.0, parsed.Request.Details.Points["Bartender"])
	assert.Contains(t, string(parsed.Raw), `"scenario":"points-system"`)

	req, err := factory.ParseRequestYAML([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, allocation.ScenarioPointsSystem, req.Scenario)
}

// =============================================================================
// REJECTIONS
// =============================================================================

func TestParse_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "unknown time span",
			body:  `{"timeSpan": "Monthly", "scenario": "hours-worked"}`,
			field: "timeSpan",
		},
		{
			name:  "negative tips",
			body:  `{"dailyTips": {"day1": {"cashTips": -5}}, "scenario": "hours-worked"}`,
			field: "dailyTips.day1.cashTips",
		},
		{
			name:  "boolean tips",
			body:  `{"dailyTips": {"day1": {"creditCardTips": true}}, "scenario": "hours-worked"}`,
			field: "dailyTips.day1.creditCardTips",
		},
		{
			name:  "non-numeric string",
			body:  `{"dailyTips": {"day1": {"serviceChargeTips": "lots"}}, "scenario": "hours-worked"}`,
			field: "dailyTips.day1.serviceChargeTips",
		},
		{
			name:  "malformed day key",
			body:  `{"dailyTips": {"monday": {"cashTips": 1}}, "scenario": "hours-worked"}`,
			field: "dailyTips.monday",
		},
		{
			name:  "zero-padded day key",
			body:  `{"dailyTips": {"day01": {"cashTips": 1}}, "scenario": "hours-worked"}`,
			field: "dailyTips.day01",
		},
		{
			name:  "hours too large for float64",
			body:  `{"employees": [{"name": "A", "position": "Server", "daysWorked": {"day1": {"hours": 1e400}}}], "scenario": "hours-worked"}`,
			field: "employees[0].daysWorked.day1.hours",
		},
		{
			name:  "tips too large as a string",
			body:  `{"dailyTips": {"day1": {"cashTips": "9e999"}}, "scenario": "hours-worked"}`,
			field: "dailyTips.day1.cashTips",
		},
		{
			name:  "day outside weekly period",
			body:  `{"timeSpan": "Weekly", "dailyTips": {"day8": {"cashTips": 1}}, "scenario": "hours-worked"}`,
			field: "dailyTips.day8",
		},
		{
			name:  "negative hours",
			body:  `{"employees": [{"name": "A", "position": "Server", "daysWorked": {"day1": {"hours": -2}}}], "scenario": "hours-worked"}`,
			field: "employees[0].daysWorked.day1.hours",
		},
		{
			name:  "object hours",
			body:  `{"employees": [{"name": "A", "position": "Server", "daysWorked": {"day1": {"hours": {"n": 2}}}}], "scenario": "hours-worked"}`,
			field: "employees[0].daysWorked.day1.hours",
		},
		{
			name:  "negative points rate",
			body:  `{"scenario": "points-system", "scenarioDetails": {"points": {"Server": -1}}}`,
			field: "scenarioDetails.points.Server",
		},
		{
			name:  "percentage above 100",
			body:  `{"scenario": "tip-out", "scenarioDetails": {"percentages": {"Server": 120}}}`,
			field: "scenarioDetails.percentages.Server",
		},
		{
			name:  "hybrid split out of range",
			body:  `{"scenario": "hybrid", "scenarioDetails": {"hybridSplit": {"hours": 70, "points": -30}}}`,
			field: "scenarioDetails.hybridSplit.points",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := factory.ParseRequest([]byte(tc.body))
			requireValidationError(t, err, tc.field)
		})
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := factory.ParseRequest([]byte(`{"scenario": `))
	require.Error(t, err)
	assert.True(t, factory.IsClientError(err))
}

func TestParse_WrongTypeForTextField(t *testing.T) {
	_, err := factory.ParseRequest([]byte(`{"employees": [{"name": 5}], "scenario": "hours-worked"}`))
	require.Error(t, err)
	assert.True(t, factory.IsClientError(err))
}

// =============================================================================
// NUMBER
// =============================================================================

func TestNumber(t *testing.T) {
	v, err := factory.NewNumber(12.5).Float()
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	var zero factory.Number
	assert.True(t, zero.IsZero())
	v, err = zero.Float()
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestDetailsToJSON_ParsesBack(t *testing.T) {
	// GIVEN: Saved hybrid parameters with only the hours side set
	// WHEN: Rendering them as a request body and parsing it again
	// THEN: The parameters survive and the unset side keeps its default

	hours := 55.0
	want := allocation.ScenarioDetails{
		Points:      map[string]float64{"Server": 1.25},
		Percentages: map[string]float64{"Host": 10},
		HybridSplit: &allocation.HybridSplit{Hours: &hours},
	}
	parsed, err := factory.NewRequestFactory().FromJSON(factory.RequestJSON{
		Scenario:        string(allocation.ScenarioHybrid),
		ScenarioDetails: factory.DetailsToJSON(want),
	})
	require.NoError(t, err)
	assert.Equal(t, want, parsed.Request.Details)

	h, p := parsed.Request.Details.HybridSplit.Percents()
	assert.Equal(t, 55.0, h)
	assert.Equal(t, allocation.DefaultHybridPointsPercent, p)
}
