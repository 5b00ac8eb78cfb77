package allocation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tip-engine/allocation"
)

func TestDayKey_WeekdayCycles(t *testing.T) {
	cases := map[int]string{
		1:  "Monday - Day 1",
		5:  "Friday - Day 5",
		7:  "Sunday - Day 7",
		8:  "Monday - Day 8",
		14: "Sunday - Day 14",
	}
	for n, want := range cases {
		assert.Equal(t, want, allocation.Day(n).Label())
	}
	assert.Equal(t, "Wednesday", allocation.Day(10).Weekday())
}

func TestParseDayKey(t *testing.T) {
	key, err := allocation.ParseDayKey("day12")
	require.NoError(t, err)
	assert.Equal(t, 11, key.Index())

	for _, bad := range []string{"", "day", "day0", "day-1", "day+2", "Day1", "d1", "day1x", "day01", "day007"} {
		_, err := allocation.ParseDayKey(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestDayKey_MalformedHasNoWeekday(t *testing.T) {
	bad := allocation.DayKey("monday")
	assert.Equal(t, -1, bad.Index())
	assert.Equal(t, "", bad.Weekday())
	assert.Equal(t, "monday", bad.Label())
}

func TestSortDayKeys_NumericOrder(t *testing.T) {
	keys := []allocation.DayKey{"day10", "oops", "day2", "day1", "day14"}
	sorted := allocation.SortDayKeys(keys)
	assert.Equal(t, []allocation.DayKey{"day1", "day2", "day10", "day14", "oops"}, sorted)
}

func TestTimeSpan(t *testing.T) {
	weekly, err := allocation.ParseTimeSpan("Weekly")
	require.NoError(t, err)
	assert.Equal(t, 7, weekly.Days())
	assert.True(t, weekly.Contains(allocation.Day(7)))
	assert.False(t, weekly.Contains(allocation.Day(8)))

	biWeekly, err := allocation.ParseTimeSpan("Bi-Weekly")
	require.NoError(t, err)
	keys := biWeekly.DayKeys()
	require.Len(t, keys, 14)
	assert.Equal(t, allocation.Day(1), keys[0])
	assert.Equal(t, allocation.Day(14), keys[13])

	_, err = allocation.ParseTimeSpan("Monthly")
	assert.Error(t, err)
}

func TestHybridSplit_Percents(t *testing.T) {
	var unset *allocation.HybridSplit
	hours, points := unset.Percents()
	assert.Equal(t, allocation.DefaultHybridHoursPercent, hours)
	assert.Equal(t, allocation.DefaultHybridPointsPercent, points)

	hours, points = (&allocation.HybridSplit{Points: ptr(40)}).Percents()
	assert.Equal(t, 70.0, hours)
	assert.Equal(t, 40.0, points)
}

func TestCatalog(t *testing.T) {
	scenarios := allocation.Scenarios()
	require.Len(t, scenarios, 5)
	assert.Equal(t, allocation.ScenarioHoursWorked, scenarios[0].ID)
	assert.Equal(t, "Hybrid Model", scenarios[4].Name)
	assert.True(t, allocation.ScenarioTipOut.Known())
	assert.False(t, allocation.Scenario("bogus").Known())

	positions := allocation.DefaultPositions()
	assert.Contains(t, positions, "Lead Bartender")
	positions[0] = "changed"
	assert.Equal(t, "Bartender", allocation.DefaultPositions()[0])
}

func TestPolicyFor_UnknownScenario(t *testing.T) {
	_, err := allocation.PolicyFor("nope", allocation.ScenarioDetails{})
	assert.ErrorIs(t, err, allocation.ErrUnknownScenario)

	policy, err := allocation.PolicyFor(allocation.ScenarioTipOut, allocation.ScenarioDetails{})
	require.NoError(t, err)
	assert.Equal(t, allocation.ScenarioTipOut, policy.Scenario())
}
