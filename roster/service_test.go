package roster_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tip-engine/allocation"
	"github.com/warp/tip-engine/roster"
	"github.com/warp/tip-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T) (*roster.Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)}
	seq := 0
	svc := roster.NewService(memory.New(),
		roster.WithClock(clock.Now),
		roster.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("tmpl-%d", seq)
		}),
	)
	return svc, clock
}

func validInput() roster.Input {
	return roster.Input{
		Name:     "  Brunch team ",
		TimeSpan: allocation.TimeSpanBiWeekly,
		Employees: []roster.Member{
			{Name: "Ana", Position: "Server"},
			{Name: "Cal", Position: "Line Cook"},
		},
		Scenario: allocation.ScenarioPercentageSplit,
		Details: allocation.ScenarioDetails{
			Percentages: map[string]float64{"Server": 80, "Line Cook": 20},
		},
	}
}

// =============================================================================
// SERVICE TESTS
// =============================================================================

func TestService_CreateStampsIDOwnerAndTime(t *testing.T) {
	svc, clock := newTestService(t)

	tmpl, err := svc.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)
	assert.Equal(t, "tmpl-1", tmpl.ID)
	assert.Equal(t, "user-1", tmpl.OwnerID)
	assert.Equal(t, "Brunch team", tmpl.Name)
	assert.Equal(t, clock.now, tmpl.CreatedAt)
	assert.Equal(t, clock.now, tmpl.UpdatedAt)
}

func TestService_CreateRejectsInvalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := map[string]func(in *roster.Input){
		"blank name":       func(in *roster.Input) { in.Name = "   " },
		"bad time span":    func(in *roster.Input) { in.TimeSpan = "Monthly" },
		"missing scenario": func(in *roster.Input) { in.Scenario = "" },
		"unknown scenario": func(in *roster.Input) { in.Scenario = "bogus" },
		"member name":      func(in *roster.Input) { in.Employees[0].Name = "" },
		"member position":  func(in *roster.Input) { in.Employees[1].Position = "" },
		"percentage":       func(in *roster.Input) { in.Details.Percentages["Server"] = 140 },
		"points":           func(in *roster.Input) { in.Details.Points = map[string]float64{"Server": -1} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Create(ctx, "user-1", in)
			assert.ErrorIs(t, err, roster.ErrInvalidTemplate)
			assert.True(t, roster.IsClientError(err))
		})
	}
}

func TestService_OwnershipEnforced(t *testing.T) {
	// GIVEN: A template owned by user-1
	// WHEN: user-2 reads, updates or deletes it
	// THEN: Every operation is forbidden and the template is untouched

	svc, _ := newTestService(t)
	ctx := context.Background()
	tmpl, err := svc.Create(ctx, "user-1", validInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, "user-2", tmpl.ID)
	assert.ErrorIs(t, err, roster.ErrForbidden)

	_, err = svc.Update(ctx, "user-2", tmpl.ID, validInput())
	assert.ErrorIs(t, err, roster.ErrForbidden)

	assert.ErrorIs(t, svc.Delete(ctx, "user-2", tmpl.ID), roster.ErrForbidden)

	got, err := svc.Get(ctx, "user-1", tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tmpl.Name, got.Name)
}

func TestService_UpdateKeepsIdentityAndCreatedAt(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, "user-1", validInput())
	require.NoError(t, err)

	clock.Advance(3 * time.Hour)
	in := validInput()
	in.Name = "Dinner team"
	in.Scenario = allocation.ScenarioHoursWorked
	updated, err := svc.Update(ctx, "user-1", created.ID, in)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "user-1", updated.OwnerID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock.now, updated.UpdatedAt)
	assert.Equal(t, "Dinner team", updated.Name)
}

func TestService_ListOnlyOwnTemplatesNewestFirst(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "user-1", validInput())
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := svc.Create(ctx, "user-1", validInput())
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-2", validInput())
	require.NoError(t, err)

	list, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	none, err := svc.List(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestService_DeleteThenGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tmpl, err := svc.Create(ctx, "user-1", validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", tmpl.ID))
	_, err = svc.Get(ctx, "user-1", tmpl.ID)
	assert.True(t, roster.IsNotFound(err))
}

func TestTemplate_EmployeesForPeriod(t *testing.T) {
	tmpl := roster.Template{Employees: []roster.Member{{Name: "Ana", Position: "Host"}}}
	employees := tmpl.EmployeesForPeriod()
	require.Len(t, employees, 1)
	assert.Equal(t, "Host", employees[0].Position)
	assert.NotNil(t, employees[0].DaysWorked)
	assert.Empty(t, employees[0].DaysWorked)
}
