// Package storetest is a behaviour suite every roster.Store backend runs.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tip-engine/allocation"
	"github.com/warp/tip-engine/roster"
)

// Template builds a valid template for the suite.
func Template(id, owner string, updated time.Time) roster.Template {
	hours := 60.0
	return roster.Template{
		ID:       id,
		OwnerID:  owner,
		Name:     "Friday crew " + id,
		Location: "Main St",
		TimeSpan: allocation.TimeSpanWeekly,
		Employees: []roster.Member{
			{Name: "Ana", Position: "Server"},
			{Name: "Ben", Position: "Busser"},
		},
		Scenario: allocation.ScenarioHybrid,
		Details: allocation.ScenarioDetails{
			Points:      map[string]float64{"Server": 1.25, "Busser": 0.75},
			Percentages: map[string]float64{"Server": 70, "Busser": 30},
			HybridSplit: &allocation.HybridSplit{Hours: &hours},
		},
		CreatedAt: updated.Add(-time.Hour),
		UpdatedAt: updated,
	}
}

// Run exercises CRUD, ordering and error contracts against a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) roster.Store) {
	base := time.Date(2025, time.March, 7, 18, 0, 0, 0, time.UTC)

	t.Run("CreateThenGet", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		want := Template("t-1", "owner-1", base)
		require.NoError(t, store.Create(ctx, want))

		got, err := store.Get(ctx, "t-1")
		require.NoError(t, err)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Location, got.Location)
		assert.Equal(t, want.OwnerID, got.OwnerID)
		assert.Equal(t, want.TimeSpan, got.TimeSpan)
		assert.Equal(t, want.Scenario, got.Scenario)
		assert.Equal(t, want.Employees, got.Employees)
		assert.Equal(t, want.Details.Points, got.Details.Points)
		assert.Equal(t, want.Details.Percentages, got.Details.Percentages)
		require.NotNil(t, got.Details.HybridSplit)
		require.NotNil(t, got.Details.HybridSplit.Hours)
		assert.Equal(t, 60.0, *got.Details.HybridSplit.Hours)
		assert.Nil(t, got.Details.HybridSplit.Points)
		assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Create(ctx, Template("t-1", "owner-1", base)))
		err := store.Create(ctx, Template("t-1", "owner-2", base))
		assert.ErrorIs(t, err, roster.ErrDuplicateTemplate)
	})

	t.Run("GetMissing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, roster.ErrTemplateNotFound)
	})

	t.Run("ListByOwnerNewestFirst", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Create(ctx, Template("old", "owner-1", base)))
		require.NoError(t, store.Create(ctx, Template("new", "owner-1", base.Add(time.Hour))))
		require.NoError(t, store.Create(ctx, Template("other", "owner-2", base)))

		list, err := store.ListByOwner(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "new", list[0].ID)
		assert.Equal(t, "old", list[1].ID)

		empty, err := store.ListByOwner(ctx, "owner-3")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("Update", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		tmpl := Template("t-1", "owner-1", base)
		require.NoError(t, store.Create(ctx, tmpl))

		tmpl.Name = "Renamed"
		tmpl.Employees = append(tmpl.Employees, roster.Member{Name: "Cal", Position: "Line Cook"})
		tmpl.Scenario = allocation.ScenarioTipOut
		tmpl.UpdatedAt = base.Add(2 * time.Hour)
		require.NoError(t, store.Update(ctx, tmpl))

		got, err := store.Get(ctx, "t-1")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Len(t, got.Employees, 3)
		assert.Equal(t, allocation.ScenarioTipOut, got.Scenario)
		assert.True(t, tmpl.UpdatedAt.Equal(got.UpdatedAt))

		missing := Template("ghost", "owner-1", base)
		assert.ErrorIs(t, store.Update(ctx, missing), roster.ErrTemplateNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Create(ctx, Template("t-1", "owner-1", base)))
		require.NoError(t, store.Delete(ctx, "t-1"))

		_, err := store.Get(ctx, "t-1")
		assert.ErrorIs(t, err, roster.ErrTemplateNotFound)
		assert.ErrorIs(t, store.Delete(ctx, "t-1"), roster.ErrTemplateNotFound)
	})
}
