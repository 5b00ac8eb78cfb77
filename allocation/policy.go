/*
policy.go - The five tip distribution policies

PURPOSE:
  Each policy turns the total tip pool plus per-employee tallies (hours,
  points) into an earned-tip amount per employee. Policies only decide the
  earned total; the tip-type breakdown and all rollups happen afterwards in
  the engine and are identical for every policy.

POLICIES:
  hours-worked:
    earned = hours / totalHours * pool

  points-system:
    earned = points / totalPoints * pool   (points = hours * rate[position])

  percentage-split, tip-out (same policy, two names):
    Each position receives percentage[position] % of the pool. That share is
    accumulated per head (share / headcount, once per member), then each
    member takes hours / positionHours of the accumulated share.

  hybrid:
    pool is split into hoursPercent % and pointsPercent % sub-pools
    (defaults 70 / 30, not renormalized); each sub-pool is distributed as
    hours-worked and points-system respectively, and the two are added.

ZERO GUARDS:
  A zero denominator yields a zero share, never NaN or Inf.

SEE ALSO:
  - engine.go: Builds tallies and calls Policy.Allocate
  - catalog.go: Display names and parameter needs per scenario
*/
package allocation

import "math"

// =============================================================================
// POLICY INTERFACE
// =============================================================================

// Policy allocates pool among tallies. The returned slice is aligned with
// tallies.
type Policy interface {
	Scenario() Scenario
	Allocate(pool float64, tallies []Tally) []float64
}

// Tally is an employee's computed weights for the period.
type Tally struct {
	Position   string
	Hours      float64
	PointsRate float64
	Points     float64
}

// PolicyFor dispatches a scenario tag to its policy.
func PolicyFor(scenario Scenario, details ScenarioDetails) (Policy, error) {
	switch scenario {
	case ScenarioHoursWorked:
		return HoursWorked{}, nil
	case ScenarioPointsSystem:
		return PointsSystem{}, nil
	case ScenarioPercentageSplit, ScenarioTipOut:
		return PercentageSplit{Tag: scenario, Percentages: details.Percentages}, nil
	case ScenarioHybrid:
		hours, points := details.HybridSplit.Percents()
		return Hybrid{HoursPercent: hours, PointsPercent: points}, nil
	default:
		return nil, &UnknownScenarioError{Scenario: scenario}
	}
}

// =============================================================================
// HOURS WORKED
// =============================================================================

type HoursWorked struct{}

func (HoursWorked) Scenario() Scenario { return ScenarioHoursWorked }

func (HoursWorked) Allocate(pool float64, tallies []Tally) []float64 {
	return proportional(pool, tallies, func(t Tally) float64 { return t.Hours })
}

// =============================================================================
// POINTS SYSTEM
// =============================================================================

type PointsSystem struct{}

func (PointsSystem) Scenario() Scenario { return ScenarioPointsSystem }

func (PointsSystem) Allocate(pool float64, tallies []Tally) []float64 {
	return proportional(pool, tallies, func(t Tally) float64 { return t.Points })
}

// =============================================================================
// PERCENTAGE SPLIT / TIP-OUT
// =============================================================================

type PercentageSplit struct {
	// Tag is percentage-split or tip-out.
	Tag         Scenario
	Percentages map[string]float64
}

func (p PercentageSplit) Scenario() Scenario {
	if p.Tag == "" {
		return ScenarioPercentageSplit
	}
	return p.Tag
}

type positionGroup struct {
	totalHours float64
	totalShare float64
}

func (p PercentageSplit) Allocate(pool float64, tallies []Tally) []float64 {
	headcount := make(map[string]int)
	for _, t := range tallies {
		headcount[t.Position]++
	}

	groups := make(map[string]*positionGroup)
	for _, t := range tallies {
		share := (finite(p.Percentages[t.Position]) / 100) * pool
		g, ok := groups[t.Position]
		if !ok {
			g = &positionGroup{}
			groups[t.Position] = g
		}
		g.totalShare = addFinite(g.totalShare, share/float64(headcount[t.Position]))
		g.totalHours = addFinite(g.totalHours, t.Hours)
	}

	earned := make([]float64, len(tallies))
	for i, t := range tallies {
		g := groups[t.Position]
		if g.totalHours > 0 {
			earned[i] = (t.Hours / g.totalHours) * g.totalShare
		}
	}
	return earned
}

// =============================================================================
// HYBRID
// =============================================================================

type Hybrid struct {
	HoursPercent  float64
	PointsPercent float64
}

func (Hybrid) Scenario() Scenario { return ScenarioHybrid }

func (h Hybrid) Allocate(pool float64, tallies []Tally) []float64 {
	hoursPool := pool * (h.HoursPercent / 100)
	pointsPool := pool * (h.PointsPercent / 100)

	fromHours := proportional(hoursPool, tallies, func(t Tally) float64 { return t.Hours })
	fromPoints := proportional(pointsPool, tallies, func(t Tally) float64 { return t.Points })

	earned := make([]float64, len(tallies))
	for i := range tallies {
		earned[i] = addFinite(fromHours[i], fromPoints[i])
	}
	return earned
}

// =============================================================================
// HELPERS
// =============================================================================

// proportional splits pool by weight; a non-positive weight total gives
// every tally 0.
func proportional(pool float64, tallies []Tally, weight func(Tally) float64) []float64 {
	var total float64
	for _, t := range tallies {
		total = addFinite(total, weight(t))
	}
	shares := make([]float64, len(tallies))
	if total <= 0 {
		return shares
	}
	for i, t := range tallies {
		shares[i] = finite((weight(t) / total) * pool)
	}
	return shares
}

// safeDiv returns a/b, or 0 when b is zero or the quotient is not finite.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return finite(a / b)
}

// finite coerces NaN and ±Inf to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// addFinite adds b to a running total. A non-finite addend counts as 0 and an
// addition that would overflow leaves the total unchanged.
func addFinite(total, b float64) float64 {
	sum := total + finite(b)
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		return total
	}
	return sum
}
