package allocation

import (
	"fmt"
	"math"
)

// DefaultTolerance is the relative tolerance Verify callers normally use.
const DefaultTolerance = 1e-9

// ViolationKind names the consistency check that failed.
type ViolationKind string

const (
	// ViolationConservation: employee earnings do not add up to the pool.
	// Expected when percentages do not total 100 or no weights exist.
	ViolationConservation ViolationKind = "conservation"
	// ViolationTypeDecomposition: tip-type amounts do not add up to earnedTips.
	ViolationTypeDecomposition ViolationKind = "type_decomposition"
	// ViolationPositionAggregate: a position total differs from its members.
	ViolationPositionAggregate ViolationKind = "position_aggregate"
)

// Violation is one failed check.
type Violation struct {
	Kind     ViolationKind
	Subject  string
	Expected float64
	Actual   float64
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s: expected %.6f, got %.6f", v.Kind, v.Subject, v.Expected, v.Actual)
}

// Verify checks the result's rollups for internal consistency within a
// relative tolerance.
func (r *Result) Verify(tolerance float64) []Violation {
	var out []Violation
	if r == nil {
		return out
	}

	var sum float64
	for _, emp := range r.EmployeeResults {
		sum += emp.EarnedTips
		parts := emp.EarnedCreditCardTips + emp.EarnedCashTips + emp.EarnedServiceChargeTips
		// A zero pool leaves every type amount at 0 whatever was earned.
		if r.Summary.TotalTipPool != 0 && !approxEqual(parts, emp.EarnedTips, tolerance) {
			out = append(out, Violation{
				Kind:     ViolationTypeDecomposition,
				Subject:  emp.Name,
				Expected: emp.EarnedTips,
				Actual:   parts,
			})
		}
	}
	if len(r.EmployeeResults) > 0 && !approxEqual(sum, r.Summary.TotalTipPool, tolerance) {
		out = append(out, Violation{
			Kind:     ViolationConservation,
			Subject:  "pool",
			Expected: r.Summary.TotalTipPool,
			Actual:   sum,
		})
	}

	byPosition := make(map[string]float64)
	for _, emp := range r.EmployeeResults {
		byPosition[emp.Position] += emp.EarnedTips
	}
	for _, p := range r.PositionSummary {
		if !approxEqual(p.TotalTips, byPosition[p.Position], tolerance) {
			out = append(out, Violation{
				Kind:     ViolationPositionAggregate,
				Subject:  p.Position,
				Expected: byPosition[p.Position],
				Actual:   p.TotalTips,
			})
		}
	}
	return out
}

func approxEqual(a, b, tolerance float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= tolerance*scale
}
