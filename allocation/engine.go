package allocation

// =============================================================================
// ENGINE - Compute(request) -> result
// =============================================================================

// Compute runs one calculation. It fails only for an unrecognized scenario
// tag, in which case no partial result is returned. An empty roster returns
// the pool totals and a tips-only daily breakdown without dispatching the
// policy.
func Compute(req Request) (*Result, error) {
	pool := aggregatePool(req.DailyTips)
	total := pool.Total()

	summary := Summary{
		Scenario:               req.Scenario,
		TotalTipPool:           total,
		TotalCreditCardTips:    pool.CreditCard,
		TotalCashTips:          pool.Cash,
		TotalServiceChargeTips: pool.ServiceCharge,
	}

	if len(req.Employees) == 0 {
		return &Result{
			Summary:         summary,
			EmployeeResults: []EmployeeResult{},
			PositionSummary: []PositionSummary{},
			DailyBreakdown:  dailyBreakdown(req.DailyTips, nil, total),
		}, nil
	}

	tallies := make([]Tally, len(req.Employees))
	for i, emp := range req.Employees {
		tallies[i] = tallyEmployee(emp, req.Details.Points)
		summary.TotalHoursWorked = addFinite(summary.TotalHoursWorked, tallies[i].Hours)
		summary.TotalPointsEarned = addFinite(summary.TotalPointsEarned, tallies[i].Points)
	}

	policy, err := PolicyFor(req.Scenario, req.Details)
	if err != nil {
		return nil, err
	}
	earned := policy.Allocate(total, tallies)

	employees := make([]EmployeeResult, len(req.Employees))
	for i, emp := range req.Employees {
		employees[i] = breakdownEmployee(emp, tallies[i], finite(earned[i]), pool)
	}

	summary.TotalHourlyRate = safeDiv(total, summary.TotalHoursWorked)
	summary.TotalEmployees = len(req.Employees)

	return &Result{
		Summary:         summary,
		EmployeeResults: employees,
		PositionSummary: positionSummary(employees),
		DailyBreakdown:  dailyBreakdown(req.DailyTips, employees, total),
	}, nil
}

// =============================================================================
// STEP 1 - Pool aggregation
// =============================================================================

// TipPool is the period's tips by type.
type TipPool struct {
	CreditCard    float64
	Cash          float64
	ServiceCharge float64
}

// Total sums the three tip types.
func (p TipPool) Total() float64 {
	return finite(p.Cash + p.CreditCard + p.ServiceCharge)
}

func aggregatePool(days []DayTips) TipPool {
	var pool TipPool
	for _, d := range days {
		pool.CreditCard = addFinite(pool.CreditCard, d.CreditCardTips)
		pool.Cash = addFinite(pool.Cash, d.CashTips)
		pool.ServiceCharge = addFinite(pool.ServiceCharge, d.ServiceChargeTips)
	}
	return pool
}

// =============================================================================
// STEP 3 - Hours and points per employee
// =============================================================================

func tallyEmployee(emp Employee, points map[string]float64) Tally {
	var hours float64
	for _, day := range SortDayKeys(keysOf(emp.DaysWorked)) {
		hours = addFinite(hours, emp.DaysWorked[day].Hours)
	}
	rate := finite(points[emp.Position])
	return Tally{
		Position:   emp.Position,
		Hours:      hours,
		PointsRate: rate,
		Points:     finite(hours * rate),
	}
}

// =============================================================================
// STEP 5 - Tip-type breakdown and hourly rate
// =============================================================================

func breakdownEmployee(emp Employee, t Tally, earned float64, pool TipPool) EmployeeResult {
	ratio := safeDiv(earned, pool.Total())
	return EmployeeResult{
		Employee:                emp,
		TotalHours:              t.Hours,
		PointsRate:              t.PointsRate,
		TotalPoints:             t.Points,
		EarnedTips:              earned,
		EarnedCreditCardTips:    finite(ratio * pool.CreditCard),
		EarnedCashTips:          finite(ratio * pool.Cash),
		EarnedServiceChargeTips: finite(ratio * pool.ServiceCharge),
		HourlyRate:              safeDiv(earned, t.Hours),
	}
}
