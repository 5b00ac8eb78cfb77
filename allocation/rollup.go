package allocation

// =============================================================================
// STEP 6 - Position summary
// =============================================================================

// positionSummary groups employee results by position in order of first
// appearance.
func positionSummary(employees []EmployeeResult) []PositionSummary {
	out := make([]PositionSummary, 0)
	index := make(map[string]int)

	for _, emp := range employees {
		i, ok := index[emp.Position]
		if !ok {
			i = len(out)
			index[emp.Position] = i
			out = append(out, PositionSummary{Position: emp.Position})
		}
		p := &out[i]
		p.EmployeeCount++
		p.TotalCreditCardTips = addFinite(p.TotalCreditCardTips, emp.EarnedCreditCardTips)
		p.TotalCashTips = addFinite(p.TotalCashTips, emp.EarnedCashTips)
		p.TotalServiceChargeTips = addFinite(p.TotalServiceChargeTips, emp.EarnedServiceChargeTips)
		p.TotalTips = addFinite(p.TotalTips, emp.EarnedTips)
		p.TotalHours = addFinite(p.TotalHours, emp.TotalHours)
	}

	for i := range out {
		out[i].HourlyRate = safeDiv(out[i].TotalTips, out[i].TotalHours)
	}
	return out
}

// =============================================================================
// STEP 7 - Daily breakdown
// =============================================================================

// dailyBreakdown reports each day's raw tip totals and hours. Employee slices
// project the employee's period-level share of the pool onto the day's pool,
// so they need not sum to the day's total when presence varies by day.
func dailyBreakdown(days []DayTips, employees []EmployeeResult, totalPool float64) DailyBreakdown {
	out := make(DailyBreakdown, 0, len(days))

	for _, d := range days {
		cc := finite(d.CreditCardTips)
		cash := finite(d.CashTips)
		service := finite(d.ServiceChargeTips)
		dayTotal := finite(cc + cash + service)

		day := DayBreakdown{
			Day:               d.Day,
			Weekday:           d.Day.Weekday(),
			DayLabel:          d.Day.Label(),
			CreditCardTips:    cc,
			CashTips:          cash,
			ServiceChargeTips: service,
			TotalTips:         dayTotal,
			EmployeeDetails:   []DayEmployee{},
		}

		for _, emp := range employees {
			work, worked := emp.DaysWorked[d.Day]
			if !worked {
				continue
			}
			hours := finite(work.Hours)
			day.TotalHours = addFinite(day.TotalHours, hours)

			ratio := safeDiv(emp.EarnedTips, totalPool)
			slice := finite(dayTotal * ratio)
			day.EmployeeDetails = append(day.EmployeeDetails, DayEmployee{
				Name:              emp.Name,
				Position:          emp.Position,
				HoursWorked:       hours,
				CreditCardTips:    finite(cc * ratio),
				CashTips:          finite(cash * ratio),
				ServiceChargeTips: finite(service * ratio),
				TotalTips:         slice,
				HourlyRate:        safeDiv(slice, hours),
			})
		}

		day.HourlyRate = safeDiv(dayTotal, day.TotalHours)
		out = append(out, day)
	}
	return out
}
