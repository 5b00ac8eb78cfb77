/*
demos.go - Demo data for trying out the engine

PURPOSE:
  Provides pre-built teams, one per distribution policy, so the form can be
  exercised without typing a roster in. Each demo is available both as a
  complete calculation request and as a template the caller can save.

AVAILABLE DEMOS:
  brunch-crew:     Hours worked, servers and bussers over a weekend
  cocktail-bar:    Points system with bartender/barback weights
  fine-dining:     Percentage split across front and back of house
  kitchen-tipout:  Tip-out from the floor to the kitchen
  hybrid-house:    Hybrid 60/40 hours/points

USAGE VIA API:
  GET  /api/demos                    List demos
  GET  /api/demos/{id}               Sample request; POST it to /api/calculate
  POST /api/templates/demos/{id}     Save the demo roster as a template

ADDING NEW DEMOS:
  1. Add to 'demos' with ID, name, description and roster
  2. Give every member a shift pattern in hours
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/tip-engine/allocation"
	"github.com/warp/tip-engine/factory"
	"github.com/warp/tip-engine/metrics"
	"github.com/warp/tip-engine/roster"
)

// =============================================================================
// DEMO DEFINITIONS
// =============================================================================

type demoShift struct {
	member roster.Member
	hours  []float64 // by day, starting at day1; 0 means off
}

type demo struct {
	DemoDTO
	timeSpan allocation.TimeSpan
	details  allocation.ScenarioDetails
	shifts   []demoShift
	// tips per day: credit card, cash, service charge
	tips [][3]float64
}

func hybridSplit(hours, points float64) *allocation.HybridSplit {
	return &allocation.HybridSplit{Hours: &hours, Points: &points}
}

var demos = []demo{
	{
		DemoDTO: DemoDTO{
			ID:          "brunch-crew",
			Name:        "Brunch Crew",
			Description: "Weekend brunch pooled by hours worked",
			Scenario:    allocation.ScenarioHoursWorked,
		},
		timeSpan: allocation.TimeSpanWeekly,
		shifts: []demoShift{
			{roster.Member{Name: "Maya Ortiz", Position: "Server"}, []float64{0, 0, 0, 0, 0, 7, 7}},
			{roster.Member{Name: "Jon Bell", Position: "Server"}, []float64{0, 0, 0, 0, 0, 6, 8}},
			{roster.Member{Name: "Priya Nair", Position: "Busser"}, []float64{0, 0, 0, 0, 0, 5, 5}},
		},
		tips: [][3]float64{6: {620, 140, 0}, 5: {540, 95, 0}},
	},
	{
		DemoDTO: DemoDTO{
			ID:          "cocktail-bar",
			Name:        "Cocktail Bar",
			Description: "Bar team weighted by role points",
			Scenario:    allocation.ScenarioPointsSystem,
		},
		timeSpan: allocation.TimeSpanWeekly,
		details: allocation.ScenarioDetails{
			Points: map[string]float64{"Lead Bartender": 1.5, "Bartender": 1.2, "Barback": 0.8},
		},
		shifts: []demoShift{
			{roster.Member{Name: "Theo Grant", Position: "Lead Bartender"}, []float64{0, 0, 8, 8, 8, 9, 9}},
			{roster.Member{Name: "Rosa Lima", Position: "Bartender"}, []float64{0, 0, 8, 8, 0, 9, 9}},
			{roster.Member{Name: "Sam Park", Position: "Barback"}, []float64{0, 0, 0, 8, 8, 9, 9}},
		},
		tips: [][3]float64{2: {410, 60, 0}, 3: {455, 70, 0}, 4: {520, 82, 0}, 5: {910, 150, 0}, 6: {870, 133, 0}},
	},
	{
		DemoDTO: DemoDTO{
			ID:          "fine-dining",
			Name:        "Fine Dining",
			Description: "Fixed percentages per position",
			Scenario:    allocation.ScenarioPercentageSplit,
		},
		timeSpan: allocation.TimeSpanBiWeekly,
		details: allocation.ScenarioDetails{
			Percentages: map[string]float64{"Server": 55, "Sommelier": 15, "Runner": 10, "Line Cook": 20},
		},
		shifts: []demoShift{
			{roster.Member{Name: "Claire Dubois", Position: "Server"}, []float64{6, 6, 0, 6, 6, 7, 7, 6, 6, 0, 6, 6, 7, 7}},
			{roster.Member{Name: "Ibrahim Haddad", Position: "Server"}, []float64{0, 6, 6, 6, 0, 7, 7, 0, 6, 6, 6, 0, 7, 7}},
			{roster.Member{Name: "Elena Rossi", Position: "Sommelier"}, []float64{0, 0, 5, 5, 5, 6, 6, 0, 0, 5, 5, 5, 6, 6}},
			{roster.Member{Name: "Kofi Mensah", Position: "Runner"}, []float64{5, 5, 5, 0, 0, 6, 6, 5, 5, 5, 0, 0, 6, 6}},
			{roster.Member{Name: "Luis Ramos", Position: "Line Cook"}, []float64{8, 8, 8, 8, 0, 0, 8, 8, 8, 8, 8, 0, 0, 8}},
		},
		tips: [][3]float64{
			{700, 0, 120}, {640, 0, 110}, {720, 0, 130}, {810, 0, 150}, {760, 0, 140}, {1200, 0, 260}, {1150, 0, 240},
			{690, 0, 115}, {655, 0, 105}, {730, 0, 128}, {820, 0, 146}, {770, 0, 139}, {1230, 0, 255}, {1100, 0, 236},
		},
	},
	{
		DemoDTO: DemoDTO{
			ID:          "kitchen-tipout",
			Name:        "Kitchen Tip-Out",
			Description: "Floor shares a fixed cut with the kitchen",
			Scenario:    allocation.ScenarioTipOut,
		},
		timeSpan: allocation.TimeSpanWeekly,
		details: allocation.ScenarioDetails{
			Percentages: map[string]float64{"Server": 70, "Line Cook": 20, "Dishwasher": 10},
		},
		shifts: []demoShift{
			{roster.Member{Name: "Ana Souza", Position: "Server"}, []float64{6, 6, 6, 0, 0, 8, 8}},
			{roster.Member{Name: "Ben Okafor", Position: "Server"}, []float64{0, 0, 6, 6, 6, 8, 8}},
			{roster.Member{Name: "Cal Weber", Position: "Line Cook"}, []float64{8, 8, 8, 8, 8, 0, 0}},
			{roster.Member{Name: "Dee Tran", Position: "Dishwasher"}, []float64{0, 0, 6, 6, 6, 6, 6}},
		},
		tips: [][3]float64{{300, 45, 0}, {280, 40, 0}, {350, 52, 0}, {330, 30, 0}, {390, 61, 0}, {720, 110, 0}, {650, 98, 0}},
	},
	{
		DemoDTO: DemoDTO{
			ID:          "hybrid-house",
			Name:        "Hybrid House",
			Description: "60% by hours, 40% by role points",
			Scenario:    allocation.ScenarioHybrid,
		},
		timeSpan: allocation.TimeSpanWeekly,
		details: allocation.ScenarioDetails{
			Points:      map[string]float64{"Server": 1.0, "Bartender": 1.2, "Host": 0.5},
			HybridSplit: hybridSplit(60, 40),
		},
		shifts: []demoShift{
			{roster.Member{Name: "Gia Romano", Position: "Server"}, []float64{0, 6, 6, 6, 6, 8, 8}},
			{roster.Member{Name: "Hal Fischer", Position: "Bartender"}, []float64{0, 7, 7, 7, 0, 9, 9}},
			{roster.Member{Name: "Ivy Chen", Position: "Host"}, []float64{0, 5, 5, 0, 5, 6, 6}},
		},
		tips: [][3]float64{1: {260, 35, 20}, 2: {280, 41, 20}, 3: {300, 38, 25}, 4: {310, 44, 25}, 5: {640, 90, 60}, 6: {610, 86, 55}},
	},
}

func findDemo(id string) (demo, bool) {
	for _, d := range demos {
		if d.ID == id {
			return d, true
		}
	}
	return demo{}, false
}

// Input returns the demo as a template input.
func (d demo) Input() roster.Input {
	members := make([]roster.Member, len(d.shifts))
	for i, s := range d.shifts {
		members[i] = s.member
	}
	return roster.Input{
		Name:      d.Name,
		Location:  "Demo",
		TimeSpan:  d.timeSpan,
		Employees: members,
		Scenario:  d.Scenario,
		Details:   d.details,
	}
}

// Request returns the demo as a calculation request body.
func (d demo) Request() factory.RequestJSON {
	rj := factory.RequestJSON{
		TimeSpan:  string(d.timeSpan),
		Employees: make([]factory.EmployeeJSON, len(d.shifts)),
		DailyTips: make(map[string]factory.TipEntryJSON, len(d.tips)),
		Scenario:  string(d.Scenario),
	}
	for i, s := range d.shifts {
		days := make(map[string]factory.DayWorkJSON)
		for day, hours := range s.hours {
			if hours > 0 {
				days[string(allocation.Day(day+1))] = factory.DayWorkJSON{Hours: factory.NewNumber(hours)}
			}
		}
		rj.Employees[i] = factory.EmployeeJSON{Name: s.member.Name, Position: s.member.Position, DaysWorked: days}
	}
	for day, t := range d.tips {
		if t == ([3]float64{}) {
			continue
		}
		rj.DailyTips[string(allocation.Day(day+1))] = factory.TipEntryJSON{
			CreditCardTips:    factory.NewNumber(t[0]),
			CashTips:          factory.NewNumber(t[1]),
			ServiceChargeTips: factory.NewNumber(t[2]),
		}
	}
	rj.ScenarioDetails = factory.DetailsToJSON(d.details)
	return rj
}

// =============================================================================
// DEMO HANDLERS
// =============================================================================

func (h *Handler) ListDemos(w http.ResponseWriter, r *http.Request) {
	list := make([]DemoDTO, len(demos))
	for i, d := range demos {
		list[i] = d.DemoDTO
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetDemoRequest(w http.ResponseWriter, r *http.Request) {
	d, ok := findDemo(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown demo", nil)
		return
	}
	writeJSON(w, http.StatusOK, d.Request())
}

// SaveDemoTemplate stores the demo roster as a template owned by the caller.
func (h *Handler) SaveDemoTemplate(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	d, ok := findDemo(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown demo", nil)
		return
	}
	tmpl, err := h.Templates.Create(r.Context(), owner, d.Input())
	if err != nil {
		h.templateError(w, "create", err)
		return
	}
	h.Metrics.IncTemplateOp("create", metrics.ResultSuccess)
	writeJSON(w, http.StatusCreated, tmpl)
}
