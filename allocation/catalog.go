package allocation

// ScenarioInfo describes a scenario for pickers and renderers.
type ScenarioInfo struct {
	ID             Scenario `json:"id"`
	Name           string   `json:"name"`
	UsesPoints     bool     `json:"usesPoints"`
	UsesPercentage bool     `json:"usesPercentages"`
	UsesSplit      bool     `json:"usesHybridSplit"`
}

var scenarioCatalog = []ScenarioInfo{
	{ID: ScenarioHoursWorked, Name: "Hours Worked"},
	{ID: ScenarioPointsSystem, Name: "Points System", UsesPoints: true},
	{ID: ScenarioPercentageSplit, Name: "Percentage-Based Split", UsesPercentage: true},
	{ID: ScenarioTipOut, Name: "Tip-Out System", UsesPercentage: true},
	{ID: ScenarioHybrid, Name: "Hybrid Model", UsesPoints: true, UsesPercentage: true, UsesSplit: true},
}

// Scenarios lists the recognized scenarios in display order.
func Scenarios() []ScenarioInfo {
	out := make([]ScenarioInfo, len(scenarioCatalog))
	copy(out, scenarioCatalog)
	return out
}

// Known reports whether s is one of the recognized tags.
func (s Scenario) Known() bool {
	for _, info := range scenarioCatalog {
		if info.ID == s {
			return true
		}
	}
	return false
}

var defaultPositions = []string{
	"Bartender", "Lead Bartender", "Barback", "Lead Barback", "Server",
	"Back Server", "Lead Server", "Busser", "Runner", "Line Cook",
	"Lead Chef", "Dishwasher", "Sommelier", "Host", "Other",
}

// DefaultPositions is the suggested role list. Positions stay free text;
// any string groups employees.
func DefaultPositions() []string {
	out := make([]string, len(defaultPositions))
	copy(out, defaultPositions)
	return out
}
