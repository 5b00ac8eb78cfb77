package allocation

import (
	"errors"
	"fmt"
)

// ErrUnknownScenario is the only failure Compute reports. Degenerate input
// (no employees, empty pool, zero hours) is absorbed as zeros instead.
var ErrUnknownScenario = errors.New("unknown scenario")

// UnknownScenarioError names the tag that could not be dispatched.
type UnknownScenarioError struct {
	Scenario Scenario
}

func (e *UnknownScenarioError) Error() string {
	return fmt.Sprintf("unknown scenario: %q", string(e.Scenario))
}

func (e *UnknownScenarioError) Unwrap() error {
	return ErrUnknownScenario
}
