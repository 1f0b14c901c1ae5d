package stately

import (
	"fmt"
	"strings"
)

// InvalidOperationError indicates an operation that is not valid given the
// current firing mode or machine state.
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string {
	return e.Message
}

// ConfigurationError indicates an inconsistency in the state machine
// configuration detected while firing: a dynamic selector naming an
// unconfigured state, an initial transition target that is not a substate,
// or two states with no common ancestor where one is required.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// ArgumentError indicates an invalid argument was passed.
type ArgumentError struct {
	ParamName string
	Message   string
}

func (e *ArgumentError) Error() string {
	if e.ParamName != "" {
		return fmt.Sprintf("%s (parameter: %s)", e.Message, e.ParamName)
	}
	return e.Message
}

// InvalidTransitionError is returned when a trigger is fired from a state
// that does not have a valid transition for that trigger: either no
// behaviour is configured anywhere in the ancestor chain, or behaviours
// exist but their guard conditions were not met.
type InvalidTransitionError struct {
	Trigger any
	State   any

	// UnmetGuards holds the descriptions of every failed guard clause, in
	// chain order.
	UnmetGuards []string

	// PermittedTriggers lists the triggers that could have been fired
	// instead, when known.
	PermittedTriggers []any
}

func (e *InvalidTransitionError) Error() string {
	if len(e.UnmetGuards) > 0 {
		return fmt.Sprintf(
			"trigger '%v' is valid for transition from state '%v' "+
				"but guard conditions are not met. Unmet guards: %s",
			e.Trigger, e.State, strings.Join(e.UnmetGuards, ", "))
	}

	var permitted string
	if len(e.PermittedTriggers) > 0 {
		triggers := make([]string, len(e.PermittedTriggers))
		for i, t := range e.PermittedTriggers {
			triggers[i] = fmt.Sprintf("%v", t)
		}
		permitted = fmt.Sprintf(" Permitted triggers: %s.", strings.Join(triggers, ", "))
	} else {
		permitted = " No valid leaving transitions are permitted from state."
	}

	return fmt.Sprintf(
		"no valid leaving transitions are permitted from state '%v' for trigger '%v'.%s",
		e.State, e.Trigger, permitted)
}

// AsyncRequiredError is returned when a synchronous call reaches a guard,
// selector, action or handler that was registered through one of the
// ...Async configuration methods. It is raised before the offending category
// produces any side effect; the caller should use FireCtx or CanFireCtx
// instead.
type AsyncRequiredError struct {
	// Trigger is the trigger being fired, when known.
	Trigger any

	// Operation names the category that required asynchronous invocation,
	// e.g. "guard evaluation" or "exit chain".
	Operation string
}

func (e *AsyncRequiredError) Error() string {
	if e.Trigger != nil {
		return fmt.Sprintf("cannot fire trigger '%v' synchronously: %s involves asynchronous callbacks", e.Trigger, e.Operation)
	}
	return fmt.Sprintf("cannot evaluate synchronously: %s involves asynchronous callbacks", e.Operation)
}

// ReentrantFiringError is returned when Fire is called while another
// synchronous Fire on the same machine is still in flight, typically from
// within an entry or exit action.
type ReentrantFiringError struct {
	State   any
	Trigger any
}

func (e *ReentrantFiringError) Error() string {
	return fmt.Sprintf(
		"reentrant call to Fire detected for trigger '%v' from state '%v': "+
			"synchronous reentrant firing is not allowed; use FireCtx or queued firing",
		e.Trigger, e.State)
}

// ParameterConversionError indicates a mismatch between the arguments
// supplied to Fire and the parameter types configured for the trigger.
type ParameterConversionError struct {
	Message string
}

func (e *ParameterConversionError) Error() string {
	return e.Message
}
