package stately

// Transition describes a state transition.
type Transition[TState, TTrigger comparable] struct {
	// Source is the state transitioned from.
	Source TState

	// Destination is the state transitioned to.
	Destination TState

	// Trigger is the trigger that caused the transition.
	Trigger TTrigger

	// Args are the optional trigger arguments, in firing order.
	Args []any

	// isInitial indicates if this transition was produced by entering a
	// composite state that declares an initial transition target.
	isInitial bool
}

// NewTransition creates a new transition.
func NewTransition[TState, TTrigger comparable](source, destination TState, trigger TTrigger, args ...any) Transition[TState, TTrigger] {
	if args == nil {
		args = []any{}
	}
	return Transition[TState, TTrigger]{
		Source:      source,
		Destination: destination,
		Trigger:     trigger,
		Args:        args,
	}
}

// NewInitialTransition creates a new initial transition.
func NewInitialTransition[TState, TTrigger comparable](source, destination TState, trigger TTrigger, args ...any) Transition[TState, TTrigger] {
	t := NewTransition(source, destination, trigger, args...)
	t.isInitial = true
	return t
}

// IsReentry returns true if the transition is a re-entry, i.e., the identity transition.
func (t Transition[TState, TTrigger]) IsReentry() bool {
	return t.Source == t.Destination
}

// IsInitial returns true if this is an initial transition.
func (t Transition[TState, TTrigger]) IsInitial() bool {
	return t.isInitial
}
