package stately

import "fmt"

// StateConfiguration provides a fluent interface for configuring state
// behaviour. Configuring the same state again is additive: behaviours and
// actions accumulate in registration order.
type StateConfiguration[TState, TTrigger comparable] struct {
	representation *StateRepresentation[TState, TTrigger]
	lookup         func(TState) *StateRepresentation[TState, TTrigger]
}

// NewStateConfiguration creates a new state configuration.
func NewStateConfiguration[TState, TTrigger comparable](
	representation *StateRepresentation[TState, TTrigger],
	lookup func(TState) *StateRepresentation[TState, TTrigger],
) *StateConfiguration[TState, TTrigger] {
	return &StateConfiguration[TState, TTrigger]{
		representation: representation,
		lookup:         lookup,
	}
}

// State returns the state being configured.
func (sc *StateConfiguration[TState, TTrigger]) State() TState {
	return sc.representation.UnderlyingState()
}

// Permit configures the state to transition to the specified destination
// state when the specified trigger is fired.
func (sc *StateConfiguration[TState, TTrigger]) Permit(trigger TTrigger, destination TState) *StateConfiguration[TState, TTrigger] {
	return sc.PermitIf(trigger, destination)
}

// PermitIf configures the state to transition to the specified destination
// state when the specified trigger is fired, if every guard clause passes.
func (sc *StateConfiguration[TState, TTrigger]) PermitIf(trigger TTrigger, destination TState, guards ...GuardClause) *StateConfiguration[TState, TTrigger] {
	sc.enforceNotIdentityTransition(destination)
	sc.representation.AddTriggerBehaviour(
		NewTransitioningTriggerBehaviour[TState, TTrigger](trigger, destination, NewTransitionGuard(guards...)),
	)
	return sc
}

// PermitReentry configures the state to re-enter itself when the specified
// trigger is fired. Exit and entry actions will be executed.
func (sc *StateConfiguration[TState, TTrigger]) PermitReentry(trigger TTrigger) *StateConfiguration[TState, TTrigger] {
	return sc.PermitReentryIf(trigger)
}

// PermitReentryIf configures the state to re-enter itself when the specified
// trigger is fired, if every guard clause passes.
func (sc *StateConfiguration[TState, TTrigger]) PermitReentryIf(trigger TTrigger, guards ...GuardClause) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddTriggerBehaviour(
		NewReentryTriggerBehaviour[TState, TTrigger](trigger, sc.representation.UnderlyingState(), NewTransitionGuard(guards...)),
	)
	return sc
}

// Ignore configures the state to accept the specified trigger without
// changing state and without running any actions.
func (sc *StateConfiguration[TState, TTrigger]) Ignore(trigger TTrigger) *StateConfiguration[TState, TTrigger] {
	return sc.IgnoreIf(trigger)
}

// IgnoreIf configures the state to ignore the specified trigger if every
// guard clause passes.
func (sc *StateConfiguration[TState, TTrigger]) IgnoreIf(trigger TTrigger, guards ...GuardClause) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddTriggerBehaviour(
		NewIgnoredTriggerBehaviour[TState, TTrigger](trigger, NewTransitionGuard(guards...)),
	)
	return sc
}

// PermitDynamic configures the state to transition to a destination computed
// by the selector from the trigger arguments. A selector result that names
// an unconfigured state fails the fire with a ConfigurationError.
func (sc *StateConfiguration[TState, TTrigger]) PermitDynamic(trigger TTrigger, selector SelectorFunc[TState], guards ...GuardClause) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddTriggerBehaviour(
		NewDynamicTriggerBehaviour[TState, TTrigger](trigger, selector, NewTransitionGuard(guards...)),
	)
	return sc
}

// PermitDynamicAsync configures a dynamic transition whose destination
// selector requires asynchronous invocation. The trigger can only be fired
// through FireCtx.
func (sc *StateConfiguration[TState, TTrigger]) PermitDynamicAsync(trigger TTrigger, selector SelectorCtxFunc[TState], guards ...GuardClause) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddTriggerBehaviour(
		NewDynamicCtxTriggerBehaviour[TState, TTrigger](trigger, selector, NewTransitionGuard(guards...)),
	)
	return sc
}

// InternalTransition configures the state to run the action when the
// specified trigger is fired, without exiting or re-entering the state.
func (sc *StateConfiguration[TState, TTrigger]) InternalTransition(trigger TTrigger, action ActionFunc[TState, TTrigger], guards ...GuardClause) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddTriggerBehaviour(
		NewInternalTriggerBehaviour[TState, TTrigger](trigger, NewTransitionGuard(guards...), action),
	)
	return sc
}

// InternalTransitionAsync configures an internal transition whose action
// requires asynchronous invocation.
func (sc *StateConfiguration[TState, TTrigger]) InternalTransitionAsync(trigger TTrigger, action ActionCtxFunc[TState, TTrigger], guards ...GuardClause) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddTriggerBehaviour(
		NewInternalCtxTriggerBehaviour[TState, TTrigger](trigger, NewTransitionGuard(guards...), action),
	)
	return sc
}

// OnEntry configures an action to be executed when entering this state.
// The action receives the transition record; trigger arguments are available
// through Transition.Args.
func (sc *StateConfiguration[TState, TTrigger]) OnEntry(action ActionFunc[TState, TTrigger]) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddEntryAction(newEntryActionBehaviour[TState, TTrigger](action, nil))
	return sc
}

// OnEntryAsync configures an entry action that requires asynchronous invocation.
func (sc *StateConfiguration[TState, TTrigger]) OnEntryAsync(action ActionCtxFunc[TState, TTrigger]) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddEntryAction(newEntryActionBehaviour[TState, TTrigger](nil, action))
	return sc
}

// OnEntryFrom configures an entry action that only runs when entry was
// caused by the specified trigger.
func (sc *StateConfiguration[TState, TTrigger]) OnEntryFrom(trigger TTrigger, action ActionFunc[TState, TTrigger]) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddEntryAction(newEntryActionBehaviourFrom[TState, TTrigger](trigger, action, nil))
	return sc
}

// OnEntryFromAsync configures an asynchronous entry action that only runs
// when entry was caused by the specified trigger.
func (sc *StateConfiguration[TState, TTrigger]) OnEntryFromAsync(trigger TTrigger, action ActionCtxFunc[TState, TTrigger]) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddEntryAction(newEntryActionBehaviourFrom[TState, TTrigger](trigger, nil, action))
	return sc
}

// OnExit configures an action to be executed when exiting this state.
func (sc *StateConfiguration[TState, TTrigger]) OnExit(action ActionFunc[TState, TTrigger]) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddExitAction(newExitActionBehaviour[TState, TTrigger](action, nil))
	return sc
}

// OnExitAsync configures an exit action that requires asynchronous invocation.
func (sc *StateConfiguration[TState, TTrigger]) OnExitAsync(action ActionCtxFunc[TState, TTrigger]) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddExitAction(newExitActionBehaviour[TState, TTrigger](nil, action))
	return sc
}

// OnActivate configures an action to be executed when this state becomes
// active: immediately after its entry actions during a transition, and when
// the machine itself is activated in this state.
func (sc *StateConfiguration[TState, TTrigger]) OnActivate(action StageFunc) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddActivateAction(newActivateActionBehaviour(action, nil))
	return sc
}

// OnActivateAsync configures an activate action that requires asynchronous invocation.
func (sc *StateConfiguration[TState, TTrigger]) OnActivateAsync(action StageCtxFunc) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddActivateAction(newActivateActionBehaviour(nil, action))
	return sc
}

// OnDeactivate configures an action to be executed when this state stops
// being active: immediately before its exit actions during a transition,
// and when the machine itself is deactivated in this state.
func (sc *StateConfiguration[TState, TTrigger]) OnDeactivate(action StageFunc) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddDeactivateAction(newDeactivateActionBehaviour(action, nil))
	return sc
}

// OnDeactivateAsync configures a deactivate action that requires asynchronous invocation.
func (sc *StateConfiguration[TState, TTrigger]) OnDeactivateAsync(action StageCtxFunc) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddDeactivateAction(newDeactivateActionBehaviour(nil, action))
	return sc
}

// SubstateOf sets the superstate of this state.
func (sc *StateConfiguration[TState, TTrigger]) SubstateOf(superstate TState) *StateConfiguration[TState, TTrigger] {
	superstateRep := sc.lookup(superstate)

	// Check for circular references
	if superstateRep.IsIncludedIn(sc.representation.UnderlyingState()) {
		panic(fmt.Sprintf(
			"circular superstate relationship detected: %v -> %v",
			sc.representation.UnderlyingState(),
			superstate,
		))
	}

	sc.representation.SetSuperstate(superstateRep)
	superstateRep.AddSubstate(sc.representation)
	return sc
}

// InitialTransition sets the initial transition for this state. When the
// state is entered as the destination of a transition, entry continues into
// the target, which must be configured as a substate of this state.
func (sc *StateConfiguration[TState, TTrigger]) InitialTransition(destination TState) *StateConfiguration[TState, TTrigger] {
	if sc.representation.UnderlyingState() == destination {
		panic(fmt.Sprintf("initial transition to self is not allowed: state '%v'", destination))
	}
	if sc.representation.HasInitialTransition() {
		panic(fmt.Sprintf("state '%v' already has an initial transition defined", sc.representation.UnderlyingState()))
	}
	sc.representation.SetInitialTransition(destination)
	return sc
}

// enforceNotIdentityTransition ensures that a transition is not to the same state.
func (sc *StateConfiguration[TState, TTrigger]) enforceNotIdentityTransition(destination TState) {
	if sc.representation.UnderlyingState() == destination {
		panic(
			"Permit requires that the destination state is not equal to the source state. " +
				"To accept a trigger without changing state, use either Ignore or PermitReentry",
		)
	}
}
