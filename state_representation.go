package stately

import (
	"context"
	"fmt"
)

// StateRepresentation models the behaviour of a single state: its position
// in the hierarchy, its trigger behaviours and its action lists.
type StateRepresentation[TState, TTrigger comparable] struct {
	state TState

	// superstate is the parent state (nil if this is a root state).
	superstate *StateRepresentation[TState, TTrigger]

	// substates are the child states of this state.
	substates []*StateRepresentation[TState, TTrigger]

	// triggerBehaviours maps triggers to their behaviours, in registration order.
	triggerBehaviours map[TTrigger][]TriggerBehaviour[TState, TTrigger]

	// triggerOrder preserves the order triggers were first configured, for
	// deterministic iteration.
	triggerOrder []TTrigger

	entryActions      []EntryActionBehaviour[TState, TTrigger]
	exitActions       []ExitActionBehaviour[TState, TTrigger]
	activateActions   []ActivateActionBehaviour
	deactivateActions []DeactivateActionBehaviour

	hasInitialTransition    bool
	initialTransitionTarget TState
}

// NewStateRepresentation creates a new state representation.
func NewStateRepresentation[TState, TTrigger comparable](state TState) *StateRepresentation[TState, TTrigger] {
	return &StateRepresentation[TState, TTrigger]{
		state:             state,
		triggerBehaviours: make(map[TTrigger][]TriggerBehaviour[TState, TTrigger]),
	}
}

// UnderlyingState returns the state this representation models.
func (sr *StateRepresentation[TState, TTrigger]) UnderlyingState() TState {
	return sr.state
}

// Superstate returns the parent state, if any.
func (sr *StateRepresentation[TState, TTrigger]) Superstate() *StateRepresentation[TState, TTrigger] {
	return sr.superstate
}

// SetSuperstate sets the parent state.
func (sr *StateRepresentation[TState, TTrigger]) SetSuperstate(superstate *StateRepresentation[TState, TTrigger]) {
	sr.superstate = superstate
}

// Substates returns the substates of this state.
func (sr *StateRepresentation[TState, TTrigger]) Substates() []*StateRepresentation[TState, TTrigger] {
	return sr.substates
}

// AddSubstate adds a substate to this state.
func (sr *StateRepresentation[TState, TTrigger]) AddSubstate(substate *StateRepresentation[TState, TTrigger]) {
	sr.substates = append(sr.substates, substate)
}

// HasInitialTransition returns true if this state has an initial transition configured.
func (sr *StateRepresentation[TState, TTrigger]) HasInitialTransition() bool {
	return sr.hasInitialTransition
}

// InitialTransitionTarget returns the target state for the initial transition.
func (sr *StateRepresentation[TState, TTrigger]) InitialTransitionTarget() TState {
	return sr.initialTransitionTarget
}

// SetInitialTransition sets the initial transition for this state.
func (sr *StateRepresentation[TState, TTrigger]) SetInitialTransition(target TState) {
	sr.hasInitialTransition = true
	sr.initialTransitionTarget = target
}

// AddTriggerBehaviour adds a trigger behaviour to this state.
func (sr *StateRepresentation[TState, TTrigger]) AddTriggerBehaviour(behaviour TriggerBehaviour[TState, TTrigger]) {
	trigger := behaviour.Trigger()
	if _, exists := sr.triggerBehaviours[trigger]; !exists {
		sr.triggerOrder = append(sr.triggerOrder, trigger)
	}
	sr.triggerBehaviours[trigger] = append(sr.triggerBehaviours[trigger], behaviour)
}

// AddEntryAction adds an entry action to this state.
func (sr *StateRepresentation[TState, TTrigger]) AddEntryAction(action EntryActionBehaviour[TState, TTrigger]) {
	sr.entryActions = append(sr.entryActions, action)
}

// AddExitAction adds an exit action to this state.
func (sr *StateRepresentation[TState, TTrigger]) AddExitAction(action ExitActionBehaviour[TState, TTrigger]) {
	sr.exitActions = append(sr.exitActions, action)
}

// AddActivateAction adds an activate action to this state.
func (sr *StateRepresentation[TState, TTrigger]) AddActivateAction(action ActivateActionBehaviour) {
	sr.activateActions = append(sr.activateActions, action)
}

// AddDeactivateAction adds a deactivate action to this state.
func (sr *StateRepresentation[TState, TTrigger]) AddDeactivateAction(action DeactivateActionBehaviour) {
	sr.deactivateActions = append(sr.deactivateActions, action)
}

// Includes returns true if this state or any of its substates is the specified state.
func (sr *StateRepresentation[TState, TTrigger]) Includes(state TState) bool {
	if sr.state == state {
		return true
	}
	for _, substate := range sr.substates {
		if substate.Includes(state) {
			return true
		}
	}
	return false
}

// IsIncludedIn returns true if this state is the specified state or a substate of it.
func (sr *StateRepresentation[TState, TTrigger]) IsIncludedIn(state TState) bool {
	if sr.state == state {
		return true
	}
	if sr.superstate != nil {
		return sr.superstate.IsIncludedIn(state)
	}
	return false
}

// CommonAncestor returns the nearest state that includes both this state and
// the other, or nil when the two states live under distinct roots. A nil
// ancestor bounds the exit and entry chains at the top of each hierarchy.
func (sr *StateRepresentation[TState, TTrigger]) CommonAncestor(other *StateRepresentation[TState, TTrigger]) *StateRepresentation[TState, TTrigger] {
	if other == nil {
		return nil
	}
	for ancestor := sr; ancestor != nil; ancestor = ancestor.superstate {
		if ancestor.Includes(other.state) {
			return ancestor
		}
	}
	return nil
}

// PathToAncestor returns the chain of states from this state up to, but not
// including, the given ancestor, innermost first. A nil ancestor yields the
// chain through the root.
func (sr *StateRepresentation[TState, TTrigger]) PathToAncestor(ancestor *StateRepresentation[TState, TTrigger]) []*StateRepresentation[TState, TTrigger] {
	var path []*StateRepresentation[TState, TTrigger]
	for current := sr; current != nil && current != ancestor; current = current.superstate {
		path = append(path, current)
	}
	return path
}

// FindHandler resolves the trigger against this state and its ancestors.
//
// The behaviours registered here for the trigger are tried in registration
// order; the first whose guard chain passes is returned. A state with no
// behaviour at all for the trigger defers to its superstate. A state whose
// behaviours all failed their guards stops the search and returns the unmet
// descriptions: ancestors are not consulted in that case.
//
// When syncOnly is set, resolution fails with an AsyncRequiredError before
// any guard runs if a guard chain about to be evaluated contains an
// asynchronous clause.
func (sr *StateRepresentation[TState, TTrigger]) FindHandler(
	ctx context.Context,
	trigger TTrigger,
	args []any,
	syncOnly bool,
) (TriggerBehaviourResult[TState, TTrigger], error) {
	behaviours, exists := sr.triggerBehaviours[trigger]
	if !exists || len(behaviours) == 0 {
		if sr.superstate != nil {
			return sr.superstate.FindHandler(ctx, trigger, args, syncOnly)
		}
		return TriggerBehaviourResult[TState, TTrigger]{}, nil
	}

	if syncOnly {
		for _, behaviour := range behaviours {
			if behaviour.Guard().HasAsyncClause() {
				return TriggerBehaviourResult[TState, TTrigger]{},
					&AsyncRequiredError{Trigger: trigger, Operation: "guard evaluation"}
			}
		}
	}

	var unmet []string
	for _, behaviour := range behaviours {
		u, err := behaviour.Guard().UnmetConditionsCtx(ctx, args)
		if err != nil {
			return TriggerBehaviourResult[TState, TTrigger]{}, err
		}
		if len(u) == 0 {
			return TriggerBehaviourResult[TState, TTrigger]{Handler: behaviour}, nil
		}
		unmet = append(unmet, u...)
	}

	return TriggerBehaviourResult[TState, TTrigger]{UnmetGuardConditions: unmet}, nil
}

// CandidateTriggers returns the triggers configured on this state and its
// ancestors, innermost configuration first, without duplicates.
func (sr *StateRepresentation[TState, TTrigger]) CandidateTriggers() []TTrigger {
	var result []TTrigger
	seen := make(map[TTrigger]struct{})
	for current := sr; current != nil; current = current.superstate {
		for _, trigger := range current.triggerOrder {
			if _, dup := seen[trigger]; dup {
				continue
			}
			seen[trigger] = struct{}{}
			result = append(result, trigger)
		}
	}
	return result
}

// AnyAsyncEntryAction reports whether any entry action requires asynchronous invocation.
func (sr *StateRepresentation[TState, TTrigger]) AnyAsyncEntryAction() bool {
	for _, a := range sr.entryActions {
		if a.IsAsync() {
			return true
		}
	}
	return false
}

// AnyAsyncExitAction reports whether any exit action requires asynchronous invocation.
func (sr *StateRepresentation[TState, TTrigger]) AnyAsyncExitAction() bool {
	for _, a := range sr.exitActions {
		if a.IsAsync() {
			return true
		}
	}
	return false
}

// AnyAsyncActivateAction reports whether any activate action requires asynchronous invocation.
func (sr *StateRepresentation[TState, TTrigger]) AnyAsyncActivateAction() bool {
	for _, a := range sr.activateActions {
		if a.IsAsync() {
			return true
		}
	}
	return false
}

// AnyAsyncDeactivateAction reports whether any deactivate action requires asynchronous invocation.
func (sr *StateRepresentation[TState, TTrigger]) AnyAsyncDeactivateAction() bool {
	for _, a := range sr.deactivateActions {
		if a.IsAsync() {
			return true
		}
	}
	return false
}

// ExecuteEntryActions executes all entry actions for this state, in
// registration order.
func (sr *StateRepresentation[TState, TTrigger]) ExecuteEntryActions(ctx context.Context, transition Transition[TState, TTrigger]) error {
	for _, action := range sr.entryActions {
		if err := action.Execute(ctx, transition); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteExitActions executes all exit actions for this state.
func (sr *StateRepresentation[TState, TTrigger]) ExecuteExitActions(ctx context.Context, transition Transition[TState, TTrigger]) error {
	for _, action := range sr.exitActions {
		if err := action.Execute(ctx, transition); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteActivateActions executes all activate actions for this state.
func (sr *StateRepresentation[TState, TTrigger]) ExecuteActivateActions(ctx context.Context) error {
	for _, action := range sr.activateActions {
		if err := action.Execute(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteDeactivateActions executes all deactivate actions for this state.
func (sr *StateRepresentation[TState, TTrigger]) ExecuteDeactivateActions(ctx context.Context) error {
	for _, action := range sr.deactivateActions {
		if err := action.Execute(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Activate executes activate actions for this state and its superstates,
// outermost first.
func (sr *StateRepresentation[TState, TTrigger]) Activate(ctx context.Context) error {
	if sr.superstate != nil {
		if err := sr.superstate.Activate(ctx); err != nil {
			return err
		}
	}
	return sr.ExecuteActivateActions(ctx)
}

// Deactivate executes deactivate actions for this state and its superstates,
// innermost first.
func (sr *StateRepresentation[TState, TTrigger]) Deactivate(ctx context.Context) error {
	if err := sr.ExecuteDeactivateActions(ctx); err != nil {
		return err
	}
	if sr.superstate != nil {
		return sr.superstate.Deactivate(ctx)
	}
	return nil
}

// String returns a string representation of this state.
func (sr *StateRepresentation[TState, TTrigger]) String() string {
	return fmt.Sprintf("%v", sr.state)
}
