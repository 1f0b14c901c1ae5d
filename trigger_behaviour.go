package stately

import "context"

// TriggerBehaviour is the base interface for all trigger behaviours.
type TriggerBehaviour[TState, TTrigger comparable] interface {
	// Trigger returns the trigger associated with this behaviour.
	Trigger() TTrigger

	// Guard returns the guard chain for this behaviour.
	Guard() TransitionGuard
}

// triggerBehaviourBase provides the base implementation for trigger behaviours.
type triggerBehaviourBase[TState, TTrigger comparable] struct {
	trigger TTrigger
	guard   TransitionGuard
}

func (t *triggerBehaviourBase[TState, TTrigger]) Trigger() TTrigger {
	return t.trigger
}

func (t *triggerBehaviourBase[TState, TTrigger]) Guard() TransitionGuard {
	return t.guard
}

// TransitioningTriggerBehaviour represents a transition to a fixed destination state.
type TransitioningTriggerBehaviour[TState, TTrigger comparable] struct {
	triggerBehaviourBase[TState, TTrigger]

	Destination TState
}

// NewTransitioningTriggerBehaviour creates a new transitioning trigger behaviour.
func NewTransitioningTriggerBehaviour[TState, TTrigger comparable](
	trigger TTrigger,
	destination TState,
	guard TransitionGuard,
) *TransitioningTriggerBehaviour[TState, TTrigger] {
	return &TransitioningTriggerBehaviour[TState, TTrigger]{
		triggerBehaviourBase: triggerBehaviourBase[TState, TTrigger]{
			trigger: trigger,
			guard:   guard,
		},
		Destination: destination,
	}
}

// ReentryTriggerBehaviour represents a reentry transition (state exits and re-enters itself).
type ReentryTriggerBehaviour[TState, TTrigger comparable] struct {
	triggerBehaviourBase[TState, TTrigger]

	Destination TState
}

// NewReentryTriggerBehaviour creates a new reentry trigger behaviour.
func NewReentryTriggerBehaviour[TState, TTrigger comparable](
	trigger TTrigger,
	destination TState,
	guard TransitionGuard,
) *ReentryTriggerBehaviour[TState, TTrigger] {
	return &ReentryTriggerBehaviour[TState, TTrigger]{
		triggerBehaviourBase: triggerBehaviourBase[TState, TTrigger]{
			trigger: trigger,
			guard:   guard,
		},
		Destination: destination,
	}
}

// IgnoredTriggerBehaviour represents a trigger that should be ignored.
type IgnoredTriggerBehaviour[TState, TTrigger comparable] struct {
	triggerBehaviourBase[TState, TTrigger]
}

// NewIgnoredTriggerBehaviour creates a new ignored trigger behaviour.
func NewIgnoredTriggerBehaviour[TState, TTrigger comparable](
	trigger TTrigger,
	guard TransitionGuard,
) *IgnoredTriggerBehaviour[TState, TTrigger] {
	return &IgnoredTriggerBehaviour[TState, TTrigger]{
		triggerBehaviourBase: triggerBehaviourBase[TState, TTrigger]{
			trigger: trigger,
			guard:   guard,
		},
	}
}

// DynamicTriggerBehaviour represents a transition to a dynamically determined state.
type DynamicTriggerBehaviour[TState, TTrigger comparable] struct {
	triggerBehaviourBase[TState, TTrigger]

	selector    SelectorFunc[TState]
	selectorCtx SelectorCtxFunc[TState]
}

// NewDynamicTriggerBehaviour creates a dynamic trigger behaviour with a
// synchronous destination selector.
func NewDynamicTriggerBehaviour[TState, TTrigger comparable](
	trigger TTrigger,
	selector SelectorFunc[TState],
	guard TransitionGuard,
) *DynamicTriggerBehaviour[TState, TTrigger] {
	return &DynamicTriggerBehaviour[TState, TTrigger]{
		triggerBehaviourBase: triggerBehaviourBase[TState, TTrigger]{
			trigger: trigger,
			guard:   guard,
		},
		selector: selector,
	}
}

// NewDynamicCtxTriggerBehaviour creates a dynamic trigger behaviour with an
// asynchronous destination selector.
func NewDynamicCtxTriggerBehaviour[TState, TTrigger comparable](
	trigger TTrigger,
	selector SelectorCtxFunc[TState],
	guard TransitionGuard,
) *DynamicTriggerBehaviour[TState, TTrigger] {
	return &DynamicTriggerBehaviour[TState, TTrigger]{
		triggerBehaviourBase: triggerBehaviourBase[TState, TTrigger]{
			trigger: trigger,
			guard:   guard,
		},
		selectorCtx: selector,
	}
}

// SelectorIsAsync reports whether the destination selector requires
// asynchronous invocation.
func (d *DynamicTriggerBehaviour[TState, TTrigger]) SelectorIsAsync() bool {
	return d.selectorCtx != nil
}

// DestinationState computes the destination state from the trigger arguments.
func (d *DynamicTriggerBehaviour[TState, TTrigger]) DestinationState(ctx context.Context, args []any) (TState, error) {
	if d.selectorCtx != nil {
		return d.selectorCtx(ctx, args...)
	}
	return d.selector(args...), nil
}

// InternalTriggerBehaviour represents an internal transition: the bound
// action runs without exiting or re-entering the state.
type InternalTriggerBehaviour[TState, TTrigger comparable] struct {
	triggerBehaviourBase[TState, TTrigger]

	action    ActionFunc[TState, TTrigger]
	actionCtx ActionCtxFunc[TState, TTrigger]
}

// NewInternalTriggerBehaviour creates an internal trigger behaviour with a
// synchronous action.
func NewInternalTriggerBehaviour[TState, TTrigger comparable](
	trigger TTrigger,
	guard TransitionGuard,
	action ActionFunc[TState, TTrigger],
) *InternalTriggerBehaviour[TState, TTrigger] {
	return &InternalTriggerBehaviour[TState, TTrigger]{
		triggerBehaviourBase: triggerBehaviourBase[TState, TTrigger]{
			trigger: trigger,
			guard:   guard,
		},
		action: action,
	}
}

// NewInternalCtxTriggerBehaviour creates an internal trigger behaviour with
// an asynchronous action.
func NewInternalCtxTriggerBehaviour[TState, TTrigger comparable](
	trigger TTrigger,
	guard TransitionGuard,
	action ActionCtxFunc[TState, TTrigger],
) *InternalTriggerBehaviour[TState, TTrigger] {
	return &InternalTriggerBehaviour[TState, TTrigger]{
		triggerBehaviourBase: triggerBehaviourBase[TState, TTrigger]{
			trigger: trigger,
			guard:   guard,
		},
		actionCtx: action,
	}
}

// ActionIsAsync reports whether the bound action requires asynchronous invocation.
func (b *InternalTriggerBehaviour[TState, TTrigger]) ActionIsAsync() bool {
	return b.actionCtx != nil
}

// ExecuteAction runs the bound action.
func (b *InternalTriggerBehaviour[TState, TTrigger]) ExecuteAction(ctx context.Context, transition Transition[TState, TTrigger]) error {
	if b.actionCtx != nil {
		return b.actionCtx(ctx, transition)
	}
	if b.action != nil {
		return b.action(transition)
	}
	return nil
}

// TriggerBehaviourResult represents the result of resolving a trigger
// against a state hierarchy.
type TriggerBehaviourResult[TState, TTrigger comparable] struct {
	// Handler is the first behaviour, in registration order, whose guard
	// chain passed. Nil when no behaviour applied.
	Handler TriggerBehaviour[TState, TTrigger]

	// UnmetGuardConditions contains the descriptions of every failed guard
	// clause at the level that defined behaviours for the trigger.
	UnmetGuardConditions []string
}
