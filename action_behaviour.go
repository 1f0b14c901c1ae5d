package stately

import "context"

// ActionFunc is a synchronous entry, exit or internal-transition action. It
// receives the transition record; trigger arguments are available through
// Transition.Args.
type ActionFunc[TState, TTrigger comparable] func(t Transition[TState, TTrigger]) error

// ActionCtxFunc is the asynchronous form of ActionFunc. Actions registered
// with a context can only be reached through FireCtx.
type ActionCtxFunc[TState, TTrigger comparable] func(ctx context.Context, t Transition[TState, TTrigger]) error

// StageFunc is a synchronous activate or deactivate action.
type StageFunc func() error

// StageCtxFunc is the asynchronous form of StageFunc.
type StageCtxFunc func(ctx context.Context) error

// SelectorFunc computes the destination of a dynamic transition from the
// trigger arguments.
type SelectorFunc[TState comparable] func(args ...any) TState

// SelectorCtxFunc is the asynchronous form of SelectorFunc.
type SelectorCtxFunc[TState comparable] func(ctx context.Context, args ...any) (TState, error)

// EntryActionBehaviour is an entry action registered on a state, optionally
// restricted to entries caused by a specific trigger.
type EntryActionBehaviour[TState, TTrigger comparable] struct {
	sync        ActionFunc[TState, TTrigger]
	async       ActionCtxFunc[TState, TTrigger]
	fromTrigger *TTrigger
}

func newEntryActionBehaviour[TState, TTrigger comparable](sync ActionFunc[TState, TTrigger], async ActionCtxFunc[TState, TTrigger]) EntryActionBehaviour[TState, TTrigger] {
	return EntryActionBehaviour[TState, TTrigger]{sync: sync, async: async}
}

func newEntryActionBehaviourFrom[TState, TTrigger comparable](trigger TTrigger, sync ActionFunc[TState, TTrigger], async ActionCtxFunc[TState, TTrigger]) EntryActionBehaviour[TState, TTrigger] {
	return EntryActionBehaviour[TState, TTrigger]{sync: sync, async: async, fromTrigger: &trigger}
}

// IsAsync reports whether the action requires asynchronous invocation.
func (b EntryActionBehaviour[TState, TTrigger]) IsAsync() bool {
	return b.async != nil
}

// FromTrigger returns the trigger this action is restricted to, or nil.
func (b EntryActionBehaviour[TState, TTrigger]) FromTrigger() *TTrigger {
	return b.fromTrigger
}

// Execute runs the action for the given transition. Actions restricted to a
// trigger are skipped when entry was caused by a different trigger.
func (b EntryActionBehaviour[TState, TTrigger]) Execute(ctx context.Context, t Transition[TState, TTrigger]) error {
	if b.fromTrigger != nil && t.Trigger != *b.fromTrigger {
		return nil
	}
	if b.async != nil {
		return b.async(ctx, t)
	}
	if b.sync != nil {
		return b.sync(t)
	}
	return nil
}

// ExitActionBehaviour is an exit action registered on a state.
type ExitActionBehaviour[TState, TTrigger comparable] struct {
	sync  ActionFunc[TState, TTrigger]
	async ActionCtxFunc[TState, TTrigger]
}

func newExitActionBehaviour[TState, TTrigger comparable](sync ActionFunc[TState, TTrigger], async ActionCtxFunc[TState, TTrigger]) ExitActionBehaviour[TState, TTrigger] {
	return ExitActionBehaviour[TState, TTrigger]{sync: sync, async: async}
}

// IsAsync reports whether the action requires asynchronous invocation.
func (b ExitActionBehaviour[TState, TTrigger]) IsAsync() bool {
	return b.async != nil
}

// Execute runs the action for the given transition.
func (b ExitActionBehaviour[TState, TTrigger]) Execute(ctx context.Context, t Transition[TState, TTrigger]) error {
	if b.async != nil {
		return b.async(ctx, t)
	}
	if b.sync != nil {
		return b.sync(t)
	}
	return nil
}

// ActivateActionBehaviour is an activate action registered on a state.
type ActivateActionBehaviour struct {
	sync  StageFunc
	async StageCtxFunc
}

func newActivateActionBehaviour(sync StageFunc, async StageCtxFunc) ActivateActionBehaviour {
	return ActivateActionBehaviour{sync: sync, async: async}
}

// IsAsync reports whether the action requires asynchronous invocation.
func (b ActivateActionBehaviour) IsAsync() bool {
	return b.async != nil
}

// Execute runs the action.
func (b ActivateActionBehaviour) Execute(ctx context.Context) error {
	if b.async != nil {
		return b.async(ctx)
	}
	if b.sync != nil {
		return b.sync()
	}
	return nil
}

// DeactivateActionBehaviour is a deactivate action registered on a state.
type DeactivateActionBehaviour struct {
	sync  StageFunc
	async StageCtxFunc
}

func newDeactivateActionBehaviour(sync StageFunc, async StageCtxFunc) DeactivateActionBehaviour {
	return DeactivateActionBehaviour{sync: sync, async: async}
}

// IsAsync reports whether the action requires asynchronous invocation.
func (b DeactivateActionBehaviour) IsAsync() bool {
	return b.async != nil
}

// Execute runs the action.
func (b DeactivateActionBehaviour) Execute(ctx context.Context) error {
	if b.async != nil {
		return b.async(ctx)
	}
	if b.sync != nil {
		return b.sync()
	}
	return nil
}
