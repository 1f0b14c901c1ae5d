package stately

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// StateMachine represents a hierarchical state machine that transitions
// between states based on triggers.
type StateMachine[TState, TTrigger comparable] struct {
	// stateAccessor is used to retrieve the current state.
	stateAccessor func() TState

	// stateMutator is used to set the current state. It is invoked exactly
	// once per committed transition, after the exit chain and before the
	// entry chain.
	stateMutator func(TState)

	// stateRepresentations contains the configuration for each state.
	stateRepresentations map[TState]*StateRepresentation[TState, TTrigger]

	// triggerParameters holds the argument types configured per trigger.
	triggerParameters map[TTrigger]*TriggerWithParameters[TTrigger]

	// unhandledTriggerAction is called when a trigger has no behaviour
	// anywhere in the ancestor chain.
	unhandledTriggerAction func(state TState, trigger TTrigger, args []any)

	// unhandledTriggerActionCtx is the asynchronous unhandled-trigger
	// handler; it takes precedence over the synchronous one.
	unhandledTriggerActionCtx func(ctx context.Context, state TState, trigger TTrigger, args []any) error

	onTransitioned        *transitionEvent[TState, TTrigger]
	onTransitionCompleted *transitionEvent[TState, TTrigger]

	// firingMode determines how triggers are processed.
	firingMode FiringMode

	logger zerolog.Logger

	// firing rejects reentrant synchronous Fire calls.
	firing atomic.Bool

	// isActive indicates if the state machine has been activated.
	isActive bool

	// Queued-mode worker state; see firing.go.
	queueMu            sync.Mutex
	pending            []QueuedTrigger[TTrigger]
	queueWake          chan struct{}
	queueClosed        bool
	workerStarted      bool
	workerCancel       context.CancelFunc
	workerDone         chan struct{}
	queuedErrorHandler func(QueuedTrigger[TTrigger], error)
}

// transitionEvent holds transition callbacks.
type transitionEvent[TState, TTrigger comparable] struct {
	mu       sync.RWMutex
	handlers []func(Transition[TState, TTrigger])
}

func (e *transitionEvent[TState, TTrigger]) register(handler func(Transition[TState, TTrigger])) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

func (e *transitionEvent[TState, TTrigger]) unregisterAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = nil
}

func (e *transitionEvent[TState, TTrigger]) invoke(transition Transition[TState, TTrigger]) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, handler := range e.handlers {
		handler(transition)
	}
}

// NewStateMachine creates a new state machine with the specified initial state.
func NewStateMachine[TState, TTrigger comparable](initialState TState) *StateMachine[TState, TTrigger] {
	state := initialState
	return NewStateMachineWithExternalStorage[TState, TTrigger](
		func() TState { return state },
		func(s TState) { state = s },
	)
}

// NewStateMachineWithMode creates a new state machine with the specified
// initial state and firing mode.
func NewStateMachineWithMode[TState, TTrigger comparable](
	initialState TState,
	firingMode FiringMode,
) *StateMachine[TState, TTrigger] {
	sm := NewStateMachine[TState, TTrigger](initialState)
	sm.firingMode = firingMode
	return sm
}

// NewStateMachineWithExternalStorage creates a new state machine whose
// current state lives outside the machine. The accessor is invoked once per
// state read, the mutator exactly once per committed transition.
func NewStateMachineWithExternalStorage[TState, TTrigger comparable](
	stateAccessor func() TState,
	stateMutator func(TState),
) *StateMachine[TState, TTrigger] {
	return &StateMachine[TState, TTrigger]{
		stateAccessor:         stateAccessor,
		stateMutator:          stateMutator,
		stateRepresentations:  make(map[TState]*StateRepresentation[TState, TTrigger]),
		triggerParameters:     make(map[TTrigger]*TriggerWithParameters[TTrigger]),
		onTransitioned:        &transitionEvent[TState, TTrigger]{},
		onTransitionCompleted: &transitionEvent[TState, TTrigger]{},
		firingMode:            FiringImmediate,
		logger:                zerolog.Nop(),
	}
}

// NewStateMachineWithExternalStorageAndMode creates a new state machine with
// external state storage and the specified firing mode.
func NewStateMachineWithExternalStorageAndMode[TState, TTrigger comparable](
	stateAccessor func() TState,
	stateMutator func(TState),
	firingMode FiringMode,
) *StateMachine[TState, TTrigger] {
	sm := NewStateMachineWithExternalStorage[TState, TTrigger](stateAccessor, stateMutator)
	sm.firingMode = firingMode
	return sm
}

// SetLogger sets the logger used for queued-mode side-channel reports.
// The default logger discards everything.
func (sm *StateMachine[TState, TTrigger]) SetLogger(logger zerolog.Logger) {
	sm.logger = logger
}

// State returns the current state.
func (sm *StateMachine[TState, TTrigger]) State() TState {
	return sm.stateAccessor()
}

// Configure begins configuration of a state. Configuring the same state
// again merges additional behaviours and actions.
func (sm *StateMachine[TState, TTrigger]) Configure(state TState) *StateConfiguration[TState, TTrigger] {
	return NewStateConfiguration(
		sm.getRepresentation(state),
		sm.getRepresentation,
	)
}

// SetTriggerParameters associates the given TriggerWithParameters with its
// underlying trigger, so Fire validates arguments before resolution.
func (sm *StateMachine[TState, TTrigger]) SetTriggerParameters(trigger *TriggerWithParameters[TTrigger]) {
	sm.triggerParameters[trigger.Trigger()] = trigger
}

// OnUnhandledTrigger registers a callback that is invoked when a trigger has
// no behaviour anywhere in the ancestor chain. With a handler registered,
// the condition is no longer reported as an error.
func (sm *StateMachine[TState, TTrigger]) OnUnhandledTrigger(
	action func(state TState, trigger TTrigger, args []any),
) {
	sm.unhandledTriggerAction = action
}

// OnUnhandledTriggerAsync registers an asynchronous unhandled-trigger
// handler. It takes precedence over a synchronous handler and makes
// unhandled triggers a capability mismatch for synchronous Fire.
func (sm *StateMachine[TState, TTrigger]) OnUnhandledTriggerAsync(
	action func(ctx context.Context, state TState, trigger TTrigger, args []any) error,
) {
	sm.unhandledTriggerActionCtx = action
}

// OnTransitioned registers a callback invoked after the state cell has been
// mutated, before the entry chain runs.
func (sm *StateMachine[TState, TTrigger]) OnTransitioned(action func(Transition[TState, TTrigger])) {
	sm.onTransitioned.register(action)
}

// OnTransitionCompleted registers a callback invoked after all transition
// actions, including any initial-transition cascade, have executed.
func (sm *StateMachine[TState, TTrigger]) OnTransitionCompleted(action func(Transition[TState, TTrigger])) {
	sm.onTransitionCompleted.register(action)
}

// UnregisterAllTransitionedCallbacks removes all OnTransitioned callbacks.
func (sm *StateMachine[TState, TTrigger]) UnregisterAllTransitionedCallbacks() {
	sm.onTransitioned.unregisterAll()
}

// UnregisterAllTransitionCompletedCallbacks removes all OnTransitionCompleted callbacks.
func (sm *StateMachine[TState, TTrigger]) UnregisterAllTransitionCompletedCallbacks() {
	sm.onTransitionCompleted.unregisterAll()
}

// UnregisterAllCallbacks removes all registered callbacks.
func (sm *StateMachine[TState, TTrigger]) UnregisterAllCallbacks() {
	sm.onTransitioned.unregisterAll()
	sm.onTransitionCompleted.unregisterAll()
	sm.unhandledTriggerAction = nil
	sm.unhandledTriggerActionCtx = nil
}

// Activate activates the state machine, running the activate actions of the
// current state and its superstates, outermost first.
func (sm *StateMachine[TState, TTrigger]) Activate(ctx context.Context) error {
	if sm.isActive {
		return nil
	}
	if err := sm.getRepresentation(sm.State()).Activate(ctx); err != nil {
		return err
	}
	sm.isActive = true
	return nil
}

// Deactivate deactivates the state machine, running the deactivate actions
// of the current state and its superstates, innermost first.
func (sm *StateMachine[TState, TTrigger]) Deactivate(ctx context.Context) error {
	if !sm.isActive {
		return nil
	}
	if err := sm.getRepresentation(sm.State()).Deactivate(ctx); err != nil {
		return err
	}
	sm.isActive = false
	return nil
}

// IsInState returns true if the current state is the specified state or a
// substate of it.
func (sm *StateMachine[TState, TTrigger]) IsInState(state TState) bool {
	return sm.getRepresentation(sm.State()).IsIncludedIn(state)
}

// GetPermittedTriggers returns the triggers whose guards currently pass,
// evaluated synchronously. Triggers that would require asynchronous guard
// evaluation are skipped; use GetPermittedTriggersCtx to include them.
func (sm *StateMachine[TState, TTrigger]) GetPermittedTriggers(args ...any) []TTrigger {
	result, _ := sm.permittedTriggers(context.Background(), args, true)
	return result
}

// GetPermittedTriggersCtx returns the triggers whose guards currently pass,
// evaluating asynchronous guards as well.
func (sm *StateMachine[TState, TTrigger]) GetPermittedTriggersCtx(ctx context.Context, args ...any) ([]TTrigger, error) {
	return sm.permittedTriggers(ctx, args, false)
}

func (sm *StateMachine[TState, TTrigger]) permittedTriggers(ctx context.Context, args []any, syncOnly bool) ([]TTrigger, error) {
	rep := sm.getRepresentation(sm.State())
	var permitted []TTrigger
	for _, trigger := range rep.CandidateTriggers() {
		result, err := rep.FindHandler(ctx, trigger, args, syncOnly)
		if err != nil {
			if syncOnly {
				continue
			}
			return nil, err
		}
		if result.Handler == nil {
			continue
		}
		if _, ignored := result.Handler.(*IgnoredTriggerBehaviour[TState, TTrigger]); ignored {
			continue
		}
		permitted = append(permitted, trigger)
	}
	return permitted, nil
}

// getRepresentation gets or creates the representation for a state.
func (sm *StateMachine[TState, TTrigger]) getRepresentation(state TState) *StateRepresentation[TState, TTrigger] {
	representation, exists := sm.stateRepresentations[state]
	if !exists {
		representation = NewStateRepresentation[TState, TTrigger](state)
		sm.stateRepresentations[state] = representation
	}
	return representation
}

// fireInternal resolves and executes a single trigger.
func (sm *StateMachine[TState, TTrigger]) fireInternal(ctx context.Context, trigger TTrigger, args []any, syncMode bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if params, exists := sm.triggerParameters[trigger]; exists {
		if err := params.ValidateParameters(args); err != nil {
			return err
		}
	}

	source := sm.State()
	representation := sm.getRepresentation(source)

	result, err := representation.FindHandler(ctx, trigger, args, syncMode)
	if err != nil {
		return err
	}

	if result.Handler == nil {
		if len(result.UnmetGuardConditions) > 0 {
			return &InvalidTransitionError{
				Trigger:     trigger,
				State:       source,
				UnmetGuards: result.UnmetGuardConditions,
			}
		}
		return sm.handleUnhandledTrigger(ctx, source, trigger, args, syncMode)
	}

	switch behaviour := result.Handler.(type) {
	case *IgnoredTriggerBehaviour[TState, TTrigger]:
		return nil

	case *InternalTriggerBehaviour[TState, TTrigger]:
		if syncMode && behaviour.ActionIsAsync() {
			return &AsyncRequiredError{Trigger: trigger, Operation: "internal action"}
		}
		transition := NewTransition(source, source, trigger, args...)
		return behaviour.ExecuteAction(ctx, transition)

	case *TransitioningTriggerBehaviour[TState, TTrigger]:
		return sm.executeTransition(ctx, source, behaviour.Destination, trigger, args, syncMode)

	case *ReentryTriggerBehaviour[TState, TTrigger]:
		return sm.executeTransition(ctx, source, behaviour.Destination, trigger, args, syncMode)

	case *DynamicTriggerBehaviour[TState, TTrigger]:
		if syncMode && behaviour.SelectorIsAsync() {
			return &AsyncRequiredError{Trigger: trigger, Operation: "destination selector"}
		}
		destination, err := behaviour.DestinationState(ctx, args)
		if err != nil {
			return err
		}
		if _, configured := sm.stateRepresentations[destination]; !configured {
			return &ConfigurationError{
				Message: fmt.Sprintf("dynamic destination '%v' selected for trigger '%v' has not been configured", destination, trigger),
			}
		}
		return sm.executeTransition(ctx, source, destination, trigger, args, syncMode)

	default:
		return &InvalidOperationError{Message: fmt.Sprintf("unknown trigger behaviour type: %T", result.Handler)}
	}
}

// executeTransition runs the exit chain, mutates the state cell, runs the
// entry chain and cascades through initial transitions.
//
// Ordering contract: deactivate then exit per node, innermost to outermost,
// up to (not including) the common ancestor of source and destination; then
// the state mutation; then entry followed by activate per node, outermost to
// innermost, down to the destination. Reentry forces the boundary to the
// source's own parent so the source itself is exited and re-entered.
func (sm *StateMachine[TState, TTrigger]) executeTransition(
	ctx context.Context,
	source TState,
	destination TState,
	trigger TTrigger,
	args []any,
	syncMode bool,
) error {
	transition := NewTransition(source, destination, trigger, args...)

	sourceRep := sm.getRepresentation(source)
	destRep := sm.getRepresentation(destination)

	var ancestor *StateRepresentation[TState, TTrigger]
	if transition.IsReentry() {
		ancestor = sourceRep.Superstate()
	} else {
		ancestor = sourceRep.CommonAncestor(destRep)
	}

	exitChain := sourceRep.PathToAncestor(ancestor)
	entryChain := destRep.PathToAncestor(ancestor)
	reverseChain(entryChain)

	if syncMode {
		for _, rep := range exitChain {
			if rep.AnyAsyncDeactivateAction() || rep.AnyAsyncExitAction() {
				return &AsyncRequiredError{Trigger: trigger, Operation: "exit chain"}
			}
		}
		for _, rep := range entryChain {
			if rep.AnyAsyncEntryAction() || rep.AnyAsyncActivateAction() {
				return &AsyncRequiredError{Trigger: trigger, Operation: "entry chain"}
			}
		}
	}

	for _, rep := range exitChain {
		if err := rep.ExecuteDeactivateActions(ctx); err != nil {
			return err
		}
		if err := rep.ExecuteExitActions(ctx, transition); err != nil {
			return err
		}
	}

	sm.stateMutator(destination)
	sm.onTransitioned.invoke(transition)

	for _, rep := range entryChain {
		if err := rep.ExecuteEntryActions(ctx, transition); err != nil {
			return err
		}
		if err := rep.ExecuteActivateActions(ctx); err != nil {
			return err
		}
	}

	// Entry actions may have fired another trigger in immediate mode; only
	// cascade into initial transitions if we are still where we landed.
	if sm.State() == destination {
		if err := sm.runInitialTransitions(ctx, destination, trigger, args, syncMode); err != nil {
			return err
		}
	}

	final := NewTransition(source, sm.State(), trigger, args...)
	sm.onTransitionCompleted.invoke(final)
	return nil
}

// runInitialTransitions cascades entry into composite states that declare an
// initial transition target, through arbitrarily deep nesting.
func (sm *StateMachine[TState, TTrigger]) runInitialTransitions(
	ctx context.Context,
	destination TState,
	trigger TTrigger,
	args []any,
	syncMode bool,
) error {
	current := destination
	for {
		currentRep := sm.getRepresentation(current)
		if !currentRep.HasInitialTransition() {
			return nil
		}

		target := currentRep.InitialTransitionTarget()
		targetRep := sm.getRepresentation(target)
		if target == current || !targetRep.IsIncludedIn(current) {
			return &ConfigurationError{
				Message: fmt.Sprintf("initial transition target '%v' is not a substate of '%v'", target, current),
			}
		}

		transition := NewInitialTransition(current, target, trigger, args...)

		entryChain := targetRep.PathToAncestor(currentRep)
		reverseChain(entryChain)

		if syncMode {
			for _, rep := range entryChain {
				if rep.AnyAsyncEntryAction() || rep.AnyAsyncActivateAction() {
					return &AsyncRequiredError{Trigger: trigger, Operation: "entry chain"}
				}
			}
		}

		sm.stateMutator(target)
		sm.onTransitioned.invoke(transition)

		for _, rep := range entryChain {
			if err := rep.ExecuteEntryActions(ctx, transition); err != nil {
				return err
			}
			if err := rep.ExecuteActivateActions(ctx); err != nil {
				return err
			}
		}

		current = target
	}
}

// handleUnhandledTrigger handles a trigger with no behaviour anywhere in the
// ancestor chain.
func (sm *StateMachine[TState, TTrigger]) handleUnhandledTrigger(
	ctx context.Context,
	state TState,
	trigger TTrigger,
	args []any,
	syncMode bool,
) error {
	if sm.unhandledTriggerActionCtx != nil {
		if syncMode {
			return &AsyncRequiredError{Trigger: trigger, Operation: "unhandled-trigger handler"}
		}
		return sm.unhandledTriggerActionCtx(ctx, state, trigger, args)
	}
	if sm.unhandledTriggerAction != nil {
		sm.unhandledTriggerAction(state, trigger, args)
		return nil
	}

	permittedTriggers := sm.getRepresentation(state).CandidateTriggers()
	permitted := make([]any, len(permittedTriggers))
	for i, t := range permittedTriggers {
		permitted[i] = t
	}

	return &InvalidTransitionError{
		Trigger:           trigger,
		State:             state,
		PermittedTriggers: permitted,
	}
}

func reverseChain[T any](chain []T) {
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
}

// String returns a string representation of the current state.
func (sm *StateMachine[TState, TTrigger]) String() string {
	return fmt.Sprintf("StateMachine { State = %v }", sm.State())
}
