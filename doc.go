// Package stately provides a generic hierarchical state machine library for Go.
//
// State machines are built from a fluent configuration API with support for:
//
//   - Generic types for states and triggers
//   - Ordered guard chains with per-clause diagnostics
//   - Entry, exit, activate and deactivate actions
//   - Hierarchical states (substates, superstates, initial transitions)
//   - Parameterized triggers
//   - Dynamic, reentry, internal and ignored transitions
//   - Synchronous and context-accepting callbacks
//   - Firing modes (immediate or queued)
//
// # Basic Usage
//
// Create a state machine with initial state:
//
//	sm := stately.NewStateMachine[State, Trigger](InitialState)
//
// Configure states with transitions:
//
//	sm.Configure(StateA).
//	    Permit(TriggerX, StateB).
//	    OnEntry(func() error { fmt.Println("Entering StateA"); return nil })
//
// Fire triggers to cause transitions:
//
//	err := sm.Fire(TriggerX)
//
// # Guards
//
// Add conditions to transitions:
//
//	sm.Configure(StateA).
//	    PermitIf(TriggerX, StateB, stately.Guard("ready", func(args ...any) bool {
//	        return someCondition
//	    }))
//
// Every clause of a guard chain is evaluated on each resolution, and the
// descriptions of the unmet clauses are carried in the resulting
// InvalidTransitionError.
//
// # Hierarchical States
//
// Create state hierarchies:
//
//	sm.Configure(StateB).SubstateOf(StateA)
//
// # Context-Accepting Callbacks
//
// Register callbacks that take a context and return an error with the Async
// configuration variants, and fire with FireCtx:
//
//	sm.Configure(StateA).
//	    OnEntryAsync(func(ctx context.Context, t stately.Transition[State, Trigger]) error {
//	        return doWork(ctx)
//	    })
//	err := sm.FireCtx(ctx, TriggerX)
//
// Fire reports an AsyncRequiredError when a trigger's resolution or
// execution would need such a callback.
//
// # Queued Mode
//
// A machine created with FiringQueued drains triggers through a single
// worker goroutine in FIFO order. FireCtx returns once the trigger is
// accepted; processing errors are delivered to the OnQueuedError handler.
// Stop closes the queue and waits for the worker to drain it.
package stately
