package stately

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FiringMode enumerates the trigger processing modes.
type FiringMode int

const (
	// FiringImmediate processes triggers on the calling goroutine. A trigger
	// fired from within an entry or exit action runs immediately, nested
	// inside the outer firing.
	FiringImmediate FiringMode = iota

	// FiringQueued appends triggers to a FIFO queue drained by a single
	// worker goroutine, so a trigger fired from within an action runs only
	// after the current firing has fully completed.
	FiringQueued
)

func (m FiringMode) String() string {
	switch m {
	case FiringImmediate:
		return "Immediate"
	case FiringQueued:
		return "Queued"
	default:
		return fmt.Sprintf("FiringMode(%d)", int(m))
	}
}

// QueuedTrigger is a trigger awaiting processing by the queue worker.
type QueuedTrigger[TTrigger comparable] struct {
	ID         uuid.UUID
	Trigger    TTrigger
	Args       []any
	EnqueuedAt time.Time
}

// Fire transitions from the current state via the specified trigger, running
// every callback synchronously on the calling goroutine.
//
// Fire returns an AsyncRequiredError if resolving or executing the trigger
// would need a context-accepting callback, before that callback's category
// runs. Calling Fire from within one of its own callbacks returns a
// ReentrantFiringError; calling it on a queued-mode machine returns an
// InvalidOperationError.
func (sm *StateMachine[TState, TTrigger]) Fire(trigger TTrigger, args ...any) error {
	if sm.firingMode == FiringQueued {
		return &InvalidOperationError{
			Message: "Fire is not supported in queued mode; use FireCtx",
		}
	}
	if !sm.firing.CompareAndSwap(false, true) {
		return &ReentrantFiringError{State: sm.State(), Trigger: trigger}
	}
	defer sm.firing.Store(false)
	return sm.fireInternal(context.Background(), trigger, args, true)
}

// FireCtx transitions from the current state via the specified trigger,
// accepting both synchronous and context-accepting callbacks. Callbacks run
// strictly sequentially in the same order as synchronous firing.
//
// In queued mode FireCtx appends the trigger to the queue and returns once
// it is accepted; processing errors are reported through the OnQueuedError
// handler. FireCtx performs no reentrancy detection.
func (sm *StateMachine[TState, TTrigger]) FireCtx(ctx context.Context, trigger TTrigger, args ...any) error {
	if sm.firingMode == FiringQueued {
		if err := ctx.Err(); err != nil {
			return err
		}
		return sm.enqueue(trigger, args)
	}
	return sm.fireInternal(ctx, trigger, args, false)
}

// CanFire returns true if the trigger can be fired in the current state.
// Guards are evaluated but destination selectors and actions are not.
// An ignored trigger counts as fireable.
func (sm *StateMachine[TState, TTrigger]) CanFire(trigger TTrigger, args ...any) (bool, error) {
	return sm.canFire(context.Background(), trigger, args, true)
}

// CanFireCtx is CanFire with asynchronous guard evaluation.
func (sm *StateMachine[TState, TTrigger]) CanFireCtx(ctx context.Context, trigger TTrigger, args ...any) (bool, error) {
	return sm.canFire(ctx, trigger, args, false)
}

func (sm *StateMachine[TState, TTrigger]) canFire(ctx context.Context, trigger TTrigger, args []any, syncOnly bool) (bool, error) {
	result, err := sm.getRepresentation(sm.State()).FindHandler(ctx, trigger, args, syncOnly)
	if err != nil {
		return false, err
	}
	return result.Handler != nil, nil
}

// OnQueuedError registers the handler invoked by the queue worker when a
// queued trigger fails or panics. Without a handler, failures are written to
// the machine's logger.
func (sm *StateMachine[TState, TTrigger]) OnQueuedError(handler func(QueuedTrigger[TTrigger], error)) {
	sm.queueMu.Lock()
	defer sm.queueMu.Unlock()
	sm.queuedErrorHandler = handler
}

// Stop closes the queue and waits for the worker to drain the remaining
// triggers. If ctx expires first, the in-flight firing is cancelled and
// Stop returns the context error. Further FireCtx calls fail once Stop has
// been called. Stop on an immediate-mode machine is a no-op.
func (sm *StateMachine[TState, TTrigger]) Stop(ctx context.Context) error {
	sm.queueMu.Lock()
	sm.queueClosed = true
	started := sm.workerStarted
	done := sm.workerDone
	sm.queueMu.Unlock()

	if !started {
		return nil
	}
	sm.signalWake()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		sm.workerCancel()
		<-done
		return ctx.Err()
	}
}

func (sm *StateMachine[TState, TTrigger]) enqueue(trigger TTrigger, args []any) error {
	sm.queueMu.Lock()
	if sm.queueClosed {
		sm.queueMu.Unlock()
		return &InvalidOperationError{Message: "state machine queue has been stopped"}
	}
	sm.pending = append(sm.pending, QueuedTrigger[TTrigger]{
		ID:         uuid.New(),
		Trigger:    trigger,
		Args:       args,
		EnqueuedAt: time.Now(),
	})
	if !sm.workerStarted {
		sm.workerStarted = true
		sm.queueWake = make(chan struct{}, 1)
		sm.workerDone = make(chan struct{})
		workerCtx, cancel := context.WithCancel(context.Background())
		sm.workerCancel = cancel
		go sm.runQueueWorker(workerCtx)
	}
	sm.queueMu.Unlock()

	sm.signalWake()
	return nil
}

func (sm *StateMachine[TState, TTrigger]) signalWake() {
	sm.queueMu.Lock()
	wake := sm.queueWake
	sm.queueMu.Unlock()
	if wake == nil {
		return
	}
	select {
	case wake <- struct{}{}:
	default:
	}
}

// runQueueWorker drains the queue one trigger at a time. It exits once the
// queue has been closed and drained, or when its context is cancelled.
func (sm *StateMachine[TState, TTrigger]) runQueueWorker(ctx context.Context) {
	defer close(sm.workerDone)
	for {
		sm.queueMu.Lock()
		if len(sm.pending) == 0 {
			closed := sm.queueClosed
			sm.queueMu.Unlock()
			if closed {
				return
			}
			select {
			case <-sm.queueWake:
			case <-ctx.Done():
				return
			}
			continue
		}
		item := sm.pending[0]
		sm.pending = sm.pending[1:]
		sm.queueMu.Unlock()

		sm.processQueuedTrigger(ctx, item)
		if ctx.Err() != nil {
			return
		}
	}
}

func (sm *StateMachine[TState, TTrigger]) processQueuedTrigger(ctx context.Context, item QueuedTrigger[TTrigger]) {
	defer func() {
		if r := recover(); r != nil {
			sm.reportQueuedError(item, fmt.Errorf("panic while firing queued trigger: %v", r))
		}
	}()
	if err := sm.fireInternal(ctx, item.Trigger, item.Args, false); err != nil {
		sm.reportQueuedError(item, err)
	}
}

func (sm *StateMachine[TState, TTrigger]) reportQueuedError(item QueuedTrigger[TTrigger], err error) {
	sm.queueMu.Lock()
	handler := sm.queuedErrorHandler
	sm.queueMu.Unlock()

	if handler != nil {
		handler(item, err)
		return
	}
	sm.logger.Error().
		Str("queue_id", item.ID.String()).
		Interface("trigger", item.Trigger).
		Err(err).
		Msg("queued trigger failed")
}
