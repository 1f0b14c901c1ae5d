package stately

import "context"

// GuardFunc is a synchronous guard predicate. It receives the trigger
// arguments and reports whether the guarded behaviour applies.
type GuardFunc func(args ...any) bool

// GuardCtxFunc is an asynchronous guard predicate: it may block on the
// supplied context and may fail with an error, which aborts the resolution.
type GuardCtxFunc func(ctx context.Context, args ...any) (bool, error)

// GuardClause is a single (predicate, description) pair within a guard
// chain. Construct clauses with Guard or GuardAsync.
type GuardClause struct {
	description string
	sync        GuardFunc
	async       GuardCtxFunc
}

// Guard creates a synchronous guard clause. The description is reported when
// the clause denies a trigger.
func Guard(description string, fn GuardFunc) GuardClause {
	return GuardClause{description: description, sync: fn}
}

// GuardAsync creates an asynchronous guard clause. Behaviours guarded by
// asynchronous clauses can only be fired through FireCtx.
func GuardAsync(description string, fn GuardCtxFunc) GuardClause {
	return GuardClause{description: description, async: fn}
}

// Description returns the clause description.
func (c GuardClause) Description() string {
	return c.description
}

// IsAsync reports whether the clause was created with GuardAsync.
func (c GuardClause) IsAsync() bool {
	return c.async != nil
}

func (c GuardClause) evaluate(ctx context.Context, args []any) (bool, error) {
	if c.async != nil {
		return c.async(ctx, args...)
	}
	if c.sync != nil {
		return c.sync(args...), nil
	}
	return true, nil
}

// TransitionGuard is the ordered guard chain attached to a trigger
// behaviour. The chain passes iff every clause returns true. Evaluation
// never short-circuits: each clause is invoked exactly once per resolution,
// in chain order, so side-effecting guards behave deterministically.
type TransitionGuard struct {
	clauses []GuardClause
}

// EmptyTransitionGuard is a guard chain with no clauses (always passes).
var EmptyTransitionGuard = TransitionGuard{}

// NewTransitionGuard creates a guard chain from the given clauses.
func NewTransitionGuard(clauses ...GuardClause) TransitionGuard {
	return TransitionGuard{clauses: clauses}
}

// Clauses returns the clauses of the chain, in order.
func (tg TransitionGuard) Clauses() []GuardClause {
	return tg.clauses
}

// IsEmpty returns true if the chain has no clauses.
func (tg TransitionGuard) IsEmpty() bool {
	return len(tg.clauses) == 0
}

// HasAsyncClause reports whether any clause in the chain is asynchronous.
func (tg TransitionGuard) HasAsyncClause() bool {
	for _, c := range tg.clauses {
		if c.IsAsync() {
			return true
		}
	}
	return false
}

// UnmetConditionsCtx evaluates every clause once, strictly sequentially, and
// returns the descriptions of the clauses that returned false, in chain
// order. A clause error aborts evaluation and is returned unmodified.
func (tg TransitionGuard) UnmetConditionsCtx(ctx context.Context, args []any) ([]string, error) {
	var unmet []string
	for _, c := range tg.clauses {
		met, err := c.evaluate(ctx, args)
		if err != nil {
			return nil, err
		}
		if !met {
			unmet = append(unmet, c.description)
		}
	}
	return unmet, nil
}

// UnmetConditions is the synchronous form of UnmetConditionsCtx. It fails
// with an AsyncRequiredError, before invoking any clause, if the chain
// contains an asynchronous clause.
func (tg TransitionGuard) UnmetConditions(args []any) ([]string, error) {
	if tg.HasAsyncClause() {
		return nil, &AsyncRequiredError{Operation: "guard evaluation"}
	}
	return tg.UnmetConditionsCtx(context.Background(), args)
}

// ConditionsMetCtx reports whether the whole chain passes.
func (tg TransitionGuard) ConditionsMetCtx(ctx context.Context, args []any) (bool, error) {
	unmet, err := tg.UnmetConditionsCtx(ctx, args)
	if err != nil {
		return false, err
	}
	return len(unmet) == 0, nil
}

// ConditionsMet is the synchronous form of ConditionsMetCtx.
func (tg TransitionGuard) ConditionsMet(args []any) (bool, error) {
	unmet, err := tg.UnmetConditions(args)
	if err != nil {
		return false, err
	}
	return len(unmet) == 0, nil
}
