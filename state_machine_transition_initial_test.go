package stately

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialTransition_EntersSubstate(t *testing.T) {
	sm := NewStateMachine[State, Trigger](StateA)
	sm.Configure(StateA).Permit(TriggerX, StateB)
	sm.Configure(StateB).InitialTransition(StateC)
	sm.Configure(StateC).SubstateOf(StateB)

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateC, sm.State())
}

func TestInitialTransition_EntryActionsRunForEachLevel(t *testing.T) {
	var record []string
	sm := NewStateMachine[State, Trigger](StateA)

	sm.Configure(StateA).Permit(TriggerX, StateB)
	sm.Configure(StateB).
		InitialTransition(StateC).
		OnEntry(func(tr Transition[State, Trigger]) error {
			record = append(record, "EnterB")
			return nil
		})
	sm.Configure(StateC).
		SubstateOf(StateB).
		OnEntry(func(tr Transition[State, Trigger]) error {
			record = append(record, "EnterC")
			return nil
		})

	require.NoError(t, sm.Fire(TriggerX))

	expected := []string{"EnterB", "EnterC"}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Errorf("entry order mismatch (-want +got):\n%s", diff)
	}
}

func TestInitialTransition_CascadesThroughNestedComposites(t *testing.T) {
	var record []string
	sm := NewStateMachine[State, Trigger](StateA)

	// A -> B, B cascades to C, C cascades to D.
	sm.Configure(StateA).Permit(TriggerX, StateB)
	sm.Configure(StateB).
		InitialTransition(StateC).
		OnEntry(func(tr Transition[State, Trigger]) error {
			record = append(record, "EnterB")
			return nil
		})
	sm.Configure(StateC).
		SubstateOf(StateB).
		InitialTransition(StateD).
		OnEntry(func(tr Transition[State, Trigger]) error {
			record = append(record, "EnterC")
			return nil
		})
	sm.Configure(StateD).
		SubstateOf(StateC).
		OnEntry(func(tr Transition[State, Trigger]) error {
			record = append(record, "EnterD")
			return nil
		})

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateD, sm.State())

	expected := []string{"EnterB", "EnterC", "EnterD"}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Errorf("entry order mismatch (-want +got):\n%s", diff)
	}
}

func TestInitialTransition_TransitionValuesDuringCascade(t *testing.T) {
	var initialTransitions []Transition[State, Trigger]
	sm := NewStateMachine[State, Trigger](StateA)

	sm.Configure(StateA).Permit(TriggerX, StateB)
	sm.Configure(StateB).InitialTransition(StateC)
	sm.Configure(StateC).
		SubstateOf(StateB).
		OnEntry(func(tr Transition[State, Trigger]) error {
			initialTransitions = append(initialTransitions, tr)
			return nil
		})

	require.NoError(t, sm.Fire(TriggerX, "arg"))

	require.Len(t, initialTransitions, 1)
	tr := initialTransitions[0]
	assert.True(t, tr.IsInitial())
	assert.Equal(t, StateB, tr.Source)
	assert.Equal(t, StateC, tr.Destination)
	assert.Equal(t, TriggerX, tr.Trigger)
	assert.Equal(t, []any{"arg"}, tr.Args)
}

func TestInitialTransition_CompletedEventReportsFinalState(t *testing.T) {
	var completed []Transition[State, Trigger]
	sm := NewStateMachine[State, Trigger](StateA)

	sm.Configure(StateA).Permit(TriggerX, StateB)
	sm.Configure(StateB).InitialTransition(StateC)
	sm.Configure(StateC).SubstateOf(StateB)

	sm.OnTransitionCompleted(func(tr Transition[State, Trigger]) {
		completed = append(completed, tr)
	})

	require.NoError(t, sm.Fire(TriggerX))

	require.Len(t, completed, 1)
	assert.Equal(t, StateA, completed[0].Source)
	assert.Equal(t, StateC, completed[0].Destination)
}

func TestInitialTransition_NotTakenWhenEnteringSubstateDirectly(t *testing.T) {
	sm := NewStateMachine[State, Trigger](StateA)
	sm.Configure(StateA).Permit(TriggerX, StateD)
	sm.Configure(StateB).InitialTransition(StateC)
	sm.Configure(StateC).SubstateOf(StateB)
	sm.Configure(StateD).SubstateOf(StateB)

	// Entering StateD lands inside the composite already; the composite's
	// initial transition does not apply.
	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateD, sm.State())
}

func TestInitialTransition_TargetOutsideCompositeFails(t *testing.T) {
	sm := NewStateMachine[State, Trigger](StateA)
	sm.Configure(StateA).Permit(TriggerX, StateB)
	sm.Configure(StateB).InitialTransition(StateC)
	sm.Configure(StateC) // not a substate of StateB

	err := sm.Fire(TriggerX)
	var configurationErr *ConfigurationError
	require.ErrorAs(t, err, &configurationErr)
}

func TestInitialTransition_ToSelfPanics(t *testing.T) {
	sm := NewStateMachine[State, Trigger](StateA)
	assert.Panics(t, func() {
		sm.Configure(StateB).InitialTransition(StateB)
	})
}

func TestInitialTransition_DuplicatePanics(t *testing.T) {
	sm := NewStateMachine[State, Trigger](StateA)
	sm.Configure(StateC).SubstateOf(StateB)
	sm.Configure(StateD).SubstateOf(StateB)
	cfg := sm.Configure(StateB).InitialTransition(StateC)
	assert.Panics(t, func() {
		cfg.InitialTransition(StateD)
	})
}
