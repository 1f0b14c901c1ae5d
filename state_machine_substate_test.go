package stately

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hierarchy states: D contains A, A contains B. C is a root on its own.
func newHierarchyMachine(record *[]string) *StateMachine[State, Trigger] {
	return newHierarchyMachineAt(record, StateB)
}

func TestTransitionToUnrelatedState_ExitsWholeChain(t *testing.T) {
	var record []string
	sm := newHierarchyMachine(&record)
	sm.Configure(StateB).Permit(TriggerX, StateC)

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateC, sm.State())

	// Innermost out, then the single entry.
	expected := []string{"ExitB", "ExitA", "ExitD", "EnterC"}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Errorf("action order mismatch (-want +got):\n%s", diff)
	}
}

func TestTransitionWithinSuperstate_BoundaryNotCrossed(t *testing.T) {
	var record []string
	sm := newHierarchyMachine(&record)

	// StateB -> sibling substate of StateA
	sm.Configure(StateC).SubstateOf(StateA)
	sm.Configure(StateB).Permit(TriggerX, StateC)

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateC, sm.State())

	// The shared superstates A and D are neither exited nor re-entered.
	expected := []string{"ExitB", "EnterC"}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Errorf("action order mismatch (-want +got):\n%s", diff)
	}
}

func TestTransitionFromSubstateToSuperstate_OnlySubstateExits(t *testing.T) {
	var record []string
	sm := newHierarchyMachine(&record)
	sm.Configure(StateB).Permit(TriggerX, StateA)

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateA, sm.State())

	// The destination is the boundary itself: nothing is entered.
	expected := []string{"ExitB"}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Errorf("action order mismatch (-want +got):\n%s", diff)
	}
}

func TestTransitionIntoNestedSubstate_EntersOutermostFirst(t *testing.T) {
	var record []string

	// Start outside the hierarchy.
	sm := newHierarchyMachineAt(&record, StateC)
	sm.Configure(StateC).Permit(TriggerX, StateB)

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateB, sm.State())

	expected := []string{"ExitC", "EnterD", "EnterA", "EnterB"}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Errorf("action order mismatch (-want +got):\n%s", diff)
	}
}

func newHierarchyMachineAt(record *[]string, initial State) *StateMachine[State, Trigger] {
	sm := NewStateMachine[State, Trigger](initial)

	sm.Configure(StateD).
		OnEntry(func(tr Transition[State, Trigger]) error {
			*record = append(*record, "EnterD")
			return nil
		}).
		OnExit(func(tr Transition[State, Trigger]) error {
			*record = append(*record, "ExitD")
			return nil
		})

	sm.Configure(StateA).
		SubstateOf(StateD).
		OnEntry(func(tr Transition[State, Trigger]) error {
			*record = append(*record, "EnterA")
			return nil
		}).
		OnExit(func(tr Transition[State, Trigger]) error {
			*record = append(*record, "ExitA")
			return nil
		})

	sm.Configure(StateB).
		SubstateOf(StateA).
		OnEntry(func(tr Transition[State, Trigger]) error {
			*record = append(*record, "EnterB")
			return nil
		}).
		OnExit(func(tr Transition[State, Trigger]) error {
			*record = append(*record, "ExitB")
			return nil
		})

	sm.Configure(StateC).
		OnEntry(func(tr Transition[State, Trigger]) error {
			*record = append(*record, "EnterC")
			return nil
		}).
		OnExit(func(tr Transition[State, Trigger]) error {
			*record = append(*record, "ExitC")
			return nil
		})

	return sm
}

func TestReentry_ExitsAndReentersOnlyTheState(t *testing.T) {
	var record []string
	sm := newHierarchyMachine(&record)
	sm.Configure(StateB).PermitReentry(TriggerX)

	require.NoError(t, sm.Fire(TriggerX))
	assert.Equal(t, StateB, sm.State())

	// Superstates A and D stay untouched.
	expected := []string{"ExitB", "EnterB"}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Errorf("action order mismatch (-want +got):\n%s", diff)
	}
}

func TestDeactivateRunsBeforeExit_ActivateAfterEntry(t *testing.T) {
	var record []string
	sm := NewStateMachine[State, Trigger](StateA)

	sm.Configure(StateA).
		Permit(TriggerX, StateB).
		OnExit(func(tr Transition[State, Trigger]) error {
			record = append(record, "ExitA")
			return nil
		}).
		OnDeactivate(func() error {
			record = append(record, "DeactivateA")
			return nil
		})

	sm.Configure(StateB).
		OnEntry(func(tr Transition[State, Trigger]) error {
			record = append(record, "EnterB")
			return nil
		}).
		OnActivate(func() error {
			record = append(record, "ActivateB")
			return nil
		})

	require.NoError(t, sm.Fire(TriggerX))

	expected := []string{"DeactivateA", "ExitA", "EnterB", "ActivateB"}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Errorf("action order mismatch (-want +got):\n%s", diff)
	}
}

func TestDeactivateAndActivate_PerNodeAcrossHierarchy(t *testing.T) {
	var record []string
	sm := NewStateMachine[State, Trigger](StateB)

	sm.Configure(StateA).
		OnDeactivate(func() error {
			record = append(record, "DeactivateA")
			return nil
		}).
		OnExit(func(tr Transition[State, Trigger]) error {
			record = append(record, "ExitA")
			return nil
		})

	sm.Configure(StateB).
		SubstateOf(StateA).
		Permit(TriggerX, StateC).
		OnDeactivate(func() error {
			record = append(record, "DeactivateB")
			return nil
		}).
		OnExit(func(tr Transition[State, Trigger]) error {
			record = append(record, "ExitB")
			return nil
		})

	sm.Configure(StateC).
		OnEntry(func(tr Transition[State, Trigger]) error {
			record = append(record, "EnterC")
			return nil
		}).
		OnActivate(func() error {
			record = append(record, "ActivateC")
			return nil
		})

	require.NoError(t, sm.Fire(TriggerX))

	// Deactivate precedes exit per node on the way out, activate follows
	// entry per node on the way in.
	expected := []string{"DeactivateB", "ExitB", "DeactivateA", "ExitA", "EnterC", "ActivateC"}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Errorf("action order mismatch (-want +got):\n%s", diff)
	}
}

// Representation-level hierarchy tests

func TestRepresentation_IncludesAndIsIncludedIn(t *testing.T) {
	sm := NewStateMachine[State, Trigger](StateB)
	sm.Configure(StateA)
	sm.Configure(StateB).SubstateOf(StateA)
	sm.Configure(StateC).SubstateOf(StateB)

	repA := sm.getRepresentation(StateA)
	repC := sm.getRepresentation(StateC)

	assert.True(t, repA.Includes(StateA))
	assert.True(t, repA.Includes(StateB))
	assert.True(t, repA.Includes(StateC))
	assert.False(t, repC.Includes(StateA))

	assert.True(t, repC.IsIncludedIn(StateA))
	assert.True(t, repC.IsIncludedIn(StateC))
	assert.False(t, repA.IsIncludedIn(StateC))
}

func TestRepresentation_CommonAncestor(t *testing.T) {
	sm := NewStateMachine[State, Trigger](StateB)
	sm.Configure(StateA)
	sm.Configure(StateB).SubstateOf(StateA)
	sm.Configure(StateC).SubstateOf(StateA)
	sm.Configure(StateD)

	repB := sm.getRepresentation(StateB)
	repC := sm.getRepresentation(StateC)
	repD := sm.getRepresentation(StateD)

	ancestor := repB.CommonAncestor(repC)
	require.NotNil(t, ancestor)
	assert.Equal(t, StateA, ancestor.UnderlyingState())

	// Distinct roots share no ancestor.
	assert.Nil(t, repB.CommonAncestor(repD))
}
