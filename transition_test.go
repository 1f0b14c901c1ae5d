package stately

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition_IsReentry(t *testing.T) {
	reentry := NewTransition(StateA, StateA, TriggerX)
	assert.True(t, reentry.IsReentry())

	regular := NewTransition(StateA, StateB, TriggerX)
	assert.False(t, regular.IsReentry())
}

func TestTransition_IsInitial(t *testing.T) {
	initial := NewInitialTransition(StateA, StateB, TriggerX)
	assert.True(t, initial.IsInitial())

	regular := NewTransition(StateA, StateB, TriggerX)
	assert.False(t, regular.IsInitial())
}

func TestTransition_ArgsNeverNil(t *testing.T) {
	tr := NewTransition(StateA, StateB, TriggerX)
	assert.NotNil(t, tr.Args)
	assert.Empty(t, tr.Args)

	withArgs := NewTransition(StateA, StateB, TriggerX, 1, "two")
	assert.Equal(t, []any{1, "two"}, withArgs.Args)
}
