package stately

import (
	"fmt"
	"reflect"
)

// TriggerWithParameters associates argument types with an underlying trigger
// value. Once registered on a machine through SetTriggerParameters, every
// fire of the trigger validates the supplied arguments against the
// configured types before resolution begins.
type TriggerWithParameters[TTrigger comparable] struct {
	underlyingTrigger TTrigger
	argumentTypes     []reflect.Type
}

// NewTriggerWithParameters creates a new configured trigger.
func NewTriggerWithParameters[TTrigger comparable](underlyingTrigger TTrigger, argumentTypes ...reflect.Type) *TriggerWithParameters[TTrigger] {
	return &TriggerWithParameters[TTrigger]{
		underlyingTrigger: underlyingTrigger,
		argumentTypes:     argumentTypes,
	}
}

// ArgumentTypes returns the argument types expected by this trigger.
func (t *TriggerWithParameters[TTrigger]) ArgumentTypes() []reflect.Type {
	return t.argumentTypes
}

// Trigger returns the underlying trigger value.
func (t *TriggerWithParameters[TTrigger]) Trigger() TTrigger {
	return t.underlyingTrigger
}

// ValidateParameters ensures that the supplied arguments are compatible with
// those configured for this trigger.
func (t *TriggerWithParameters[TTrigger]) ValidateParameters(args []any) error {
	if len(args) != len(t.argumentTypes) {
		return &ParameterConversionError{
			Message: fmt.Sprintf("wrong number of parameters supplied for trigger '%v': expected %d but got %d",
				t.underlyingTrigger, len(t.argumentTypes), len(args)),
		}
	}

	for i, expectedType := range t.argumentTypes {
		arg := args[i]
		if arg == nil {
			if !isNilable(expectedType.Kind()) {
				return &ArgumentError{
					ParamName: fmt.Sprintf("args[%d]", i),
					Message:   fmt.Sprintf("nil is not a valid value for type %v", expectedType),
				}
			}
			continue
		}
		argType := reflect.TypeOf(arg)
		if !argType.AssignableTo(expectedType) {
			return &ParameterConversionError{
				Message: fmt.Sprintf("argument at position %d is of type %v but expected type %v", i, argType, expectedType),
			}
		}
	}

	return nil
}

func isNilable(kind reflect.Kind) bool {
	switch kind {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return true
	default:
		return false
	}
}

// TriggerWithParameters1 is a configured trigger with one required argument.
type TriggerWithParameters1[TTrigger comparable, TArg0 any] struct {
	*TriggerWithParameters[TTrigger]
}

// NewTriggerWithParameters1 creates a new configured trigger with one argument.
func NewTriggerWithParameters1[TTrigger comparable, TArg0 any](underlyingTrigger TTrigger) *TriggerWithParameters1[TTrigger, TArg0] {
	return &TriggerWithParameters1[TTrigger, TArg0]{
		TriggerWithParameters: NewTriggerWithParameters(underlyingTrigger, reflect.TypeOf((*TArg0)(nil)).Elem()),
	}
}

// TriggerWithParameters2 is a configured trigger with two required arguments.
type TriggerWithParameters2[TTrigger comparable, TArg0, TArg1 any] struct {
	*TriggerWithParameters[TTrigger]
}

// NewTriggerWithParameters2 creates a new configured trigger with two arguments.
func NewTriggerWithParameters2[TTrigger comparable, TArg0, TArg1 any](underlyingTrigger TTrigger) *TriggerWithParameters2[TTrigger, TArg0, TArg1] {
	return &TriggerWithParameters2[TTrigger, TArg0, TArg1]{
		TriggerWithParameters: NewTriggerWithParameters(underlyingTrigger,
			reflect.TypeOf((*TArg0)(nil)).Elem(),
			reflect.TypeOf((*TArg1)(nil)).Elem(),
		),
	}
}

// TriggerWithParameters3 is a configured trigger with three required arguments.
type TriggerWithParameters3[TTrigger comparable, TArg0, TArg1, TArg2 any] struct {
	*TriggerWithParameters[TTrigger]
}

// NewTriggerWithParameters3 creates a new configured trigger with three arguments.
func NewTriggerWithParameters3[TTrigger comparable, TArg0, TArg1, TArg2 any](underlyingTrigger TTrigger) *TriggerWithParameters3[TTrigger, TArg0, TArg1, TArg2] {
	return &TriggerWithParameters3[TTrigger, TArg0, TArg1, TArg2]{
		TriggerWithParameters: NewTriggerWithParameters(underlyingTrigger,
			reflect.TypeOf((*TArg0)(nil)).Elem(),
			reflect.TypeOf((*TArg1)(nil)).Elem(),
			reflect.TypeOf((*TArg2)(nil)).Elem(),
		),
	}
}
