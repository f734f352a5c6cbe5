// Package component defines the validation and side-effect units that make
// up the steps of a flow. Four variants exist: Display (show content and move
// on), Input (accept and validate a user value), ApiCall (invoke the remote
// accounts collaborator) and Confirm (a user authorization gate).
//
// All variants report expected failures through the Result value, never by
// returning an error. Plain errors are reserved for infrastructure trouble.
package component

import "github.com/konvo/konvo/pkg/faults"

// Kind identifies a component variant.
type Kind string

const (
	KindDisplay Kind = "display"
	KindInput   Kind = "input"
	KindAPICall Kind = "api_call"
	KindConfirm Kind = "confirm"
)

// Component is one step of a flow, resolved by name through the Registry.
type Component interface {
	Name() string
	Kind() Kind
}

// Result is the single shape every variant uses to report the outcome of
// handling input or executing a call.
type Result struct {
	// Valid reports whether the input or call was accepted.
	Valid bool

	// Value is the validated value (Input/Confirm) or the call outcome
	// (ApiCall). Nil when Valid is false.
	Value any

	// Tag is the component_result stored for conditional routing.
	Tag string

	// Err describes the rejection when Valid is false.
	Err *faults.ComponentError
}

// OK builds an accepted result.
func OK(value any, tag string) Result {
	return Result{Valid: true, Value: value, Tag: tag}
}

// Invalid builds a rejected result for a field.
func Invalid(field, message string, value any) Result {
	return Result{Err: &faults.ComponentError{
		Field:   field,
		Value:   value,
		Message: message,
	}}
}
