// Package faults defines the fixed three-kind error taxonomy of the engine:
// component (bad user input), flow (step or transition problem) and system
// (infrastructure or remote failure). Each kind is a flat record; one kind is
// never wrapped inside another. Errors here are data: every caller decides
// explicitly whether to stop, retry or surface them.
package faults

import "fmt"

// Kind labels one of the three fault categories.
type Kind string

const (
	KindComponent Kind = "component"
	KindFlow      Kind = "flow"
	KindSystem    Kind = "system"
)

// ComponentError reports user input that failed a component's validation.
// It is an expected condition: the step re-prompts, it does not abort.
type ComponentError struct {
	Field   string         `json:"field"`
	Value   any            `json:"value,omitempty"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *ComponentError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("field %q: %s (got %v)", e.Field, e.Message, e.Value)
}

// FlowError reports a step or transition problem: a routing lookup with no
// matching branch, a state document missing required flow fields, a step
// locked after too many failed attempts. Fatal to the current step's
// progress; the user gets a restartable flow, never a guessed destination.
type FlowError struct {
	Path      string `json:"path"`
	Component string `json:"component"`
	Op        string `json:"op"`
	Detail    string `json:"detail"`
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("flow %s/%s: %s: %s", e.Path, e.Component, e.Op, e.Detail)
}

// SystemError reports infrastructure failure: store unreachable, remote API
// down, serialization broken. Retried at the collaborator boundary; once
// retries are exhausted it surfaces as a generic user-visible failure while
// the full record lands in the validation history for operators.
type SystemError struct {
	Code      string `json:"code"`
	Subsystem string `json:"subsystem"`
	Op        string `json:"op"`
	Err       error  `json:"-"`
}

func (e *SystemError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("system %s/%s (%s): %v", e.Subsystem, e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("system %s/%s (%s)", e.Subsystem, e.Op, e.Code)
}

func (e *SystemError) Unwrap() error { return e.Err }

// System is a convenience constructor for SystemError.
func System(subsystem, op, code string, err error) *SystemError {
	return &SystemError{Code: code, Subsystem: subsystem, Op: op, Err: err}
}

// KindOf classifies an error into the taxonomy. Unrecognized errors are
// treated as system faults: anything outside the taxonomy is by definition
// unexpected infrastructure trouble.
func KindOf(err error) Kind {
	switch err.(type) {
	case *ComponentError:
		return KindComponent
	case *FlowError:
		return KindFlow
	default:
		return KindSystem
	}
}
