// Package flow holds the deterministic router: a static transition table
// mapping (path, component) to the next step, optionally branching on the
// tag the last component produced. Routing is a pure function of the flow
// position: same inputs, same destination, every time.
package flow

import (
	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/faults"
)

// Step is one position in a flow: a path and the component active on it.
type Step struct {
	Path      string `json:"path" yaml:"path"`
	Component string `json:"component" yaml:"component"`
}

// Zero reports whether the step is unset.
func (s Step) Zero() bool {
	return s.Path == "" && s.Component == ""
}

// Rule describes where a step leads. Exactly one of To or When is set: To is
// an unconditional destination, When branches on the component_result tag.
type Rule struct {
	To   *Step           `yaml:"to,omitempty"`
	When map[string]Step `yaml:"when,omitempty"`
}

// Table is the static transition table keyed by the current step.
type Table map[Step]Rule

// Next computes the step that follows the given flow position.
//
//   - awaiting_input=true freezes the position: the current step is returned
//     unchanged regardless of component_result;
//   - a step with no table entry is terminal (ok=false), which is a natural
//     flow end, not an error;
//   - a conditional entry whose branches don't match the recorded tag is a
//     routing error; the router never guesses a default destination.
func (t Table) Next(f domain.Flow) (Step, bool, error) {
	current := Step{Path: f.Path, Component: f.Component}

	if f.AwaitingInput {
		return current, true, nil
	}

	rule, ok := t[current]
	if !ok {
		return Step{}, false, nil
	}

	if rule.To != nil {
		return *rule.To, true, nil
	}

	if dest, ok := rule.When[f.ComponentResult]; ok {
		return dest, true, nil
	}

	return Step{}, false, &faults.FlowError{
		Path:      f.Path,
		Component: f.Component,
		Op:        "route",
		Detail:    "no branch for result " + quoteTag(f.ComponentResult),
	}
}

func quoteTag(tag string) string {
	if tag == "" {
		return "(none)"
	}
	return "\"" + tag + "\""
}
