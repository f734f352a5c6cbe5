// Package runtime drives one inbound message through the session state
// machine: feed the text to the awaiting component, merge its verified data,
// then consult the router and advance step by step until something awaits
// input again or the flow reaches a terminal step.
//
// All session access happens inside the session manager's per-key
// read-modify-write cycle; the engine holds no state of its own between
// messages.
package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/konvo/konvo/internal/logging"
	"github.com/konvo/konvo/pkg/component"
	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/faults"
	"github.com/konvo/konvo/pkg/flow"
	"github.com/konvo/konvo/pkg/session"
	"github.com/konvo/konvo/pkg/state"
)

// maxAdvance bounds how many steps a single message may advance, guarding
// against transition cycles that never await input.
const maxAdvance = 16

// Default user-facing copy. Business templates live with the messaging
// collaborator; these are last-resort strings.
const (
	defaultCancelMessage  = "Okay, I've cancelled that. Send anything to start over."
	defaultRestartMessage = "Something went wrong, please start over."
	defaultFailureMessage = "We couldn't complete that right now. Please try again in a moment."
)

// Engine processes inbound messages against the flow definition.
type Engine struct {
	sessions *session.Manager
	states   *state.Manager
	registry *component.Registry
	def      *flow.Definition

	hooks       Hooks
	logger      *slog.Logger
	now         func() time.Time
	maxAttempts int
	cancelWord  string

	cancelMessage  string
	restartMessage string
	failureMessage string
}

// Option configures the Engine.
type Option func(*Engine)

// WithHooks registers observability hooks.
func WithHooks(h Hooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMaxAttempts sets how many failed validations lock a step and force a
// flow restart.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithCancelWord overrides the text that triggers a forced flow reset.
func WithCancelWord(w string) Option {
	return func(e *Engine) { e.cancelWord = strings.ToLower(w) }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine. The flow definition must already be validated
// against the registry; New refuses one that is not.
func New(sessions *session.Manager, states *state.Manager, registry *component.Registry, def *flow.Definition, opts ...Option) (*Engine, error) {
	if err := def.Validate(registry); err != nil {
		return nil, fmt.Errorf("invalid flow definition: %w", err)
	}

	e := &Engine{
		sessions:       sessions,
		states:         states,
		registry:       registry,
		def:            def,
		logger:         logging.NewNop(),
		now:            time.Now,
		maxAttempts:    3,
		cancelWord:     "cancel",
		cancelMessage:  defaultCancelMessage,
		restartMessage: defaultRestartMessage,
		failureMessage: defaultFailureMessage,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// HandleMessage processes one inbound message for a channel and returns the
// outbound payloads to hand to the messaging collaborator. Processing for
// the same channel key is serialized; the session is re-read from the store
// at the top of every message.
func (e *Engine) HandleMessage(ctx context.Context, ch domain.Channel, text string) ([]domain.OutboundMessage, error) {
	var out []domain.OutboundMessage
	say := func(content string) {
		out = append(out, domain.OutboundMessage{Content: content})
	}

	e.emitMessage(ctx, ch)

	err := e.sessions.Update(ctx, ch, func(ctx context.Context, s *domain.Session) (*domain.Session, error) {
		key := ch.Key()

		if strings.ToLower(strings.TrimSpace(text)) == e.cancelWord {
			s.ResetFlow()
			say(e.cancelMessage)
			return s, nil
		}

		runCurrent := true

		switch {
		case !s.Flow.Active():
			// First contact (or a naturally ended flow): enter the entry step.
			next, err := e.transition(ctx, key, s, e.def.Entry)
			if err != nil {
				say(e.restartMessage)
				return s, nil
			}
			s = next

		case s.Flow.AwaitingInput:
			next, done, err := e.consumeInput(ctx, key, s, text, say)
			if err != nil {
				return nil, err
			}
			s = next
			if done {
				return s, nil
			}
			// Input accepted: route away from the step, don't re-run it.
			runCurrent = false
		}

		return e.advance(ctx, key, s, runCurrent, say)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// consumeInput feeds the message text to the awaiting component. done=true
// means processing stops here (rejection, lockout); done=false means the
// input was accepted and routing should continue.
func (e *Engine) consumeInput(ctx context.Context, key string, s *domain.Session, text string, say func(string)) (*domain.Session, bool, error) {
	comp, err := e.registry.Resolve(s.Flow.Component)
	if err != nil {
		e.emitFault(ctx, key, &faults.FlowError{
			Path:      s.Flow.Path,
			Component: s.Flow.Component,
			Op:        "resolve",
			Detail:    err.Error(),
		})
		say(e.restartMessage)
		s.ResetFlow()
		return s, true, nil
	}

	op := comp.Name()

	var res component.Result
	var produces string
	var confirm *component.Confirm

	switch c := comp.(type) {
	case *component.Input:
		res = c.Validate(text)
		produces = c.Produces()
	case *component.Confirm:
		res = c.Validate(text)
		confirm = c
	default:
		// A display or api-call step can't be awaiting input; the document
		// is inconsistent.
		e.emitFault(ctx, key, &faults.FlowError{
			Path:      s.Flow.Path,
			Component: s.Flow.Component,
			Op:        "input",
			Detail:    fmt.Sprintf("component kind %s cannot await input", comp.Kind()),
		})
		say(e.restartMessage)
		s.ResetFlow()
		return s, true, nil
	}

	e.emitComponent(ctx, key, s, string(comp.Kind()), res.Tag, res.Valid)

	if !res.Valid {
		e.states.Record(s, op, false, res.Err.Error())
		e.emitFault(ctx, key, res.Err)

		if state.Attempts(s, op) >= e.maxAttempts {
			e.emitFault(ctx, key, &faults.FlowError{
				Path:      s.Flow.Path,
				Component: s.Flow.Component,
				Op:        "lockout",
				Detail:    fmt.Sprintf("step locked after %d failed attempts", e.maxAttempts),
			})
			say(e.restartMessage)
			s.ResetFlow()
			return s, true, nil
		}

		// Re-prompt the same step with the error attached; never advance
		// past a failed validation.
		say(res.Err.Message)
		return s, true, nil
	}

	newFlow := s.Flow
	newFlow.AwaitingInput = false
	newFlow.ComponentResult = res.Tag

	patch := state.Patch{Flow: &newFlow}
	if produces != "" {
		patch.FlowData = map[string]any{produces: res.Value}
	}

	next, err := e.states.Write(s, op, patch)
	if err != nil {
		e.emitFault(ctx, key, err)
		say(e.restartMessage)
		s.ResetFlow()
		return s, true, nil
	}
	state.ClearAttempts(next, op)

	if confirm != nil {
		if accepted, _ := res.Value.(bool); accepted {
			e.emitAction(ctx, confirm.Action(next, e.now()))
		}
	}

	return next, false, nil
}

// advance runs the step loop: execute the current component (unless the
// caller already did), then route, until a step awaits input or the flow
// ends.
func (e *Engine) advance(ctx context.Context, key string, s *domain.Session, runCurrent bool, say func(string)) (*domain.Session, error) {
	for i := 0; i < maxAdvance; i++ {
		if runCurrent {
			next, done, err := e.runStep(ctx, key, s, say)
			if err != nil {
				return nil, err
			}
			s = next
			if done {
				return s, nil
			}
		}
		runCurrent = true

		from := flow.Step{Path: s.Flow.Path, Component: s.Flow.Component}
		dest, ok, err := e.def.Table.Next(s.Flow)
		if err != nil {
			e.emitFault(ctx, key, err)
			say(e.restartMessage)
			s.ResetFlow()
			return s, nil
		}
		if !ok {
			// Terminal step: the flow ends naturally.
			s.ResetFlow()
			return s, nil
		}
		if dest == from {
			return s, nil
		}

		next, err := e.transition(ctx, key, s, dest)
		if err != nil {
			say(e.restartMessage)
			return s, nil
		}
		s = next
	}

	err := &faults.FlowError{
		Path:      s.Flow.Path,
		Component: s.Flow.Component,
		Op:        "advance",
		Detail:    fmt.Sprintf("no awaiting step after %d transitions (cycle?)", maxAdvance),
	}
	e.emitFault(ctx, key, err)
	say(e.restartMessage)
	s.ResetFlow()
	return s, nil
}

// runStep executes the active component. done=true stops processing for
// this message (prompt sent, failure, or state persisted as-is).
func (e *Engine) runStep(ctx context.Context, key string, s *domain.Session, say func(string)) (*domain.Session, bool, error) {
	comp, err := e.registry.Resolve(s.Flow.Component)
	if err != nil {
		e.emitFault(ctx, key, &faults.FlowError{
			Path:      s.Flow.Path,
			Component: s.Flow.Component,
			Op:        "resolve",
			Detail:    err.Error(),
		})
		say(e.restartMessage)
		s.ResetFlow()
		return s, true, nil
	}

	switch c := comp.(type) {
	case *component.Display:
		content, err := c.Render(s)
		if err != nil {
			return nil, false, faults.System("component", c.Name(), "render", err)
		}
		say(content)

		newFlow := s.Flow
		newFlow.ComponentResult = c.Tag()
		next, werr := e.states.Write(s, c.Name(), state.Patch{Flow: &newFlow})
		if werr != nil {
			e.emitFault(ctx, key, werr)
			say(e.restartMessage)
			s.ResetFlow()
			return s, true, nil
		}
		e.emitComponent(ctx, key, next, string(c.Kind()), c.Tag(), true)
		return next, false, nil

	case *component.Input:
		return e.promptAndAwait(ctx, key, s, c.Name(), c.Prompt, say)

	case *component.Confirm:
		return e.promptAndAwait(ctx, key, s, c.Name(), c.Prompt, say)

	case *component.APICall:
		return e.runAPICall(ctx, key, s, c, say)
	}

	e.emitFault(ctx, key, &faults.FlowError{
		Path:      s.Flow.Path,
		Component: s.Flow.Component,
		Op:        "run",
		Detail:    fmt.Sprintf("unknown component kind %T", comp),
	})
	say(e.restartMessage)
	s.ResetFlow()
	return s, true, nil
}

// promptAndAwait sends the step's question and freezes the flow until the
// user's next message.
func (e *Engine) promptAndAwait(ctx context.Context, key string, s *domain.Session, op string, prompt component.RenderFunc, say func(string)) (*domain.Session, bool, error) {
	content, err := prompt(s)
	if err != nil {
		return nil, false, faults.System("component", op, "render", err)
	}
	say(content)

	newFlow := s.Flow
	newFlow.AwaitingInput = true
	newFlow.ComponentResult = ""
	next, werr := e.states.Write(s, op, state.Patch{Flow: &newFlow})
	if werr != nil {
		e.emitFault(ctx, key, werr)
		say(e.restartMessage)
		s.ResetFlow()
		return s, true, nil
	}
	return next, true, nil
}

// runAPICall executes a remote call step. On success its verified data is
// merged and the consumed flow.data keys are cleared in the same write; on
// any failure the document is untouched except for the attempt record, so
// the user's input is not lost and the next message retries the call.
func (e *Engine) runAPICall(ctx context.Context, key string, s *domain.Session, c *component.APICall, say func(string)) (*domain.Session, bool, error) {
	op := c.Name()

	res, err := c.Execute(ctx, s)
	if err != nil {
		// Infrastructure failure: generic user copy, full detail for
		// operators in the validation history.
		e.states.Record(s, op, false, err.Error())
		e.emitFault(ctx, key, err)
		say(e.failureMessage)
		return s, true, nil
	}

	e.emitComponent(ctx, key, s, string(c.Kind()), res.Tag, res.Valid)

	if !res.Valid {
		e.states.Record(s, op, false, res.Err.Error())
		e.emitFault(ctx, key, res.Err)

		if state.Attempts(s, op) >= e.maxAttempts {
			say(e.restartMessage)
			s.ResetFlow()
			return s, true, nil
		}
		say(res.Err.Message)
		return s, true, nil
	}

	outcome, ok := res.Value.(*component.Outcome)
	if !ok {
		return nil, false, faults.System("component", op, "outcome", fmt.Errorf("api call returned %T, want *component.Outcome", res.Value))
	}

	newFlow := s.Flow
	newFlow.ComponentResult = res.Tag

	patch := state.Patch{
		Flow:      &newFlow,
		FlowData:  outcome.Data,
		ClearData: c.Consumes(),
	}
	if outcome.Snapshot != nil {
		patch.Dashboard = outcome.Snapshot
	}
	if outcome.Token != "" {
		patch.Auth = &domain.Auth{Token: outcome.Token}
	}

	next, werr := e.states.Write(s, op, patch)
	if werr != nil {
		e.emitFault(ctx, key, werr)
		say(e.restartMessage)
		s.ResetFlow()
		return s, true, nil
	}
	state.ClearAttempts(next, op)
	e.emitAction(ctx, outcome.Action)

	return next, false, nil
}

// transition moves the flow to a new step, clearing the result tag.
func (e *Engine) transition(ctx context.Context, key string, s *domain.Session, dest flow.Step) (*domain.Session, error) {
	from := flow.Step{Path: s.Flow.Path, Component: s.Flow.Component}

	newFlow := s.Flow
	newFlow.Path = dest.Path
	newFlow.Component = dest.Component
	newFlow.AwaitingInput = false
	newFlow.ComponentResult = ""

	next, err := e.states.Write(s, "flow.transition", state.Patch{Flow: &newFlow})
	if err != nil {
		e.emitFault(ctx, key, err)
		return nil, err
	}
	e.emitTransition(ctx, key, from, dest)
	return next, nil
}
