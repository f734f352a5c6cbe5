package runtime

import (
	"context"
	"time"

	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/faults"
	"github.com/konvo/konvo/pkg/flow"
)

// MessageEvent reports one inbound message accepted for processing.
type MessageEvent struct {
	At         time.Time
	SessionKey string
	Channel    domain.Channel
}

// ComponentEvent reports one component run.
type ComponentEvent struct {
	At         time.Time
	SessionKey string
	Path       string
	Component  string
	Kind       string
	Tag        string
	Valid      bool
}

// TransitionEvent reports a routing advance.
type TransitionEvent struct {
	At         time.Time
	SessionKey string
	From       flow.Step
	To         flow.Step
}

// FaultEvent reports an error classified by the taxonomy.
type FaultEvent struct {
	At         time.Time
	SessionKey string
	Kind       faults.Kind
	Err        error
}

// Hooks are observability callbacks fired by the engine. All fields are
// optional; hook code must not mutate session state.
type Hooks struct {
	OnMessage      func(context.Context, *MessageEvent)
	OnComponentRun func(context.Context, *ComponentEvent)
	OnTransition   func(context.Context, *TransitionEvent)
	OnAction       func(context.Context, *domain.Action)
	OnFault        func(context.Context, *FaultEvent)
}

func (e *Engine) emitMessage(ctx context.Context, ch domain.Channel) {
	if e.hooks.OnMessage == nil {
		return
	}
	e.hooks.OnMessage(ctx, &MessageEvent{
		At:         e.now(),
		SessionKey: ch.Key(),
		Channel:    ch,
	})
}

func (e *Engine) emitComponent(ctx context.Context, key string, s *domain.Session, kind, tag string, valid bool) {
	if e.hooks.OnComponentRun == nil {
		return
	}
	e.hooks.OnComponentRun(ctx, &ComponentEvent{
		At:         e.now(),
		SessionKey: key,
		Path:       s.Flow.Path,
		Component:  s.Flow.Component,
		Kind:       kind,
		Tag:        tag,
		Valid:      valid,
	})
}

func (e *Engine) emitTransition(ctx context.Context, key string, from, to flow.Step) {
	if e.hooks.OnTransition == nil {
		return
	}
	e.hooks.OnTransition(ctx, &TransitionEvent{
		At:         e.now(),
		SessionKey: key,
		From:       from,
		To:         to,
	})
}

func (e *Engine) emitAction(ctx context.Context, action *domain.Action) {
	if action == nil {
		return
	}
	e.logger.Info("action recorded",
		"action_id", action.ID,
		"action_type", action.Type,
		"actor", action.Actor,
	)
	if e.hooks.OnAction != nil {
		e.hooks.OnAction(ctx, action)
	}
}

func (e *Engine) emitFault(ctx context.Context, key string, err error) {
	kind := faults.KindOf(err)
	e.logger.Warn("fault", "session_key", key, "kind", string(kind), "err", err)
	if e.hooks.OnFault != nil {
		e.hooks.OnFault(ctx, &FaultEvent{
			At:         e.now(),
			SessionKey: key,
			Kind:       kind,
			Err:        err,
		})
	}
}
