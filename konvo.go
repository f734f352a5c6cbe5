package konvo

import (
	"context"

	"log/slog"

	"github.com/konvo/konvo/internal/runtime"
	"github.com/konvo/konvo/pkg/component"
	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/flow"
	"github.com/konvo/konvo/pkg/ports"
	"github.com/konvo/konvo/pkg/session"
	"github.com/konvo/konvo/pkg/state"
)

// Version is the library version.
var Version = "0.2.0"

// Engine is the high-level entry point. It wraps the internal runtime and
// wires the session manager, state manager, component registry and flow
// router together.
type Engine struct {
	runtime  *runtime.Engine
	sessions *session.Manager
}

// Option defines a functional option for configuring the Engine.
type Option func(*builder)

type builder struct {
	locker      ports.Locker
	logger      *slog.Logger
	hooks       runtime.Hooks
	maxAttempts int
	cancelWord  string
	maxHistory  int
}

// WithLocker enables distributed locking for multi-replica deployments.
func WithLocker(l ports.Locker) Option {
	return func(b *builder) { b.locker = l }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) { b.logger = logger }
}

// WithHooks registers lifecycle hooks for observability.
func WithHooks(h runtime.Hooks) Option {
	return func(b *builder) { b.hooks = h }
}

// WithMaxAttempts sets the failed-validation lockout threshold per step.
func WithMaxAttempts(n int) Option {
	return func(b *builder) { b.maxAttempts = n }
}

// WithCancelWord overrides the forced flow-reset command (default "cancel").
func WithCancelWord(w string) Option {
	return func(b *builder) { b.cancelWord = w }
}

// WithMaxHistory bounds the per-session validation history.
func WithMaxHistory(n int) Option {
	return func(b *builder) { b.maxHistory = n }
}

// New assembles an engine over a session store, a populated component
// registry and a flow definition. The definition is validated against the
// registry here, so unknown component identifiers fail at startup.
func New(store ports.SessionStore, registry *component.Registry, def *flow.Definition, opts ...Option) (*Engine, error) {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}

	var sessionOpts []session.Option
	if b.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(b.locker))
	}
	if b.logger != nil {
		sessionOpts = append(sessionOpts, session.WithLogger(b.logger))
	}
	sessions := session.NewManager(store, sessionOpts...)

	var stateOpts []state.Option
	if b.maxHistory > 0 {
		stateOpts = append(stateOpts, state.WithMaxHistory(b.maxHistory))
	}
	states := state.NewManager(stateOpts...)

	var rtOpts []runtime.Option
	rtOpts = append(rtOpts, runtime.WithHooks(b.hooks))
	if b.logger != nil {
		rtOpts = append(rtOpts, runtime.WithLogger(b.logger))
	}
	if b.maxAttempts > 0 {
		rtOpts = append(rtOpts, runtime.WithMaxAttempts(b.maxAttempts))
	}
	if b.cancelWord != "" {
		rtOpts = append(rtOpts, runtime.WithCancelWord(b.cancelWord))
	}

	rt, err := runtime.New(sessions, states, registry, def, rtOpts...)
	if err != nil {
		return nil, err
	}

	return &Engine{runtime: rt, sessions: sessions}, nil
}

// HandleMessage processes one inbound message and returns the outbound
// payloads for the messaging collaborator.
func (e *Engine) HandleMessage(ctx context.Context, ch domain.Channel, text string) ([]domain.OutboundMessage, error) {
	return e.runtime.HandleMessage(ctx, ch, text)
}

// Sessions exposes the session manager for operator tooling.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}
