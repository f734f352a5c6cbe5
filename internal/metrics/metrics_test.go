package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/konvo/konvo/internal/runtime"
	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/faults"
	"github.com/konvo/konvo/pkg/flow"
)

func TestHooks_FeedCollectors(t *testing.T) {
	m := New(prometheus.NewRegistry())
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnMessage(ctx, &runtime.MessageEvent{
		Channel: domain.Channel{Type: "whatsapp", Identifier: "+1"},
	})
	hooks.OnMessage(ctx, &runtime.MessageEvent{
		Channel: domain.Channel{Type: "whatsapp", Identifier: "+1"},
	})

	hooks.OnComponentRun(ctx, &runtime.ComponentEvent{Component: "amount_input", Valid: false})
	hooks.OnComponentRun(ctx, &runtime.ComponentEvent{Component: "amount_input", Valid: true})

	hooks.OnTransition(ctx, &runtime.TransitionEvent{
		To: flow.Step{Path: "transfer", Component: "amount_input"},
	})

	hooks.OnFault(ctx, &runtime.FaultEvent{Kind: faults.KindComponent})

	hooks.OnAction(ctx, &domain.Action{
		ID:   "a-1",
		Type: domain.ActionConfirm,
		At:   time.Now(),
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Messages))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ComponentRuns.WithLabelValues("amount_input", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ComponentRuns.WithLabelValues("amount_input", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("transfer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Faults.WithLabelValues("component")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Actions.WithLabelValues(domain.ActionConfirm)))
}

func TestNew_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	// Registering a second instance with the same names must collide.
	assert.Panics(t, func() { New(reg) })
}
