// Package metrics exposes prometheus collectors bound to the engine's
// lifecycle hooks.
package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/konvo/konvo/internal/runtime"
	"github.com/konvo/konvo/pkg/domain"
)

// Metrics holds the engine collectors.
type Metrics struct {
	Messages      prometheus.Counter
	ComponentRuns *prometheus.CounterVec
	Transitions   *prometheus.CounterVec
	Faults        *prometheus.CounterVec
	Actions       *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "konvo_messages_total",
			Help: "Inbound messages processed",
		}),
		ComponentRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konvo_component_runs_total",
			Help: "Component executions by component name and validity",
		}, []string{"component", "valid"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konvo_transitions_total",
			Help: "Flow transitions by destination path",
		}, []string{"path"}),
		Faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konvo_faults_total",
			Help: "Faults by taxonomy kind",
		}, []string{"kind"}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konvo_actions_total",
			Help: "Audit actions recorded by type",
		}, []string{"type"}),
	}
	reg.MustRegister(m.Messages, m.ComponentRuns, m.Transitions, m.Faults, m.Actions)
	return m
}

// Hooks returns engine hooks that feed these collectors.
func (m *Metrics) Hooks() runtime.Hooks {
	return runtime.Hooks{
		OnMessage: func(_ context.Context, _ *runtime.MessageEvent) {
			m.Messages.Inc()
		},
		OnComponentRun: func(_ context.Context, e *runtime.ComponentEvent) {
			m.ComponentRuns.WithLabelValues(e.Component, strconv.FormatBool(e.Valid)).Inc()
		},
		OnTransition: func(_ context.Context, e *runtime.TransitionEvent) {
			m.Transitions.WithLabelValues(e.To.Path).Inc()
		},
		OnFault: func(_ context.Context, e *runtime.FaultEvent) {
			m.Faults.WithLabelValues(string(e.Kind)).Inc()
		},
		OnAction: func(_ context.Context, a *domain.Action) {
			m.Actions.WithLabelValues(a.Type).Inc()
		},
	}
}
