// Package observability wires playback lifecycle events to Prometheus.
// Metrics are recorded from hooks fired after each transition decision,
// never on the resolution path itself.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

// Metrics holds the playback collectors.
type Metrics struct {
	StepVisits      *prometheus.CounterVec
	Resolutions     *prometheus.CounterVec
	SessionsStarted prometheus.Counter
	SessionsEnded   prometheus.Counter
}

// NewMetrics creates and registers the collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinoflow_step_visits_total",
				Help: "Total number of step visits",
			},
			[]string{"node_id"},
		),
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinoflow_resolutions_total",
				Help: "Rule resolutions by outcome kind and fallback flag",
			},
			[]string{"outcome", "fallback"},
		),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kinoflow_sessions_started_total",
			Help: "Total visitor sessions started",
		}),
		SessionsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kinoflow_sessions_ended_total",
			Help: "Total visitor sessions ended",
		}),
	}
	reg.MustRegister(m.StepVisits, m.Resolutions, m.SessionsStarted, m.SessionsEnded)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			m.StepVisits.WithLabelValues(e.NodeID).Inc()
		},
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) {
			fallback := "false"
			if e.Fallback {
				fallback = "true"
			}
			m.Resolutions.WithLabelValues(string(e.Outcome), fallback).Inc()
		},
		OnSessionEnd: func(ctx context.Context, sessionID string) {
			m.SessionsEnded.Inc()
		},
	}
}
