// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks open websocket connections per role.
	ActiveConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "livequiz",
		Name:      "ws_connections_active",
		Help:      "Open websocket connections.",
	}, []string{"role"})

	// AnswersSubmitted counts accepted answer submissions.
	AnswersSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "livequiz",
		Name:      "answers_submitted_total",
		Help:      "Accepted answer submissions.",
	})

	// TransitionsApplied counts applied host progression actions.
	TransitionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livequiz",
		Name:      "control_transitions_total",
		Help:      "Applied host progression actions.",
	}, []string{"action"})
)
