package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Interactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "culturemap_interactions_total",
		Help: "Ledger writes by interaction kind and outcome.",
	}, []string{"kind", "outcome"})

	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "culturemap_auth_failures_total",
		Help: "Rejected claim tokens by reason.",
	}, []string{"reason"})

	ModerationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "culturemap_moderation_transitions_total",
		Help: "Moderation state changes by content kind and target state.",
	}, []string{"kind", "to"})

	UpstreamDegraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "culturemap_upstream_degraded_total",
		Help: "Gateway calls answered with a default value because the upstream failed.",
	}, []string{"upstream"})
)
