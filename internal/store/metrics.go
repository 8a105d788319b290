package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "instancectl_actions_dispatched_total",
			Help: "Actions dispatched into the application store, by type.",
		},
		[]string{"type"},
	)

	changesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "instancectl_state_changes_dropped_total",
			Help: "State changes dropped because a subscriber was not keeping up.",
		},
	)
)
