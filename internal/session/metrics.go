package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "instancectl_authentication_attempts_total",
			Help: "Authentication attempts by identity mode and result.",
		},
		[]string{"mode", "result"},
	)

	sessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "instancectl_sessions_expired_total",
			Help: "Sessions that were expired by the watcher or an unauthorized response.",
		},
	)
)

func modeLabel(oidc bool) string {
	if oidc {
		return "oidc"
	}
	return "token"
}
