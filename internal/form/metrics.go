package form

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var submissions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "instancectl_form_submissions_total",
		Help: "Form submissions by result.",
	},
	[]string{"result"},
)

func submissionResult(err error) string {
	switch {
	case err == nil:
		return "deployed"
	case errors.Is(err, ErrParse):
		return "parse_error"
	default:
		return "missing_api_version"
	}
}
