package console

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"smartdeals/internal/domain/entity"
	"smartdeals/internal/state"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

// Metrics counts operator actions and failed resource syncs.
type Metrics struct {
	actions      *prometheus.CounterVec
	syncFailures *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartdeals",
			Subsystem: "console",
			Name:      "actions_total",
			Help:      "Operator actions by action and result.",
		}, []string{"action", "result"}),
		syncFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartdeals",
			Subsystem: "console",
			Name:      "sync_failures_total",
			Help:      "Failed resource loads by resource.",
		}, []string{"resource"}),
	}
}

func (m *Metrics) observe(o entity.Outcome) {
	if m == nil {
		return
	}

	result := resultOK
	if !o.OK() {
		result = resultError
	}

	m.actions.WithLabelValues(o.Action.String(), result).Inc()
}

func (m *Metrics) syncFailed(res state.Resource) {
	if m == nil {
		return
	}

	m.syncFailures.WithLabelValues(res.String()).Inc()
}
