package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

// Metrics holds the Prometheus collectors shared by the registries.
type Metrics struct {
	Operations *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Operations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "kaleconnect_registry_operations_total",
			Help: "Registry operations by registry, operation and result",
		}, []string{"registry", "operation", "result"}),
	}
}

// Observe counts one operation outcome. Safe on a nil receiver.
func (m *Metrics) Observe(registry, operation string, err error) {
	if m == nil {
		return
	}
	result := resultOK
	if err != nil {
		result = resultError
	}
	m.Operations.WithLabelValues(registry, operation, result).Inc()
}
