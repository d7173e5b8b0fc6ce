package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AccessGranted    prometheus.Counter
	AccessRevoked    prometheus.Counter
	PrivateDataReads *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		AccessGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_access_grants_total",
			Help: "Total number of private data access grants",
		}),
		AccessRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_access_revocations_total",
			Help: "Total number of private data access revocations",
		}),
		PrivateDataReads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_private_data_reads_total",
			Help: "Private data reads partitioned by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementGranted() {
	m.AccessGranted.Inc()
}

func (m *Metrics) IncrementRevoked() {
	m.AccessRevoked.Inc()
}

func (m *Metrics) IncrementRead(outcome string) {
	m.PrivateDataReads.WithLabelValues(outcome).Inc()
}
