package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CredentialsIssued  *prometheus.CounterVec
	CredentialsRevoked prometheus.Counter
	TransfersRejected  prometheus.Counter
	VerifyDuration     prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		CredentialsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_credentials_issued_total",
			Help: "Total number of credentials issued",
		}, []string{"variant"}),
		CredentialsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_credentials_revoked_total",
			Help: "Total number of credentials revoked",
		}),
		TransfersRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_transfers_rejected_total",
			Help: "Total number of rejected transfer or approval attempts",
		}),
		VerifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "soulbound_verify_duration_seconds",
			Help:    "Duration of credential verification reads",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementIssued(variant string) {
	m.CredentialsIssued.WithLabelValues(variant).Inc()
}

func (m *Metrics) IncrementRevoked() {
	m.CredentialsRevoked.Inc()
}

func (m *Metrics) IncrementTransferRejected() {
	m.TransfersRejected.Inc()
}

func (m *Metrics) ObserveVerify(start time.Time) {
	m.VerifyDuration.Observe(time.Since(start).Seconds())
}
