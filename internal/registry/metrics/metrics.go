package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	InstitutionsAuthorized prometheus.Counter
	InstitutionsRevoked    prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		InstitutionsAuthorized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_institutions_authorized_total",
			Help: "Total number of institution authorizations (including idempotent re-authorizations)",
		}),
		InstitutionsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_institutions_revoked_total",
			Help: "Total number of institution authorization revocations",
		}),
	}
}

func (m *Metrics) IncrementAuthorized() {
	m.InstitutionsAuthorized.Inc()
}

func (m *Metrics) IncrementRevoked() {
	m.InstitutionsRevoked.Inc()
}
