package service

import (
	"log/slog"

	"soulbound/internal/credential/metrics"
	"soulbound/internal/credential/tracer"
)

// Option configures the credential service.
type Option func(*Service)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.emitter.logger = logger
	}
}

// WithEventPublisher sets the publisher that lifecycle events are forwarded
// to after being logged.
func WithEventPublisher(publisher EventPublisher) Option {
	return func(s *Service) {
		s.emitter.publisher = publisher
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer for issuance and verification paths.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithAccessGranter sets the collaborator that receives the issuer's
// automatic private-data grant during hybrid issuance.
func WithAccessGranter(granter AccessGranter) Option {
	return func(s *Service) {
		s.access = granter
	}
}
