package service

import (
	"log/slog"

	"soulbound/internal/access/metrics"
)

// Option configures the access service.
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
