package service

import (
	"log/slog"

	registrymetrics "soulbound/internal/registry/metrics"
)

// serviceConfig holds optional dependencies for the registry service.
type serviceConfig struct {
	logger    *slog.Logger
	publisher EventPublisher
	metrics   *registrymetrics.Metrics
	tx        StoreTx
}

// Option configures a service.
type Option func(c *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithEventPublisher(publisher EventPublisher) Option {
	return func(c *serviceConfig) {
		c.publisher = publisher
	}
}

func WithMetrics(m *registrymetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

func WithStoreTx(tx StoreTx) Option {
	return func(c *serviceConfig) {
		c.tx = tx
	}
}
