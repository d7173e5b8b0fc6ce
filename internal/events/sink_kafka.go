package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaConfig holds kafka sink configuration.
type KafkaConfig struct {
	Brokers         string
	Topic           string
	DeliveryTimeout time.Duration
}

// KafkaSink publishes events to a kafka topic, keyed by credential id (or
// institution for registry events) so per-resource ordering is preserved
// across partitions.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink creates a kafka-backed event sink.
// Returns nil if no brokers are configured.
func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if cfg.Brokers == "" {
		return nil, nil
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(strings.Split(cfg.Brokers, ",")...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5 * time.Millisecond),
		kgo.AllowAutoTopicCreation(),
	}
	if cfg.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka event sink: %w", err)
	}
	return &KafkaSink{client: client, topic: cfg.Topic}, nil
}

// Publish delivers one event synchronously.
func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(partitionKey(event)),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce event: %w", err)
	}
	return nil
}

// Healthy checks broker connectivity for readiness probes.
func (s *KafkaSink) Healthy(ctx context.Context) bool {
	return s.client.Ping(ctx) == nil
}

// Close flushes buffered records and shuts down the client.
func (s *KafkaSink) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = s.client.Flush(ctx)
	s.client.Close()
}

func partitionKey(event Event) string {
	if event.Credential != nil {
		return event.Credential.String()
	}
	return event.Institution.String()
}
