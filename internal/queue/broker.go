package queue

import (
	"context"
	"strings"

	"github.com/iliyamo/dantour/internal/config"
)

// Broker names accepted in EVENTS_BROKER.
const (
	BrokerRabbitMQ = "rabbitmq"
	BrokerKafka    = "kafka"
	BrokerNone     = "none"
)

// Consumer runs until its context is canceled.
type Consumer interface {
	Run(ctx context.Context) error
}

// NewPublisher returns the publisher for the configured broker.  Unknown
// names and "none" drop events.
func NewPublisher(cfg config.EventsConfig) Publisher {
	switch strings.ToLower(strings.TrimSpace(cfg.Broker)) {
	case BrokerRabbitMQ:
		return NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	case BrokerKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	return NoopPublisher{}
}

// NewConsumer returns the audit-log consumer for the configured broker,
// or nil when consuming is disabled or the broker has none.
func NewConsumer(cfg config.EventsConfig, audit *AuditLog) Consumer {
	if !cfg.ConsumerEnabled {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Broker)) {
	case BrokerRabbitMQ:
		return &RabbitConsumer{URL: cfg.RabbitURL, Queue: cfg.RabbitQueue, Audit: audit}
	case BrokerKafka:
		return NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, audit)
	}
	return nil
}
