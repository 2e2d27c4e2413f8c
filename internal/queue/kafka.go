package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// HeaderCarrier adapts Kafka message headers for trace propagation.
type HeaderCarrier []kafka.Header

func (c *HeaderCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *HeaderCarrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *HeaderCarrier) Keys() []string {
	out := make([]string, 0, len(*c))
	for _, h := range *c {
		out = append(out, h.Key)
	}
	return out
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by booking id, so every event of a
// booking lands on the same partition in order.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	})
}

func NewKafkaPublisherWithWriter(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	headers := HeaderCarrier{{Key: "type", Value: []byte(ev.Type)}}
	otel.GetTextMapPropagator().Inject(ctx, &headers)
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(ev.BookingID),
		Value:   body,
		Headers: headers,
	})
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer feeds the audit log from the event topic.
type KafkaConsumer struct {
	reader MessageReader
	audit  *AuditLog
}

func NewKafkaConsumer(brokers []string, topic, groupID string, audit *AuditLog) *KafkaConsumer {
	return NewKafkaConsumerWithReader(kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	}), audit)
}

func NewKafkaConsumerWithReader(r MessageReader, audit *AuditLog) *KafkaConsumer {
	return &KafkaConsumer{reader: r, audit: audit}
}

// Run fetches and commits messages until ctx is done.  A message that
// cannot be handled is logged and committed so it never blocks the
// partition.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	defer func() { _ = c.reader.Close() }()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			zlog.Warn().Err(err).Msg("booking-consumer: fetch failed; retrying")
			if !sleepCtx(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}
		if err := c.audit.HandleMessage(msg.Value); err != nil {
			zlog.Error().Err(err).Int64("offset", msg.Offset).Msg("booking-consumer: handle message failed")
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			zlog.Error().Err(err).Msg("booking-consumer: commit failed")
		}
	}
}
