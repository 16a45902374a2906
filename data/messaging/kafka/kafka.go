package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ncobase/recruit/data/config"
	"github.com/ncobase/recruit/data/metrics"
	"github.com/segmentio/kafka-go"
)

// Kafka publishes messages to a single topic.
type Kafka struct {
	writer    *kafka.Writer
	topic     string
	timeout   time.Duration
	collector metrics.Collector
	mu        sync.Mutex
	closed    bool
}

// New creates a publisher for the configured brokers and topic.
func New(cfg *config.Kafka, collector metrics.Collector) (*Kafka, error) {
	if cfg == nil || len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: timeout,
			Transport:    &kafka.Transport{ClientID: cfg.ClientID},
		},
		topic:     cfg.Topic,
		timeout:   timeout,
		collector: collector,
	}, nil
}

// Topic returns the topic messages are written to.
func (s *Kafka) Topic() string {
	return s.topic
}

// PublishMessage writes one message. Messages sharing a key land on the same
// partition, so events for one aggregate keep their order.
func (s *Kafka) PublishMessage(ctx context.Context, key, value []byte) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return errors.New("kafka: publisher is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now().UTC(),
	})
	s.collector.MQPublish("kafka", err)
	if err != nil {
		return fmt.Errorf("kafka: write to %s: %w", s.topic, err)
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (s *Kafka) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.writer.Close()
}
