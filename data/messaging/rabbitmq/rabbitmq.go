package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ncobase/recruit/data/config"
	"github.com/ncobase/recruit/data/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQ publishes messages to a durable topic exchange.
type RabbitMQ struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	exchange  string
	collector metrics.Collector
	mu        sync.Mutex // amqp channels are not safe for concurrent publishing
}

// New dials the broker, declares the exchange and puts the channel in
// confirm mode.
func New(cfg *config.RabbitMQ, collector metrics.Collector) (*RabbitMQ, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("rabbitmq: url is not configured")
	}
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}

	amqpCfg := amqp.Config{
		Heartbeat: cfg.HeartbeatInterval,
		Locale:    "en_US",
	}
	if cfg.ConnectionTimeout > 0 {
		amqpCfg.Dial = amqp.DefaultDial(cfg.ConnectionTimeout)
	}
	conn, err := amqp.DialConfig(cfg.URL, amqpCfg)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-delete
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: declare exchange: %w", err)
	}

	if err = ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: confirm mode: %w", err)
	}

	return &RabbitMQ{conn: conn, ch: ch, exchange: cfg.Exchange, collector: collector}, nil
}

// IsConnected checks if the RabbitMQ connection is valid
func (s *RabbitMQ) IsConnected() bool {
	return s.conn != nil && !s.conn.IsClosed()
}

// PublishMessage publishes body with routingKey and waits for the broker
// confirmation.
func (s *RabbitMQ) PublishMessage(ctx context.Context, routingKey string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.IsConnected() {
		return errors.New("rabbitmq: connection is not available")
	}

	confirm, err := s.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		s.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err == nil {
		var acked bool
		acked, err = confirm.WaitContext(ctx)
		if err == nil && !acked {
			err = errors.New("message was nacked by broker")
		}
	}
	s.collector.MQPublish("rabbitmq", err)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", routingKey, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (s *RabbitMQ) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil && !s.conn.IsClosed() {
		return s.conn.Close()
	}
	return nil
}
