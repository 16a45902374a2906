package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/ncobase/recruit/data/config"
	"github.com/ncobase/recruit/data/messaging/kafka"
	"github.com/ncobase/recruit/data/messaging/rabbitmq"
	"github.com/ncobase/recruit/data/metrics"
	"github.com/ncobase/recruit/logging/logger"
)

// NewPublisher builds the publisher selected by the messaging config.
func NewPublisher(cfg *config.Config, collector metrics.Collector, log *logger.Logger) (Publisher, error) {
	if cfg == nil || !cfg.Messaging.IsEnabled() {
		return Noop{}, nil
	}

	switch cfg.Messaging.Backend {
	case "kafka":
		k, err := kafka.New(cfg.Kafka, collector)
		if err != nil {
			return nil, err
		}
		return &kafkaPublisher{k: k, timeout: cfg.Messaging}, nil
	case "rabbitmq":
		r, err := rabbitmq.New(cfg.RabbitMQ, collector)
		if err != nil {
			return nil, err
		}
		return &rabbitPublisher{r: r, timeout: cfg.Messaging}, nil
	case "log", "":
		return &LogPublisher{logger: log}, nil
	default:
		return nil, fmt.Errorf("event: unknown messaging backend %q", cfg.Messaging.Backend)
	}
}

func withTimeout(ctx context.Context, m *config.Messaging) (context.Context, context.CancelFunc) {
	if m == nil || m.PublishTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.PublishTimeout)
}

type kafkaPublisher struct {
	k       *kafka.Kafka
	timeout *config.Messaging
}

// Publish keys messages by aggregate so one posting's events stay ordered.
func (p *kafkaPublisher) Publish(ctx context.Context, e *Event) error {
	body, err := e.encode()
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()
	return p.k.PublishMessage(ctx, []byte(e.AggregateID), body)
}

func (p *kafkaPublisher) Close() error { return p.k.Close() }

type rabbitPublisher struct {
	r       *rabbitmq.RabbitMQ
	timeout *config.Messaging
}

// Publish routes by event type, e.g. "job_posting.closed".
func (p *rabbitPublisher) Publish(ctx context.Context, e *Event) error {
	body, err := e.encode()
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()
	return p.r.PublishMessage(ctx, string(e.Type), body)
}

func (p *rabbitPublisher) Close() error { return p.r.Close() }

// LogPublisher writes events to the log. Used in development.
type LogPublisher struct {
	logger *logger.Logger
}

func (p *LogPublisher) Publish(ctx context.Context, e *Event) error {
	l := p.logger
	if l == nil {
		l = logger.StdLogger()
	}
	l.Info(ctx, "domain event",
		"event_id", e.ID,
		"event_type", string(e.Type),
		"aggregate_id", e.AggregateID,
		"actor_id", e.ActorID,
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, *Event) error { return nil }
func (Noop) Close() error                          { return nil }

// Recorder keeps published events in memory, for tests.
type Recorder struct {
	mu     sync.Mutex
	events []*Event
}

func (r *Recorder) Publish(_ context.Context, e *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the types of the recorded events in publish order.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Event(nil), r.events...)
}
