package event

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ncobase/recruit/data/config"
)

func TestNewPublisherSelectsBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    string
		wantErr bool
	}{
		{"nil config", nil, "noop", false},
		{"disabled", &config.Config{Messaging: &config.Messaging{Enabled: false, Backend: "kafka"}}, "noop", false},
		{"log", &config.Config{Messaging: &config.Messaging{Enabled: true, Backend: "log"}}, "log", false},
		{"kafka without brokers", &config.Config{Messaging: &config.Messaging{Enabled: true, Backend: "kafka"}, Kafka: &config.Kafka{}}, "", true},
		{"rabbitmq without url", &config.Config{Messaging: &config.Messaging{Enabled: true, Backend: "rabbitmq"}, RabbitMQ: &config.RabbitMQ{}}, "", true},
		{"unknown", &config.Config{Messaging: &config.Messaging{Enabled: true, Backend: "nats"}}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPublisher(tt.cfg, nil, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPublisher() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			var got string
			switch p.(type) {
			case Noop:
				got = "noop"
			case *LogPublisher:
				got = "log"
			}
			if got != tt.want {
				t.Errorf("NewPublisher() = %T, want %s", p, tt.want)
			}
		})
	}
}

func TestEventEncoding(t *testing.T) {
	e := New(TypePostingClosed, "p1", map[string]any{"reason": "expired"}).WithActor("u1")
	body, err := e.encode()
	if err != nil {
		t.Fatalf("encode() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["type"] != "job_posting.closed" || decoded["aggregate_id"] != "p1" || decoded["actor_id"] != "u1" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	_ = r.Publish(context.Background(), New(TypeInvitationIssued, "i1", nil))
	_ = r.Publish(context.Background(), New(TypeInvitationViewed, "i1", nil))
	types := r.Types()
	if len(types) != 2 || types[1] != TypeInvitationViewed {
		t.Errorf("Types() = %v", types)
	}
}
