package config

import (
	"time"

	"github.com/spf13/viper"
)

// Messaging selects and tunes the domain event backend.
type Messaging struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Backend is one of "kafka", "rabbitmq" or "log".
	Backend        string        `json:"backend" yaml:"backend"`
	PublishTimeout time.Duration `json:"publish_timeout" yaml:"publish_timeout"`
}

// getMessagingConfig reads messaging config
func getMessagingConfig(v *viper.Viper) *Messaging {
	m := &Messaging{
		Enabled:        true,
		Backend:        v.GetString("data.messaging.backend"),
		PublishTimeout: 5 * time.Second,
	}
	if v.IsSet("data.messaging.enabled") {
		m.Enabled = v.GetBool("data.messaging.enabled")
	}
	if v.IsSet("data.messaging.publish_timeout") {
		m.PublishTimeout = v.GetDuration("data.messaging.publish_timeout")
	}
	if m.Backend == "" {
		switch {
		case len(v.GetStringSlice("data.kafka.brokers")) > 0:
			m.Backend = "kafka"
		case v.GetString("data.rabbitmq.url") != "":
			m.Backend = "rabbitmq"
		default:
			m.Backend = "log"
		}
	}
	return m
}

// IsEnabled returns whether messaging is enabled
func (m *Messaging) IsEnabled() bool {
	return m != nil && m.Enabled
}
