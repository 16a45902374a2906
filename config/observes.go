package config

import (
	"time"

	"github.com/spf13/viper"
)

// Sentry reports 5xx failures. An empty Endpoint (the DSN) disables it.
type Sentry struct {
	Endpoint    string
	Environment string
	Release     string
	SampleRate  float64
}

// Tracer exports OpenTelemetry spans over OTLP gRPC. An empty Endpoint
// keeps the no-op tracer.
type Tracer struct {
	Endpoint       string
	ServiceName    string
	ServiceVersion string
	Environment    string
	Insecure       bool
	// SamplingRate is the ratio of root spans kept, 0.0 to 1.0.
	SamplingRate       float64
	MaxExportBatchSize int
	BatchTimeout       time.Duration
	ExportTimeout      time.Duration
}

type Observes struct {
	Sentry *Sentry
	Tracer *Tracer
}

func getObservesConfig(v *viper.Viper) *Observes {
	env := v.GetString("observes.environment")
	return &Observes{
		Sentry: &Sentry{
			Endpoint:    v.GetString("observes.sentry.endpoint"),
			Environment: getStringOrDefault(v, "observes.sentry.environment", env),
			Release:     v.GetString("observes.sentry.release"),
			SampleRate:  getFloat64OrDefault(v, "observes.sentry.sample_rate", 1.0),
		},
		Tracer: &Tracer{
			Endpoint:           v.GetString("observes.tracer.endpoint"),
			ServiceName:        getStringOrDefault(v, "observes.tracer.service_name", "recruit"),
			ServiceVersion:     v.GetString("observes.tracer.service_version"),
			Environment:        getStringOrDefault(v, "observes.tracer.environment", env),
			Insecure:           getBoolOrDefault(v, "observes.tracer.insecure", true),
			SamplingRate:       getFloat64OrDefault(v, "observes.tracer.sampling_rate", 1.0),
			MaxExportBatchSize: getIntOrDefault(v, "observes.tracer.max_export_batch_size", 512),
			BatchTimeout:       getDurationOrDefault(v, "observes.tracer.batch_timeout", 5*time.Second),
			ExportTimeout:      getDurationOrDefault(v, "observes.tracer.export_timeout", 30*time.Second),
		},
	}
}
