package config

import "github.com/spf13/viper"

// Metrics data metrics config
type Metrics struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// getMetricsConfig returns metrics config
func getMetricsConfig(v *viper.Viper) *Metrics {
	enabled := true
	if v.IsSet("data.metrics.enabled") {
		enabled = v.GetBool("data.metrics.enabled")
	}
	return &Metrics{
		Enabled:   enabled,
		Namespace: getStringOrDefault(v, "data.metrics.namespace", "recruit"),
	}
}
