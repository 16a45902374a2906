package config

import (
	"github.com/spf13/viper"
)

// Config data config struct
type Config struct {
	*Database  `yaml:"database" json:"database"`
	*Redis     `yaml:"redis" json:"redis"`
	*RabbitMQ  `yaml:"rabbitmq" json:"rabbitmq"`
	*Kafka     `yaml:"kafka" json:"kafka"`
	*Messaging `yaml:"messaging" json:"messaging"`
	*Metrics   `yaml:"metrics" json:"metrics"`
}

// GetConfig returns data config
func GetConfig(v *viper.Viper) *Config {
	return &Config{
		Database:  getDatabaseConfig(v),
		Redis:     getRedisConfigs(v),
		RabbitMQ:  getRabbitMQConfigs(v),
		Kafka:     getKafkaConfigs(v),
		Messaging: getMessagingConfig(v),
		Metrics:   getMetricsConfig(v),
	}
}

// getStringOrDefault returns string value or default
func getStringOrDefault(v *viper.Viper, key, defaultValue string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return defaultValue
}

// getIntOrDefault returns int value or default
func getIntOrDefault(v *viper.Viper, key string, defaultValue int) int {
	if v.IsSet(key) {
		return v.GetInt(key)
	}
	return defaultValue
}
