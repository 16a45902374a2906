package config

import "github.com/google/wire"

// ProviderSet is the wire provider set for the config package.
// It extracts sub-configurations from *Config for other modules.
var ProviderSet = wire.NewSet(
	ProvideLoggerConfig,
	ProvideDataConfig,
	ProvideAuthConfig,
	ProvideEmailConfig,
	ProvidePaymentConfig,
	ProvideInvitationConfig,
	ProvideTaskConfig,
	ProvideRateLimitConfig,
)

// ProvideLoggerConfig provides the logger configuration.
func ProvideLoggerConfig(cfg *Config) *Logger { return cfg.Logger }

// ProvideDataConfig provides the data layer configuration.
func ProvideDataConfig(cfg *Config) *Data { return cfg.Data }

// ProvideAuthConfig provides the authentication configuration.
func ProvideAuthConfig(cfg *Config) *Auth { return cfg.Auth }

// ProvideEmailConfig provides the email configuration.
func ProvideEmailConfig(cfg *Config) *Email { return cfg.Email }

// ProvidePaymentConfig provides the payment provider configuration.
func ProvidePaymentConfig(cfg *Config) *Payment { return cfg.Payment }

// ProvideInvitationConfig provides the invitation policy configuration.
func ProvideInvitationConfig(cfg *Config) *Invitation { return cfg.Invitation }

// ProvideTaskConfig provides the task gateway configuration.
func ProvideTaskConfig(cfg *Config) *Task { return cfg.Task }

// ProvideRateLimitConfig provides the rate limiter configuration.
func ProvideRateLimitConfig(cfg *Config) *RateLimit { return cfg.RateLimit }
