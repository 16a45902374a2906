// Package config loads service configuration with viper.
//
// Values come from a YAML file (config.yaml by default) and may be
// overridden by environment variables prefixed with RECRUIT_, where dots in
// keys become underscores:
//
//	RECRUIT_SERVER_PORT=9000
//	RECRUIT_PAYMENT_WEBHOOK_SECRET=whsec_...
//
// A .env file in the working directory is loaded first when present.
//
//	cfg, err := config.LoadConfig("./config.yaml")
//	cfg.Watch(func(c *config.Config) { logger.SetLevel(logrus.Level(c.Logger.Level)) })
package config
