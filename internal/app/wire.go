//go:build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/logging/logger"
	"github.com/ncobase/recruit/messaging/email"
	"github.com/ncobase/recruit/security/jwt"
)

// InitializeApp wires the application from a loaded configuration.
// The cleanup function releases connections in reverse order of creation.
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	panic(wire.Build(
		config.ProviderSet,
		logger.ProviderSet,
		email.ProviderSet,
		jwt.ProviderSet,
		InfraSet,
		ModuleSet,
		NewApp,
	))
}
