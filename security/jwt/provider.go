package jwt

import (
	"github.com/google/wire"
	"github.com/ncobase/recruit/config"
)

// ProviderSet is the wire provider set for the jwt package.
var ProviderSet = wire.NewSet(
	ProvideTokenManager,
	wire.Bind(new(TokenValidator), new(*TokenManager)),
)

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	SubjectOf(tokenString string) (string, error)
}

// ProvideTokenManager creates a TokenManager from the auth configuration.
func ProvideTokenManager(cfg *config.Auth) *TokenManager {
	if cfg == nil || cfg.JWT == nil {
		return NewTokenManager("", "", 0)
	}
	return NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expire)
}
