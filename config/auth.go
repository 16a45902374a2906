package config

import (
	"time"

	"github.com/spf13/viper"
)

// Auth auth config struct
type Auth struct {
	JWT *JWT
	// Operators may call administrative endpoints such as the expiry sweep.
	Operators []string
}

// getAuth returns the auth config.
func getAuth(v *viper.Viper) *Auth {
	return &Auth{
		JWT:       getJWT(v),
		Operators: v.GetStringSlice("auth.operators"),
	}
}

// JWT jwt config struct
type JWT struct {
	Secret string
	Issuer string
	Expire time.Duration
}

// getJWT returns the jwt config.
func getJWT(v *viper.Viper) *JWT {
	return &JWT{
		Secret: v.GetString("auth.jwt.secret"),
		Issuer: getStringOrDefault(v, "auth.jwt.issuer", "recruit"),
		Expire: getDurationOrDefault(v, "auth.jwt.expire", 2*time.Hour),
	}
}
