package config

import (
	"time"

	"github.com/spf13/viper"
)

// valueOr reads key with get when it is set and returns def otherwise, so an
// explicit zero in the file or environment is kept.
func valueOr[T any](v *viper.Viper, key string, def T, get func(string) T) T {
	if !v.IsSet(key) {
		return def
	}
	return get(key)
}

func getDurationOrDefault(v *viper.Viper, key string, def time.Duration) time.Duration {
	return valueOr(v, key, def, v.GetDuration)
}

func getUint32OrDefault(v *viper.Viper, key string, def uint32) uint32 {
	return valueOr(v, key, def, v.GetUint32)
}

func getIntOrDefault(v *viper.Viper, key string, def int) int {
	return valueOr(v, key, def, v.GetInt)
}

func getFloat64OrDefault(v *viper.Viper, key string, def float64) float64 {
	return valueOr(v, key, def, v.GetFloat64)
}

func getStringOrDefault(v *viper.Viper, key string, def string) string {
	return valueOr(v, key, def, v.GetString)
}

func getBoolOrDefault(v *viper.Viper, key string, def bool) bool {
	return valueOr(v, key, def, v.GetBool)
}
