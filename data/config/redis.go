package config

import (
	"time"

	"github.com/spf13/viper"
)

// Redis backs the question-set cache and the purchase lock. An empty Addr
// disables both.
type Redis struct {
	Addr         string        `json:"addr" yaml:"addr"`
	Username     string        `json:"username" yaml:"username"`
	Password     string        `json:"password" yaml:"password"`
	Db           int           `json:"db" yaml:"db"`
	PoolSize     int           `json:"pool_size" yaml:"pool_size"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
}

func getRedisConfigs(v *viper.Viper) *Redis {
	timeout := func(key string, def time.Duration) time.Duration {
		if d := v.GetDuration(key); d > 0 {
			return d
		}
		return def
	}
	return &Redis{
		Addr:         v.GetString("data.redis.addr"),
		Username:     v.GetString("data.redis.username"),
		Password:     v.GetString("data.redis.password"),
		Db:           v.GetInt("data.redis.db"),
		PoolSize:     getIntOrDefault(v, "data.redis.pool_size", 10),
		ReadTimeout:  timeout("data.redis.read_timeout", time.Second),
		WriteTimeout: timeout("data.redis.write_timeout", time.Second),
		DialTimeout:  timeout("data.redis.dial_timeout", 3*time.Second),
	}
}
