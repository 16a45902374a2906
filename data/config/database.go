package config

import (
	"time"

	"github.com/spf13/viper"
)

// Database database config struct
type Database struct {
	Master  *DBNode `json:"master" yaml:"master"`
	Migrate bool    `json:"migrate" yaml:"migrate"`
}

// DBNode represents a single database node configuration
type DBNode struct {
	Driver          string        `json:"driver" yaml:"driver"`
	Source          string        `json:"source" yaml:"source"`
	Logging         bool          `json:"logging" yaml:"logging"`
	MaxIdleConn     int           `json:"max_idle_conn" yaml:"max_idle_conn"`
	MaxOpenConn     int           `json:"max_open_conn" yaml:"max_open_conn"`
	ConnMaxLifeTime time.Duration `json:"conn_max_life_time" yaml:"conn_max_life_time"`
}

// getDatabaseConfig reads database configurations
func getDatabaseConfig(v *viper.Viper) *Database {
	return &Database{
		Master:  getMasterConfig(v),
		Migrate: v.GetBool("data.database.migrate"),
	}
}

// getMasterConfig reads master database configurations
func getMasterConfig(v *viper.Viper) *DBNode {
	return &DBNode{
		Driver:          getStringOrDefault(v, "data.database.master.driver", "sqlite"),
		Source:          getStringOrDefault(v, "data.database.master.source", "file:recruit.db"),
		Logging:         v.GetBool("data.database.master.logging"),
		MaxIdleConn:     getIntOrDefault(v, "data.database.master.max_idle_conn", 5),
		MaxOpenConn:     getIntOrDefault(v, "data.database.master.max_open_conn", 20),
		ConnMaxLifeTime: v.GetDuration("data.database.master.max_life_time"),
	}
}
