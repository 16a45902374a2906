package config

import (
	"strings"

	dc "github.com/ncobase/recruit/data/config"
	"github.com/spf13/viper"
)

// Data is the storage, cache and messaging section.
type Data = dc.Config

// DBNode is one database connection.
type DBNode = dc.DBNode

// driverAliases maps accepted spellings onto registered driver names.
var driverAliases = map[string]string{
	"sqlite3":    "sqlite",
	"pgx":        "postgres",
	"postgresql": "postgres",
}

func getDataConfig(v *viper.Viper) *Data {
	d := dc.GetConfig(v)
	if d.Database != nil && d.Database.Master != nil {
		d.Database.Master.Driver = canonicalDriver(d.Database.Master.Driver)
	}
	return d
}

func canonicalDriver(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := driverAliases[name]; ok {
		return alias
	}
	return name
}
