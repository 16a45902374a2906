package logger

import (
	"github.com/google/wire"
	"github.com/ncobase/recruit/logging/logger/config"
	"github.com/ncobase/recruit/version"
)

var ProviderSet = wire.NewSet(ProvideLogger)

// ProvideLogger configures the process logger and stamps the build version
// on every entry.
func ProvideLogger(cfg *config.Config) (*Logger, func(), error) {
	cleanup, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}
	l := StdLogger()
	l.SetVersion(version.GetVersionInfo().Version)
	return l, cleanup, nil
}
