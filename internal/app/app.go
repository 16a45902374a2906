// Package app assembles the process from configuration with wire.
package app

import (
	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/core/posting/service"
	"github.com/ncobase/recruit/data"
	"github.com/ncobase/recruit/internal/server"
	"github.com/ncobase/recruit/logging/logger"
)

type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Data     *data.Data
	Server   *server.Server
	Postings *service.Service
}

func NewApp(cfg *config.Config, log *logger.Logger, d *data.Data, srv *server.Server, postings *service.Service, _ *Telemetry) *App {
	return &App{
		Config:   cfg,
		Logger:   log,
		Data:     d,
		Server:   srv,
		Postings: postings,
	}
}
