package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/core/posting/service"
	"github.com/ncobase/recruit/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCommand(configFile *string) *cobra.Command {
	var sweepEvery time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := initialize(*configFile, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			log := a.Logger

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			a.Config.Watch(func(c *config.Config) {
				if c.Logger != nil {
					log.SetLevel(logrus.Level(c.Logger.Level))
				}
				log.Info(ctx, "Configuration reloaded, logger level applied", "path", c.Viper.ConfigFileUsed())
			})

			if sweepEvery > 0 {
				go runSweeps(ctx, a.Postings, sweepEvery, func(err error) {
					log.Error(ctx, "Expiry sweep failed", "error", err)
				})
			}

			httpServer := a.Server.HTTPServer()
			errCh := make(chan error, 1)
			go func() {
				log.Info(ctx, "Starting server", "addr", httpServer.Addr, "version", version.GetVersionInfo().Version)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case err := <-errCh:
				log.Error(ctx, "Server failed", "error", err)
				return err
			}

			log.Info(ctx, "Shutting down server")
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Error(shutdownCtx, "Server forced to shutdown", "error", err)
			}

			log.Info(shutdownCtx, "Server exited")
			return nil
		},
	}

	cmd.Flags().DurationVar(&sweepEvery, "sweep-every", 0, "also run the expiry sweep in-process at this interval, 0 disables it")
	return cmd
}

// runSweeps closes expired postings every interval until ctx is done.
func runSweeps(ctx context.Context, postings *service.Service, interval time.Duration, onErr func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := postings.Sweep(ctx, service.DefaultSweepLimit); err != nil {
				onErr(err)
			}
		}
	}
}
