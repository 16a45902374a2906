package app

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/core/invitation"
	invitationrepo "github.com/ncobase/recruit/core/invitation/data/repository"
	invitationsvc "github.com/ncobase/recruit/core/invitation/service"
	"github.com/ncobase/recruit/core/posting"
	postingrepo "github.com/ncobase/recruit/core/posting/data/repository"
	postingsvc "github.com/ncobase/recruit/core/posting/service"
	"github.com/ncobase/recruit/core/task"
	tasksvc "github.com/ncobase/recruit/core/task/service"
	"github.com/ncobase/recruit/data"
	datametrics "github.com/ncobase/recruit/data/metrics"
	"github.com/ncobase/recruit/internal/event"
	"github.com/ncobase/recruit/internal/payment"
	"github.com/ncobase/recruit/internal/server"
	"github.com/ncobase/recruit/logging/logger"
	"github.com/ncobase/recruit/logging/observes"
	"github.com/ncobase/recruit/messaging/email"
	"github.com/ncobase/recruit/metrics"
	"github.com/ncobase/recruit/net/ratelimit"
	"github.com/ncobase/recruit/version"
)

// InfraSet provides the process-wide infrastructure.
var InfraSet = wire.NewSet(
	ProvideTelemetry,
	ProvideMetrics,
	ProvideData,
	ProvideEvents,
	ProvideGateway,
	ProvideRateLimiter,
)

// ModuleSet provides the domain services and their HTTP modules.
var ModuleSet = wire.NewSet(
	ProvidePostingService,
	ProvideInvitationService,
	tasksvc.New,
	ProvidePostingModule,
	invitation.New,
	task.New,
	wire.Struct(new(server.Modules), "*"),
	server.New,
)

// Schema lists every table definition in dependency order.
func Schema() []string {
	stmts := append([]string{}, postingrepo.Schema...)
	return append(stmts, invitationrepo.Schema...)
}

// Telemetry marks sentry and tracing as initialized.
type Telemetry struct{}

// ProvideTelemetry initializes sentry and the OTLP tracer. Both stay
// disabled without an endpoint.
func ProvideTelemetry(cfg *config.Config, log *logger.Logger) (*Telemetry, func(), error) {
	ctx := context.Background()
	info := version.GetVersionInfo()

	var sentryOpts *observes.SentryOptions
	var tracerOpts *observes.TracerOption
	if cfg.Observes != nil && cfg.Observes.Sentry != nil {
		s := cfg.Observes.Sentry
		release := s.Release
		if release == "" {
			release = info.Version
		}
		sentryOpts = &observes.SentryOptions{
			Dsn:         s.Endpoint,
			Name:        cfg.AppName,
			Release:     release,
			Environment: s.Environment,
			SampleRate:  s.SampleRate,
		}
	}
	if cfg.Observes != nil && cfg.Observes.Tracer != nil {
		t := cfg.Observes.Tracer
		serviceVersion := t.ServiceVersion
		if serviceVersion == "" {
			serviceVersion = info.Version
		}
		tracerOpts = &observes.TracerOption{
			URL:                t.Endpoint,
			Name:               t.ServiceName,
			Version:            serviceVersion,
			Environment:        t.Environment,
			Insecure:           t.Insecure,
			SamplingRate:       t.SamplingRate,
			BatchTimeout:       t.BatchTimeout,
			ExportTimeout:      t.ExportTimeout,
			MaxExportBatchSize: t.MaxExportBatchSize,
		}
	}

	flush, err := observes.NewSentry(sentryOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	shutdown, err := observes.NewTracer(tracerOpts)
	if err != nil {
		flush()
		return nil, nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	cleanup := func() {
		if err := shutdown(ctx); err != nil {
			log.Warn(ctx, "Failed to shut down tracer", "error", err)
		}
		flush()
	}
	return &Telemetry{}, cleanup, nil
}

// ProvideMetrics creates the process registry.
func ProvideMetrics(cfg *config.Data) *metrics.Metrics {
	namespace := "recruit"
	if cfg != nil && cfg.Metrics != nil && cfg.Metrics.Namespace != "" {
		namespace = cfg.Metrics.Namespace
	}
	return metrics.New(namespace)
}

// ProvideData connects storage and applies the schema when
// data.database.migrate is set.
func ProvideData(cfg *config.Data, m *metrics.Metrics, log *logger.Logger) (*data.Data, func(), error) {
	ctx := context.Background()

	var opts []data.Option
	if cfg != nil && cfg.Metrics != nil && cfg.Metrics.Enabled {
		opts = append(opts, data.WithMetricsCollector(datametrics.NewPrometheusCollector(cfg.Metrics.Namespace, m.Registry())))
	}
	d, cleanup, err := data.New(ctx, cfg, opts...)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Database.Migrate {
		if err := d.Migrate(ctx, Schema()...); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to migrate: %w", err)
		}
		log.Info(ctx, "Schema migrated", "driver", cfg.Database.Master.Driver)
	}
	return d, cleanup, nil
}

// ProvideEvents creates the domain event publisher.
func ProvideEvents(cfg *config.Data, d *data.Data, log *logger.Logger) (event.Publisher, func(), error) {
	pub, err := event.NewPublisher(cfg, d.Collector(), log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := pub.Close(); err != nil {
			log.Warn(context.Background(), "Failed to close event publisher", "error", err)
		}
	}
	return pub, cleanup, nil
}

// ProvideGateway creates the payment provider client.
func ProvideGateway(cfg *config.Payment, m *metrics.Metrics) (payment.Gateway, error) {
	return payment.NewClient(cfg, m)
}

// ProvideRateLimiter limits the public candidate endpoints.
func ProvideRateLimiter(cfg *config.RateLimit, m *metrics.Metrics) *ratelimit.Limiter {
	return ratelimit.New(cfg, m.Registry())
}

func ProvidePostingService(d *data.Data, gateway payment.Gateway, events event.Publisher, cfg *config.Payment, log *logger.Logger, m *metrics.Metrics) *postingsvc.Service {
	return postingsvc.New(d, gateway, events, cfg, log, postingsvc.WithMetrics(m))
}

func ProvideInvitationService(d *data.Data, posts *postingsvc.Service, mailer email.Sender, events event.Publisher, cfg *config.Invitation, log *logger.Logger, m *metrics.Metrics) *invitationsvc.Service {
	return invitationsvc.New(d, posts, mailer, events, cfg, log, invitationsvc.WithMetrics(m))
}

func ProvidePostingModule(svc *postingsvc.Service, auth *config.Auth, pay *config.Payment, log *logger.Logger) *posting.Module {
	return posting.New(svc, auth, pay, log)
}
