// SPDX-License-Identifier: MIT

// Package daemon wires the display server together and owns its lifecycle.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/bardisplay/internal/admin"
	"github.com/ManuGH/bardisplay/internal/api"
	"github.com/ManuGH/bardisplay/internal/audit"
	"github.com/ManuGH/bardisplay/internal/config"
	"github.com/ManuGH/bardisplay/internal/feed"
	"github.com/ManuGH/bardisplay/internal/health"
	xglog "github.com/ManuGH/bardisplay/internal/log"
	"github.com/ManuGH/bardisplay/internal/media"
	"github.com/ManuGH/bardisplay/internal/override"
	"github.com/ManuGH/bardisplay/internal/store"
	"github.com/ManuGH/bardisplay/internal/telemetry"
)

// Runtime is a fully wired daemon. Run it with App.Run.
type Runtime struct {
	App      *App
	Manager  Manager
	Handler  http.Handler
	Holder   *config.ConfigHolder
	Override *override.Channel
	Store    *store.Repository
}

// Bootstrap builds every component from cfg. loader is kept by the config
// holder for reloads. Resources opened here are released by the manager's
// shutdown hooks; on error they are released before returning.
func Bootstrap(ctx context.Context, cfg config.AppConfig, loader *config.Loader) (*Runtime, error) {
	if loader == nil {
		return nil, errors.New("config loader is required")
	}
	logger := xglog.WithComponent("daemon")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry initialization failed, continuing without tracing")
		tp, _ = telemetry.NewProvider(ctx, telemetry.Config{})
	} else if cfg.Tracing.Enabled {
		logger.Info().
			Str("endpoint", cfg.Tracing.Endpoint).
			Float64("sampling_rate", cfg.Tracing.SamplingRate).
			Msg("Telemetry initialized")
	}

	backend, err := store.Open(store.Config{
		Backend: cfg.Store.Backend,
		Path:    cfg.Store.Path,
		Redis:   store.RedisConfig(cfg.Store.Redis),
	})
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("open store: %w", err)
	}
	repo := store.NewRepository(backend)
	logger.Info().
		Str("backend", repo.BackendName()).
		Str(xglog.FieldPath, cfg.Store.Path).
		Msg("store opened")

	cleanup := func() {
		_ = repo.Close()
		_ = tp.Shutdown(context.WithoutCancel(ctx))
	}

	uploads := media.NewDir(cfg.UploadDir)
	if err := uploads.EnsureExists(); err != nil {
		cleanup()
		return nil, fmt.Errorf("uploads directory: %w", err)
	}

	auditLog := audit.NewLogger()
	holder := config.NewConfigHolder(cfg, loader, auditLog)
	ov := override.NewChannel(override.WithPresets(cfg.Override.Presets))

	assembler := feed.NewAssembler(uploads, repo, repo, ov, feed.Options{
		URLPrefix: cfg.UploadURLPrefix,
		Location:  holder.Location,
	})
	adminSvc := admin.NewService(repo, repo, uploads, ov, auditLog)

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewDirChecker("uploads", cfg.UploadDir))
	hm.RegisterChecker(health.NewPingChecker("store", repo))

	tracingService := ""
	if cfg.Tracing.Enabled {
		tracingService = cfg.LogService
	}
	srv, err := api.New(api.Config{
		UploadDir:          cfg.UploadDir,
		UploadURLPrefix:    cfg.UploadURLPrefix,
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitEnabled:   cfg.RateLimit.Enabled,
		RateLimitRPM:       cfg.RateLimit.RequestsPerMinute,
		AdminWriteRPM:      cfg.RateLimit.AdminRequestsPerMinute,
		RateLimitWhitelist: cfg.RateLimit.Whitelist,
		EnableMetrics:      cfg.Metrics.Enabled,
		TracingService:     tracingService,
	}, api.Deps{
		Feed:   assembler,
		Admin:  adminSvc,
		Health: hm,
		Audit:  auditLog,
	})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("build API: %w", err)
	}

	deps := Deps{
		Logger:     logger,
		APIHandler: srv.Handler(),
	}
	if cfg.Metrics.Enabled {
		deps.MetricsHandler = promhttp.Handler()
		deps.MetricsAddr = cfg.Metrics.Addr
	}

	mgr, err := NewManager(config.ServerConfigFor(cfg), deps)
	if err != nil {
		cleanup()
		return nil, err
	}
	// LIFO: the store closes before the tracer flushes.
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)
	mgr.RegisterShutdownHook("store", func(context.Context) error { return repo.Close() })

	return &Runtime{
		App:      NewApp(logger, mgr, holder, ov),
		Manager:  mgr,
		Handler:  srv.Handler(),
		Holder:   holder,
		Override: ov,
		Store:    repo,
	}, nil
}
