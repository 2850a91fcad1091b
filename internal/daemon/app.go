// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/bardisplay/internal/config"
	xglog "github.com/ManuGH/bardisplay/internal/log"
	"github.com/ManuGH/bardisplay/internal/override"
)

// App runs the display server next to the config reload machinery.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.ConfigHolder
	override     *override.Channel
	reloadSignal os.Signal
}

// NewApp returns an App. cfgHolder and ov may be nil, which disables reloads
// and preset pushes respectively.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.ConfigHolder, ov *override.Channel) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		override:     ov,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run blocks until ctx is cancelled or the manager fails.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.cfgHolder != nil {
		// A missing watcher only costs automatic reloads; SIGHUP still works.
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.watcher_start_failed").Msg("config file watcher unavailable")
		}
		defer a.cfgHolder.Stop()

		if a.override != nil {
			swaps := make(chan config.AppConfig, 1)
			a.cfgHolder.RegisterListener(swaps)
			g.Go(func() error { return a.pushPresets(ctx, swaps) })
		}
		if a.reloadSignal != nil {
			g.Go(func() error { return a.reloadOnSignal(ctx) })
		}
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}

// pushPresets copies the preset table of every new config into the override
// channel. Timezone and log level are read from the holder on use.
func (a *App) pushPresets(ctx context.Context, swaps <-chan config.AppConfig) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg := <-swaps:
			a.override.SetPresets(cfg.Override.Presets)
			a.logger.Debug().
				Str(xglog.FieldEvent, "override.presets_applied").
				Int("count", len(cfg.Override.Presets)).
				Msg("override presets updated")
		}
	}
}

func (a *App) reloadOnSignal(ctx context.Context) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, a.reloadSignal)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sig:
			a.logger.Info().
				Str(xglog.FieldEvent, "config.reload_signal").
				Stringer("signal", a.reloadSignal).
				Msg("reloading config")
			if err := a.cfgHolder.Reload(ctx); err != nil {
				a.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.reload_failed").Msg("config reload failed, keeping current config")
			}
		}
	}
}
