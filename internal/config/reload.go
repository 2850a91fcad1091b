// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ManuGH/bardisplay/internal/audit"
	xglog "github.com/ManuGH/bardisplay/internal/log"
	"github.com/ManuGH/bardisplay/internal/metrics"
	"github.com/ManuGH/bardisplay/internal/override"
)

const reloadDebounce = 500 * time.Millisecond

// ConfigHolder holds configuration with atomic reloading capability.
// It provides thread-safe access to configuration and supports hot reloading
// from file or a manual trigger (SIGHUP).
type ConfigHolder struct {
	mu         sync.RWMutex
	current    AppConfig
	loader     *Loader
	configPath string
	watcher    *fsnotify.Watcher
	logger     zerolog.Logger
	audit      *audit.Logger
	done       chan struct{}

	// Reload notifications
	reloadMu        sync.RWMutex
	reloadListeners []chan<- AppConfig
}

// NewConfigHolder creates a new configuration holder with initial config.
// auditLog may be nil.
func NewConfigHolder(initial AppConfig, loader *Loader, auditLog *audit.Logger) *ConfigHolder {
	return &ConfigHolder{
		current:    initial,
		loader:     loader,
		configPath: loader.ConfigPath(),
		logger:     xglog.WithComponent("config"),
		audit:      auditLog,
	}
}

// Get returns the current configuration (thread-safe read).
func (h *ConfigHolder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Location returns the evaluation zone of the current configuration.
// It is safe to pass as a func() *time.Location.
func (h *ConfigHolder) Location() *time.Location {
	return h.Get().Location()
}

// Reload reloads configuration from file and validates it.
// If loading fails the old configuration is kept and an error is returned.
func (h *ConfigHolder) Reload(ctx context.Context) error {
	actor := "system"
	if a, ok := audit.ActorFromContext(ctx); ok && a.RemoteAddr != "" {
		actor = a.RemoteAddr
	}
	h.logger.Info().Str(xglog.FieldEvent, "config.reload_start").Str("actor", actor).Msg("reloading configuration")

	newCfg, err := h.loader.Load()
	if err != nil {
		h.logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.reload_failed").
			Msg("failed to load new configuration, keeping current one")
		metrics.IncConfigReload(false)
		if h.audit != nil {
			h.audit.ConfigReload(actor, audit.ResultFailure, map[string]string{"error": err.Error()})
		}
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.current
	h.current = newCfg
	h.mu.Unlock()

	changed := h.logChanges(oldCfg, newCfg)
	h.notifyListeners(newCfg)

	metrics.IncConfigReload(true)
	if h.audit != nil {
		details := map[string]string{}
		if len(changed) > 0 {
			details["changed"] = fmt.Sprint(changed)
		}
		h.audit.ConfigReload(actor, audit.ResultSuccess, details)
	}
	h.logger.Info().
		Str(xglog.FieldEvent, "config.reload_success").
		Strs("changed", changed).
		Msg("configuration reloaded successfully")
	return nil
}

// StartWatcher starts watching the config file for changes.
// If no config file is used this is a no-op (config comes from ENV only).
//
// The parent directory is watched rather than the file, so editors that
// replace the file by rename keep triggering reloads.
func (h *ConfigHolder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().
			Str(xglog.FieldEvent, "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(h.configPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	h.watcher = watcher
	h.done = make(chan struct{})

	h.logger.Info().
		Str(xglog.FieldEvent, "config.watcher_started").
		Str(xglog.FieldPath, h.configPath).
		Msg("watching config file for changes")

	go h.watchLoop(ctx)
	return nil
}

func (h *ConfigHolder) watchLoop(ctx context.Context) {
	defer close(h.done)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()
	target := filepath.Clean(h.configPath)

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(xglog.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			_ = h.watcher.Close()
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			// Write and Create cover in-place edits as well as rename-over saves.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			h.logger.Debug().
				Str(xglog.FieldEvent, "config.file_changed").
				Str("op", event.Op.String()).
				Msg("config file changed")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				if err := h.Reload(ctx); err != nil {
					h.logger.Error().
						Err(err).
						Str(xglog.FieldEvent, "config.auto_reload_failed").
						Msg("automatic config reload failed")
				}
			})

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// Stop closes the watcher and waits for the watch loop to exit.
func (h *ConfigHolder) Stop() {
	if h.watcher == nil {
		return
	}
	_ = h.watcher.Close()
	<-h.done
}

// RegisterListener registers a channel to receive config reload notifications.
// The channel receives the new config whenever a reload succeeds.
// The caller is responsible for closing the channel.
func (h *ConfigHolder) RegisterListener(ch chan<- AppConfig) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

// notifyListeners sends the new config to all registered listeners (non-blocking).
func (h *ConfigHolder) notifyListeners(newCfg AppConfig) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.reloadListeners {
		select {
		case ch <- newCfg:
		default:
			h.logger.Warn().
				Str(xglog.FieldEvent, "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

// logChanges logs the differences that take effect without a restart and
// returns the names of all changed settings. The log level is applied here.
func (h *ConfigHolder) logChanges(old, newCfg AppConfig) []string {
	var changed []string
	str := func(name, o, n string) {
		if o == n {
			return
		}
		changed = append(changed, name)
		h.logger.Info().Str("old", o).Str("new", n).Msgf("config changed: %s", name)
	}

	str("logLevel", old.LogLevel, newCfg.LogLevel)
	str("timezone", old.Timezone, newCfg.Timezone)

	if old.LogLevel != newCfg.LogLevel && newCfg.LogLevel != "" {
		if err := xglog.SetLevel(newCfg.LogLevel); err != nil {
			h.logger.Warn().Err(err).Str("level", newCfg.LogLevel).Msg("could not apply log level")
		}
	}

	if !samePresets(old.Override.Presets, newCfg.Override.Presets) {
		changed = append(changed, "override.presets")
		h.logger.Info().Int("count", len(newCfg.Override.Presets)).Msg("config changed: override.presets")
	}
	if !slices.Equal(old.AllowedOrigins, newCfg.AllowedOrigins) {
		changed = append(changed, "allowedOrigins")
		h.logger.Info().Msg("config changed: allowedOrigins (applies after restart)")
	}

	// Listeners, routes and stores are bound at startup.
	if old.ListenAddr != newCfg.ListenAddr || old.Store != newCfg.Store || old.DataDir != newCfg.DataDir ||
		old.UploadDir != newCfg.UploadDir || old.UploadURLPrefix != newCfg.UploadURLPrefix {
		changed = append(changed, "restart-required")
		h.logger.Warn().
			Str(xglog.FieldEvent, "config.restart_required").
			Msg("startup-bound settings changed; restart to apply")
	}
	return changed
}

func samePresets(a, b map[string]override.Preset) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
