// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Validate reports every problem in cfg at once. The returned error wraps ErrInvalidConfig.
func Validate(cfg AppConfig) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(cfg.ListenAddr) == "" {
		add("listenAddr is empty")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		add("dataDir is empty")
	}
	if !strings.HasPrefix(cfg.UploadURLPrefix, "/") {
		add("uploadURLPrefix must start with '/': %q", cfg.UploadURLPrefix)
	}
	for _, o := range cfg.AllowedOrigins {
		if _, err := NormalizeOrigin(o); err != nil {
			add("allowedOrigins: %v", err)
		}
	}
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" && tz != "Local" {
		if _, err := time.LoadLocation(tz); err != nil {
			add("timezone %q: %v", tz, err)
		}
	}
	if cfg.LogLevel != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
			add("logLevel %q: %v", cfg.LogLevel, err)
		}
	}

	switch cfg.Store.Backend {
	case "file", "badger", "sqlite", "memory":
	case "redis":
		if strings.TrimSpace(cfg.Store.Redis.Addr) == "" {
			add("store.redis.addr is required for the redis backend")
		}
		if cfg.Store.Redis.DB < 0 {
			add("store.redis.db must not be negative")
		}
	default:
		add("store.backend %q is not one of file, badger, sqlite, redis, memory", cfg.Store.Backend)
	}

	if cfg.Metrics.Enabled && strings.TrimSpace(cfg.Metrics.Addr) == "" {
		add("metrics.addr is required when metrics are enabled")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == cfg.ListenAddr {
		add("metrics.addr must differ from listenAddr")
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Exporter != "grpc" && cfg.Tracing.Exporter != "http" {
			add("tracing.exporter %q is not one of grpc, http", cfg.Tracing.Exporter)
		}
		if strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
			add("tracing.endpoint is required when tracing is enabled")
		}
	}
	if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
		add("tracing.samplingRate must be between 0 and 1, got %v", cfg.Tracing.SamplingRate)
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerMinute <= 0 {
			add("rateLimit.requestsPerMinute must be positive")
		}
		if cfg.RateLimit.AdminRequestsPerMinute <= 0 {
			add("rateLimit.adminRequestsPerMinute must be positive")
		}
	}

	if cfg.Server.ReadTimeout < 0 || cfg.Server.WriteTimeout < 0 || cfg.Server.IdleTimeout < 0 {
		add("server timeouts must not be negative")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		add("server.shutdownTimeout must be positive")
	}

	for name, p := range cfg.Override.Presets {
		if strings.TrimSpace(name) == "" {
			add("override preset with empty name")
		}
		if strings.TrimSpace(p.Content) == "" {
			add("override preset %q has no content", name)
		}
		if p.Style != "" && !p.Style.Valid() {
			add("override preset %q has unknown style %q", name, p.Style)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
