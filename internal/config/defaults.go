// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"path/filepath"
	"time"

	"github.com/ManuGH/bardisplay/internal/override"
)

const (
	defaultListenAddr      = ":8030"
	defaultDataDir         = "data"
	defaultUploadURLPrefix = "/static/uploads/"
	defaultMetricsAddr     = ":9030"
)

// Defaults returns the configuration used when neither file nor ENV set a value.
func Defaults() AppConfig {
	return AppConfig{
		ListenAddr:      defaultListenAddr,
		DataDir:         defaultDataDir,
		UploadURLPrefix: defaultUploadURLPrefix,
		Timezone:        "Local",
		LogLevel:        "info",
		LogService:      "bardisplay",
		Store: StoreConfig{
			Backend: "file",
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "bardisplay:"},
		},
		Metrics: MetricsConfig{Enabled: false, Addr: defaultMetricsAddr},
		Tracing: TracingConfig{Enabled: false, Exporter: "grpc", Endpoint: "localhost:4317", SamplingRate: 0.1},
		RateLimit: RateLimitConfig{
			Enabled:                true,
			RequestsPerMinute:      600,
			AdminRequestsPerMinute: 60,
		},
		Server: ServerFileConfig{
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxHeaderBytes:  1 << 20,
		},
		Override: OverrideConfig{Presets: override.DefaultPresets()},
	}
}

// resolvePaths fills paths derived from DataDir. It runs after ENV so that
// BARDISPLAY_DATA moves everything that was not set explicitly.
func resolvePaths(cfg *AppConfig) {
	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = filepath.Join(cfg.DataDir, "uploads")
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Backend {
		case "badger":
			cfg.Store.Path = filepath.Join(cfg.DataDir, "badger")
		case "sqlite":
			cfg.Store.Path = filepath.Join(cfg.DataDir, "bardisplay.db")
		default:
			cfg.Store.Path = cfg.DataDir
		}
	}
}
