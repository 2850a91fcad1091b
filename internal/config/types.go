// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the server configuration with precedence
// ENV > YAML file > defaults and supports hot reloading of the file.
package config

import (
	"strings"
	"time"

	"github.com/ManuGH/bardisplay/internal/override"
)

// AppConfig is the full server configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	ListenAddr      string   `yaml:"listenAddr"`
	DataDir         string   `yaml:"dataDir"`
	UploadDir       string   `yaml:"uploadDir"`
	UploadURLPrefix string   `yaml:"uploadURLPrefix"`
	Timezone        string   `yaml:"timezone"`
	LogLevel        string   `yaml:"logLevel"`
	LogService      string   `yaml:"logService"`
	AllowedOrigins  []string `yaml:"allowedOrigins"`

	Store     StoreConfig      `yaml:"store"`
	Metrics   MetricsConfig    `yaml:"metrics"`
	Tracing   TracingConfig    `yaml:"tracing"`
	RateLimit RateLimitConfig  `yaml:"rateLimit"`
	Server    ServerFileConfig `yaml:"server"`
	Override  OverrideConfig   `yaml:"override"`
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis store backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// RateLimitConfig limits requests per client IP.
type RateLimitConfig struct {
	Enabled                bool     `yaml:"enabled"`
	RequestsPerMinute      int      `yaml:"requestsPerMinute"`
	AdminRequestsPerMinute int      `yaml:"adminRequestsPerMinute"`
	Whitelist              []string `yaml:"whitelist"`
}

// ServerFileConfig holds HTTP server timeouts.
type ServerFileConfig struct {
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxHeaderBytes  int           `yaml:"maxHeaderBytes"`
}

// OverrideConfig holds the override presets. Presets from the file are
// added to the built-in ones; a preset with a built-in name replaces it.
type OverrideConfig struct {
	Presets map[string]override.Preset `yaml:"presets"`
}

// Location returns the zone time windows are evaluated in. An empty or
// "Local" timezone means the host's local time. Validate rejects unknown
// names, so a loaded config never falls back here.
func (c AppConfig) Location() *time.Location {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}
