// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ManuGH/bardisplay/internal/config"
	"github.com/ManuGH/bardisplay/internal/log"
)

// PerformStartupChecks validates the environment before the server starts.
// It creates the data and upload directories when they are missing.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	for _, dir := range []struct{ label, path string }{
		{"data", cfg.DataDir},
		{"uploads", cfg.UploadDir},
	} {
		if err := os.MkdirAll(dir.path, 0o750); err != nil {
			return fmt.Errorf("%s directory %s: %w", dir.label, dir.path, err)
		}
		if err := checkWritableDir(dir.path); err != nil {
			return fmt.Errorf("%s directory check failed: %w", dir.label, err)
		}
		logger.Info().Str("path", dir.path).Msgf("%s directory is writable", dir.label)
	}

	if err := checkListenAddr(logger, "api", cfg.ListenAddr); err != nil {
		return err
	}
	if cfg.Metrics.Enabled {
		if err := checkListenAddr(logger, "metrics", cfg.Metrics.Addr); err != nil {
			return err
		}
	}

	switch cfg.Store.Backend {
	case "memory":
		logger.Warn().
			Str("store_backend", cfg.Store.Backend).
			Msg("in-memory store; order, windows and settings are lost on restart")
	case "badger", "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o750); err != nil {
			return fmt.Errorf("store directory: %w", err)
		}
	}

	tempDir := filepath.Clean(os.TempDir())
	dataDir := filepath.Clean(cfg.DataDir)
	if tempDir != "." && (dataDir == tempDir || strings.HasPrefix(dataDir, tempDir+string(filepath.Separator))) {
		logger.Warn().
			Str("data_dir", cfg.DataDir).
			Msg("data directory is under temp; uploads and records may be lost on reboot")
	}

	logger.Info().Msg("all startup checks passed")
	return nil
}

func checkListenAddr(logger zerolog.Logger, label, addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid %s listen address %q: %w", label, addr, err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid %s listen port %q in %q", label, port, addr)
	}
	logger.Debug().Str("addr", addr).Msgf("%s listen address is valid", label)
	return nil
}
