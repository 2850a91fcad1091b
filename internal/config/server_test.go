// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestServerConfigFor(t *testing.T) {
	cfg := Defaults()
	cfg.ListenAddr = "127.0.0.1:8031"
	cfg.Server.ReadTimeout = 3 * time.Second

	got := ServerConfigFor(cfg)
	assert.Equal(t, "127.0.0.1:8031", got.ListenAddr)
	assert.Equal(t, 3*time.Second, got.ReadTimeout)
	assert.Equal(t, cfg.Server.WriteTimeout, got.WriteTimeout)
	assert.Equal(t, 1<<20, got.MaxHeaderBytes)
}

func TestServerConfigFor_FillsZeroValues(t *testing.T) {
	got := ServerConfigFor(AppConfig{})
	def := Defaults().Server

	assert.Equal(t, ":8030", got.ListenAddr)
	assert.Equal(t, def.ReadTimeout, got.ReadTimeout)
	assert.Equal(t, def.IdleTimeout, got.IdleTimeout)
	assert.Equal(t, 3*time.Second, got.ShutdownTimeout, "shutdown timeout has a floor")
}
