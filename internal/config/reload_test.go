// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/bardisplay/internal/audit"
	"github.com/ManuGH/bardisplay/internal/override"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func newHolder(t *testing.T, body string) (*ConfigHolder, string, *bytes.Buffer) {
	t.Helper()
	t.Setenv("BARDISPLAY_DATA", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, body)

	loader := NewLoader(path, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	auditLog := audit.NewLoggerWith(zerolog.New(&buf))
	return NewConfigHolder(cfg, loader, auditLog), path, &buf
}

func TestConfigHolder_Get(t *testing.T) {
	h, _, _ := newHolder(t, "timezone: UTC\n")
	assert.Equal(t, "UTC", h.Get().Timezone)
	assert.Equal(t, time.UTC, h.Location())
}

func TestConfigHolder_ReloadAppliesChanges(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	h, path, buf := newHolder(t, "timezone: UTC\nlogLevel: info\n")

	ch := make(chan AppConfig, 1)
	h.RegisterListener(ch)

	writeConfig(t, path, "timezone: UTC\nlogLevel: debug\noverride:\n  presets:\n    closing:\n      content: bye\n")
	require.NoError(t, h.Reload(context.Background()))

	got := h.Get()
	assert.Equal(t, "debug", got.LogLevel)
	assert.Contains(t, got.Override.Presets, "closing")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	select {
	case notified := <-ch:
		assert.Equal(t, "debug", notified.LogLevel)
	default:
		t.Fatal("listener was not notified")
	}
	assert.Contains(t, buf.String(), `"event_type":"config.reload"`)
}

func TestConfigHolder_ReloadKeepsConfigOnError(t *testing.T) {
	h, path, buf := newHolder(t, "timezone: UTC\n")

	writeConfig(t, path, "timezone: Nowhere/Land\n")
	err := h.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	assert.Equal(t, "UTC", h.Get().Timezone)
	assert.Contains(t, buf.String(), `"event_type":"config.reload.error"`)
}

func TestConfigHolder_ListenerNeverBlocks(t *testing.T) {
	h, _, _ := newHolder(t, "timezone: UTC\n")
	ch := make(chan AppConfig) // unbuffered and never read
	h.RegisterListener(ch)

	done := make(chan struct{})
	go func() {
		_ = h.Reload(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reload blocked on a full listener")
	}
}

func TestConfigHolder_WatcherReloadsOnWrite(t *testing.T) {
	h, path, _ := newHolder(t, "timezone: UTC\n")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.StartWatcher(ctx))
	t.Cleanup(func() {
		cancel()
		h.Stop()
	})

	writeConfig(t, path, "timezone: Europe/Berlin\n")

	assert.Eventually(t, func() bool {
		return h.Location().String() == "Europe/Berlin"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestConfigHolder_WatcherDisabledWithoutFile(t *testing.T) {
	t.Setenv("BARDISPLAY_DATA", t.TempDir())
	loader := NewLoader("", "test")
	cfg, err := loader.Load()
	require.NoError(t, err)

	h := NewConfigHolder(cfg, loader, nil)
	require.NoError(t, h.StartWatcher(context.Background()))
	h.Stop()
}

func TestConfigHolder_LogChangesFlagsStartupBoundSettings(t *testing.T) {
	h, _, _ := newHolder(t, "timezone: UTC\n")
	old := h.Get()

	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   []string
	}{
		{"timezone only", func(c *AppConfig) { c.Timezone = "Europe/Berlin" }, []string{"timezone"}},
		{"url prefix", func(c *AppConfig) { c.UploadURLPrefix = "/media/" }, []string{"restart-required"}},
		{"listen", func(c *AppConfig) { c.ListenAddr = ":9999" }, []string{"restart-required"}},
		{"presets", func(c *AppConfig) {
			c.Override.Presets = map[string]override.Preset{"quiz": {Content: "Quiz", Style: override.StyleInfo}}
		}, []string{"override.presets"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := old
			tt.mutate(&next)
			assert.Equal(t, tt.want, h.logChanges(old, next))
		})
	}
}
