// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/bardisplay/internal/config"
	"github.com/ManuGH/bardisplay/internal/feed"
)

func testAppConfig(t *testing.T) config.AppConfig {
	t.Helper()
	cfg := config.Defaults()
	cfg.Version = "test"
	cfg.DataDir = t.TempDir()
	cfg.UploadDir = filepath.Join(cfg.DataDir, "uploads")
	cfg.Timezone = "UTC"
	cfg.Store.Backend = "memory"
	cfg.ListenAddr = reserveListenAddr(t)
	cfg.RateLimit.Enabled = false
	return cfg
}

func TestBootstrap_RequiresLoader(t *testing.T) {
	_, err := Bootstrap(context.Background(), testAppConfig(t), nil)
	assert.Error(t, err)
}

func TestBootstrap_UnknownStore(t *testing.T) {
	cfg := testAppConfig(t)
	cfg.Store.Backend = "tape"
	_, err := Bootstrap(context.Background(), cfg, config.NewLoader("", "test"))
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestBootstrap_ServesFeed(t *testing.T) {
	cfg := testAppConfig(t)
	rt, err := Bootstrap(context.Background(), cfg, config.NewLoader("", "test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Store.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(cfg.UploadDir, "b.png"), []byte("png"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.UploadDir, "a.mp4"), []byte("mp4"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.UploadDir, "notes.txt"), []byte("x"), 0o600))

	rec := httptest.NewRecorder()
	rt.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp feed.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Files, 2)
	assert.Equal(t, "/static/uploads/a.mp4", resp.Files[0].URL)
	assert.Equal(t, "/static/uploads/b.png", resp.Files[1].URL)
	assert.Equal(t, 5000, resp.Settings.Duration)
	assert.False(t, resp.Override.Active)
}

func TestBootstrap_RunServesUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := testAppConfig(t)
	rt, err := Bootstrap(context.Background(), cfg, config.NewLoader("", "test"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.App.Run(ctx) }()

	require.NoError(t, waitForListen(cfg.ListenAddr, 2*time.Second))

	client := &http.Client{Timeout: 2 * time.Second, Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + cfg.ListenAddr + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
