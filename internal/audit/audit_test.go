// SPDX-License-Identifier: MIT

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xglog "github.com/ManuGH/bardisplay/internal/log"
)

func capture(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewLoggerWith(zerolog.New(&buf)), &buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &m))
	return m
}

func TestNewLogger(t *testing.T) {
	assert.NotNil(t, NewLogger())
}

func TestLog_DefaultsAndDetails(t *testing.T) {
	l, buf := capture(t)
	l.Log(Event{Type: EventConfigReload, Action: "reloaded", Resource: "config", Result: ResultSuccess,
		Details: map[string]string{"changes": "3"}})

	m := lastLine(t, buf)
	assert.Equal(t, "system", m["actor"])
	assert.Equal(t, "audit", m["log_type"])
	assert.Equal(t, "config.reload", m["event_type"])
	assert.Equal(t, "3", m["changes"])
	assert.NotEmpty(t, m["timestamp"])
}

func TestLogFromContext_ActorAndRequestID(t *testing.T) {
	l, buf := capture(t)
	ctx := xglog.ContextWithRequestID(context.Background(), "req-42")
	ctx = ContextWithActor(ctx, Actor{RemoteAddr: "10.0.0.7", UserAgent: "curl/8"})

	l.FileDeleted(ctx, "old.png", ResultSuccess)

	m := lastLine(t, buf)
	assert.Equal(t, "catalog.delete", m["event_type"])
	assert.Equal(t, "10.0.0.7", m["actor"])
	assert.Equal(t, "req-42", m["request_id"])
	assert.Equal(t, "curl/8", m["user_agent"])
	assert.Equal(t, "old.png", m["resource"])
}

func TestOverrideChanged(t *testing.T) {
	l, buf := capture(t)

	l.OverrideChanged(context.Background(), "preset", "party", true, 1, ResultSuccess)
	assert.Equal(t, "override.trigger", lastLine(t, buf)["event_type"])

	l.OverrideChanged(context.Background(), "stop", "party", false, 2, ResultSuccess)
	m := lastLine(t, buf)
	assert.Equal(t, "override.stop", m["event_type"])
	assert.Equal(t, "2", m["revision"])
}

func TestConfigReload_Failure(t *testing.T) {
	l, buf := capture(t)
	l.ConfigReload("sighup", ResultFailure, map[string]string{"error": "bad yaml"})
	m := lastLine(t, buf)
	assert.Equal(t, "config.reload.error", m["event_type"])
	assert.Equal(t, "sighup", m["actor"])
}

func TestSettingsChanged(t *testing.T) {
	l, buf := capture(t)
	l.SettingsChanged(context.Background(), []string{"duration", "layout"}, ResultRejected, "duration must be positive")
	m := lastLine(t, buf)
	assert.Equal(t, "duration,layout", m["fields"])
	assert.Equal(t, "rejected", m["result"])
}
