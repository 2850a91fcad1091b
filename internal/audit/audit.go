// SPDX-License-Identifier: MIT

// Package audit records who changed what on the display and when.
// It follows the WHO/WHAT/WHEN pattern: every admin mutation produces one
// structured line on the "audit" component.
package audit

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/bardisplay/internal/log"
)

// EventType represents the type of audit event.
type EventType string

const (
	// Configuration events
	EventConfigReload      EventType = "config.reload"
	EventConfigReloadError EventType = "config.reload.error"

	// Catalog events
	EventOrderChanged  EventType = "catalog.order"
	EventWindowChanged EventType = "catalog.window"
	EventFileDeleted   EventType = "catalog.delete"

	// Settings events
	EventSettingsChanged EventType = "settings.update"

	// Override events
	EventOverrideTriggered EventType = "override.trigger"
	EventOverrideStopped   EventType = "override.stop"

	// API access events
	EventAPIRateLimit EventType = "api.ratelimit"
)

// Results
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultFailure  = "failure"
	ResultDenied   = "denied"
)

// Event represents a structured audit event.
type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	Type       EventType         `json:"type"`
	Actor      string            `json:"actor"`             // WHO: remote address or "system"
	Action     string            `json:"action"`            // WHAT: human-readable action description
	Resource   string            `json:"resource"`          // file name, "order", "settings", "override"
	Result     string            `json:"result"`            // success, rejected, failure, denied
	RemoteAddr string            `json:"remote_addr"`       // Client IP address
	UserAgent  string            `json:"user_agent"`        // Client user agent
	RequestID  string            `json:"request_id"`        // Correlation ID
	Details    map[string]string `json:"details,omitempty"` // Additional context
}

// Actor identifies the client behind a request.
type Actor struct {
	RemoteAddr string
	UserAgent  string
}

type actorKey struct{}

// ContextWithActor attaches the requesting client to ctx.
func ContextWithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the client attached by ContextWithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// Logger provides audit logging functionality.
type Logger struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewLogger creates a new audit logger on the "audit" component.
func NewLogger() *Logger {
	return NewLoggerWith(xglog.WithComponent("audit"))
}

// NewLoggerWith writes audit events to base.
func NewLoggerWith(base zerolog.Logger) *Logger {
	return &Logger{
		logger: base.With().Str("log_type", "audit").Logger(),
		now:    time.Now,
	}
}

// Log writes an audit event to the audit log.
func (l *Logger) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}
	if event.Actor == "" {
		event.Actor = "system"
	}

	logEvent := l.logger.Info().
		Str(xglog.FieldEvent, "audit."+string(event.Type)).
		Time("timestamp", event.Timestamp).
		Str("event_type", string(event.Type)).
		Str("actor", event.Actor).
		Str("action", event.Action).
		Str("resource", event.Resource).
		Str("result", event.Result)

	if event.RemoteAddr != "" {
		logEvent.Str(xglog.FieldRemote, event.RemoteAddr)
	}
	if event.UserAgent != "" {
		logEvent.Str("user_agent", event.UserAgent)
	}
	if event.RequestID != "" {
		logEvent.Str(xglog.FieldRequestID, event.RequestID)
	}

	keys := make([]string, 0, len(event.Details))
	for k := range event.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		logEvent.Str(k, event.Details[k])
	}

	logEvent.Msg("audit event")
}

// LogFromContext fills request id and actor from ctx before logging.
func (l *Logger) LogFromContext(ctx context.Context, event Event) {
	if event.RequestID == "" {
		event.RequestID = xglog.RequestIDFromContext(ctx)
	}
	if a, ok := ActorFromContext(ctx); ok {
		if event.RemoteAddr == "" {
			event.RemoteAddr = a.RemoteAddr
		}
		if event.UserAgent == "" {
			event.UserAgent = a.UserAgent
		}
		if event.Actor == "" {
			event.Actor = a.RemoteAddr
		}
	}
	l.Log(event)
}

// ConfigReload logs a configuration reload event.
func (l *Logger) ConfigReload(actor, result string, details map[string]string) {
	typ := EventConfigReload
	if result != ResultSuccess {
		typ = EventConfigReloadError
	}
	l.Log(Event{
		Type:     typ,
		Actor:    actor,
		Action:   "reloaded configuration",
		Resource: "config",
		Result:   result,
		Details:  details,
	})
}

// OrderChanged logs a wholesale reorder.
func (l *Logger) OrderChanged(ctx context.Context, order []string, result string) {
	l.LogFromContext(ctx, Event{
		Type:     EventOrderChanged,
		Action:   "replaced display order",
		Resource: "order",
		Result:   result,
		Details: map[string]string{
			"count": strconv.Itoa(len(order)),
		},
	})
}

// WindowChanged logs a time window change for one file.
func (l *Logger) WindowChanged(ctx context.Context, name, start, end, result string) {
	l.LogFromContext(ctx, Event{
		Type:     EventWindowChanged,
		Action:   "set time window",
		Resource: name,
		Result:   result,
		Details: map[string]string{
			"start": start,
			"end":   end,
		},
	})
}

// FileDeleted logs removal of an uploaded file.
func (l *Logger) FileDeleted(ctx context.Context, name, result string) {
	l.LogFromContext(ctx, Event{
		Type:     EventFileDeleted,
		Action:   "deleted file",
		Resource: name,
		Result:   result,
	})
}

// SettingsChanged logs a settings update. fields lists the submitted keys.
func (l *Logger) SettingsChanged(ctx context.Context, fields []string, result, reason string) {
	details := map[string]string{"fields": strings.Join(fields, ",")}
	if reason != "" {
		details["reason"] = reason
	}
	l.LogFromContext(ctx, Event{
		Type:     EventSettingsChanged,
		Action:   "updated display settings",
		Resource: "settings",
		Result:   result,
		Details:  details,
	})
}

// OverrideChanged logs an override trigger or stop.
func (l *Logger) OverrideChanged(ctx context.Context, action, style string, active bool, revision uint64, result string) {
	typ := EventOverrideTriggered
	desc := "triggered override (" + action + ")"
	if !active && result == ResultSuccess {
		typ = EventOverrideStopped
		desc = "stopped override"
	}
	l.LogFromContext(ctx, Event{
		Type:     typ,
		Action:   desc,
		Resource: "override",
		Result:   result,
		Details: map[string]string{
			"style":    style,
			"revision": strconv.FormatUint(revision, 10),
		},
	})
}

// RateLimitExceeded logs rate limit violations.
func (l *Logger) RateLimitExceeded(remoteAddr, endpoint string) {
	l.Log(Event{
		Type:       EventAPIRateLimit,
		Actor:      remoteAddr,
		Action:     "rate limit exceeded",
		Resource:   endpoint,
		Result:     ResultDenied,
		RemoteAddr: remoteAddr,
	})
}
