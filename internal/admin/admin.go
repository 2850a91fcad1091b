// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package admin implements the operator's mutations: reordering, time
// windows, deletion, settings and the override channel. Every mutation is a
// full record replace and is written to the audit log.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/codes"

	"github.com/ManuGH/bardisplay/internal/audit"
	"github.com/ManuGH/bardisplay/internal/catalog"
	xglog "github.com/ManuGH/bardisplay/internal/log"
	"github.com/ManuGH/bardisplay/internal/media"
	"github.com/ManuGH/bardisplay/internal/metrics"
	"github.com/ManuGH/bardisplay/internal/override"
	platformfs "github.com/ManuGH/bardisplay/internal/platform/fs"
	"github.com/ManuGH/bardisplay/internal/schedule"
	"github.com/ManuGH/bardisplay/internal/settings"
	"github.com/ManuGH/bardisplay/internal/telemetry"
)

// ErrInvalidName is returned for file names that are empty or contain a path separator.
var ErrInvalidName = errors.New("invalid file name")

// LibraryStore persists the metadata and order record.
type LibraryStore interface {
	Library(ctx context.Context) (catalog.Library, error)
	UpdateLibrary(ctx context.Context, fn func(catalog.Library) (catalog.Library, error)) (catalog.Library, error)
}

// SettingsStore persists the display settings record.
type SettingsStore interface {
	Settings(ctx context.Context) (settings.DisplaySettings, error)
	UpdateSettings(ctx context.Context, fn func(settings.DisplaySettings) (settings.DisplaySettings, error)) (settings.DisplaySettings, error)
}

// FileRemover deletes uploaded files.
type FileRemover interface {
	Remove(ctx context.Context, name string) error
}

// Service applies admin actions.
type Service struct {
	library  LibraryStore
	settings SettingsStore
	files    FileRemover
	override *override.Channel
	audit    *audit.Logger
}

func NewService(library LibraryStore, st SettingsStore, files FileRemover, ov *override.Channel, auditLogger *audit.Logger) *Service {
	if auditLogger == nil {
		auditLogger = audit.NewLogger()
	}
	return &Service{library: library, settings: st, files: files, override: ov, audit: auditLogger}
}

// Reorder replaces the display order wholesale.
func (s *Service) Reorder(ctx context.Context, order []string) (lib catalog.Library, err error) {
	ctx, done := s.begin(ctx, "reorder", "")
	defer func() { done(err) }()

	lib, err = s.library.UpdateLibrary(ctx, func(l catalog.Library) (catalog.Library, error) {
		return l.WithOrder(order), nil
	})
	s.audit.OrderChanged(ctx, order, resultOf(err))
	return lib, err
}

// SetWindow sets or clears the time window of one file. Bounds are normalized
// to "HH:MM"; unparseable bounds become empty.
func (s *Service) SetWindow(ctx context.Context, name string, w schedule.Window) (out schedule.Window, err error) {
	ctx, done := s.begin(ctx, "set_window", name)
	defer func() { done(err) }()

	if err = validName(name); err != nil {
		s.audit.WindowChanged(ctx, name, w.Start, w.End, resultOf(err))
		return schedule.Window{}, err
	}
	out = w.Normalize()
	_, err = s.library.UpdateLibrary(ctx, func(l catalog.Library) (catalog.Library, error) {
		return l.WithWindow(name, out), nil
	})
	s.audit.WindowChanged(ctx, name, out.Start, out.End, resultOf(err))
	return out, err
}

// SetWindows sets the windows of several files in one persisted update.
func (s *Service) SetWindows(ctx context.Context, windows map[string]schedule.Window) (lib catalog.Library, err error) {
	ctx, done := s.begin(ctx, "set_windows", "")
	defer func() { done(err) }()

	names := make([]string, 0, len(windows))
	for name := range windows {
		if err = validName(name); err != nil {
			w := windows[name]
			s.audit.WindowChanged(ctx, name, w.Start, w.End, resultOf(err))
			return catalog.Library{}, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	lib, err = s.library.UpdateLibrary(ctx, func(l catalog.Library) (catalog.Library, error) {
		for _, name := range names {
			l = l.WithWindow(name, windows[name])
		}
		return l, nil
	})
	for _, name := range names {
		w := windows[name].Normalize()
		s.audit.WindowChanged(ctx, name, w.Start, w.End, resultOf(err))
	}
	return lib, err
}

// Delete drops the file from both the order and the metadata in one record
// replace, then removes it from disk. The record goes first so a failed
// removal can never leave stale metadata for a later upload of the same name.
// A file already gone from disk is not an error.
func (s *Service) Delete(ctx context.Context, name string) (err error) {
	ctx, done := s.begin(ctx, "delete", name)
	defer func() {
		s.audit.FileDeleted(ctx, name, resultOf(err))
		done(err)
	}()

	if err = validName(name); err != nil {
		return err
	}
	if _, err = s.library.UpdateLibrary(ctx, func(l catalog.Library) (catalog.Library, error) {
		return l.Without(name), nil
	}); err != nil {
		return err
	}

	err = s.files.Remove(ctx, name)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, platformfs.ErrOutsideRoot):
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	case errors.Is(err, media.ErrNotFound):
		logger := xglog.WithComponentFromContext(ctx, "admin")
		logger.Debug().
			Str(xglog.FieldEvent, "admin.delete_missing_file").
			Str(xglog.FieldMedia, name).Msg("file already gone, metadata cleaned")
		return nil
	default:
		return err
	}
}

// Settings returns the stored settings in their admin rendering.
func (s *Service) Settings(ctx context.Context) (settings.View, error) {
	st, err := s.settings.Settings(ctx)
	return st.AdminView(), err
}

// UpdateSettings merges form into the stored settings. An invalid form
// leaves the stored record untouched.
func (s *Service) UpdateSettings(ctx context.Context, form settings.Form) (out settings.DisplaySettings, err error) {
	ctx, done := s.begin(ctx, "update_settings", "")
	defer func() { done(err) }()

	out, err = s.settings.UpdateSettings(ctx, func(cur settings.DisplaySettings) (settings.DisplaySettings, error) {
		return cur.Apply(form)
	})
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	s.audit.SettingsChanged(ctx, formFields(form), resultOf(err), reason)
	return out, err
}

// Override applies an override action.
func (s *Service) Override(ctx context.Context, action override.Action) (st override.State, err error) {
	ctx, done := s.begin(ctx, "override", string(action.Type))
	defer func() { done(err) }()

	st, err = s.override.Apply(action)
	telemetry.EmitOverride(ctx, string(action.Type), resultOf(err), string(st.Style), st.Revision)
	if err == nil {
		metrics.RecordOverride(string(action.Type), st.Active)
		logger := xglog.WithComponentFromContext(ctx, "admin")
		logger.Info().
			Str(xglog.FieldEvent, "override.changed").
			Bool("active", st.Active).
			Str(xglog.FieldOverrideStyle, string(st.Style)).
			Uint64(xglog.FieldRevision, st.Revision).
			Msg("override changed")
	}
	s.audit.OverrideChanged(ctx, string(action.Type), string(st.Style), st.Active, st.Revision, resultOf(err))
	return st, err
}

// OverrideState returns the current override.
func (s *Service) OverrideState() override.State { return s.override.Current() }

// Presets returns the configured override presets.
func (s *Service) Presets() map[string]override.Preset { return s.override.Presets() }

// begin opens a span for an admin action and returns a completion func that
// records metrics and the span status.
func (s *Service) begin(ctx context.Context, action, resource string) (context.Context, func(error)) {
	ctx, span := telemetry.Tracer("bardisplay/admin").Start(ctx, "admin."+action)
	span.SetAttributes(telemetry.AdminAttributes(action, resource)...)
	return ctx, func(err error) {
		metrics.IncAdminAction(action, resultOf(err))
		if err != nil {
			span.SetAttributes(telemetry.ErrorAttributes(resultOf(err))...)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// IsRejected reports whether err is the caller's fault rather than a storage failure.
func IsRejected(err error) bool {
	for _, target := range []error{
		ErrInvalidName,
		settings.ErrInvalidDuration,
		settings.ErrInvalidLayout,
		settings.ErrInvalidColor,
		override.ErrUnknownAction,
		override.ErrUnknownPreset,
		override.ErrInvalidStyle,
		override.ErrEmptyMessage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return audit.ResultSuccess
	case IsRejected(err):
		return audit.ResultRejected
	default:
		return audit.ResultFailure
	}
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// formFields lists the keys a settings form actually sets.
func formFields(f settings.Form) []string {
	data, err := json.Marshal(f)
	if err != nil {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
