// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package feed assembles the composite response the display client polls:
// the currently eligible files in order, the display settings and the
// override state.
//
// Nothing here is cached. Every call reads the uploads directory and the
// store again, so an admin change or a window boundary takes effect on the
// next poll. Read failures degrade to defaults and never fail the response.
package feed

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/bardisplay/internal/catalog"
	xglog "github.com/ManuGH/bardisplay/internal/log"
	"github.com/ManuGH/bardisplay/internal/metrics"
	"github.com/ManuGH/bardisplay/internal/override"
	"github.com/ManuGH/bardisplay/internal/schedule"
	"github.com/ManuGH/bardisplay/internal/settings"
	"github.com/ManuGH/bardisplay/internal/telemetry"
)

// FileLister lists the names present in the uploads directory.
type FileLister interface {
	ListFiles(ctx context.Context) ([]string, error)
}

// LibraryReader reads the persisted metadata and order.
type LibraryReader interface {
	Library(ctx context.Context) (catalog.Library, error)
}

// SettingsReader reads the persisted display settings.
type SettingsReader interface {
	Settings(ctx context.Context) (settings.DisplaySettings, error)
}

// OverrideReader exposes the current override state.
type OverrideReader interface {
	Current() override.State
}

// File is one entry of the rotation as the client sees it.
type File struct {
	URL  string       `json:"url"`
	Type catalog.Kind `json:"type"`
}

// Response is the feed. All three fields are always present.
type Response struct {
	Files    []File                   `json:"files"`
	Settings settings.DisplaySettings `json:"settings"`
	Override override.State           `json:"override"`
}

// DefaultURLPrefix is where the uploads directory is served.
const DefaultURLPrefix = "/static/uploads/"

// Options configures an Assembler. Zero values fall back to defaults.
type Options struct {
	URLPrefix string
	// Now returns the current instant. Defaults to time.Now.
	Now func() time.Time
	// Location returns the zone windows are evaluated in. It is called per
	// request so a config reload can change it. Defaults to time.Local.
	Location func() *time.Location
	// WarnInterval throttles repeated fallback warnings. Defaults to one minute.
	WarnInterval time.Duration
}

// Assembler builds feed responses.
type Assembler struct {
	files    FileLister
	library  LibraryReader
	settings SettingsReader
	override OverrideReader

	urlPrefix string
	now       func() time.Time
	location  func() *time.Location

	warnFiles    rate.Sometimes
	warnLibrary  rate.Sometimes
	warnSettings rate.Sometimes
	warnWindows  rate.Sometimes
}

// NewAssembler wires the assembler to its inputs.
func NewAssembler(files FileLister, library LibraryReader, st SettingsReader, ov OverrideReader, opts Options) *Assembler {
	a := &Assembler{
		files:     files,
		library:   library,
		settings:  st,
		override:  ov,
		urlPrefix: opts.URLPrefix,
		now:       opts.Now,
		location:  opts.Location,
	}
	if a.urlPrefix == "" {
		a.urlPrefix = DefaultURLPrefix
	}
	if !strings.HasSuffix(a.urlPrefix, "/") {
		a.urlPrefix += "/"
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.location == nil {
		a.location = func() *time.Location { return time.Local }
	}
	interval := opts.WarnInterval
	if interval <= 0 {
		interval = time.Minute
	}
	for _, s := range []*rate.Sometimes{&a.warnFiles, &a.warnLibrary, &a.warnSettings, &a.warnWindows} {
		s.First = 1
		s.Interval = interval
	}
	return a
}

// snapshot is one consistent read of every input.
type snapshot struct {
	items    []catalog.MediaItem
	settings settings.DisplaySettings
	override override.State
	now      time.Time
	degraded bool
}

func (a *Assembler) read(ctx context.Context, logger zerolog.Logger) snapshot {
	snap := snapshot{now: a.localNow()}

	names, err := a.files.ListFiles(ctx)
	if err != nil {
		snap.degraded = true
		names = nil
		metrics.IncStorageFallback("files")
		a.warnFiles.Do(func() {
			logger.Warn().Err(err).Str(xglog.FieldEvent, "feed.storage_fallback").
				Str(xglog.FieldRecord, "files").Msg("uploads directory unreadable, serving empty catalog")
		})
	}

	lib, err := a.library.Library(ctx)
	if err != nil {
		snap.degraded = true
		lib = catalog.Library{}
		metrics.IncStorageFallback("library")
		a.warnLibrary.Do(func() {
			logger.Warn().Err(err).Str(xglog.FieldEvent, "feed.storage_fallback").
				Str(xglog.FieldRecord, "library").Msg("file metadata unreadable, using empty order and no windows")
		})
	}

	if bad := lib.MalformedWindows(); len(bad) > 0 {
		metrics.AddMalformedWindows(len(bad))
		a.warnWindows.Do(func() {
			logger.Warn().Str(xglog.FieldEvent, "feed.malformed_window").
				Strs(xglog.FieldMedia, bad).Msg("ignoring unparseable time window")
		})
	}

	st, err := a.settings.Settings(ctx)
	if err != nil {
		snap.degraded = true
		st = settings.Defaults()
		metrics.IncStorageFallback("settings")
		a.warnSettings.Do(func() {
			logger.Warn().Err(err).Str(xglog.FieldEvent, "feed.storage_fallback").
				Str(xglog.FieldRecord, "settings").Msg("settings unreadable, serving defaults")
		})
	}

	snap.items = catalog.Build(names, lib)
	snap.settings = st
	snap.override = a.override.Current()
	return snap
}

// Assemble returns the feed for this instant. It never fails; see the package doc.
func (a *Assembler) Assemble(ctx context.Context) Response {
	start := time.Now()
	ctx, span := telemetry.Tracer("bardisplay/feed").Start(ctx, "feed.assemble")
	defer span.End()

	logger := xglog.WithComponentFromContext(ctx, "feed")
	snap := a.read(ctx, logger)

	eligible := schedule.FilterEligible(snap.items, snap.now)
	files := make([]File, 0, len(eligible))
	for _, it := range eligible {
		files = append(files, File{URL: a.URLFor(it.Name), Type: it.Kind})
	}

	span.SetAttributes(telemetry.FeedAttributes(len(snap.items), len(files), snap.degraded, snap.override.Active)...)
	metrics.RecordFeed(snap.degraded, len(snap.items), len(files), time.Since(start))

	return Response{
		Files:    files,
		Settings: snap.settings,
		Override: snap.override,
	}
}

// URLFor returns the public URL of an uploaded file.
func (a *Assembler) URLFor(name string) string {
	return a.urlPrefix + url.PathEscape(name)
}

func (a *Assembler) localNow() time.Time {
	loc := a.location()
	if loc == nil {
		loc = time.Local
	}
	return a.now().In(loc)
}
