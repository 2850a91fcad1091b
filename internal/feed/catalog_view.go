// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package feed

import (
	"context"

	"github.com/ManuGH/bardisplay/internal/catalog"
	xglog "github.com/ManuGH/bardisplay/internal/log"
	"github.com/ManuGH/bardisplay/internal/override"
	"github.com/ManuGH/bardisplay/internal/schedule"
	"github.com/ManuGH/bardisplay/internal/telemetry"
)

// CatalogEntry is one row of the admin file table.
type CatalogEntry struct {
	Name     string       `json:"name"`
	Type     catalog.Kind `json:"type"`
	URL      string       `json:"url"`
	Start    string       `json:"start"`
	End      string       `json:"end"`
	Eligible bool         `json:"eligible"`
}

// CatalogView is the full reconciled catalog, including items outside their
// window right now, plus the clock they were evaluated against.
type CatalogView struct {
	Files    []CatalogEntry `json:"files"`
	Now      string         `json:"now"`
	Timezone string         `json:"timezone"`
	Degraded bool           `json:"degraded"`
	Override override.State `json:"override"`
}

// Catalog returns the admin view of the catalog.
func (a *Assembler) Catalog(ctx context.Context) CatalogView {
	ctx, span := telemetry.Tracer("bardisplay/feed").Start(ctx, "feed.catalog")
	defer span.End()

	snap := a.read(ctx, xglog.WithComponentFromContext(ctx, "feed"))

	entries := make([]CatalogEntry, 0, len(snap.items))
	for _, it := range snap.items {
		entries = append(entries, CatalogEntry{
			Name:     it.Name,
			Type:     it.Kind,
			URL:      a.URLFor(it.Name),
			Start:    it.Window.Start,
			End:      it.Window.End,
			Eligible: it.Window.Contains(snap.now),
		})
	}

	return CatalogView{
		Files:    entries,
		Now:      schedule.ClockOf(snap.now).String(),
		Timezone: snap.now.Location().String(),
		Degraded: snap.degraded,
		Override: snap.override,
	}
}
