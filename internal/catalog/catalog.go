// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package catalog reconciles the files present in the uploads directory with
// the persisted display order and per-file windows.
package catalog

import (
	"sort"

	"github.com/ManuGH/bardisplay/internal/schedule"
)

// Build returns the ordered, deduplicated list of displayable items.
//
// Saved order comes first, restricted to files that exist. Files the order does
// not mention follow in lexical order, so new uploads show up before anyone
// re-sorts them. Stale order entries, orphaned metadata and files without
// metadata are all tolerated. Files with a non-displayable extension are
// dropped even when metadata exists for them.
func Build(files []string, lib Library) []MediaItem {
	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[f] = struct{}{}
	}

	names := make([]string, 0, len(present))
	seen := make(map[string]struct{}, len(present))
	for _, n := range lib.Order {
		if _, ok := present[n]; !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}

	rest := make([]string, 0, len(present)-len(names))
	for n := range present {
		if _, ok := seen[n]; !ok {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	items := make([]MediaItem, 0, len(names))
	for _, n := range names {
		kind, ok := KindOf(n)
		if !ok {
			continue
		}
		var w schedule.Window
		if lib.Windows != nil {
			w = lib.Windows[n].Normalize()
		}
		items = append(items, MediaItem{Name: n, Kind: kind, Window: w})
	}
	return items
}
