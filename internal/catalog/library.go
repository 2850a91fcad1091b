// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ManuGH/bardisplay/internal/schedule"
)

// Library is the persisted per-file metadata and the administrator's display
// order. It is always read and written as one record.
//
// Methods never mutate the receiver; they return an updated copy so a
// concurrent reader of the old value never sees a half-applied change.
type Library struct {
	Windows map[string]schedule.Window `json:"files"`
	Order   []string                   `json:"order"`
}

// Clone returns a deep copy.
func (l Library) Clone() Library {
	out := Library{
		Windows: make(map[string]schedule.Window, len(l.Windows)),
		Order:   append([]string(nil), l.Order...),
	}
	for k, v := range l.Windows {
		out.Windows[k] = v
	}
	if out.Order == nil {
		out.Order = []string{}
	}
	return out
}

// WithOrder replaces the display order wholesale. Empty and repeated names are dropped.
func (l Library) WithOrder(order []string) Library {
	out := l.Clone()
	out.Order = dedupe(order)
	return out
}

// WithWindow sets the window for name. Bounds are normalized to "HH:MM"; a
// window with no remaining bound removes the entry.
func (l Library) WithWindow(name string, w schedule.Window) Library {
	out := l.Clone()
	w = w.Normalize()
	if w.Start == "" && w.End == "" {
		delete(out.Windows, name)
		return out
	}
	out.Windows[name] = w
	return out
}

// Without removes name from both the order and the metadata.
func (l Library) Without(name string) Library {
	out := l.Clone()
	delete(out.Windows, name)
	order := out.Order[:0]
	for _, n := range out.Order {
		if n != name {
			order = append(order, n)
		}
	}
	out.Order = order
	return out
}

// MalformedWindows lists names whose stored window has an unparseable bound, sorted.
func (l Library) MalformedWindows() []string {
	var out []string
	for name, w := range l.Windows {
		if w.Malformed() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// DecodeLibrary parses a persisted record. A record without a "files" key is
// the older flat form, a bare name -> window mapping with no order.
func DecodeLibrary(data []byte) (Library, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Library{}, fmt.Errorf("decode library: %w", err)
	}

	if _, ok := probe["files"]; ok {
		var lib Library
		if err := json.Unmarshal(data, &lib); err != nil {
			return Library{}, fmt.Errorf("decode library: %w", err)
		}
		return lib.Clone(), nil
	}

	lib := Library{Windows: make(map[string]schedule.Window, len(probe)), Order: []string{}}
	for name, raw := range probe {
		var w schedule.Window
		if err := json.Unmarshal(raw, &w); err != nil {
			continue
		}
		lib.Windows[name] = w
	}
	return lib, nil
}

// EncodeLibrary renders the record in its persisted form.
func EncodeLibrary(l Library) ([]byte, error) {
	return json.Marshal(l.Clone())
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
