// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/ManuGH/bardisplay/internal/schedule"
)

func names(items []MediaItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestBuild_SavedOrderThenLexical(t *testing.T) {
	lib := Library{Order: []string{"b.png", "a.png"}}
	got := names(Build([]string{"c.png", "a.png", "b.png"}, lib))
	if diff := cmp.Diff([]string{"b.png", "a.png", "c.png"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Tolerance(t *testing.T) {
	lib := Library{
		Order: []string{"gone.png", "b.mp4", "b.mp4", "a.jpg"},
		Windows: map[string]schedule.Window{
			"orphan.png": {Start: "10:00", End: "11:00"},
			"b.mp4":      {Start: "9:00", End: "17:00"},
			"doc.pdf":    {Start: "10:00", End: "11:00"},
		},
	}
	files := []string{"a.jpg", "b.mp4", "doc.pdf", "bundle.zip", "notes.txt", "z.GIF"}

	want := []MediaItem{
		{Name: "b.mp4", Kind: KindVideo, Window: schedule.Window{Start: "09:00", End: "17:00"}},
		{Name: "a.jpg", Kind: KindImage},
		{Name: "z.GIF", Kind: KindImage},
	}
	if diff := cmp.Diff(want, Build(files, lib)); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_DuplicateDiskNames(t *testing.T) {
	got := names(Build([]string{"a.png", "a.png"}, Library{}))
	assert.Equal(t, []string{"a.png"}, got)
}

func TestBuild_Idempotent(t *testing.T) {
	files := []string{"x.png", "y.mp4", "w.jpeg"}
	lib := Library{Order: []string{"y.mp4"}}

	first := Build(files, lib)
	reordered := lib.WithOrder(names(first))
	second := Build(files, reordered)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("saving the built order changed the catalog (-first +second):\n%s", diff)
	}
}

func TestBuild_EmptyDirectory(t *testing.T) {
	lib := Library{Order: []string{"a.png"}}
	got := Build(nil, lib)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuild_MalformedWindowTreatedAsOpen(t *testing.T) {
	lib := Library{Windows: map[string]schedule.Window{
		"a.png": {Start: "late", End: "17:00"},
	}}
	items := Build([]string{"a.png"}, lib)
	if assert.Len(t, items, 1) {
		assert.Equal(t, schedule.Window{End: "17:00"}, items[0].Window)
	}
	assert.Equal(t, []string{"a.png"}, lib.MalformedWindows())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		ok   bool
	}{
		{"photo.PNG", KindImage, true},
		{"photo.jpeg", KindImage, true},
		{"clip.mp4", KindVideo, true},
		{"menu.pdf", "", false},
		{"upload.zip", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, ok := KindOf(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, k)
		})
	}
}
