// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/bardisplay/internal/catalog"
	"github.com/ManuGH/bardisplay/internal/override"
	"github.com/ManuGH/bardisplay/internal/schedule"
	"github.com/ManuGH/bardisplay/internal/settings"
)

type fakeFiles struct {
	names []string
	err   error
}

func (f *fakeFiles) ListFiles(context.Context) ([]string, error) { return f.names, f.err }

type fakeStore struct {
	lib    catalog.Library
	libErr error
	st     settings.DisplaySettings
	stErr  error
	reads  int
}

func (f *fakeStore) Library(context.Context) (catalog.Library, error) {
	f.reads++
	return f.lib, f.libErr
}

func (f *fakeStore) Settings(context.Context) (settings.DisplaySettings, error) {
	if f.stErr != nil {
		return settings.Defaults(), f.stErr
	}
	return f.st, nil
}

func at(hh, mm int) func() time.Time {
	return func() time.Time { return time.Date(2025, 3, 14, hh, mm, 0, 0, time.UTC) }
}

func newTestAssembler(files *fakeFiles, st *fakeStore, ov *override.Channel, now func() time.Time) *Assembler {
	return NewAssembler(files, st, st, ov, Options{
		Now:      now,
		Location: func() *time.Location { return time.UTC },
	})
}

func urls(r Response) []string {
	out := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		out = append(out, f.URL)
	}
	return out
}

func TestAssemble_WindowScenario(t *testing.T) {
	files := &fakeFiles{names: []string{"a.png", "b.mp4"}}
	st := &fakeStore{
		lib: catalog.Library{Windows: map[string]schedule.Window{"a.png": {Start: "22:00", End: "02:00"}}},
		st:  settings.Defaults(),
	}
	ov := override.NewChannel()

	late := newTestAssembler(files, st, ov, at(23, 30)).Assemble(context.Background())
	assert.Equal(t, []string{"/static/uploads/a.png", "/static/uploads/b.mp4"}, urls(late))
	assert.Equal(t, catalog.KindVideo, late.Files[1].Type)

	morning := newTestAssembler(files, st, ov, at(10, 0)).Assemble(context.Background())
	assert.Equal(t, []string{"/static/uploads/b.mp4"}, urls(morning))
}

func TestAssemble_BoundaryTakesEffectNextCall(t *testing.T) {
	files := &fakeFiles{names: []string{"a.png"}}
	st := &fakeStore{
		lib: catalog.Library{Windows: map[string]schedule.Window{"a.png": {Start: "18:00", End: "20:00"}}},
		st:  settings.Defaults(),
	}
	now := time.Date(2025, 3, 14, 17, 59, 0, 0, time.UTC)
	a := NewAssembler(files, st, st, override.NewChannel(), Options{
		Now:      func() time.Time { return now },
		Location: func() *time.Location { return time.UTC },
	})

	assert.Empty(t, a.Assemble(context.Background()).Files)
	now = now.Add(time.Minute)
	assert.Len(t, a.Assemble(context.Background()).Files, 1)
	assert.Equal(t, 2, st.reads, "every call reads the store again")
}

func TestAssemble_OverrideDoesNotDropRotation(t *testing.T) {
	files := &fakeFiles{names: []string{"a.png"}}
	st := &fakeStore{st: settings.Defaults()}
	ov := override.NewChannel()
	_, err := ov.TriggerPreset("lastcall")
	require.NoError(t, err)

	resp := newTestAssembler(files, st, ov, at(12, 0)).Assemble(context.Background())
	assert.True(t, resp.Override.Active)
	assert.Equal(t, override.StyleWarning, resp.Override.Style)
	assert.Len(t, resp.Files, 1)
}

func TestAssemble_StorageFailuresFailClosed(t *testing.T) {
	boom := errors.New("disk on fire")

	t.Run("library unreadable", func(t *testing.T) {
		files := &fakeFiles{names: []string{"b.png", "a.png"}}
		st := &fakeStore{libErr: boom, st: settings.Defaults()}
		resp := newTestAssembler(files, st, override.NewChannel(), at(12, 0)).Assemble(context.Background())
		assert.Equal(t, []string{"/static/uploads/a.png", "/static/uploads/b.png"}, urls(resp), "lexical order, no windows")
	})

	t.Run("uploads unreadable", func(t *testing.T) {
		files := &fakeFiles{err: boom}
		st := &fakeStore{st: settings.Defaults()}
		resp := newTestAssembler(files, st, override.NewChannel(), at(12, 0)).Assemble(context.Background())
		assert.NotNil(t, resp.Files)
		assert.Empty(t, resp.Files)
	})

	t.Run("settings unreadable", func(t *testing.T) {
		files := &fakeFiles{names: []string{"a.png"}}
		st := &fakeStore{stErr: boom}
		resp := newTestAssembler(files, st, override.NewChannel(), at(12, 0)).Assemble(context.Background())
		assert.Equal(t, settings.Defaults(), resp.Settings)
		assert.Len(t, resp.Files, 1)
	})
}

func TestAssemble_WireShape(t *testing.T) {
	files := &fakeFiles{}
	st := &fakeStore{st: settings.Defaults()}
	resp := newTestAssembler(files, st, override.NewChannel(), at(12, 0)).Assemble(context.Background())

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))
	assert.Equal(t, "[]", string(top["files"]), "files is never null")
	assert.Contains(t, top, "settings")
	assert.Contains(t, top, "override")

	var ov map[string]any
	require.NoError(t, json.Unmarshal(top["override"], &ov))
	assert.Equal(t, false, ov["active"])
	assert.Equal(t, "none", ov["type"])
}

func TestURLFor_Escapes(t *testing.T) {
	a := NewAssembler(&fakeFiles{}, &fakeStore{}, &fakeStore{}, override.NewChannel(), Options{URLPrefix: "/media"})
	assert.Equal(t, "/media/Happy%20Hour%20%231.png", a.URLFor("Happy Hour #1.png"))
}

func TestAssemble_UsesConfiguredLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	files := &fakeFiles{names: []string{"a.png"}}
	st := &fakeStore{
		lib: catalog.Library{Windows: map[string]schedule.Window{"a.png": {Start: "22:00", End: "23:00"}}},
		st:  settings.Defaults(),
	}
	// 21:30 UTC in March is 22:30 in Berlin
	a := NewAssembler(files, st, st, override.NewChannel(), Options{
		Now:      at(21, 30),
		Location: func() *time.Location { return berlin },
	})
	assert.Len(t, a.Assemble(context.Background()).Files, 1)
}
