// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package override

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	ts := time.Date(2025, 6, 1, 21, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func TestChannel_StartsInactive(t *testing.T) {
	c := NewChannel()
	s := c.Current()
	assert.False(t, s.Active)
	assert.Equal(t, KindNone, s.Kind)
	assert.Empty(t, s.Content)
	assert.Zero(t, s.Revision)
}

func TestChannel_TriggerAndStop(t *testing.T) {
	c := NewChannel(WithClock(fixedClock()))

	s, err := c.Trigger("Küche schließt", "")
	require.NoError(t, err)
	assert.True(t, s.Active)
	assert.Equal(t, KindText, s.Kind)
	assert.Equal(t, StyleAlert, s.Style)
	assert.Equal(t, uint64(1), s.Revision)
	assert.Equal(t, fixedClock()(), s.UpdatedAt)
	assert.Equal(t, s, c.Current())

	stopped := c.Stop()
	assert.False(t, stopped.Active)
	assert.Equal(t, "Küche schließt", stopped.Content, "stop keeps the last message for the admin view")
	assert.Equal(t, uint64(2), stopped.Revision)
}

func TestChannel_PresetThenStopEndsInactive(t *testing.T) {
	c := NewChannel()
	_, err := c.Apply(Action{Type: ActionPreset, Preset: "happyhour"})
	require.NoError(t, err)
	_, err = c.Apply(Action{Type: ActionStop})
	require.NoError(t, err)

	s := c.Current()
	assert.False(t, s.Active)
	assert.Equal(t, uint64(2), s.Revision)
}

func TestChannel_RetriggerReplacesWholesale(t *testing.T) {
	c := NewChannel()
	_, err := c.Trigger("first", StyleInfo)
	require.NoError(t, err)
	s, err := c.Trigger("second", StyleParty)
	require.NoError(t, err)
	assert.Equal(t, "second", s.Content)
	assert.Equal(t, StyleParty, s.Style)
}

func TestChannel_Presets(t *testing.T) {
	c := NewChannel()

	s, err := c.TriggerPreset("happyhour")
	require.NoError(t, err)
	assert.Equal(t, StyleParty, s.Style)
	assert.Contains(t, s.Content, "HAPPY HOUR")

	s, err = c.TriggerPreset("LastCall")
	require.NoError(t, err)
	assert.Equal(t, StyleWarning, s.Style)

	_, err = c.TriggerPreset("brunch")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestChannel_CustomPresets(t *testing.T) {
	c := NewChannel(WithPresets(map[string]Preset{"quiz": {Content: "Pub Quiz 20:00", Style: StyleInfo}}))
	_, err := c.TriggerPreset("happyhour")
	assert.ErrorIs(t, err, ErrUnknownPreset)

	s, err := c.TriggerPreset("quiz")
	require.NoError(t, err)
	assert.Equal(t, "Pub Quiz 20:00", s.Content)
}

func TestChannel_SetPresetsKeepsActiveOverride(t *testing.T) {
	c := NewChannel(WithClock(fixedClock()))
	on, err := c.TriggerPreset("happyhour")
	require.NoError(t, err)

	c.SetPresets(map[string]Preset{"Kitchen": {Content: "Kitchen closes at 22:00", Style: StyleInfo}})

	assert.Equal(t, on, c.Current())
	_, err = c.TriggerPreset("happyhour")
	assert.ErrorIs(t, err, ErrUnknownPreset)

	st, err := c.TriggerPreset("kitchen")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen closes at 22:00", st.Content)
	assert.Equal(t, StyleInfo, st.Style)
}

func TestChannel_Apply(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr error
		active  bool
	}{
		{"message", Action{Type: ActionMessage, Text: "hi", Style: StyleInfo}, nil, true},
		{"preset", Action{Type: ActionPreset, Preset: "lastcall"}, nil, true},
		{"stop", Action{Type: ActionStop}, nil, false},
		{"unknown", Action{Type: "dance"}, ErrUnknownAction, false},
		{"bad style", Action{Type: ActionMessage, Text: "hi", Style: "neon"}, ErrInvalidStyle, false},
		{"empty text", Action{Type: ActionMessage, Text: "  "}, ErrEmptyMessage, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChannel()
			s, err := c.Apply(tt.action)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, uint64(0), c.Current().Revision, "failed action must not change state")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.active, s.Active)
		})
	}
}

func TestChannel_ConcurrentReadersNeverSeeTornState(t *testing.T) {
	c := NewChannel()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				style := StyleInfo
				if i%2 == 0 {
					style = StyleParty
				}
				_, _ = c.Trigger(fmt.Sprintf("%s|%d-%d", style, w, i), style)
			}
		}(w)
	}

	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				s := c.Current()
				if s.Active {
					assert.Contains(t, s.Content, string(s.Style)+"|")
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	readers.Wait()
	assert.Equal(t, uint64(800), c.Current().Revision)
}
