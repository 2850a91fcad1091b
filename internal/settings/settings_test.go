// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_BackfillsMissingKeys(t *testing.T) {
	// a record written before countdown and version existed
	s, err := Decode([]byte(`{"duration": 8000, "layout": "sidebar-left", "ticker_text": "Live ab 21 Uhr"}`))
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, s.Version)
	assert.Equal(t, 8000, s.Duration)
	assert.Equal(t, "sidebar-left", s.Layout)
	assert.Equal(t, "Live ab 21 Uhr", s.TickerText)
	assert.Equal(t, DefaultCountdownLabel, s.CountdownLabel)
	assert.Equal(t, DefaultTickerBg, s.TickerBg)
	assert.True(t, s.SidebarClock)
}

func TestDecode_UpgradeSteps(t *testing.T) {
	s, err := Decode([]byte(`{"duration": 0, "transition": "", "layout": "", "logo_position": ""}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultDuration, s.Duration)
	assert.Equal(t, DefaultTransition, s.Transition)
	assert.Equal(t, DefaultLayout, s.Layout)
	assert.Equal(t, DefaultLogoPosition, s.LogoPosition)
}

func TestDecode_CurrentVersionUntouched(t *testing.T) {
	s, err := Decode([]byte(`{"version": 2, "duration": 3000, "transition": ""}`))
	require.NoError(t, err)
	assert.Equal(t, 3000, s.Duration)
	assert.Equal(t, "", s.Transition, "upgrade steps only run for older records")
}

func TestDecode_Corrupt(t *testing.T) {
	s, err := Decode([]byte(`{"duration":`))
	assert.Error(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestEncodeDecode(t *testing.T) {
	in := Defaults()
	in.QRActive = true
	in.QRText = "https://example.org/menu"
	data, err := Encode(in)
	require.NoError(t, err)
	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestAdminView(t *testing.T) {
	s := Defaults()
	s.Duration = 12000
	v := s.AdminView()
	assert.Equal(t, 12, v.DurationSeconds)
	assert.Equal(t, 12000, v.Duration)
}
