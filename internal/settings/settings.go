// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package settings defines the display configuration record, its defaults and
// the upgrade path for records written by older versions.
package settings

import (
	"encoding/json"
	"fmt"
)

// CurrentVersion is the schema version written by this build.
const CurrentVersion = 2

// DisplaySettings is the full configuration pushed to every display on each poll.
// Duration is in milliseconds.
type DisplaySettings struct {
	Version int `json:"version"`

	Duration   int    `json:"duration"`
	Rotation   int    `json:"rotation"`
	Transition string `json:"transition"`

	Layout       string `json:"layout"`
	SidebarTitle string `json:"sidebar_title"`
	SidebarText  string `json:"sidebar_text"`
	SidebarClock bool   `json:"sidebar_clock"`

	CountdownActive bool   `json:"countdown_active"`
	CountdownTarget string `json:"countdown_target"`
	CountdownLabel  string `json:"countdown_label"`

	TickerText   string `json:"ticker_text"`
	TickerActive bool   `json:"ticker_active"`
	TickerBg     string `json:"ticker_bg"`
	TickerColor  string `json:"ticker_color"`

	QRActive bool   `json:"qr_active"`
	QRText   string `json:"qr_text"`

	WeatherActive bool   `json:"weather_active"`
	WeatherCity   string `json:"weather_city"`

	LogoActive   bool   `json:"logo_active"`
	LogoPosition string `json:"logo_position"`
}

const (
	DefaultDuration       = 5000
	DefaultTransition     = "fade"
	DefaultLayout         = "fullscreen"
	DefaultCountdownLabel = "Start in:"
	DefaultTickerBg       = "#cc0000"
	DefaultTickerColor    = "#ffffff"
	DefaultLogoPosition   = "top-left"
)

// Defaults returns the settings used when nothing is persisted and the
// values backfilled onto records that predate a key.
func Defaults() DisplaySettings {
	return DisplaySettings{
		Version:        CurrentVersion,
		Duration:       DefaultDuration,
		Rotation:       0,
		Transition:     DefaultTransition,
		Layout:         DefaultLayout,
		SidebarTitle:   "Willkommen",
		SidebarText:    "Infos...",
		SidebarClock:   true,
		CountdownLabel: DefaultCountdownLabel,
		TickerBg:       DefaultTickerBg,
		TickerColor:    DefaultTickerColor,
		LogoPosition:   DefaultLogoPosition,
	}
}

// upgrades[v] lifts a record from version v to v+1. Keys missing from the
// stored record have already been backfilled from Defaults when a step runs.
var upgrades = []func(*DisplaySettings){
	// 0 -> 1: unversioned records from the single-file era. Blank strings were
	// written by the admin form for untouched fields; restore their defaults.
	func(s *DisplaySettings) {
		if s.Transition == "" {
			s.Transition = DefaultTransition
		}
		if s.Layout == "" {
			s.Layout = DefaultLayout
		}
		if s.LogoPosition == "" {
			s.LogoPosition = DefaultLogoPosition
		}
	},
	// 1 -> 2: duration must be positive; a hand-edited zero or negative value
	// would stall rotation.
	func(s *DisplaySettings) {
		if s.Duration <= 0 {
			s.Duration = DefaultDuration
		}
	},
}

// Decode parses a persisted record, backfills missing keys and runs every
// upgrade step between the stored version and CurrentVersion. Records from a
// newer version are returned as decoded.
func Decode(data []byte) (DisplaySettings, error) {
	s := Defaults()
	s.Version = 0
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("decode settings: %w", err)
	}
	return Upgrade(s), nil
}

// Upgrade runs the remaining upgrade steps for s.
func Upgrade(s DisplaySettings) DisplaySettings {
	if s.Version < 0 {
		s.Version = 0
	}
	for v := s.Version; v < CurrentVersion && v < len(upgrades); v++ {
		upgrades[v](&s)
		s.Version = v + 1
	}
	return s
}

// Encode renders the record in its persisted form.
func Encode(s DisplaySettings) ([]byte, error) {
	return json.Marshal(s)
}

// View is the admin-facing rendering. Duration is additionally reported in
// whole seconds, the unit the settings form edits.
type View struct {
	DisplaySettings
	DurationSeconds int `json:"duration_seconds"`
}

// AdminView returns s as the admin form shows it.
func (s DisplaySettings) AdminView() View {
	return View{DisplaySettings: s, DurationSeconds: s.Duration / 1000}
}
