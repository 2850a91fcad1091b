// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package schedule decides whether a media item may be shown at a given time of day.
//
// Windows are daily and carry no date or weekday. A window whose start is later
// than its end wraps past midnight. Evaluation fails open: an empty or malformed
// bound means the item is always eligible, so a bad record can never blank the
// display.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// clockLayout is the canonical wire form of a time of day.
const clockLayout = "15:04"

// Clock is a time of day at minute resolution.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses a 24-hour "H:MM" or "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return Clock{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// ClockOf returns the time of day of t in t's location, truncated to the minute.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

func (c Clock) minutes() int { return c.Hour*60 + c.Minute }

// String renders the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// NormalizeTime canonicalizes a configured time of day to "HH:MM".
// Empty and unparseable input both normalize to "" (no bound).
func NormalizeTime(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	c, err := ParseClock(s)
	if err != nil {
		return ""
	}
	return c.String()
}

// Window is an optional daily start/end pair. Either side empty means unrestricted.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Unrestricted reports whether the window places no limit on eligibility.
func (w Window) Unrestricted() bool {
	return strings.TrimSpace(w.Start) == "" || strings.TrimSpace(w.End) == ""
}

// Normalize returns the window with both bounds in canonical form.
func (w Window) Normalize() Window {
	return Window{Start: NormalizeTime(w.Start), End: NormalizeTime(w.End)}
}

// Malformed reports whether a non-empty bound fails to parse.
func (w Window) Malformed() bool {
	bad := func(s string) bool {
		if strings.TrimSpace(s) == "" {
			return false
		}
		_, err := ParseClock(s)
		return err != nil
	}
	return bad(w.Start) || bad(w.End)
}

// Contains reports whether now falls inside the window.
func (w Window) Contains(now time.Time) bool {
	return InWindow(w.Start, w.End, now)
}

// InWindow reports whether the time of day of now lies within [start, end].
// Both bounds are inclusive at minute resolution. start > end wraps past
// midnight. Missing or malformed bounds return true.
func InWindow(start, end string, now time.Time) bool {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return true
	}
	s, err := ParseClock(start)
	if err != nil {
		return true
	}
	e, err := ParseClock(end)
	if err != nil {
		return true
	}

	cur := ClockOf(now).minutes()
	if s.minutes() <= e.minutes() {
		return s.minutes() <= cur && cur <= e.minutes()
	}
	return cur >= s.minutes() || cur <= e.minutes()
}
