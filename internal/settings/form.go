// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package settings

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidDuration = errors.New("duration must be a positive number of seconds")
	ErrInvalidLayout   = errors.New("layout must be fullscreen or a sidebar variant")
	ErrInvalidColor    = errors.New("color must be a hex value like #cc0000")
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Form is a partial update submitted by the admin UI. Nil fields are left
// unchanged. Duration is in seconds.
type Form struct {
	Duration   *int    `json:"duration,omitempty"`
	Rotation   *int    `json:"rotation,omitempty"`
	Transition *string `json:"transition,omitempty"`

	Layout       *string `json:"layout,omitempty"`
	SidebarTitle *string `json:"sidebar_title,omitempty"`
	SidebarText  *string `json:"sidebar_text,omitempty"`
	SidebarClock *bool   `json:"sidebar_clock,omitempty"`

	CountdownActive *bool   `json:"countdown_active,omitempty"`
	CountdownTarget *string `json:"countdown_target,omitempty"`
	CountdownLabel  *string `json:"countdown_label,omitempty"`

	TickerText   *string `json:"ticker_text,omitempty"`
	TickerActive *bool   `json:"ticker_active,omitempty"`
	TickerBg     *string `json:"ticker_bg,omitempty"`
	TickerColor  *string `json:"ticker_color,omitempty"`

	QRActive *bool   `json:"qr_active,omitempty"`
	QRText   *string `json:"qr_text,omitempty"`

	WeatherActive *bool   `json:"weather_active,omitempty"`
	WeatherCity   *string `json:"weather_city,omitempty"`

	LogoActive   *bool   `json:"logo_active,omitempty"`
	LogoPosition *string `json:"logo_position,omitempty"`
}

// ValidLayout reports whether layout is fullscreen or a sidebar variant.
func ValidLayout(layout string) bool {
	return layout == "fullscreen" || strings.HasPrefix(layout, "sidebar")
}

// Validate checks the fields the form sets. It does not look at s.
func (f Form) Validate() error {
	if f.Duration != nil && *f.Duration <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, *f.Duration)
	}
	if f.Layout != nil && !ValidLayout(strings.TrimSpace(*f.Layout)) {
		return fmt.Errorf("%w: got %q", ErrInvalidLayout, *f.Layout)
	}
	for field, v := range map[string]*string{"ticker_bg": f.TickerBg, "ticker_color": f.TickerColor} {
		if v != nil && !hexColor.MatchString(strings.TrimSpace(*v)) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidColor, field, *v)
		}
	}
	return nil
}

// Apply returns s with the form's fields merged in. On a validation error the
// receiver is returned unchanged along with the error, so no partial update is
// ever persisted.
func (s DisplaySettings) Apply(f Form) (DisplaySettings, error) {
	if err := f.Validate(); err != nil {
		return s, err
	}
	out := s
	if f.Duration != nil {
		out.Duration = *f.Duration * 1000
	}
	setInt(&out.Rotation, f.Rotation)
	setString(&out.Transition, f.Transition)
	setString(&out.Layout, f.Layout)
	setString(&out.SidebarTitle, f.SidebarTitle)
	setString(&out.SidebarText, f.SidebarText)
	setBool(&out.SidebarClock, f.SidebarClock)
	setBool(&out.CountdownActive, f.CountdownActive)
	setString(&out.CountdownTarget, f.CountdownTarget)
	setString(&out.CountdownLabel, f.CountdownLabel)
	setString(&out.TickerText, f.TickerText)
	setBool(&out.TickerActive, f.TickerActive)
	setString(&out.TickerBg, f.TickerBg)
	setString(&out.TickerColor, f.TickerColor)
	setBool(&out.QRActive, f.QRActive)
	setString(&out.QRText, f.QRText)
	setBool(&out.WeatherActive, f.WeatherActive)
	setString(&out.WeatherCity, f.WeatherCity)
	setBool(&out.LogoActive, f.LogoActive)
	setString(&out.LogoPosition, f.LogoPosition)

	for _, p := range []*string{&out.Layout, &out.TickerBg, &out.TickerColor, &out.Transition, &out.LogoPosition} {
		*p = strings.TrimSpace(*p)
	}
	out.Version = CurrentVersion
	return out, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
