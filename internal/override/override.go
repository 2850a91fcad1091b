// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package override holds the single, process-wide emergency/announcement
// message that pre-empts normal rotation on every display.
//
// The state lives in memory only; a restart clears it.
package override

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Kind is the override payload type. Only text exists today.
type Kind string

const (
	KindNone Kind = "none"
	KindText Kind = "text"
)

// Style selects the visual treatment of an active override.
type Style string

const (
	StyleInfo    Style = "info"
	StyleAlert   Style = "alert"
	StyleParty   Style = "party"
	StyleWarning Style = "warning"
)

// DefaultStyle is used for ad-hoc messages that do not name one.
const DefaultStyle = StyleAlert

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	switch s {
	case StyleInfo, StyleAlert, StyleParty, StyleWarning:
		return true
	}
	return false
}

var (
	ErrUnknownAction = errors.New("unknown override action")
	ErrUnknownPreset = errors.New("unknown override preset")
	ErrInvalidStyle  = errors.New("invalid override style")
	ErrEmptyMessage  = errors.New("override message is empty")
)

// State is the override as seen by displays. Revision increases on every
// change so clients can tell a re-trigger of the same text from no change.
type State struct {
	Active    bool      `json:"active"`
	Kind      Kind      `json:"type"`
	Content   string    `json:"content"`
	Style     Style     `json:"style"`
	Revision  uint64    `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Inactive is the state at startup and after Stop.
func Inactive() State {
	return State{Active: false, Kind: KindNone, Content: "", Style: StyleInfo}
}

// Preset is a named canned message.
type Preset struct {
	Content string `yaml:"content" json:"content"`
	Style   Style  `yaml:"style" json:"style"`
}

// DefaultPresets are the shortcuts available when configuration names none.
func DefaultPresets() map[string]Preset {
	return map[string]Preset{
		"happyhour": {Content: "🍹 HAPPY HOUR! 🍹\nAlle Cocktails 50%", Style: StyleParty},
		"lastcall":  {Content: "⚠️ LAST CALL ⚠️\nLetzte Runde bestellen!", Style: StyleWarning},
	}
}

// ActionType is the verb of an admin override request.
type ActionType string

const (
	ActionStop    ActionType = "stop"
	ActionMessage ActionType = "message"
	ActionPreset  ActionType = "preset"
)

// Action is an admin request against the channel.
type Action struct {
	Type   ActionType `json:"action"`
	Text   string     `json:"text,omitempty"`
	Style  Style      `json:"style,omitempty"`
	Preset string     `json:"preset,omitempty"`
}

// Channel is the mutex-guarded holder of the current State. Every change
// replaces the whole value, so readers never observe a torn update.
type Channel struct {
	mu      sync.RWMutex
	state   State
	presets map[string]Preset
	now     func() time.Time
}

// Option configures a Channel.
type Option func(*Channel)

// WithPresets replaces the preset table.
func WithPresets(p map[string]Preset) Option {
	return func(c *Channel) {
		c.presets = make(map[string]Preset, len(p))
		for k, v := range p {
			c.presets[strings.ToLower(k)] = v
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) { c.now = now }
}

// NewChannel returns an inactive channel.
func NewChannel(opts ...Option) *Channel {
	c := &Channel{state: Inactive(), now: time.Now}
	WithPresets(DefaultPresets())(c)
	for _, o := range opts {
		o(c)
	}
	return c
}

// Current returns a snapshot of the state.
func (c *Channel) Current() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Presets returns a copy of the configured presets.
func (c *Channel) Presets() map[string]Preset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Preset, len(c.presets))
	for k, v := range c.presets {
		out[k] = v
	}
	return out
}

// SetPresets swaps the preset table, for example after a config reload.
// An active override keeps its content even if its preset disappears.
func (c *Channel) SetPresets(p map[string]Preset) {
	next := make(map[string]Preset, len(p))
	for k, v := range p {
		next[strings.ToLower(k)] = v
	}
	c.mu.Lock()
	c.presets = next
	c.mu.Unlock()
}

// Trigger activates a text override. An empty style means DefaultStyle.
func (c *Channel) Trigger(text string, style Style) (State, error) {
	if strings.TrimSpace(text) == "" {
		return State{}, ErrEmptyMessage
	}
	if style == "" {
		style = DefaultStyle
	}
	if !style.Valid() {
		return State{}, fmt.Errorf("%w: %q", ErrInvalidStyle, style)
	}
	return c.replace(State{Active: true, Kind: KindText, Content: text, Style: style}), nil
}

// Stop deactivates the override. Kind, content and style are kept so the
// admin view can show what was last on screen; displays ignore them while
// inactive. Stopping an inactive channel still bumps the revision.
func (c *Channel) Stop() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.state
	next.Active = false
	return c.commitLocked(next)
}

// TriggerPreset activates a configured preset by name.
func (c *Channel) TriggerPreset(name string) (State, error) {
	c.mu.RLock()
	p, ok := c.presets[strings.ToLower(name)]
	c.mu.RUnlock()
	if !ok {
		return State{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return c.Trigger(p.Content, p.Style)
}

// Apply dispatches an admin action.
func (c *Channel) Apply(a Action) (State, error) {
	switch a.Type {
	case ActionStop:
		return c.Stop(), nil
	case ActionMessage:
		return c.Trigger(a.Text, a.Style)
	case ActionPreset:
		return c.TriggerPreset(a.Preset)
	default:
		return State{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}

func (c *Channel) replace(next State) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commitLocked(next)
}

func (c *Channel) commitLocked(next State) State {
	next.Revision = c.state.Revision + 1
	next.UpdatedAt = c.now().UTC()
	c.state = next
	return next
}
