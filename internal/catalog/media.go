// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"path"
	"strings"

	"github.com/ManuGH/bardisplay/internal/schedule"
)

// Kind is the display treatment of a media file, derived from its extension.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// displayable maps lower-case extensions to the kind the display client renders.
// pdf and zip are accepted by the uploader but are converted or unpacked before
// they ever reach the uploads directory, so they are not listed here.
var displayable = map[string]Kind{
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".gif":  KindImage,
	".mp4":  KindVideo,
}

// KindOf returns the kind for name and whether the extension is displayable.
func KindOf(name string) (Kind, bool) {
	k, ok := displayable[strings.ToLower(path.Ext(name))]
	return k, ok
}

// MediaItem is one displayable asset. Name is the filename and doubles as the
// join key between the uploads directory and the persisted metadata.
type MediaItem struct {
	Name   string          `json:"name"`
	Kind   Kind            `json:"type"`
	Window schedule.Window `json:"window"`
}

// TimeWindow implements schedule.Windowed.
func (m MediaItem) TimeWindow() schedule.Window { return m.Window }
