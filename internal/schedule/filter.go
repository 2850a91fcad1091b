// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package schedule

import "time"

// Windowed is anything that carries a display window.
type Windowed interface {
	TimeWindow() Window
}

// FilterEligible keeps the items whose window contains now, in input order.
// It holds no state; callers recompute it on every request so a window
// boundary takes effect on the next poll.
func FilterEligible[T Windowed](items []T, now time.Time) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.TimeWindow().Contains(now) {
			out = append(out, it)
		}
	}
	return out
}
