// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	name string
	w    Window
}

func (i item) TimeWindow() Window { return i.w }

func names(items []item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.name)
	}
	return out
}

func TestFilterEligiblePreservesOrder(t *testing.T) {
	items := []item{
		{"z.png", Window{}},
		{"night.mp4", Window{Start: "22:00", End: "02:00"}},
		{"a.png", Window{Start: "09:00", End: "17:00"}},
		{"m.gif", Window{Start: "bad", End: "worse"}},
		{"b.jpg", Window{Start: "23:00", End: "23:59"}},
	}

	assert.Equal(t, []string{"z.png", "night.mp4", "m.gif", "b.jpg"}, names(FilterEligible(items, at("23:30"))))
	assert.Equal(t, []string{"z.png", "a.png", "m.gif"}, names(FilterEligible(items, at("10:00"))))
}

func TestFilterEligibleEmpty(t *testing.T) {
	got := FilterEligible([]item(nil), at("12:00"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterEligibleIsRecomputedPerCall(t *testing.T) {
	items := []item{{"happy.png", Window{Start: "17:00", End: "19:00"}}}

	assert.Empty(t, FilterEligible(items, at("16:59")))
	assert.Len(t, FilterEligible(items, at("17:00")), 1)
	assert.Empty(t, FilterEligible(items, at("19:01")))
}
