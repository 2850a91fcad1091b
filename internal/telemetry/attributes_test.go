// SPDX-License-Identifier: MIT
package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func lookup(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestFeedAttributes(t *testing.T) {
	attrs := FeedAttributes(9, 4, false, true)
	assert.Len(t, attrs, 4)

	v, ok := lookup(attrs, FeedEligibleKey)
	assert.True(t, ok)
	assert.Equal(t, int64(4), v.AsInt64())

	v, _ = lookup(attrs, FeedOverrideKey)
	assert.True(t, v.AsBool())
}

func TestAdminAttributes(t *testing.T) {
	assert.Len(t, AdminAttributes("reorder", ""), 1)

	attrs := AdminAttributes("delete", "menu.png")
	v, ok := lookup(attrs, AdminResourceKey)
	assert.True(t, ok)
	assert.Equal(t, "menu.png", v.AsString())
}

func TestOverrideAndErrorAttributes(t *testing.T) {
	v, _ := lookup(OverrideAttributes("party", 3), OverrideRevisionKey)
	assert.Equal(t, int64(3), v.AsInt64())

	v, _ = lookup(ErrorAttributes("storage"), ErrorTypeKey)
	assert.Equal(t, "storage", v.AsString())
}
