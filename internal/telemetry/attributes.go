// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys used on spans across the server.
const (
	FeedCatalogSizeKey = "feed.catalog_size"
	FeedEligibleKey    = "feed.eligible"
	FeedDegradedKey    = "feed.degraded"
	FeedOverrideKey    = "feed.override_active"

	AdminActionKey   = "admin.action"
	AdminResourceKey = "admin.resource"

	OverrideStyleKey    = "override.style"
	OverrideRevisionKey = "override.revision"

	StoreBackendKey = "store.backend"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// FeedAttributes describes one assembled feed.
func FeedAttributes(catalogSize, eligible int, degraded, overrideActive bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(FeedCatalogSizeKey, catalogSize),
		attribute.Int(FeedEligibleKey, eligible),
		attribute.Bool(FeedDegradedKey, degraded),
		attribute.Bool(FeedOverrideKey, overrideActive),
	}
}

// AdminAttributes describes an admin mutation. Empty resources are omitted.
func AdminAttributes(action, resource string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(AdminActionKey, action)}
	if resource != "" {
		attrs = append(attrs, attribute.String(AdminResourceKey, resource))
	}
	return attrs
}

// OverrideAttributes describes an override transition.
func OverrideAttributes(style string, revision uint64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(OverrideStyleKey, style),
		attribute.Int64(OverrideRevisionKey, int64(revision)),
	}
}

// ErrorAttributes marks a span as failed with a coarse error class.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
