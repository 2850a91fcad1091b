// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	overrideMeterName      = "bardisplay/override"
	overrideTransitionName = "bardisplay.override.transitions"

	OverrideActionKey = "override.action"
	OverrideResultKey = "override.result"
)

// EmitOverride records one override request on the current span and on the
// transitions counter. The meter is looked up per call so a provider
// installed after startup (tests, late exporters) is honoured. style is
// empty for rejected requests.
func EmitOverride(ctx context.Context, action, result, style string, revision uint64) {
	attrs := []attribute.KeyValue{
		attribute.String(OverrideActionKey, action),
		attribute.String(OverrideResultKey, result),
	}
	if style != "" {
		attrs = append(attrs, attribute.String(OverrideStyleKey, style))
	}

	counter, err := otel.GetMeterProvider().Meter(overrideMeterName).Int64Counter(
		overrideTransitionName,
		metric.WithDescription("Override requests by action, result and style"),
		metric.WithUnit("{request}"),
	)
	if err == nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
	if style != "" {
		span.SetAttributes(OverrideAttributes(style, revision)...)
	}
}
