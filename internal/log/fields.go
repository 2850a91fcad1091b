// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldRemote    = "remote_addr"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Catalog / schedule fields
	FieldMedia  = "media"
	FieldRecord = "record"
	FieldWindow = "window"

	// Override fields
	FieldOverrideStyle = "style"
	FieldRevision      = "revision"

	// Path / URL fields
	FieldPath = "path"
)
