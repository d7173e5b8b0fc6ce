// Package tracer provides a lightweight tracing abstraction for the
// credential module, decoupling issuance and verification paths from the
// OpenTelemetry APIs.
//
// Implementations:
//   - NoopTracer: for tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span names used by the credential module.
const (
	SpanIssue  = "credential.issue"
	SpanRevoke = "credential.revoke"
	SpanVerify = "credential.verify"
)

// Attribute keys used by the credential module.
const (
	AttrCredentialID   = "credential.id"
	AttrIssuer         = "credential.issuer"
	AttrHasPrivateData = "credential.has_private_data"
	AttrIsValid        = "credential.is_valid"
)
