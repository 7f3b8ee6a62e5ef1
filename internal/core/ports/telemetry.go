package ports

import (
	"context"
	"io"
)

// SpanConfig holds the options of a new span.
type SpanConfig struct {
	Attributes map[string]any
}

// SpanOption configures a span.
type SpanOption func(*SpanConfig)

// WithAttribute sets an attribute when the span starts.
func WithAttribute(key string, value any) SpanOption {
	return func(c *SpanConfig) {
		if c.Attributes == nil {
			c.Attributes = make(map[string]any)
		}
		c.Attributes[key] = value
	}
}

// Tracer starts spans.
//
//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Tracer interface {
	// Start creates a span and a context carrying it.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)

	// Shutdown flushes pending spans.
	Shutdown(ctx context.Context) error
}

// Span is a unit of traced work. Writes are recorded as log events.
type Span interface {
	io.Writer

	// End completes the span.
	End()

	// RecordError marks the span as failed.
	RecordError(err error)

	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}
