// Package tracer is the tracing seam used by the assistant and the costume
// tools. It keeps OpenTelemetry out of domain code: services depend on
// Tracer, cmd/server wires the OTel adapter, tests use the no-op.
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key/value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute    { return Attribute{Key: key, Value: value} }
func Bool(key string, value bool) Attribute { return Attribute{Key: key, Value: value} }
func Int(key string, value int) Attribute   { return Attribute{Key: key, Value: value} }

// Duration records d in milliseconds.
func Duration(key string, d time.Duration) Attribute {
	return Attribute{Key: key, Value: d.Milliseconds()}
}

// Span names.
const (
	SpanModelGenerate = "assistant.model.generate"
	SpanAssistantTurn = "assistant.turn"
	SpanToolCall      = "assistant.tool.call"
)

// Attribute keys. Owner names are never attached to spans.
const (
	AttrAssistant  = "assistant.name"
	AttrModel      = "model.name"
	AttrToolName   = "tool.name"
	AttrCostumeID  = "costume.id"
	AttrRound      = "assistant.round"
	AttrToolCalls  = "assistant.tool_calls"
	AttrToolResult = "tool.outcome"
)
