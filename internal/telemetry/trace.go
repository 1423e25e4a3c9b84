package telemetry

import "github.com/google/uuid"

// Span is a lightweight trace span. Its zero value (from a no-op Tracer)
// does nothing on End; a future consumer that wants real spans can swap
// in a Tracer backed by an exporter without the engine changing at all.
type Span struct {
	id      string
	onEnd   func(id string)
}

// ID returns the span's identifier, or "" for a no-op span.
func (s Span) ID() string { return s.id }

// End closes the span.
func (s Span) End() {
	if s.onEnd != nil {
		s.onEnd(s.id)
	}
}

// Tracer creates spans. NewNoopTracer's spans are free: no uuid
// generation, no callback.
type Tracer interface {
	Start(name string) Span
}

type noopTracer struct{}

func (noopTracer) Start(string) Span { return Span{} }

// NewNoopTracer returns a Tracer whose spans are no-ops.
func NewNoopTracer() Tracer { return noopTracer{} }

// recordingTracer is a minimal Tracer for callers that do want span ids
// (e.g. to correlate log lines across a batch), without depending on any
// particular export backend.
type recordingTracer struct {
	onEnd func(name, id string)
}

// NewRecordingTracer returns a Tracer that allocates a uuid per span and
// invokes onEnd (if non-nil) when the span closes.
func NewRecordingTracer(onEnd func(name, id string)) Tracer {
	return &recordingTracer{onEnd: onEnd}
}

func (t *recordingTracer) Start(name string) Span {
	id := uuid.NewString()
	cb := t.onEnd
	return Span{
		id: id,
		onEnd: func(id string) {
			if cb != nil {
				cb(name, id)
			}
		},
	}
}
