package tracer

import "context"

// NoopTracer is a tracer that does nothing. It is the default when no tracer
// is configured, keeping the evaluator nil-safe.
type NoopTracer struct{}

// NewNoop creates a no-op tracer.
func NewNoop() *NoopTracer { return &NoopTracer{} }

func (*NoopTracer) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error)                      {}
func (noopSpan) SetAttributes(...Attribute)     {}
func (noopSpan) AddEvent(string, ...Attribute)  {}

var (
	_ Tracer = (*NoopTracer)(nil)
	_ Span   = noopSpan{}
)
