package trace

import "context"

// scope - то, что команда quill передаёт вниз по context: трейсер и
// текущий span. Хранятся вместе, чтобы один Value давал оба.
type scope struct {
	tracer Tracer
	span   SpanContext
}

type scopeKey struct{}

// SpanContext identifies the span new child spans attach to.
type SpanContext struct {
	SpanID uint64
	GID    uint64
}

func scopeOf(ctx context.Context) scope {
	if ctx != nil {
		if s, ok := ctx.Value(scopeKey{}).(scope); ok {
			return s
		}
	}
	return scope{tracer: Nop}
}

// FromContext returns the tracer attached by WithTracer, or Nop.
func FromContext(ctx context.Context) Tracer {
	if t := scopeOf(ctx).tracer; t != nil {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx, keeping the current span. A nil t means Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	s := scopeOf(ctx)
	s.tracer = t
	return context.WithValue(ctx, scopeKey{}, s)
}

// CurrentSpan returns the span set by WithSpanContext; zero when none is set,
// which makes new spans roots.
func CurrentSpan(ctx context.Context) SpanContext {
	return scopeOf(ctx).span
}

// WithSpanContext makes sc the parent for spans opened under ctx.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	if ctx == nil {
		return nil
	}
	s := scopeOf(ctx)
	s.span = sc
	return context.WithValue(ctx, scopeKey{}, s)
}
