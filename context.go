package arena

import "context"

type contextKey struct{}

// NewContext returns a copy of ctx carrying s. The stack must only be used
// by the goroutine that owns it, so ctx must not cross goroutines while it
// holds one.
func NewContext(ctx context.Context, s *Stack) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the stack carried by ctx, if any.
func FromContext(ctx context.Context) (*Stack, bool) {
	s, ok := ctx.Value(contextKey{}).(*Stack)
	return s, ok && s != nil
}

// FromContextOrNew returns the stack carried by ctx, or creates an empty one
// with DefaultConfig and returns a context carrying it.
func FromContextOrNew(ctx context.Context, opts ...Option) (context.Context, *Stack) {
	if s, ok := FromContext(ctx); ok {
		return ctx, s
	}
	s := New(opts...)
	return NewContext(ctx, s), s
}

// WithScope opens a scope on the stack carried by ctx and runs body with a
// context carrying that stack, so nested calls reach the same stack. If ctx
// has no stack, one is created for the duration of the call and closed
// afterwards.
func WithScope(ctx context.Context, size int, body func(ctx context.Context, r *Region) error) error {
	if s, ok := FromContext(ctx); ok {
		return s.WithScope(size, func(r *Region) error { return body(ctx, r) })
	}
	ctx, s := FromContextOrNew(ctx)
	defer func() {
		if err := s.Close(); err != nil {
			s.fatal(err)
		}
	}()
	return s.WithScope(size, func(r *Region) error { return body(ctx, r) })
}
