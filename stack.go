package arena

import (
	"errors"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Stack is a bounded stack of regions owned by a single goroutine. Only the
// top region serves allocations; regions are popped in exact reverse order
// of pushing. A Stack holds no locks and must not be shared.
type Stack struct {
	cfg      Config
	entries  []*Region // len is the depth, cap is fixed at cfg.MaxDepth
	provider Provider
	logger   log.Logger
	metrics  *Metrics
}

// Option configures a Stack.
type Option func(*Stack)

// WithProvider sets the block source. The default is OSProvider.
func WithProvider(p Provider) Option {
	return func(s *Stack) { s.provider = p }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l log.Logger) Option {
	return func(s *Stack) { s.logger = l }
}

// WithMetrics reports stack activity to m. Metrics may be shared by stacks.
func WithMetrics(m *Metrics) Option {
	return func(s *Stack) { s.metrics = m }
}

// NewStack creates an empty stack after validating cfg.
func NewStack(cfg Config, opts ...Option) (*Stack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Stack{
		cfg:      cfg,
		entries:  make([]*Region, 0, cfg.MaxDepth),
		provider: OSProvider{},
		logger:   log.NewNopLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// New creates an empty stack with DefaultConfig.
func New(opts ...Option) *Stack {
	s, err := NewStack(DefaultConfig(), opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Depth returns the number of live regions.
func (s *Stack) Depth() int { return len(s.entries) }

// MaxDepth returns the nesting bound.
func (s *Stack) MaxDepth() int { return cap(s.entries) }

// Active returns the region currently serving allocations, or nil.
func (s *Stack) Active() *Region { return s.top() }

func (s *Stack) top() *Region {
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1]
}

// push acquires a new region and makes it the top of the stack. The depth
// bound is checked before the provider is touched.
func (s *Stack) push(size int) (*Region, error) {
	if size <= 0 {
		size = int(s.cfg.DefaultRegionSize)
	}
	depth := len(s.entries)
	if depth == cap(s.entries) {
		return nil, &Error{Kind: KindDepthExceeded, Op: "push", Depth: depth, Size: size}
	}

	block, err := s.provider.Acquire(size)
	if err != nil {
		return nil, asError(err, KindResourceExhausted, "push", depth, size)
	}

	r := &Region{
		base:     block[:size:size],
		capacity: size,
		stack:    s,
		index:    depth,
		metrics:  s.metrics,
	}
	s.entries = append(s.entries, r)
	s.metrics.observePush(size)
	level.Debug(s.logger).Log("msg", "pushed region", "depth", depth+1, "size", humanize.IBytes(uint64(size)))
	return r, nil
}

// pop releases the top region.
func (s *Stack) pop() error {
	return s.popRegion(nil)
}

// popRegion releases the top region, which must be want unless want is nil.
func (s *Stack) popRegion(want *Region) error {
	depth := len(s.entries)
	if depth == 0 {
		return &Error{Kind: KindEmptyStackPop, Op: "pop"}
	}
	r := s.entries[depth-1]
	if want != nil && want != r {
		return &Error{Kind: KindOutOfOrderPop, Op: "pop", Depth: depth, Size: want.capacity}
	}

	block := r.base
	s.entries[depth-1] = nil
	s.entries = s.entries[:depth-1]
	r.base = nil
	r.stack = nil
	s.metrics.observePop(r.capacity)

	if err := s.provider.Release(block); err != nil {
		return asError(err, KindReleaseFailure, "pop", depth, r.capacity)
	}
	level.Debug(s.logger).Log("msg", "popped region", "depth", depth, "used", humanize.IBytes(uint64(r.cursor)), "size", humanize.IBytes(uint64(r.capacity)))
	return nil
}

// asError annotates a provider error with the stack operation, wrapping
// foreign errors in an *Error of the given kind. The provider's *Error is
// copied, never modified.
func asError(err error, kind Kind, op string, depth, size int) *Error {
	out := &Error{Kind: kind, Err: err}
	var e *Error
	if errors.As(err, &e) {
		c := *e
		out = &c
	}
	out.Op, out.Depth, out.Size = op, depth, size
	return out
}

// fatal logs err and panics with it. It is used for failures that leave no
// safe way to continue.
func (s *Stack) fatal(err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindResourceExhausted, Err: err}
	}
	s.metrics.observeFailure(e.Kind)
	level.Error(s.logger).Log("msg", "arena failure", "kind", e.Kind, "op", e.Op, "depth", e.Depth, "size", e.Size, "err", e)
	panic(e)
}

// Close pops every remaining region, innermost first. It is meant for
// teardown when the owning goroutine is done with the stack; all regions
// are popped even if some releases fail, and the first failure is returned.
func (s *Stack) Close() error {
	var first error
	for s.Depth() > 0 {
		if err := s.pop(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
