package arena

import (
	"errors"
	"fmt"
)

// Kind classifies an arena failure.
type Kind int

const (
	KindResourceExhausted Kind = iota + 1
	KindReleaseFailure
	KindDepthExceeded
	KindEmptyStackPop
	KindOutOfOrderPop
	KindRegionExhausted
	KindNoActiveRegion
	KindRegionFrozen
	KindUnsupportedOperation
	KindInvalidArgument
)

var kindNames = map[Kind]string{
	KindResourceExhausted:    "failed to allocate for arena",
	KindReleaseFailure:       "failed to free arena",
	KindDepthExceeded:        "ran out of depth",
	KindEmptyStackPop:        "attempted to pop with no existing arena",
	KindOutOfOrderPop:        "attempted to pop a region that is not on top",
	KindRegionExhausted:      "region exhausted",
	KindNoActiveRegion:       "no active region",
	KindRegionFrozen:         "region is not the active region",
	KindUnsupportedOperation: "unsupported operation",
	KindInvalidArgument:      "invalid argument",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var kindLabels = map[Kind]string{
	KindResourceExhausted:    "resource_exhausted",
	KindReleaseFailure:       "release_failure",
	KindDepthExceeded:        "depth_exceeded",
	KindEmptyStackPop:        "empty_stack_pop",
	KindOutOfOrderPop:        "out_of_order_pop",
	KindRegionExhausted:      "region_exhausted",
	KindNoActiveRegion:       "no_active_region",
	KindRegionFrozen:         "region_frozen",
	KindUnsupportedOperation: "unsupported_operation",
	KindInvalidArgument:      "invalid_argument",
}

// label is the metric label value for k.
func (k Kind) label() string {
	if s, ok := kindLabels[k]; ok {
		return s
	}
	return "unknown"
}

// Fatal reports whether k signals a broken environment or a violated
// push/pop protocol. Fatal kinds are raised as panics by Stack.
func (k Kind) Fatal() bool {
	switch k {
	case KindResourceExhausted, KindReleaseFailure, KindDepthExceeded,
		KindEmptyStackPop, KindOutOfOrderPop:
		return true
	}
	return false
}

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrResourceExhausted    = &Error{Kind: KindResourceExhausted}
	ErrReleaseFailure       = &Error{Kind: KindReleaseFailure}
	ErrDepthExceeded        = &Error{Kind: KindDepthExceeded}
	ErrEmptyStackPop        = &Error{Kind: KindEmptyStackPop}
	ErrOutOfOrderPop        = &Error{Kind: KindOutOfOrderPop}
	ErrRegionExhausted      = &Error{Kind: KindRegionExhausted}
	ErrNoActiveRegion       = &Error{Kind: KindNoActiveRegion}
	ErrRegionFrozen         = &Error{Kind: KindRegionFrozen}
	ErrUnsupportedOperation = &Error{Kind: KindUnsupportedOperation}
	ErrInvalidArgument      = &Error{Kind: KindInvalidArgument}
)

// ErrUnsupportedPlatform is the cause reported when the host has no
// anonymous-memory primitive.
var ErrUnsupportedPlatform = errors.New("arena: anonymous memory mapping not supported on this platform")

// Error is the error type returned (or panicked with) by every arena operation.
type Error struct {
	Kind  Kind
	Op    string // push, pop, allocate, acquire, release, free
	Depth int    // stack depth when the failure happened
	Size  int    // requested size, if any
	Err   error  // underlying cause, usually an OS error
}

func (e *Error) Error() string {
	msg := "arena: "
	if e.Op != "" {
		msg += e.Op + ": "
	}
	msg += e.Kind.String()
	if e.Size > 0 {
		msg += fmt.Sprintf(" (size=%d, depth=%d)", e.Size, e.Depth)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of err, or 0 if err is not an arena error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
