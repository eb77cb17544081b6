package arena

// Provider hands out fixed-size blocks of zeroed, read-write memory and takes
// them back. Release must be called with exactly the slice Acquire returned.
// Implementations do no caching; every call goes to the backing store.
type Provider interface {
	Acquire(size int) ([]byte, error)
	Release(block []byte) error
}

// OSProvider maps anonymous pages straight from the operating system.
// Blocks are page-aligned and zero-filled.
type OSProvider struct{}

// Acquire maps size bytes. Failures carry KindResourceExhausted.
func (OSProvider) Acquire(size int) ([]byte, error) {
	if size <= 0 {
		return nil, &Error{Kind: KindInvalidArgument, Op: "acquire", Size: size}
	}
	b, err := mapAnon(size)
	if err != nil {
		return nil, &Error{Kind: KindResourceExhausted, Op: "acquire", Size: size, Err: err}
	}
	return b, nil
}

// Release unmaps a block obtained from Acquire. Failures carry KindReleaseFailure.
func (OSProvider) Release(block []byte) error {
	if len(block) == 0 {
		return nil
	}
	if err := unmapAnon(block); err != nil {
		return &Error{Kind: KindReleaseFailure, Op: "release", Size: len(block), Err: err}
	}
	return nil
}

// HeapProvider backs blocks with ordinary Go heap memory. It never fails for
// sane sizes and Release is a no-op; the GC reclaims the block once the
// region drops it.
type HeapProvider struct{}

// Acquire returns a fresh zeroed slice of size bytes.
func (HeapProvider) Acquire(size int) ([]byte, error) {
	if size <= 0 {
		return nil, &Error{Kind: KindInvalidArgument, Op: "acquire", Size: size}
	}
	return make([]byte, size), nil
}

// Release does nothing; the block is left to the garbage collector.
func (HeapProvider) Release([]byte) error { return nil }
