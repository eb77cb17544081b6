package arena

// WithScope opens a region of size bytes, runs body with it as the
// allocation target and pops the region on every way out of body: normal
// return, error return or panic. The body's error is returned unchanged.
//
// Scopes nest by calling WithScope (or Enter) inside body. Each inner region
// is fully released before control returns to the enclosing body.
//
// Running out of depth, failing to map or unmap memory and popping out of
// order are fatal and panic with an *Error.
func (s *Stack) WithScope(size int, body func(r *Region) error) error {
	r := s.mustPush(size)
	defer s.mustPop(r)
	return body(r)
}

// Enter opens a region and returns the function that closes it, for use with
// defer:
//
//	defer s.Enter(4096)()
//
// Calling the returned function more than once is a no-op.
func (s *Stack) Enter(size int) (exit func()) {
	r := s.mustPush(size)
	return func() {
		if !r.Live() {
			return
		}
		s.mustPop(r)
	}
}

func (s *Stack) mustPush(size int) *Region {
	r, err := s.push(size)
	if err != nil {
		s.fatal(err)
	}
	return r
}

func (s *Stack) mustPop(r *Region) {
	if err := s.popRegion(r); err != nil {
		s.fatal(err)
	}
}
