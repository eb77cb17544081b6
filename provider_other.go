//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly && !windows

package arena

// Hosts without an anonymous mapping primitive cannot back an OSProvider.
// HeapProvider still works there.

func mapAnon(int) ([]byte, error) { return nil, ErrUnsupportedPlatform }

func unmapAnon([]byte) error { return ErrUnsupportedPlatform }
