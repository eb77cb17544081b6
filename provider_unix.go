//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package arena

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func mapAnon(size int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %d bytes", size)
	}
	return b, nil
}

func unmapAnon(b []byte) error {
	if err := unix.Munmap(b); err != nil {
		return errors.Wrapf(err, "munmap %d bytes", len(b))
	}
	return nil
}
