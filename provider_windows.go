//go:build windows

package arena

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// mapAnon commits size bytes with VirtualAlloc. Committed pages are zeroed
// by the system.
func mapAnon(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, errors.Wrapf(err, "VirtualAlloc %d bytes", size)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func unmapAnon(b []byte) error {
	// MEM_RELEASE requires a zero size and the base address of the reservation.
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return errors.Wrapf(err, "VirtualFree %d bytes", len(b))
	}
	return nil
}
