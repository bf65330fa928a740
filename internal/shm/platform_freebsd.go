//go:build freebsd

package shm

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

func objectPath(name string) string {
	return "/" + strings.TrimPrefix(name, "/")
}

// openObject calls shm_open2(2); x/sys/unix exposes the syscall number but
// no wrapper.
func openObject(opts MapOptions, flags int) (int, string, error) {
	shmPath := objectPath(opts.Name)
	p, err := unix.BytePtrFromString(shmPath)
	if err != nil {
		return -1, shmPath, fmt.Errorf("%w: name %q: %w", ErrMapFailed, opts.Name, err)
	}
	r, _, errno := unix.Syscall6(unix.SYS_SHM_OPEN2,
		uintptr(unsafe.Pointer(p)), uintptr(flags), 0o600, 0, 0, 0)
	if errno != 0 {
		return -1, shmPath, fmt.Errorf("%w: shm_open2 %s: %w", classify(errno), shmPath, errno)
	}
	return int(r), shmPath, nil
}

// RemoveRegion unlinks the named object with shm_unlink(2).
func RemoveRegion(name string) error {
	p, err := unix.BytePtrFromString(objectPath(name))
	if err != nil {
		return err
	}
	if _, _, errno := unix.Syscall(unix.SYS_SHM_UNLINK, uintptr(unsafe.Pointer(p)), 0, 0); errno != 0 {
		return errno
	}
	return nil
}
