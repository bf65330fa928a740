// Package shm contains the platform-specific half of the shared memory
// adapter: opening named objects, mapping them, and ordered word access to
// the mapped bytes.
package shm

import "errors"

// Failure classes reported by MapRegion. Platform errors are wrapped so both
// the class and the OS error match with errors.Is.
var (
	ErrNotFound    = errors.New("shared memory object not found")
	ErrPermission  = errors.New("shared memory object permission denied")
	ErrMapFailed   = errors.New("shared memory mapping failed")
	ErrNoSpace     = errors.New("not enough shared memory space")
	ErrUnsupported = errors.New("shared memory not supported on this platform")
)

// ProtocolName is the object name the voice-chat host creates.
const ProtocolName = "MumbleLink"

// MappedRegion represents a memory-mapped shared region.
type MappedRegion struct {
	Addr []byte
	Name string

	// fd on unix, file mapping handle on windows
	handle uintptr
	closed bool
}

// MapOptions defines options for mapping shared memory.
type MapOptions struct {
	Name   string
	Size   int
	Create bool
}

// MapRegion and UnmapRegion are implemented per platform: platform_unix.go
// with platform_linux.go or platform_freebsd.go, platform_windows.go, and
// platform_other.go for the rest, which reports ErrUnsupported.
// UnmapRegion never removes the named object; other processes keep their
// views.
