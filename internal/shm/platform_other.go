//go:build !linux && !windows && !freebsd

package shm

import "context"

// DefaultName returns the protocol name; no backend exists to open it. On
// darwin and the other BSDs shm_open is only reachable through libc, which
// would require cgo.
func DefaultName() string {
	return ProtocolName
}

// MapRegion reports ErrUnsupported.
func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	return nil, ErrUnsupported
}

// UnmapRegion is a no-op.
func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	return nil
}

// RemoveRegion reports ErrUnsupported.
func RemoveRegion(name string) error {
	return ErrUnsupported
}
