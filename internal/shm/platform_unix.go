//go:build linux || freebsd

package shm

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

// DefaultName returns the per-user object name, the equivalent of
// shm_open("/MumbleLink.<uid>").
func DefaultName() string {
	return ProtocolName + "." + strconv.Itoa(unix.Getuid())
}

// MapRegion maps or creates a shared memory region. Opening the named object
// is platform-specific (openObject); sizing and mapping are shared.
func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	flags := unix.O_RDWR | unix.O_CLOEXEC
	if opts.Create {
		flags |= unix.O_CREAT
	}
	fd, where, err := openObject(opts, flags)
	if err != nil {
		return nil, err
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%w: fstat %s: %w", ErrMapFailed, where, err)
	}
	if st.Size < int64(opts.Size) {
		// mapping past the end of the object would fault on first access
		if !opts.Create {
			_ = unix.Close(fd)
			return nil, fmt.Errorf("%w: %s is %d bytes, need %d", ErrMapFailed, where, st.Size, opts.Size)
		}
		if err := unix.Ftruncate(fd, int64(opts.Size)); err != nil {
			_ = unix.Close(fd)
			return nil, fmt.Errorf("%w: ftruncate %s: %w", ErrMapFailed, where, err)
		}
	}
	addr, err := unix.Mmap(fd, 0, opts.Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%w: mmap %s: %w", ErrMapFailed, where, err)
	}
	return &MappedRegion{
		Addr:   addr,
		Name:   opts.Name,
		handle: uintptr(fd),
	}, nil
}

// UnmapRegion unmaps and closes the shared memory region. The object itself
// is left in place.
func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	if region == nil || region.closed {
		return nil
	}
	region.closed = true
	var errs []error
	if region.Addr != nil {
		if err := unix.Munmap(region.Addr); err != nil {
			errs = append(errs, fmt.Errorf("munmap: %w", err))
		}
		region.Addr = nil
	}
	if err := unix.Close(int(region.handle)); err != nil {
		errs = append(errs, fmt.Errorf("close fd %d: %w", region.handle, err))
	}
	return errors.Join(errs...)
}

func classify(err error) error {
	switch {
	case errors.Is(err, unix.ENOENT):
		return ErrNotFound
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return ErrPermission
	default:
		return ErrMapFailed
	}
}
