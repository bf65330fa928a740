//go:build windows

package shm

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMappingW = modkernel32.NewProc("OpenFileMappingW")
)

const fileMapReadWrite = windows.FILE_MAP_READ | windows.FILE_MAP_WRITE

// DefaultName returns the session-global mapping name the host creates.
func DefaultName() string {
	return ProtocolName
}

// MapRegion maps or creates a shared memory region (Windows implementation).
func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	namep, err := windows.UTF16PtrFromString(opts.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: name %q: %w", ErrMapFailed, opts.Name, err)
	}
	var h windows.Handle
	if opts.Create {
		// an existing mapping is returned with ERROR_ALREADY_EXISTS
		h, err = windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, 0, uint32(opts.Size), namep)
		if err != nil && !errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			return nil, fmt.Errorf("%w: CreateFileMapping %s: %w", classify(err), opts.Name, err)
		}
	} else {
		h, err = openFileMapping(fileMapReadWrite, namep)
		if err != nil {
			return nil, fmt.Errorf("%w: OpenFileMapping %s: %w", classify(err), opts.Name, err)
		}
	}
	if h == 0 {
		return nil, fmt.Errorf("%w: %s: null handle", ErrMapFailed, opts.Name)
	}
	addr, err := windows.MapViewOfFile(h, fileMapReadWrite, 0, 0, uintptr(opts.Size))
	if err != nil {
		_ = windows.CloseHandle(h)
		return nil, fmt.Errorf("%w: MapViewOfFile %s: %w", ErrMapFailed, opts.Name, err)
	}
	return &MappedRegion{
		Addr:   unsafe.Slice((*byte)(unsafe.Pointer(addr)), opts.Size),
		Name:   opts.Name,
		handle: uintptr(h),
	}, nil
}

// UnmapRegion unmaps and closes the shared memory region (Windows implementation).
// The mapping object lives on while any other process holds a handle.
func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	if region == nil || region.closed {
		return nil
	}
	region.closed = true
	var errs []error
	if len(region.Addr) > 0 {
		if err := windows.UnmapViewOfFile(uintptr(unsafe.Pointer(&region.Addr[0]))); err != nil {
			errs = append(errs, fmt.Errorf("UnmapViewOfFile: %w", err))
		}
		region.Addr = nil
	}
	if err := windows.CloseHandle(windows.Handle(region.handle)); err != nil {
		errs = append(errs, fmt.Errorf("CloseHandle: %w", err))
	}
	return errors.Join(errs...)
}

// RemoveRegion is a no-op: a file mapping is destroyed when its last handle
// is closed.
func RemoveRegion(name string) error {
	return nil
}

// openFileMapping calls OpenFileMappingW, which x/sys/windows does not wrap.
func openFileMapping(access uint32, name *uint16) (windows.Handle, error) {
	r, _, e := procOpenFileMappingW.Call(uintptr(access), 0, uintptr(unsafe.Pointer(name)))
	if r == 0 {
		if errno, ok := e.(syscall.Errno); ok && errno != 0 {
			return 0, errno
		}
		return 0, syscall.EINVAL
	}
	return windows.Handle(r), nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, windows.ERROR_FILE_NOT_FOUND):
		return ErrNotFound
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return ErrPermission
	default:
		return ErrMapFailed
	}
}
