//go:build linux

package shm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/unix"
)

const devShm = "/dev/shm"

func objectPath(name string) string {
	return filepath.Join(devShm, strings.TrimPrefix(name, "/"))
}

// openObject opens /dev/shm/<name>, which is where glibc's shm_open puts
// the object.
func openObject(opts MapOptions, flags int) (int, string, error) {
	shmPath := objectPath(opts.Name)
	if opts.Create && !pathExists(shmPath) && !canCreateOnDevShm(uint64(opts.Size), shmPath) {
		return -1, shmPath, fmt.Errorf("%w: path:%s size:%d", ErrNoSpace, shmPath, opts.Size)
	}
	fd, err := unix.Open(shmPath, flags, 0o600)
	if err != nil {
		return -1, shmPath, fmt.Errorf("%w: open %s: %w", classify(err), shmPath, err)
	}
	return fd, shmPath, nil
}

// RemoveRegion unlinks the named object. Only the process that owns the
// object's lifetime (the host, or a test) should call it.
func RemoveRegion(name string) error {
	return unix.Unlink(objectPath(name))
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// canCreateOnDevShm reports whether /dev/shm has room for size more bytes.
// Paths outside /dev/shm, and a failing statfs, are not checked.
func canCreateOnDevShm(size uint64, path string) bool {
	if !strings.HasPrefix(path, devShm) {
		return true
	}
	stat, err := disk.Usage(devShm)
	if err != nil {
		return true
	}
	return stat.Free >= size
}
