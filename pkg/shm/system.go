package shm

import (
	"context"

	internalshm "github.com/srediag/mumble-link/internal/shm"
	"github.com/srediag/mumble-link/pkg/layout"
)

type systemBackend struct{}

// System returns the backend for the operating system's named shared memory.
func System() Backend {
	return systemBackend{}
}

// Open maps the named object. With opts.Create the object is created when
// missing and grown to layout.Size when smaller.
func (systemBackend) Open(ctx context.Context, opts OpenOptions) (Segment, error) {
	name := resolveName(opts.Name)
	region, err := internalshm.MapRegion(ctx, internalshm.MapOptions{
		Name:   name,
		Size:   layout.Size,
		Create: opts.Create,
	})
	if err != nil {
		return nil, err
	}
	return newWordSegment(name, internalshm.Words(region.Addr), func() error {
		return internalshm.UnmapRegion(context.Background(), region)
	}), nil
}

// Remove destroys the named system object. The voice-chat host owns the
// object's lifetime; this exists for tests and cleanup tooling.
func Remove(name string) error {
	return internalshm.RemoveRegion(resolveName(name))
}
