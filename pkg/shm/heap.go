package shm

import (
	"context"
	"fmt"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/srediag/mumble-link/pkg/layout"
)

// Heap is a Backend whose named segments live in process memory. Handles
// opened under the same name share words, so a Heap behaves like the OS
// namespace for tests and for platforms without shared memory.
type Heap struct {
	regions cmap.ConcurrentMap[string, []uint32]
}

// NewHeap creates an empty Heap.
func NewHeap() *Heap {
	return &Heap{regions: cmap.New[[]uint32]()}
}

// Open opens or creates a named heap segment.
func (h *Heap) Open(ctx context.Context, opts OpenOptions) (Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := resolveName(opts.Name)
	var words []uint32
	if opts.Create {
		words = h.regions.Upsert(name, nil, func(exist bool, inMap []uint32, _ []uint32) []uint32 {
			if exist {
				return inMap
			}
			return make([]uint32, layout.Words)
		})
	} else {
		var ok bool
		if words, ok = h.regions.Get(name); !ok {
			return nil, fmt.Errorf("%w: heap segment %q", ErrNotFound, name)
		}
	}
	return newWordSegment(name, words, nil), nil
}

// Remove deletes the named segment. Handles already open keep their words;
// later opens without Create fail with ErrNotFound.
func (h *Heap) Remove(name string) {
	h.regions.Remove(resolveName(name))
}

// Names lists the segments currently present.
func (h *Heap) Names() []string {
	return h.regions.Keys()
}
