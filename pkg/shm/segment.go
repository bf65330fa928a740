package shm

import (
	"context"
	"sync"

	internalshm "github.com/srediag/mumble-link/internal/shm"
	"github.com/srediag/mumble-link/pkg/layout"
)

// Errors returned by Backend.Open.
var (
	ErrNotFound    = internalshm.ErrNotFound
	ErrPermission  = internalshm.ErrPermission
	ErrMapFailed   = internalshm.ErrMapFailed
	ErrNoSpace     = internalshm.ErrNoSpace
	ErrUnsupported = internalshm.ErrUnsupported
)

// OpenOptions defines options for opening a segment.
type OpenOptions struct {
	// Name is the object name. Empty means DefaultName().
	Name string
	// Create creates the object if it does not exist. Without it a missing
	// object fails with ErrNotFound.
	Create bool
}

// Backend opens named segments.
type Backend interface {
	Open(ctx context.Context, opts OpenOptions) (Segment, error)
}

// Segment is an open view of a shared segment. A Segment is not safe for
// concurrent use; the foreign process is the only expected concurrent party.
type Segment interface {
	// Name returns the object name the segment was opened with.
	Name() string
	// Read decodes the current contents into m.
	Read(m *layout.LinkedMemory)
	// Write encodes m over the whole segment.
	Write(m *layout.LinkedMemory)
	// Release stores zero into the version field only.
	Release()
	// Zero stores zero into every field.
	Zero()
	// Close unmaps the local view. It never destroys the object and is safe
	// to call more than once. Read and Write after Close are no-ops.
	Close() error
}

// DefaultName returns the protocol object name for this platform and user.
func DefaultName() string {
	return internalshm.DefaultName()
}

func resolveName(name string) string {
	if name == "" {
		return DefaultName()
	}
	return name
}

// wordSegment implements Segment over a word view shared with other
// processes or other heap handles.
type wordSegment struct {
	name    string
	words   []uint32
	scratch [layout.Size]byte
	release func() error

	closeOnce sync.Once
	closeErr  error
	closed    bool
}

func newWordSegment(name string, words []uint32, release func() error) *wordSegment {
	return &wordSegment{
		name:    name,
		words:   words[:layout.Words],
		release: release,
	}
}

func (s *wordSegment) Name() string {
	return s.name
}

func (s *wordSegment) Read(m *layout.LinkedMemory) {
	if s.closed {
		return
	}
	internalshm.LoadWords(s.scratch[:], s.words)
	// scratch is always layout.Size bytes
	_ = m.Unmarshal(s.scratch[:])
}

func (s *wordSegment) Write(m *layout.LinkedMemory) {
	if s.closed {
		return
	}
	m.Marshal(s.scratch[:])
	internalshm.StoreWords(s.words, s.scratch[:])
}

func (s *wordSegment) Release() {
	if s.closed {
		return
	}
	internalshm.StoreWord(s.words, layout.OffsetVersion/4, 0)
}

func (s *wordSegment) Zero() {
	if s.closed {
		return
	}
	internalshm.ZeroWords(s.words)
}

func (s *wordSegment) Close() error {
	s.closeOnce.Do(func() {
		s.closed = true
		s.words = nil
		if s.release != nil {
			s.closeErr = s.release()
		}
	})
	return s.closeErr
}
