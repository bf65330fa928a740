// Package shm provides the shared memory segment used by the Mumble Link
// protocol.
//
// A Segment is a view over exactly layout.Size bytes of a named shared memory
// object that a foreign process reads and writes without any locking
// protocol. The only ways to touch the memory are whole-struct Read and Write,
// plus the two release operations, and all of them use ordered 32-bit word
// access. Individual fields are never torn, but a reader may see a mix of two
// writers' fields; callers treat that as jitter that the next frame corrects.
//
// Two backends are provided:
//
//	seg, err := shm.System().Open(ctx, shm.OpenOptions{Create: true})
//	// MumbleLink.<uid> on Linux and FreeBSD, the MumbleLink file mapping on Windows
//
//	heap := shm.NewHeap()
//	seg, err := heap.Open(ctx, shm.OpenOptions{Name: "test", Create: true})
//	// process-local, for tests and hosts without shared memory
//
// The system backend supports Linux (/dev/shm), FreeBSD (shm_open2) and
// Windows (named file mappings). On darwin, the other BSDs and everything
// else Open fails with ErrUnsupported: shm_open is only reachable through
// libc there, which would require cgo. The heap backend works everywhere.
//
// Platform-specific helpers are in internal/shm.
package shm
