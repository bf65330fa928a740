// Package api defines public API contracts for mumble-link.
package api

import (
	"github.com/srediag/mumble-link/link"
	"github.com/srediag/mumble-link/pkg/layout"
)

// Link is the per-frame surface shared by both session kinds.
type Link interface {
	SetContext(ctx []byte)
	SetIdentity(identity string)
	Update(avatar, camera layout.Position)
	Close() error
}

// SharedLink is a Link that survives a missing or occupied segment.
type SharedLink interface {
	Link
	Deactivate()
	Status() link.Status
	Stats() link.Stats
}

var (
	_ Link       = (*link.Link)(nil)
	_ SharedLink = (*link.SharedLink)(nil)
)
