/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package link

import (
	"fmt"

	"github.com/srediag/mumble-link/pkg/shm"
)

// StatusKind is the coarse state of a SharedLink.
type StatusKind int

const (
	// StatusClosed means no segment is held. Status.Err tells why.
	StatusClosed StatusKind = iota
	// StatusInUse means another application owns the segment.
	StatusInUse
	// StatusActive means this session owns the segment and flushes to it.
	StatusActive
)

func (k StatusKind) String() string {
	switch k {
	case StatusClosed:
		return "closed"
	case StatusInUse:
		return "in_use"
	case StatusActive:
		return "active"
	default:
		return fmt.Sprintf("StatusKind(%d)", int(k))
	}
}

// Status is a snapshot of a SharedLink's state for display.
type Status struct {
	Kind StatusKind
	// Err is set when Kind is StatusClosed.
	Err error
	// Name and Description identify the occupant when Kind is StatusInUse.
	Name        string
	Description string
}

func (s Status) String() string {
	switch s.Kind {
	case StatusClosed:
		return fmt.Sprintf("Closed: %v", s.Err)
	case StatusInUse:
		return fmt.Sprintf("In use by %s: %s", s.Name, s.Description)
	case StatusActive:
		return "Active"
	default:
		return s.Kind.String()
	}
}

// Stats are the counters of a SharedLink.
type Stats struct {
	Segment          string
	State            StatusKind
	Tick             uint32
	Flushes          uint64
	ReattachAttempts uint64
	Promotions       uint64
}

// state is one of closedState, inUseState or activeState. A nil state only
// exists while a SharedLink is being constructed.
type state interface {
	kind() StatusKind
}

type closedState struct {
	err error
}

type inUseState struct {
	seg          shm.Segment
	observedTick uint32
}

type activeState struct {
	seg shm.Segment
}

func (closedState) kind() StatusKind { return StatusClosed }
func (inUseState) kind() StatusKind  { return StatusInUse }
func (activeState) kind() StatusKind { return StatusActive }
