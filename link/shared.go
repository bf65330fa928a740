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
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/srediag/mumble-link/pkg/layout"
	"github.com/srediag/mumble-link/pkg/shm"
)

// SharedLink is a resilient session. It never fails to construct: when the
// segment is missing or owned by another application it keeps working
// locally and periodically tries to take the segment over.
//
// Every SamplingWindow-th Update reevaluates the state:
//   - Closed retries opening the segment.
//   - InUse takes over when the occupant released the segment or its tick
//     did not move since the previous sample.
//   - Active stays Active.
//
// The methods are safe for concurrent use.
type SharedLink struct {
	mu       sync.Mutex
	conf     *Config
	logger   *logger
	inst     *instruments
	local    layout.LinkedMemory
	peek     layout.LinkedMemory
	state    state
	terminal bool

	flushes          uint64
	reattachAttempts uint64
	promotions       uint64
}

// NewShared starts a resilient session for the application called name.
// Only an invalid conf makes it fail; a nil conf means DefaultConfig().
func NewShared(ctx context.Context, name, description string, conf *Config) (*SharedLink, error) {
	conf, err := prepareConfig(conf)
	if err != nil {
		return nil, err
	}
	log := newLogger(conf.SegmentName, conf.LogOutput)
	s := &SharedLink{
		conf:   conf,
		logger: log,
		inst:   newInstruments(conf, log),
	}
	s.local.Version = layout.Version
	s.local.SetName(name)
	s.local.SetDescription(description)

	s.transition(s.open(ctx))
	return s, nil
}

// open tries to map the segment and samples its version.
func (s *SharedLink) open(ctx context.Context) state {
	ctx, span := s.inst.start(ctx, "link.open")
	defer span.End()

	seg, err := s.conf.Backend.Open(ctx, shm.OpenOptions{Name: s.conf.SegmentName})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSegmentUnavailable, err)
		spanError(span, err)
		return closedState{err: err}
	}
	seg.Read(&s.peek)
	if s.peek.Version != 0 {
		return inUseState{seg: seg, observedTick: s.peek.Tick}
	}
	return activeState{seg: seg}
}

// transition installs next and reports a change of kind. Replacing a state
// with one of the same kind is only traced.
func (s *SharedLink) transition(next state) {
	prev := s.state
	s.state = next
	if prev != nil && prev.kind() == next.kind() {
		s.logger.tracef("state refreshed: %s", next.kind())
		return
	}
	s.inst.transition(next.kind())
	switch st := next.(type) {
	case closedState:
		if errors.Is(st.err, ErrManuallyClosed) {
			s.logger.infof("link deactivated")
		} else {
			s.logger.debugf("link closed: %v", st.err)
		}
	case inUseState:
		s.logger.infof("link in use by %q", s.peek.NameString())
	case activeState:
		s.logger.infof("link active")
	}
}

func (s *SharedLink) reevaluate() {
	switch st := s.state.(type) {
	case closedState:
		s.reattachAttempts++
		s.transition(s.open(context.Background()))
	case inUseState:
		st.seg.Read(&s.peek)
		if s.peek.Version == 0 || s.peek.Tick == st.observedTick {
			s.promotions++
			s.transition(activeState{seg: st.seg})
			return
		}
		s.transition(inUseState{seg: st.seg, observedTick: s.peek.Tick})
	}
}

// Update advances the local tick and records both positions. The local copy
// is flushed into the segment only while the session is Active.
func (s *SharedLink) Update(avatar, camera layout.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.local.Tick++
	s.local.Avatar = avatar
	s.local.Camera = camera
	if !s.terminal && s.local.Tick%s.conf.SamplingWindow == 0 {
		s.reevaluate()
	}
	if st, ok := s.state.(activeState); ok {
		st.seg.Write(&s.local)
		s.flushes++
		s.inst.flush()
	}
}

// SetContext replaces the context bytes. At most layout.ContextLen bytes are
// kept. Takes effect at the next flush.
func (s *SharedLink) SetContext(ctx []byte) {
	s.mu.Lock()
	s.local.SetContext(ctx)
	s.mu.Unlock()
}

// SetIdentity replaces the identity text, truncating silently. Takes effect
// at the next flush.
func (s *SharedLink) SetIdentity(identity string) {
	s.mu.Lock()
	s.local.SetIdentity(identity)
	s.mu.Unlock()
}

// Status reports the current state. While InUse it reads the occupant's
// name and description from the segment.
func (s *SharedLink) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch st := s.state.(type) {
	case closedState:
		return Status{Kind: StatusClosed, Err: st.err}
	case inUseState:
		st.seg.Read(&s.peek)
		return Status{
			Kind:        StatusInUse,
			Name:        s.peek.NameString(),
			Description: s.peek.DescriptionString(),
		}
	default:
		return Status{Kind: StatusActive}
	}
}

// Stats returns the session counters.
func (s *SharedLink) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Segment:          s.conf.SegmentName,
		State:            s.state.kind(),
		Tick:             s.local.Tick,
		Flushes:          s.flushes,
		ReattachAttempts: s.reattachAttempts,
		Promotions:       s.promotions,
	}
}

// Deactivate zeroes the segment when Active, drops it in any state and moves
// to Closed with ErrManuallyClosed, replacing any earlier error. A
// deactivated session may reattach at the next reevaluation.
func (s *SharedLink) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deactivate()
}

func (s *SharedLink) deactivate() {
	_, span := s.inst.start(context.Background(), "link.deactivate")
	defer span.End()

	switch st := s.state.(type) {
	case activeState:
		st.seg.Zero()
		closeSegment(s.logger, st.seg)
	case inUseState:
		closeSegment(s.logger, st.seg)
	case closedState:
		if errors.Is(st.err, ErrManuallyClosed) {
			return
		}
	}
	s.transition(closedState{err: ErrManuallyClosed})
}

// Close deactivates the session for good: later Updates never reattach.
// It always returns nil and may be called more than once.
func (s *SharedLink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal {
		return nil
	}
	s.deactivate()
	s.terminal = true
	return nil
}
