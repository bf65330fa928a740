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
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/srediag/mumble-link/pkg/layout"
	"github.com/srediag/mumble-link/pkg/shm"
)

const testWindow = 10

type SharedTestSuite struct {
	suite.Suite
	ctx  context.Context
	heap *shm.Heap
	conf *Config
}

func (s *SharedTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.heap = shm.NewHeap()
	s.conf = testConfig(s.heap)
	s.conf.SamplingWindow = testWindow
}

// host creates the segment the way the voice-chat host does and returns a
// handle on it.
func (s *SharedTestSuite) host() shm.Segment {
	seg, err := s.heap.Open(s.ctx, shm.OpenOptions{Name: testSegment, Create: true})
	s.Require().NoError(err)
	return seg
}

func (s *SharedTestSuite) occupy(name string) (shm.Segment, *layout.LinkedMemory) {
	seg := s.host()
	occupant := &layout.LinkedMemory{Version: layout.Version, Tick: 500}
	occupant.SetName(name)
	occupant.SetDescription(name + " description")
	seg.Write(occupant)
	return seg, occupant
}

func (s *SharedTestSuite) newShared() *SharedLink {
	link, err := NewShared(s.ctx, "Game", "A game", s.conf)
	s.Require().NoError(err)
	return link
}

func (s *SharedTestSuite) update(link *SharedLink, n int) {
	for i := 0; i < n; i++ {
		link.Update(layout.DefaultPosition(), layout.DefaultPosition())
	}
}

func (s *SharedTestSuite) TestClosedWhenSegmentMissing() {
	link := s.newShared()
	defer link.Close()

	status := link.Status()
	s.Require().Equal(StatusClosed, status.Kind)
	s.Require().ErrorIs(status.Err, ErrSegmentUnavailable)
	s.Require().ErrorIs(status.Err, shm.ErrNotFound)

	s.update(link, testWindow-1)
	stats := link.Stats()
	s.Require().Equal(uint32(testWindow-1), stats.Tick)
	s.Require().Zero(stats.Flushes)
	s.Require().Zero(stats.ReattachAttempts)
}

func (s *SharedTestSuite) TestReattachesWhenSegmentAppears() {
	link := s.newShared()
	defer link.Close()

	s.update(link, testWindow-1)
	seg := s.host()
	s.Require().Equal(StatusClosed, link.Status().Kind)

	s.update(link, 1)
	s.Require().Equal(StatusActive, link.Status().Kind)

	var m layout.LinkedMemory
	seg.Read(&m)
	s.Require().Equal(layout.Version, m.Version)
	s.Require().Equal(uint32(testWindow), m.Tick)
	s.Require().Equal("Game", m.NameString())

	stats := link.Stats()
	s.Require().Equal(uint64(1), stats.ReattachAttempts)
	s.Require().Equal(uint64(1), stats.Flushes)
}

func (s *SharedTestSuite) TestActiveWhenSegmentFree() {
	seg := s.host()
	link := s.newShared()
	defer link.Close()

	s.Require().Equal(StatusActive, link.Status().Kind)
	link.SetIdentity("player-1")
	link.SetContext([]byte("red"))
	s.update(link, 1)

	var m layout.LinkedMemory
	seg.Read(&m)
	s.Require().Equal(layout.Version, m.Version)
	s.Require().Equal(uint32(1), m.Tick)
	s.Require().Equal("player-1", m.IdentityString())
	s.Require().Equal([]byte("red"), m.ContextBytes())
}

func (s *SharedTestSuite) TestLiveOccupantIsNeverTouched() {
	seg, occupant := s.occupy("Other")
	link := s.newShared()
	defer link.Close()

	status := link.Status()
	s.Require().Equal(StatusInUse, status.Kind)
	s.Require().Equal("Other", status.Name)
	s.Require().Equal("Other description", status.Description)
	s.Require().Equal("In use by Other: Other description", status.String())

	for i := 0; i < 3*testWindow; i++ {
		occupant.Tick++
		seg.Write(occupant)
		s.update(link, 1)
	}

	s.Require().Equal(StatusInUse, link.Status().Kind)
	var m layout.LinkedMemory
	seg.Read(&m)
	s.Require().Equal(*occupant, m)
	s.Require().Zero(link.Stats().Flushes)
}

func (s *SharedTestSuite) TestStaleOccupantIsTakenOver() {
	seg, _ := s.occupy("Crashed")
	link := s.newShared()
	defer link.Close()

	s.update(link, testWindow-1)
	s.Require().Equal(StatusInUse, link.Status().Kind)

	s.update(link, 1)
	s.Require().Equal(StatusActive, link.Status().Kind)
	s.Require().Equal(uint64(1), link.Stats().Promotions)

	var m layout.LinkedMemory
	seg.Read(&m)
	s.Require().Equal("Game", m.NameString())
	s.Require().Equal(uint32(testWindow), m.Tick)
}

func (s *SharedTestSuite) TestReleasedSegmentIsTakenOver() {
	seg, occupant := s.occupy("Other")
	link := s.newShared()
	defer link.Close()

	occupant.Tick++
	seg.Write(occupant)
	seg.Release()

	s.update(link, testWindow)
	s.Require().Equal(StatusActive, link.Status().Kind)
}

func (s *SharedTestSuite) TestDeactivateActive() {
	seg := s.host()
	link := s.newShared()
	defer link.Close()

	s.update(link, 3)
	link.Deactivate()

	var m layout.LinkedMemory
	seg.Read(&m)
	s.Require().Equal(layout.LinkedMemory{}, m)

	status := link.Status()
	s.Require().Equal(StatusClosed, status.Kind)
	s.Require().ErrorIs(status.Err, ErrManuallyClosed)

	link.Deactivate()
	s.Require().ErrorIs(link.Status().Err, ErrManuallyClosed)

	// the next window reattaches
	s.update(link, testWindow-3)
	s.Require().Equal(StatusActive, link.Status().Kind)
}

func (s *SharedTestSuite) TestDeactivateThenExclusiveOpen() {
	s.host()
	shared := s.newShared()
	defer shared.Close()

	s.update(shared, 3)
	shared.Deactivate()
	s.Require().Equal(StatusClosed, shared.Status().Kind)

	l, err := Open(s.ctx, "Exclusive", "An exclusive game", s.conf)
	s.Require().NoError(err)
	s.Require().False(errors.Is(err, ErrConflict))
	s.Require().NoError(l.Close())
}

func (s *SharedTestSuite) TestDeactivateReplacesUnavailableError() {
	link := s.newShared()
	defer link.Close()
	s.Require().ErrorIs(link.Status().Err, ErrSegmentUnavailable)

	link.Deactivate()
	status := link.Status()
	s.Require().Equal(StatusClosed, status.Kind)
	s.Require().ErrorIs(status.Err, ErrManuallyClosed)
	s.Require().False(errors.Is(status.Err, ErrSegmentUnavailable))
}

func (s *SharedTestSuite) TestDeactivateInUse() {
	seg, occupant := s.occupy("Other")
	link := s.newShared()
	defer link.Close()

	link.Deactivate()
	s.Require().ErrorIs(link.Status().Err, ErrManuallyClosed)

	var m layout.LinkedMemory
	seg.Read(&m)
	s.Require().Equal(*occupant, m)
}

func (s *SharedTestSuite) TestCloseIsTerminal() {
	seg := s.host()
	link := s.newShared()

	s.update(link, 1)
	s.Require().NoError(link.Close())
	s.Require().NoError(link.Close())

	s.update(link, 3*testWindow)
	s.Require().Equal(StatusClosed, link.Status().Kind)

	var m layout.LinkedMemory
	seg.Read(&m)
	s.Require().Equal(layout.LinkedMemory{}, m)
}

func (s *SharedTestSuite) TestTransitionsAreCounted() {
	meter := &countingMeter{}
	s.conf.Meter = meter
	s.host()
	link := s.newShared()

	s.update(link, 2)
	s.Require().NoError(link.Close())

	// active on construction, then closed
	s.Require().Equal(int64(2), meter.count("mumblelink.transitions"))
	s.Require().Equal(int64(2), meter.count("mumblelink.flushes"))
}

func (s *SharedTestSuite) TestInvalidConfig() {
	s.conf.SamplingWindow = 0
	link, err := NewShared(s.ctx, "Game", "A game", s.conf)
	s.Require().Nil(link)
	s.Require().ErrorIs(err, ErrInvalidConfig)
}

func (s *SharedTestSuite) TestConcurrentObservers() {
	s.host()
	link := s.newShared()
	defer link.Close()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = link.Status()
				_ = link.Stats()
			}
		}()
	}
	s.update(link, 5*testWindow)
	wg.Wait()
	s.Require().Equal(uint64(5*testWindow), link.Stats().Flushes)
}

func (s *SharedTestSuite) TestStatusString() {
	cases := []struct {
		status Status
		want   string
	}{
		{Status{Kind: StatusActive}, "Active"},
		{Status{Kind: StatusClosed, Err: ErrManuallyClosed}, "Closed: link manually closed"},
		{Status{Kind: StatusInUse, Name: "A", Description: "B"}, "In use by A: B"},
	}
	for _, c := range cases {
		s.Require().Equal(c.want, c.status.String())
	}
	s.Require().Equal("in_use", StatusInUse.String())
	s.Require().Equal("StatusKind(9)", StatusKind(9).String())
}

func TestSharedTestSuite(t *testing.T) {
	suite.Run(t, new(SharedTestSuite))
}

var _ io.Closer = (*SharedLink)(nil)
