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
	"fmt"

	"github.com/srediag/mumble-link/pkg/layout"
	"github.com/srediag/mumble-link/pkg/shm"
)

// Link is an exclusive session: it fails to open while another application
// owns the segment and holds the segment until Close.
//
// A Link is not safe for concurrent use.
type Link struct {
	conf   *Config
	logger *logger
	inst   *instruments
	seg    shm.Segment
	local  layout.LinkedMemory
	// flushed is set by the first Update; until then the segment was never
	// claimed and Close must not touch it.
	flushed bool
	closed  bool
}

// Open maps the segment, creating it when missing, and claims it for the
// application called name. It returns a *ConflictError when another
// application owns the segment and an error wrapping ErrSegmentUnavailable
// when the segment cannot be mapped. A nil conf means DefaultConfig().
//
// Nothing is written to the segment until the first Update.
func Open(ctx context.Context, name, description string, conf *Config) (*Link, error) {
	conf, err := prepareConfig(conf)
	if err != nil {
		return nil, err
	}
	log := newLogger(conf.SegmentName, conf.LogOutput)
	inst := newInstruments(conf, log)

	ctx, span := inst.start(ctx, "link.open")
	defer span.End()

	seg, err := conf.Backend.Open(ctx, shm.OpenOptions{Name: conf.SegmentName, Create: true})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSegmentUnavailable, err)
		spanError(span, err)
		log.debugf("open failed: %v", err)
		return nil, err
	}

	l := &Link{
		conf:   conf,
		logger: log,
		inst:   inst,
		seg:    seg,
	}
	seg.Read(&l.local)
	if l.local.Version != 0 {
		err := &ConflictError{
			Name:        l.local.NameString(),
			Description: l.local.DescriptionString(),
		}
		closeSegment(log, seg)
		spanError(span, err)
		log.debugf("open refused: %v", err)
		return nil, err
	}

	l.local.Reset()
	l.local.Version = layout.Version
	l.local.SetName(name)
	l.local.SetDescription(description)
	log.infof("link opened for %q", name)
	return l, nil
}

// SetContext replaces the context bytes. At most layout.ContextLen bytes are
// kept. Takes effect at the next Update.
func (l *Link) SetContext(ctx []byte) {
	l.local.SetContext(ctx)
}

// SetIdentity replaces the identity text, truncating silently. Takes effect
// at the next Update.
func (l *Link) SetIdentity(identity string) {
	l.local.SetIdentity(identity)
}

// Update advances the tick, records both positions and flushes the local
// copy into the segment. It does nothing after Close.
func (l *Link) Update(avatar, camera layout.Position) {
	if l.closed {
		return
	}
	l.local.Tick++
	l.local.Avatar = avatar
	l.local.Camera = camera
	l.seg.Write(&l.local)
	l.flushed = true
	l.inst.flush()
}

// Close releases the segment by storing zero into its version field and
// unmaps it. A Link that never flushed only unmaps, leaving a claim made by
// another process since Open intact. Calling Close more than once is a
// no-op.
func (l *Link) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if l.flushed {
		l.seg.Release()
	}
	closeSegment(l.logger, l.seg)
	l.logger.infof("link closed")
	return nil
}

func closeSegment(log *logger, seg shm.Segment) {
	if err := seg.Close(); err != nil {
		log.warnf("unmap segment %s failed: %v", seg.Name(), err)
	}
}
