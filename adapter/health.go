package adapter

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/srediag/mumble-link/link"
)

// StatusSource is implemented by *link.SharedLink.
type StatusSource interface {
	Status() link.Status
}

// Source is what NewHealthHandler checks.
type Source interface {
	StatsSource
	StatusSource
}

var now = time.Now

// LinkLivenessCheck fails when the session tick has not moved for longer
// than maxStall, which means the frame loop stopped calling Update.
func LinkLivenessCheck(source StatsSource, maxStall time.Duration) healthcheck.Check {
	var (
		mu       sync.Mutex
		seen     bool
		lastTick uint32
		movedAt  time.Time
	)
	return func() error {
		tick := source.Stats().Tick
		t := now()

		mu.Lock()
		defer mu.Unlock()
		if !seen || tick != lastTick {
			seen = true
			lastTick = tick
			movedAt = t
			return nil
		}
		if stalled := t.Sub(movedAt); stalled > maxStall {
			return fmt.Errorf("link tick stuck at %d for %s", tick, stalled.Truncate(time.Millisecond))
		}
		return nil
	}
}

// LinkReadinessCheck fails unless the session is Active.
func LinkReadinessCheck(source StatusSource) healthcheck.Check {
	return func() error {
		if st := source.Status(); st.Kind != link.StatusActive {
			return errors.New(st.String())
		}
		return nil
	}
}

// NewHealthHandler serves /live and /ready for source and exports the check
// results as gauges in registry.
func NewHealthHandler(registry prometheus.Registerer, namespace string, source Source, maxStall time.Duration) healthcheck.Handler {
	h := healthcheck.NewMetricsHandler(registry, namespace)
	h.AddLivenessCheck("link-ticking", LinkLivenessCheck(source, maxStall))
	h.AddReadinessCheck("link-active", LinkReadinessCheck(source))
	return h
}
