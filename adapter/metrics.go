// Package adapter exposes link sessions to external monitoring systems.
package adapter

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/srediag/mumble-link/link"
)

// StatsSource is implemented by *link.SharedLink.
type StatsSource interface {
	Stats() link.Stats
}

var stateKinds = []link.StatusKind{link.StatusClosed, link.StatusInUse, link.StatusActive}

type linkCollector struct {
	source StatsSource

	state            *prometheus.Desc
	tick             *prometheus.Desc
	flushes          *prometheus.Desc
	reattachAttempts *prometheus.Desc
	promotions       *prometheus.Desc
}

// NewCollector returns a collector that snapshots source on every scrape.
func NewCollector(namespace string, source StatsSource) prometheus.Collector {
	name := func(n string) string {
		return prometheus.BuildFQName(namespace, "link", n)
	}
	return &linkCollector{
		source: source,
		state: prometheus.NewDesc(name("state"),
			"Current session state (1 for the current state).",
			[]string{"segment", "state"}, nil),
		tick: prometheus.NewDesc(name("tick"),
			"Local frame counter.", []string{"segment"}, nil),
		flushes: prometheus.NewDesc(name("flushes_total"),
			"Local copy flushes into the segment.", []string{"segment"}, nil),
		reattachAttempts: prometheus.NewDesc(name("reattach_attempts_total"),
			"Attempts to reopen the segment while closed.", []string{"segment"}, nil),
		promotions: prometheus.NewDesc(name("promotions_total"),
			"Takeovers of a released or stale segment.", []string{"segment"}, nil),
	}
}

func (c *linkCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.state
	ch <- c.tick
	ch <- c.flushes
	ch <- c.reattachAttempts
	ch <- c.promotions
}

func (c *linkCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.source.Stats()
	for _, kind := range stateKinds {
		v := 0.0
		if kind == st.State {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, v, st.Segment, kind.String())
	}
	ch <- prometheus.MustNewConstMetric(c.tick, prometheus.GaugeValue, float64(st.Tick), st.Segment)
	ch <- prometheus.MustNewConstMetric(c.flushes, prometheus.CounterValue, float64(st.Flushes), st.Segment)
	ch <- prometheus.MustNewConstMetric(c.reattachAttempts, prometheus.CounterValue, float64(st.ReattachAttempts), st.Segment)
	ch <- prometheus.MustNewConstMetric(c.promotions, prometheus.CounterValue, float64(st.Promotions), st.Segment)
}
