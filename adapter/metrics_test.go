package adapter

import (
	"context"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srediag/mumble-link/link"
	"github.com/srediag/mumble-link/pkg/layout"
	"github.com/srediag/mumble-link/pkg/shm"
)

type fakeSource struct {
	stats  link.Stats
	status link.Status
}

func (f *fakeSource) Stats() link.Stats   { return f.stats }
func (f *fakeSource) Status() link.Status { return f.status }

func gather(t *testing.T, c prometheus.Collector) map[string][]*dto.Metric {
	t.Helper()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string][]*dto.Metric, len(families))
	for _, f := range families {
		out[f.GetName()] = f.GetMetric()
	}
	return out
}

func label(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestCollector(t *testing.T) {
	src := &fakeSource{stats: link.Stats{
		Segment:          "MumbleLink.1000",
		State:            link.StatusInUse,
		Tick:             300,
		Flushes:          12,
		ReattachAttempts: 2,
		Promotions:       1,
	}}
	metrics := gather(t, NewCollector("linkdemo", src))

	states := metrics["linkdemo_link_state"]
	require.Len(t, states, 3)
	for _, m := range states {
		want := 0.0
		if label(m, "state") == "in_use" {
			want = 1
		}
		assert.Equal(t, want, m.GetGauge().GetValue(), label(m, "state"))
		assert.Equal(t, "MumbleLink.1000", label(m, "segment"))
	}

	assert.Equal(t, 300.0, metrics["linkdemo_link_tick"][0].GetGauge().GetValue())
	assert.Equal(t, 12.0, metrics["linkdemo_link_flushes_total"][0].GetCounter().GetValue())
	assert.Equal(t, 2.0, metrics["linkdemo_link_reattach_attempts_total"][0].GetCounter().GetValue())
	assert.Equal(t, 1.0, metrics["linkdemo_link_promotions_total"][0].GetCounter().GetValue())
}

func TestCollectorOverSharedLink(t *testing.T) {
	heap := shm.NewHeap()
	seg, err := heap.Open(context.Background(), shm.OpenOptions{Name: "collector", Create: true})
	require.NoError(t, err)
	defer seg.Close()

	conf := link.DefaultConfig()
	conf.SegmentName = "collector"
	conf.Backend = heap
	conf.LogOutput = io.Discard
	session, err := link.NewShared(context.Background(), "Game", "A game", conf)
	require.NoError(t, err)
	defer session.Close()

	for i := 0; i < 4; i++ {
		session.Update(layout.DefaultPosition(), layout.DefaultPosition())
	}

	metrics := gather(t, NewCollector("", session))
	assert.Equal(t, 4.0, metrics["link_flushes_total"][0].GetCounter().GetValue())
	assert.Equal(t, "collector", label(metrics["link_tick"][0], "segment"))
}
