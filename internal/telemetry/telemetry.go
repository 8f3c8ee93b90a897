// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package telemetry holds the process-wide, lock-free counters the
// AgentTelemetry collectors read: per-queue collected/dropped counts (owned
// by the queues themselves) and outbound message send statistics (owned
// here, driven by the external sender).
package telemetry

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"grimm.is/sentrycore/internal/queue"
)

// MessageCounters tracks outbound delivery statistics the cloud sender
// (out of scope for this module) updates and the MessageStatistics
// collector reads.
type MessageCounters struct {
	sent  atomic.Uint64
	failed atomic.Uint64
	small atomic.Uint64
}

func (m *MessageCounters) IncSent()   { m.sent.Add(1) }
func (m *MessageCounters) IncFailed() { m.failed.Add(1) }
func (m *MessageCounters) IncUnder4KB() { m.small.Add(1) }

// Snapshot returns the current counter values without resetting them.
func (m *MessageCounters) Snapshot() (sent, failed, under4KB uint64) {
	return m.sent.Load(), m.failed.Load(), m.small.Load()
}

// SnapshotAndReset atomically reads and zeroes all three counters.
func (m *MessageCounters) SnapshotAndReset() (sent, failed, under4KB uint64) {
	return m.sent.Swap(0), m.failed.Swap(0), m.small.Swap(0)
}

// Registry is the process-wide telemetry surface: references to the three
// priority queues (for the collected/dropped counters §4.11 says they own)
// plus the message counters, and a prometheus registry exposing both for
// an external scrape endpoint.
type Registry struct {
	Operational *queue.Queue
	High        *queue.Queue
	Low         *queue.Queue
	Messages    *MessageCounters

	prom *prometheus.Registry
}

// NewRegistry wires a telemetry Registry around the three priority queues.
func NewRegistry(operational, high, low *queue.Queue) *Registry {
	r := &Registry{
		Operational: operational,
		High:        high,
		Low:         low,
		Messages:    &MessageCounters{},
		prom:        prometheus.NewRegistry(),
	}
	r.registerCollectors()
	return r
}

func (r *Registry) registerCollectors() {
	queueGauge := func(name, help string, get func() uint64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "sentrycore",
			Subsystem: "queue",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(get()) })
	}

	for _, q := range []struct {
		name string
		q    *queue.Queue
	}{
		{"operational", r.Operational},
		{"high", r.High},
		{"low", r.Low},
	} {
		qq := q.q
		r.prom.MustRegister(queueGauge(q.name+"_collected", "items successfully pushed", qq.Collected))
		r.prom.MustRegister(queueGauge(q.name+"_dropped", "items dropped for exceeding the memory cap", qq.Dropped))
		r.prom.MustRegister(queueGauge(q.name+"_size", "items currently queued", func() uint64 { return uint64(qq.Size()) }))
	}

	r.prom.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sentrycore", Subsystem: "messages", Name: "sent", Help: "outbound messages sent",
	}, func() float64 { sent, _, _ := r.Messages.Snapshot(); return float64(sent) }))
	r.prom.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sentrycore", Subsystem: "messages", Name: "failed", Help: "outbound messages that failed to send",
	}, func() float64 { _, failed, _ := r.Messages.Snapshot(); return float64(failed) }))
	r.prom.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sentrycore", Subsystem: "messages", Name: "under_4kb", Help: "outbound messages under 4KB",
	}, func() float64 { _, _, small := r.Messages.Snapshot(); return float64(small) }))
}

// Prometheus returns the registry a scrape HTTP handler (out of scope here)
// would mount.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.prom
}
