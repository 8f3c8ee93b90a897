// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grimm.is/sentrycore/internal/queue"
)

func TestMessageCountersSnapshotAndReset(t *testing.T) {
	m := &MessageCounters{}
	m.IncSent()
	m.IncSent()
	m.IncFailed()
	m.IncUnder4KB()

	sent, failed, small := m.Snapshot()
	assert.Equal(t, uint64(2), sent)
	assert.Equal(t, uint64(1), failed)
	assert.Equal(t, uint64(1), small)

	sent, failed, small = m.SnapshotAndReset()
	assert.Equal(t, uint64(2), sent)
	assert.Equal(t, uint64(1), failed)
	assert.Equal(t, uint64(1), small)

	sent, failed, small = m.Snapshot()
	assert.Zero(t, sent)
	assert.Zero(t, failed)
	assert.Zero(t, small)
}

func TestRegistryExposesQueueCounters(t *testing.T) {
	op := queue.New(1024)
	high := queue.New(100)
	low := queue.New(1024)

	high.PushBack(make([]byte, 60))
	high.PushBack(make([]byte, 60)) // dropped

	reg := NewRegistry(op, high, low)

	metrics, err := reg.Prometheus().Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, metrics)

	found := map[string]float64{}
	for _, mf := range metrics {
		found[mf.GetName()] = mf.Metric[0].GetGauge().GetValue()
	}
	assert.Equal(t, float64(1), found["sentrycore_queue_high_collected"])
	assert.Equal(t, float64(1), found["sentrycore_queue_high_dropped"])
}
