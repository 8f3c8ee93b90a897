// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/sentrycore/internal/agentjson"
)

type fakeTwin struct {
	enabled  bool
	interval time.Duration
}

func (f *fakeTwin) AggregationEnabled(string) bool           { return f.enabled }
func (f *fakeTwin) AggregationInterval(string) time.Duration { return f.interval }

func samplePayload(exe string) *agentjson.ObjectWriter {
	w := agentjson.NewObjectWriter()
	w.WriteString("Executable", exe)
	return w
}

func TestAggregateReturnsDisabledWhenOff(t *testing.T) {
	tw := &fakeTwin{enabled: false}
	agg := New("ProcessCreate", tw)
	res, err := agg.Aggregate(samplePayload("/bin/ls"))
	require.NoError(t, err)
	assert.Equal(t, ResultDisabled, res)
}

func TestAggregateCollapsesDuplicates(t *testing.T) {
	tw := &fakeTwin{enabled: true, interval: time.Hour}
	agg := New("ProcessCreate", tw)

	for i := 0; i < 4; i++ {
		res, err := agg.Aggregate(samplePayload("/bin/ls"))
		require.NoError(t, err)
		assert.Equal(t, ResultAggregated, res)
	}

	var pushed []*agentjson.ObjectWriter
	tw.interval = 0 // force flush regardless of elapsed time
	require.NoError(t, agg.Flush(func(o *agentjson.ObjectWriter) error {
		pushed = append(pushed, o)
		return nil
	}))

	require.Len(t, pushed, 1)
	out, err := pushed[0].Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"Count":4`)
}

func TestFlushIsIdempotentWhenWindowNotElapsedAndEmpty(t *testing.T) {
	tw := &fakeTwin{enabled: true, interval: time.Hour}
	agg := New("ProcessCreate", tw)

	var calls int
	push := func(*agentjson.ObjectWriter) error { calls++; return nil }
	require.NoError(t, agg.Flush(push))
	require.NoError(t, agg.Flush(push))
	assert.Equal(t, 0, calls)
}

func TestDisablingForcesFullFlush(t *testing.T) {
	tw := &fakeTwin{enabled: true, interval: time.Hour}
	agg := New("ProcessCreate", tw)

	_, err := agg.Aggregate(samplePayload("/bin/ls"))
	require.NoError(t, err)

	tw.enabled = false
	var calls int
	require.NoError(t, agg.Flush(func(*agentjson.ObjectWriter) error { calls++; return nil }))
	assert.Equal(t, 1, calls)
}
