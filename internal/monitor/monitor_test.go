// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package monitor

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/sentrycore/internal/collectors"
	"grimm.is/sentrycore/internal/queue"
	"grimm.is/sentrycore/internal/twin"
)

type countingCollector struct {
	calls int
	res   collectors.Result
}

func (c *countingCollector) Collect(q *queue.Queue) collectors.Result {
	c.calls++
	if q != nil {
		q.PushBack([]byte("x"))
	}
	return c.res
}

type countingAuditCollector struct {
	calls int
	res   collectors.Result
}

func (c *countingAuditCollector) Collect(source io.Reader, q *queue.Queue) collectors.Result {
	c.calls++
	io.ReadAll(source)
	if q != nil {
		q.PushBack([]byte("y"))
	}
	return c.res
}

func newTestMonitor() (*Monitor, *twin.Twin) {
	tw := twin.New()
	m := &Monitor{
		Twin:        tw,
		Operational: queue.New(1 << 20),
		High:        queue.New(1 << 20),
		Low:         queue.New(1 << 20),
		OpenAuditSource: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("")), nil
		},
	}
	return m, tw
}

func TestPriorityOffSkipsCollectorEntirely(t *testing.T) {
	m, tw := newTestMonitor()

	_, err := tw.Update([]byte(`{"desired":{"eventPriorityLocalUsers":{"value":"Off"}}}`))
	require.NoError(t, err)

	localUsers := &countingCollector{res: collectors.OK}
	m.RegisterPeriodic(twin.EventLocalUsers, localUsers)

	m.Execute(time.Now())

	assert.Equal(t, 0, localUsers.calls)
	assert.Equal(t, 0, m.Operational.Size())
	assert.Equal(t, 0, m.High.Size())
	assert.Equal(t, 0, m.Low.Size())
}

func TestPeriodicPassRunsOnFirstExecuteThenWaitsForInterval(t *testing.T) {
	m, _ := newTestMonitor()
	c := &countingCollector{res: collectors.OK}
	m.RegisterPeriodic(twin.EventSystemInformation, c)

	base := time.Now()
	m.Execute(base)
	assert.Equal(t, 1, c.calls)

	m.Execute(base.Add(time.Second))
	assert.Equal(t, 1, c.calls, "snapshot_frequency has not elapsed yet")

	m.Execute(base.Add(16 * time.Minute))
	assert.Equal(t, 2, c.calls, "snapshot_frequency has now elapsed")
}

func TestTriggeredPassRunsOnFixedInterval(t *testing.T) {
	m, _ := newTestMonitor()
	c := &countingAuditCollector{res: collectors.OK}
	m.RegisterTriggeredAudit(twin.EventProcessCreate, c)

	base := time.Now()
	m.Execute(base)
	assert.Equal(t, 1, c.calls)

	m.Execute(base.Add(100 * time.Millisecond))
	assert.Equal(t, 1, c.calls, "triggered interval has not elapsed yet")

	m.Execute(base.Add(2 * time.Second))
	assert.Equal(t, 2, c.calls)
}

func TestExceptionFromOneCollectorDoesNotAbortOthers(t *testing.T) {
	m, _ := newTestMonitor()
	failing := &countingCollector{res: collectors.Exception}
	following := &countingCollector{res: collectors.OK}
	m.RegisterPeriodic(twin.EventSystemInformation, failing)
	m.RegisterPeriodic(twin.EventLocalUsers, following)

	m.Execute(time.Now())

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, following.calls)
}

func TestRoutingGoesToQueueMatchingTwinPriority(t *testing.T) {
	m, tw := newTestMonitor()

	_, err := tw.Update([]byte(`{"desired":{"eventPriorityLocalUsers":{"value":"High"}}}`))
	require.NoError(t, err)

	c := &countingCollector{res: collectors.OK}
	m.RegisterPeriodic(twin.EventLocalUsers, c)

	m.Execute(time.Now())

	assert.Equal(t, 1, m.High.Size())
	assert.Equal(t, 0, m.Operational.Size())
	assert.Equal(t, 0, m.Low.Size())
}

func TestRegisterTriggeredRunsWithoutAuditSource(t *testing.T) {
	m, _ := newTestMonitor()
	m.OpenAuditSource = func() (io.ReadCloser, error) {
		t.Fatal("non-audit triggered collector must not open an audit source")
		return nil, nil
	}
	c := &countingCollector{res: collectors.OK}
	m.RegisterTriggered(twin.EventDiagnostic, c)

	m.Execute(time.Now())

	assert.Equal(t, 1, c.calls)
}
