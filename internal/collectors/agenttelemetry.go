// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"time"

	"grimm.is/sentrycore/internal/agentjson"
	"grimm.is/sentrycore/internal/eventcore"
	"grimm.is/sentrycore/internal/queue"
	"grimm.is/sentrycore/internal/telemetry"
)

// DroppedEventsCollector reports the collected/dropped counters of the
// high and low priority outbound queues, atomically resetting them.
type DroppedEventsCollector struct {
	High *queue.Queue
	Low  *queue.Queue
}

// Collect emits one payload object per priority queue.
func (c DroppedEventsCollector) Collect(q *queue.Queue) Result {
	arr := agentjson.NewArrayWriter()

	highCollected, highDropped := c.High.SnapshotAndReset()
	w := agentjson.NewObjectWriter()
	w.WriteString("QueueEvents", "High")
	w.WriteInt("CollectedEvents", int64(highCollected))
	w.WriteInt("DroppedEvents", int64(highDropped))
	arr.AddObject(w)

	lowCollected, lowDropped := c.Low.SnapshotAndReset()
	w2 := agentjson.NewObjectWriter()
	w2.WriteString("QueueEvents", "Low")
	w2.WriteInt("CollectedEvents", int64(lowCollected))
	w2.WriteInt("DroppedEvents", int64(lowDropped))
	arr.AddObject(w2)

	raw, err := eventcore.BuildEvent(eventcore.CategoryPeriodic, eventcore.NameDroppedEvents, eventcore.TypeOperational, time.Time{}, arr)
	if err != nil {
		return Exception
	}
	return pushEvent(q, raw)
}

// MessageStatisticsCollector reports the process-wide outbound message
// counters.
type MessageStatisticsCollector struct {
	Counters *telemetry.MessageCounters
}

// Collect emits one single-object event with the current message counts,
// atomically resetting them.
func (c MessageStatisticsCollector) Collect(q *queue.Queue) Result {
	sent, failed, small := c.Counters.SnapshotAndReset()

	w := agentjson.NewObjectWriter()
	w.WriteInt("MessagesSent", int64(sent))
	w.WriteInt("MessagesFailed", int64(failed))
	w.WriteInt("MessagesUnder4KB", int64(small))

	raw, err := eventcore.SingleObjectEvent(eventcore.CategoryPeriodic, eventcore.NameMessageStatistics, eventcore.TypeOperational, time.Time{}, w)
	if err != nil {
		return Exception
	}
	return pushEvent(q, raw)
}
