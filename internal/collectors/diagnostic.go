// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"grimm.is/sentrycore/internal/agentjson"
	"grimm.is/sentrycore/internal/diagnostic"
	"grimm.is/sentrycore/internal/eventcore"
	"grimm.is/sentrycore/internal/queue"
)

// DiagnosticCollector drains the internal diagnostic queue, emitting one
// event per record using that record's own timestamp as the event time.
type DiagnosticCollector struct {
	Queue *diagnostic.Queue
}

// Collect drains every currently queued diagnostic record.
func (c DiagnosticCollector) Collect(q *queue.Queue) Result {
	records := c.Queue.DrainAll()
	result := OK
	for _, r := range records {
		w := agentjson.NewObjectWriter()
		w.WriteString("Message", r.Message)
		w.WriteString("Severity", string(r.Severity))
		w.WriteInt("ProcessId", int64(r.ProcessId))
		w.WriteInt("ThreadId", int64(r.ThreadId))
		w.WriteString("CorrelationId", r.CorrelationId)

		raw, err := eventcore.SingleObjectEvent(eventcore.CategoryTriggered, eventcore.NameDiagnostic, eventcore.TypeDiagnostic, r.Time, w)
		if err != nil {
			result = Exception
			continue
		}
		if pr := pushEvent(q, raw); pr == OutOfMem && result == OK {
			result = OutOfMem
		}
	}
	return result
}
