// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"time"

	"grimm.is/sentrycore/internal/agentjson"
	"grimm.is/sentrycore/internal/eventcore"
	"grimm.is/sentrycore/internal/queue"
)

// ConfigurationErrorCollector surfaces twin validation diagnostics from
// the most recent twin update, if any.
type ConfigurationErrorCollector struct {
	Errors func() []ConfigurationIssue
}

// ConfigurationIssue is one field-level twin validation problem.
type ConfigurationIssue struct {
	Field   string
	Message string
}

// Collect emits one event with one payload object per outstanding
// configuration issue, or no event at all if there are none.
func (c ConfigurationErrorCollector) Collect(q *queue.Queue) Result {
	issues := c.Errors()
	if len(issues) == 0 {
		return OK
	}

	arr := agentjson.NewArrayWriter()
	for _, issue := range issues {
		w := agentjson.NewObjectWriter()
		w.WriteString("Field", issue.Field)
		w.WriteString("Message", issue.Message)
		arr.AddObject(w)
	}

	raw, err := eventcore.BuildEvent(eventcore.CategoryTriggered, eventcore.NameConfigurationError, eventcore.TypeOperational, time.Time{}, arr)
	if err != nil {
		return Exception
	}
	return pushEvent(q, raw)
}
