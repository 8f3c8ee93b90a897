// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"time"

	"grimm.is/sentrycore/internal/agentjson"
	"grimm.is/sentrycore/internal/eventcore"
	"grimm.is/sentrycore/internal/queue"
)

// BaselineCheck is one host hardening rule. Its payload shape is opaque to
// the core — only the collector and its checks need to agree on what
// Detail means.
type BaselineCheck interface {
	Name() string
	Run() (passed bool, detail string)
}

// BaselineCollector runs a configured set of rule checks and reports one
// payload object per check.
type BaselineCollector struct {
	Checks []BaselineCheck
}

// Collect runs every configured check and emits one event listing the
// results.
func (c BaselineCollector) Collect(q *queue.Queue) Result {
	arr := agentjson.NewArrayWriter()
	for _, check := range c.Checks {
		passed, detail := check.Run()
		w := agentjson.NewObjectWriter()
		w.WriteString("RuleName", check.Name())
		w.WriteBool("Passed", passed)
		w.WriteString("Detail", detail)
		arr.AddObject(w)
	}

	raw, err := eventcore.BuildEvent(eventcore.CategoryPeriodic, eventcore.NameBaseline, eventcore.TypeSecurity, time.Time{}, arr)
	if err != nil {
		return Exception
	}
	return pushEvent(q, raw)
}
