// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"time"

	"grimm.is/sentrycore/internal/agentjson"
	"grimm.is/sentrycore/internal/datasource/sysinfo"
	"grimm.is/sentrycore/internal/eventcore"
	"grimm.is/sentrycore/internal/queue"
)

// SystemInformationCollector reports host OS identity and memory usage.
type SystemInformationCollector struct{}

// Collect builds one single-object SystemInformation event.
func (SystemInformationCollector) Collect(q *queue.Queue) Result {
	info, err := sysinfo.Read()
	if err != nil {
		return Exception
	}

	w := agentjson.NewObjectWriter()
	w.WriteString("OSName", info.OSName)
	w.WriteString("OSVersion", info.OSVersion)
	w.WriteString("OSArchitecture", info.OSArchitecture)
	w.WriteString("HostName", info.HostName)
	w.WriteInt("TotalPhysicalMemoryInKB", int64(info.TotalPhysicalMemoryInKB))
	w.WriteInt("FreePhysicalMemoryInKB", int64(info.FreePhysicalMemoryInKB))

	raw, err := eventcore.SingleObjectEvent(eventcore.CategoryPeriodic, eventcore.NameSystemInformation, eventcore.TypeSecurity, time.Time{}, w)
	if err != nil {
		return Exception
	}
	return pushEvent(q, raw)
}
