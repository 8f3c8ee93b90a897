// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"time"

	"grimm.is/sentrycore/internal/agentjson"
	"grimm.is/sentrycore/internal/datasource/listeningports"
	"grimm.is/sentrycore/internal/eventcore"
	"grimm.is/sentrycore/internal/queue"
)

// ListeningPortsCollector reports the host's currently bound TCP/UDP
// sockets.
type ListeningPortsCollector struct{}

// Collect builds one event listing every listening/bound socket.
func (ListeningPortsCollector) Collect(q *queue.Queue) Result {
	it, err := listeningports.Init()
	if err != nil {
		return Exception
	}
	defer it.Deinit()

	arr := agentjson.NewArrayWriter()
	for it.HasNext() {
		p := it.Next()
		w := agentjson.NewObjectWriter()
		w.WriteString("Protocol", p.Protocol)
		w.WriteString("LocalAddress", p.LocalAddress)
		w.WriteString("LocalPort", p.LocalPort)
		w.WriteString("RemoteAddress", p.RemoteAddress)
		w.WriteString("RemotePort", p.RemotePort)
		if pid, ok := it.Pid(); ok {
			extra := agentjson.NewObjectWriter()
			extra.WriteInt("pid", int64(pid))
			w.WriteObject("ExtraDetails", extra)
		}
		arr.AddObject(w)
	}

	raw, err := eventcore.BuildEvent(eventcore.CategoryPeriodic, eventcore.NameListeningPorts, eventcore.TypeSecurity, time.Time{}, arr)
	if err != nil {
		return Exception
	}
	return pushEvent(q, raw)
}
