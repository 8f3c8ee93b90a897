// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"time"

	"grimm.is/sentrycore/internal/agentjson"
	"grimm.is/sentrycore/internal/datasource/firewall"
	"grimm.is/sentrycore/internal/eventcore"
	"grimm.is/sentrycore/internal/queue"
)

// FirewallConfigurationCollector reports the host's nftables chains and
// rules, one payload object per rule plus a synthetic default-policy entry
// per chain.
type FirewallConfigurationCollector struct{}

// Collect builds one event listing every inspected rule.
func (FirewallConfigurationCollector) Collect(q *queue.Queue) Result {
	it, err := firewall.Init()
	if err != nil {
		return Exception
	}
	defer it.Deinit()

	arr := agentjson.NewArrayWriter()
	for it.HasNext() {
		r := it.Next()
		w := agentjson.NewObjectWriter()
		w.WriteBool("Enabled", r.Enabled)
		w.WriteInt("Priority", int64(r.Priority))
		w.WriteString("ChainName", r.ChainName)
		w.WriteString("Direction", string(r.Direction))
		if r.SrcAddress != "" {
			w.WriteString("SrcAddress", r.SrcAddress)
		}
		if r.SrcPort != "" {
			w.WriteString("SrcPort", r.SrcPort)
		}
		if r.DestAddress != "" {
			w.WriteString("DestAddress", r.DestAddress)
		}
		if r.DestPort != "" {
			w.WriteString("DestPort", r.DestPort)
		}
		if r.Protocol != "" {
			w.WriteString("Protocol", r.Protocol)
		}
		w.WriteString("Action", string(r.Action))
		arr.AddObject(w)
	}

	raw, err := eventcore.BuildEvent(eventcore.CategoryPeriodic, eventcore.NameFirewallConfiguration, eventcore.TypeSecurity, time.Time{}, arr)
	if err != nil {
		return Exception
	}
	return pushEvent(q, raw)
}
