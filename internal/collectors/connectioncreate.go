// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"encoding/hex"
	"fmt"
	"io"

	"grimm.is/sentrycore/internal/aggregator"
	"grimm.is/sentrycore/internal/agentjson"
	"grimm.is/sentrycore/internal/auditsearch"
	"grimm.is/sentrycore/internal/eventcore"
	"grimm.is/sentrycore/internal/logging"
	"grimm.is/sentrycore/internal/queue"
)

// connectionCreationCheckpointPath is a var, not a const, so tests can
// point it at a scratch directory instead of the real /var/tmp.
var connectionCreationCheckpointPath = "/var/tmp/connectionCreationCheckpoint"

// ConnectionCreateCollector watches inbound/outbound TCP connection
// establishment via accept/connect syscall audit records.
type ConnectionCreateCollector struct {
	Agg    *aggregator.Aggregator
	Logger *logging.Logger
}

// Collect opens source and emits one ConnectionCreate event per matching
// socket establishment seen since the last checkpoint.
func (c *ConnectionCreateCollector) Collect(source io.Reader, q *queue.Queue) Result {
	return runTriggered(triggeredSpec{
		Source:         source,
		Criteria:       auditsearch.CriteriaSyscall,
		Keys:           []string{"connect", "accept"},
		CheckpointPath: connectionCreationCheckpointPath,
		EventName:      eventcore.NameConnectionCreate,
		EventType:      eventcore.TypeSecurity,
		Agg:            c.Agg,
		Queue:          q,
		Logger:         c.Logger,
		ZeroForAggregation: func(p *agentjson.ObjectWriter) {
			p.WriteInt("ProcessId", 0)
			p.WriteString("RemotePort", "")
		},
		BuildPayload: c.buildPayload,
	})
}

func (c *ConnectionCreateCollector) buildPayload(s *auditsearch.Search) (*agentjson.ObjectWriter, recordResult) {
	syscallName, res := s.ReadString("syscall")
	if res != auditsearch.ResultOK {
		return nil, recordSkip
	}

	var direction string
	switch syscallName {
	case "connect":
		direction = "Out"
	case "accept":
		direction = "In"
	default:
		return nil, recordFiltered
	}

	saddr, res := s.ReadString("saddr")
	if res != auditsearch.ResultOK {
		return nil, recordSkip
	}
	remoteAddr, remotePort, ok := parseSockaddr(saddr)
	if !ok {
		return nil, recordFiltered
	}

	exe, _ := s.InterpretString("exe")
	pid, _ := s.ReadInt("pid")
	uid, _ := s.ReadInt("uid")
	commandLine, _ := s.InterpretString("proctitle")

	w := agentjson.NewObjectWriter()
	w.WriteString("Protocol", "tcp")
	w.WriteString("Direction", direction)
	w.WriteString("RemoteAddress", remoteAddr)
	w.WriteString("RemotePort", remotePort)
	w.WriteString("Executable", exe)
	w.WriteString("CommandLine", commandLine)
	w.WriteInt("ProcessId", int64(pid))
	w.WriteInt("UserId", int64(uid))
	return w, recordOK
}

// parseSockaddr decodes a hex-encoded kernel sockaddr, as emitted in the
// audit "saddr" field: byte 0 is the low byte of the address family
// (2=AF_INET, 10=AF_INET6; byte 1 is always its zero high byte), bytes 2-3
// are the port big-endian. For AF_INET, bytes 4-7 are the dotted-decimal
// address; for AF_INET6, bytes 8-23 are the address, colon-separated. Any
// other family is filtered.
func parseSockaddr(hexStr string) (addr, port string, ok bool) {
	raw, err := hex.DecodeString(hexStr)
	if err != nil || len(raw) < 4 {
		return "", "", false
	}
	family := raw[0]
	portVal := int(raw[2])<<8 | int(raw[3])

	switch family {
	case 2: // AF_INET
		if len(raw) < 8 {
			return "", "", false
		}
		addr = fmt.Sprintf("%d.%d.%d.%d", raw[4], raw[5], raw[6], raw[7])
	case 10: // AF_INET6
		if len(raw) < 24 {
			return "", "", false
		}
		parts := make([]string, 8)
		for i := 0; i < 8; i++ {
			parts[i] = fmt.Sprintf("%x", int(raw[8+2*i])<<8|int(raw[9+2*i]))
		}
		addr = joinColon(parts)
	default:
		return "", "", false
	}
	return addr, fmt.Sprintf("%d", portVal), true
}

func joinColon(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ":" + p
	}
	return out
}
