// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"io"

	"grimm.is/sentrycore/internal/aggregator"
	"grimm.is/sentrycore/internal/agentjson"
	"grimm.is/sentrycore/internal/auditsearch"
	"grimm.is/sentrycore/internal/eventcore"
	"grimm.is/sentrycore/internal/logging"
	"grimm.is/sentrycore/internal/queue"
)

// userLoginCheckpointPath is a var, not a const, so tests can point it at
// a scratch directory instead of the real /var/tmp.
var userLoginCheckpointPath = "/var/tmp/userLoginCheckpoint"

// LoginCollector watches authentication attempts via USER_LOGIN audit
// records.
type LoginCollector struct {
	Agg    *aggregator.Aggregator
	Logger *logging.Logger
}

// Collect opens source and emits one Login event per authentication
// attempt seen since the last checkpoint.
func (c *LoginCollector) Collect(source io.Reader, q *queue.Queue) Result {
	return runTriggered(triggeredSpec{
		Source:         source,
		Criteria:       auditsearch.CriteriaType,
		Keys:           []string{"USER_LOGIN"},
		CheckpointPath: userLoginCheckpointPath,
		EventName:      eventcore.NameLogin,
		EventType:      eventcore.TypeSecurity,
		Agg:            c.Agg,
		Queue:          q,
		Logger:         c.Logger,
		ZeroForAggregation: func(p *agentjson.ObjectWriter) {
			p.WriteInt("ProcessId", 0)
		},
		BuildPayload: c.buildPayload,
	})
}

func (c *LoginCollector) buildPayload(s *auditsearch.Search) (*agentjson.ObjectWriter, recordResult) {
	pid, pidRes := s.ReadInt("pid")
	if pidRes != auditsearch.ResultOK {
		return nil, recordSkip
	}
	exe, exeRes := s.InterpretString("exe")
	if exeRes != auditsearch.ResultOK {
		return nil, recordSkip
	}

	res, resRes := s.ReadString("res")
	if resRes != auditsearch.ResultOK {
		return nil, recordSkip
	}
	var result string
	switch res {
	case "success":
		result = "Success"
	case "failed":
		result = "Failed"
	default:
		return nil, recordFiltered
	}

	w := agentjson.NewObjectWriter()
	w.WriteInt("ProcessId", int64(pid))

	if uid, uidRes := s.ReadInt("uid"); uidRes == auditsearch.ResultOK {
		w.WriteInt("UserId", int64(uid))
	}
	if userName, unRes := s.InterpretString("acct"); unRes == auditsearch.ResultOK {
		w.WriteString("UserName", userName)
	}

	w.WriteString("Executable", exe)

	if addr, addrRes := s.ReadString("addr"); addrRes == auditsearch.ResultOK && addr != "?" {
		w.WriteString("RemoteAddress", addr)
	}

	w.WriteString("Result", result)

	if op, opRes := s.ReadString("op"); opRes == auditsearch.ResultOK {
		w.WriteString("Operation", op)
	}

	return w, recordOK
}
