// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"io"
	"strings"

	"grimm.is/sentrycore/internal/aggregator"
	"grimm.is/sentrycore/internal/agentjson"
	"grimm.is/sentrycore/internal/auditsearch"
	"grimm.is/sentrycore/internal/eventcore"
	"grimm.is/sentrycore/internal/logging"
	"grimm.is/sentrycore/internal/queue"
)

// processCreationCheckpointPath is a var, not a const, so tests can point
// it at a scratch directory instead of the real /var/tmp.
var processCreationCheckpointPath = "/var/tmp/processCreationCheckpoint"

// ProcessCreateCollector watches process creation via EXECVE audit records.
// It keeps an executable→SHA-1 cache populated from INTEGRITY_RULE records
// observed in the same audit stream, since a hash lookup can't be derived
// from the EXECVE event alone.
type ProcessCreateCollector struct {
	Agg    *aggregator.Aggregator
	Logger *logging.Logger

	hashes map[string]string
}

// NewProcessCreateCollector returns a collector with a fresh hash cache.
func NewProcessCreateCollector(agg *aggregator.Aggregator, logger *logging.Logger) *ProcessCreateCollector {
	return &ProcessCreateCollector{Agg: agg, Logger: logger, hashes: make(map[string]string)}
}

// Collect opens source (the audit log content) and emits one ProcessCreate
// event per process creation seen since the last checkpoint.
func (c *ProcessCreateCollector) Collect(source io.Reader, q *queue.Queue) Result {
	if c.hashes == nil {
		c.hashes = make(map[string]string)
	}
	return runTriggered(triggeredSpec{
		Source:         source,
		Criteria:       auditsearch.CriteriaType,
		Keys:           []string{"EXECVE", "INTEGRITY_RULE"},
		CheckpointPath: processCreationCheckpointPath,
		EventName:      eventcore.NameProcessCreate,
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

func (c *ProcessCreateCollector) buildPayload(s *auditsearch.Search) (*agentjson.ObjectWriter, recordResult) {
	types := s.CurrentRecordTypes()
	isIntegrityOnly := true
	for _, t := range types {
		if t != "INTEGRITY_RULE" {
			isIntegrityOnly = false
			break
		}
	}
	if isIntegrityOnly {
		exe, exeRes := s.InterpretString("file")
		hash, hashRes := s.ReadString("hash")
		if exeRes == auditsearch.ResultOK && hashRes == auditsearch.ResultOK {
			c.hashes[exe] = hash
		}
		return nil, recordFiltered
	}

	exe, exeRes := s.InterpretString("exe")
	if exeRes != auditsearch.ResultOK {
		return nil, recordSkip
	}
	pid, pidRes := s.ReadInt("pid")
	if pidRes != auditsearch.ResultOK {
		return nil, recordSkip
	}
	ppid, _ := s.ReadInt("ppid")
	uid, _ := s.ReadInt("uid")

	argv := s.ReadIndexedFields("a")
	commandLine := strings.Join(argv, " ")

	w := agentjson.NewObjectWriter()
	w.WriteString("Executable", exe)
	w.WriteString("CommandLine", commandLine)
	w.WriteInt("UserId", int64(uid))
	w.WriteInt("ProcessId", int64(pid))
	w.WriteInt("ParentProcessId", int64(ppid))

	hash := c.hashes[exe]
	extra := agentjson.NewObjectWriter()
	extra.WriteString("Hash", hash)
	w.WriteObject("ExtraDetails", extra)

	return w, recordOK
}
