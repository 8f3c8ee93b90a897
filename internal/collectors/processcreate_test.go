// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/sentrycore/internal/aggregator"
	"grimm.is/sentrycore/internal/queue"
)

const execveLog = `type=INTEGRITY_RULE msg=audit(1690000000.050:9): file="/bin/ls" hash="deadbeef"
type=SYSCALL msg=audit(1690000000.100:10): syscall=execve success=yes exit=0 pid=123 ppid=1 uid=0 exe="/bin/ls"
type=EXECVE msg=audit(1690000000.100:10): argc=2 a0="/bin/ls" a1="-l"
`

type fakeTwinAlwaysOff struct{}

func (fakeTwinAlwaysOff) AggregationEnabled(string) bool           { return false }
func (fakeTwinAlwaysOff) AggregationInterval(string) time.Duration { return time.Hour }

type fakeTwinAlwaysOn struct{}

func (fakeTwinAlwaysOn) AggregationEnabled(string) bool           { return true }
func (fakeTwinAlwaysOn) AggregationInterval(string) time.Duration { return 0 } // force flush

func TestProcessCreateBuildsPayloadWithHash(t *testing.T) {
	dir := t.TempDir()
	agg := aggregator.New("ProcessCreate", fakeTwinAlwaysOff{})
	c := NewProcessCreateCollector(agg, nil)
	q := queue.New(1 << 20)

	withCheckpointPath(t, &processCreationCheckpointPath, filepath.Join(dir, "processCreationCheckpoint"), func() {
		res := c.Collect(strings.NewReader(execveLog), q)
		require.Equal(t, OK, res)
	})

	raw, popRes := q.PopFront()
	require.Equal(t, queue.OK, popRes)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	payload := decoded["Payload"].([]any)[0].(map[string]any)
	assert.Equal(t, "/bin/ls", payload["Executable"])
	assert.Equal(t, "/bin/ls -l", payload["CommandLine"])
	extra := payload["ExtraDetails"].(map[string]any)
	assert.Equal(t, "deadbeef", extra["Hash"])
}

func TestProcessCreateAggregationCollapsesDuplicates(t *testing.T) {
	dir := t.TempDir()
	var log strings.Builder
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&log, "type=SYSCALL msg=audit(1690000000.1%02d:1%d): syscall=execve success=yes exit=0 pid=%d ppid=1 uid=0 exe=\"/bin/ls\"\n", i, i, 100+i)
		fmt.Fprintf(&log, "type=EXECVE msg=audit(1690000000.1%02d:1%d): argc=1 a0=\"/bin/ls\"\n", i, i)
	}

	agg := aggregator.New("ProcessCreate", fakeTwinAlwaysOn{})
	c := NewProcessCreateCollector(agg, nil)
	q := queue.New(1 << 20)

	withCheckpointPath(t, &processCreationCheckpointPath, filepath.Join(dir, "processCreationCheckpoint"), func() {
		res := c.Collect(strings.NewReader(log.String()), q)
		require.Equal(t, OK, res)
	})

	assert.Equal(t, 1, q.Size())
	raw, popRes := q.PopFront()
	require.Equal(t, queue.OK, popRes)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	payload := decoded["Payload"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(4), payload["Count"])
}
