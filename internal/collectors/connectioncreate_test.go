// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/sentrycore/internal/queue"
)

const connectLog = `type=SYSCALL msg=audit(1690000000.100:10): syscall=connect success=yes exit=0 pid=777 ppid=1 uid=0 exe=2F7573722F62696E2F6375726C
type=SOCKADDR msg=audit(1690000000.100:10): saddr=02000035C0A832F10000000000000000
type=PROCTITLE msg=audit(1690000000.100:10): proctitle=6375726c006578616d706c652e636f6d
`

func TestConnectionCreateIPv4Outbound(t *testing.T) {
	dir := t.TempDir()
	c := &ConnectionCreateCollector{}
	q := queue.New(1 << 20)

	withCheckpointPath(t, &connectionCreationCheckpointPath, filepath.Join(dir, "connectionCreationCheckpoint"), func() {
		res := c.Collect(strings.NewReader(connectLog), q)
		require.Equal(t, OK, res)
	})

	raw, popRes := q.PopFront()
	require.Equal(t, queue.OK, popRes)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	payload := decoded["Payload"].([]any)[0].(map[string]any)
	assert.Equal(t, "Out", payload["Direction"])
	assert.Equal(t, "192.168.50.241", payload["RemoteAddress"])
	assert.Equal(t, "53", payload["RemotePort"])
	assert.Equal(t, "tcp", payload["Protocol"])
	assert.Equal(t, "curl example.com", payload["CommandLine"])
}

func TestParseSockaddrIPv4(t *testing.T) {
	addr, port, ok := parseSockaddr("02000035C0A832F10000000000000000")
	require.True(t, ok)
	assert.Equal(t, "192.168.50.241", addr)
	assert.Equal(t, "53", port)
}

func TestParseSockaddrUnknownFamilyFiltered(t *testing.T) {
	_, _, ok := parseSockaddr("FF000035C0A832F10000000000000000")
	assert.False(t, ok)
}
