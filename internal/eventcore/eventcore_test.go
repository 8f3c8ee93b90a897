// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package eventcore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/sentrycore/internal/agentjson"
)

func TestAddMetadataStampsFixedFields(t *testing.T) {
	w := agentjson.NewObjectWriter()
	AddMetadata(w, CategoryPeriodic, NameListeningPorts, TypeSecurity, time.Time{})
	AddPayload(w, agentjson.NewArrayWriter())

	out, err := w.Serialize()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))

	assert.Equal(t, "Periodic", decoded["Category"])
	assert.Equal(t, "ListeningPorts", decoded["Name"])
	assert.Equal(t, "Security", decoded["EventType"])
	assert.Equal(t, true, decoded["IsEmpty"])
	assert.Len(t, decoded["Id"], 36)
	assert.NotEmpty(t, decoded["TimestampLocal"])
	assert.NotEmpty(t, decoded["TimestampUTC"])
}

func TestAddPayloadIsEmptyMatchesCount(t *testing.T) {
	w := agentjson.NewObjectWriter()
	arr := agentjson.NewArrayWriter()
	arr.AddObject(agentjson.NewObjectWriter())
	AddPayload(w, arr)

	out, err := w.Serialize()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, false, decoded["IsEmpty"])
}

func TestEventIdsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		w := agentjson.NewObjectWriter()
		AddMetadata(w, CategoryTriggered, NameProcessCreate, TypeSecurity, time.Time{})
		out, err := w.Serialize()
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(out, &decoded))
		id := decoded["Id"].(string)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestSingleObjectEventRoundTrip(t *testing.T) {
	obj := agentjson.NewObjectWriter()
	obj.WriteString("Protocol", "tcp")

	raw, err := SingleObjectEvent(CategoryPeriodic, NameListeningPorts, TypeSecurity, time.Time{}, obj)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	payload := decoded["Payload"].([]any)
	assert.Len(t, payload, 1)
	assert.Equal(t, "tcp", payload[0].(map[string]any)["Protocol"])
}
