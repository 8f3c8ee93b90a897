// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package agentjson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectWriterSerializeOrder(t *testing.T) {
	w := NewObjectWriter()
	w.WriteString("b", "two")
	w.WriteInt("a", 1)
	w.WriteBool("c", true)

	out, err := w.Serialize()
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":"two","a":1,"c":true}`, string(out))
	assert.Equal(t, `{"b":"two","a":1,"c":true}`, string(out))
}

func TestObjectWriterNestedOwnership(t *testing.T) {
	parent := NewObjectWriter()
	child := NewObjectWriter()
	child.WriteString("name", "child")
	parent.WriteObject("nested", child)

	arr := NewArrayWriter()
	item := NewObjectWriter()
	item.WriteInt("n", 1)
	arr.AddObject(item)
	parent.WriteArray("items", arr)

	out, err := parent.Serialize()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "child", decoded["nested"].(map[string]any)["name"])
	assert.Len(t, decoded["items"], 1)
}

func TestObjectWriterEqualityIsStructural(t *testing.T) {
	a := NewObjectWriter()
	a.WriteString("k", "v")
	a.WriteInt("n", 1)

	b := NewObjectWriter()
	b.WriteInt("n", 1)
	b.WriteString("k", "v")

	assert.True(t, a.Equal(b))

	c := NewObjectWriter()
	c.WriteInt("n", 2)
	c.WriteString("k", "v")
	assert.False(t, a.Equal(c))
}

func TestObjectWriterFromStringRoundTrip(t *testing.T) {
	src := `{"x":1,"y":{"z":"hi"},"arr":[{"a":1},{"a":2}]}`
	w, err := NewObjectWriterFromString(src)
	require.NoError(t, err)
	assert.Equal(t, 3, w.GetSize())

	out, err := w.Serialize()
	require.NoError(t, err)
	assert.JSONEq(t, src, string(out))
}

func TestObjectWriterStepIn(t *testing.T) {
	w := NewObjectWriter()
	inner := NewObjectWriter()
	inner.WriteString("k", "v")
	w.WriteObject("outer", inner)

	require.NoError(t, w.StepIn("outer"))
	assert.Equal(t, 1, w.GetSize())

	err := w.StepIn("missing")
	assert.Error(t, err)
}

func TestObjectWriterCopyIsIndependent(t *testing.T) {
	w := NewObjectWriter()
	w.WriteString("k", "v")
	cp := w.Copy()
	w.WriteString("k", "changed")

	assert.False(t, w.Equal(cp))
}

func TestArrayWriterSize(t *testing.T) {
	arr := NewArrayWriter()
	assert.Equal(t, 0, arr.GetSize())
	arr.AddObject(NewObjectWriter())
	arr.AddObject(NewObjectWriter())
	assert.Equal(t, 2, arr.GetSize())
}
