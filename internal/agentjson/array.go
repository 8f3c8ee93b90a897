// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package agentjson

import "bytes"

// ArrayWriter is a mutable, ordered sequence of JSON objects.
type ArrayWriter struct {
	items []*ObjectWriter
}

// NewArrayWriter returns an empty array writer.
func NewArrayWriter() *ArrayWriter {
	return &ArrayWriter{}
}

func newArrayWriterFromString(data string) (*ArrayWriter, error) {
	return decodeArray(newDecoderFromString(data))
}

// AddObject appends item to the array. item must not be reused by the
// caller afterwards — ownership transfers to the array.
func (a *ArrayWriter) AddObject(item *ObjectWriter) {
	a.items = append(a.items, item)
}

// GetSize returns the number of elements in the array.
func (a *ArrayWriter) GetSize() int {
	return len(a.items)
}

// Copy returns a deep, independent copy of a.
func (a *ArrayWriter) Copy() *ArrayWriter {
	cp := &ArrayWriter{items: make([]*ObjectWriter, len(a.items))}
	for i, o := range a.items {
		cp.items[i] = o.Copy()
	}
	return cp
}

// Serialize renders a as canonical UTF-8 JSON bytes. It never mutates a.
func (a *ArrayWriter) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, o := range a.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := o.Serialize()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
