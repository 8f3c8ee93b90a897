// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package agentjson implements the canonical JSON object/array builders the
// rest of the agent core uses to produce event payloads. Keys are kept in
// insertion order; serialization is deterministic and side-effect free.
package agentjson

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
	kindObject
	kindArray
	kindRaw
)

type entry struct {
	key  string
	kind valueKind
	str  string
	num  int64
	flag bool
	obj  *ObjectWriter
	arr  *ArrayWriter
	raw  json.RawMessage
}

// ObjectWriter is a mutable, order-preserving JSON object builder.
type ObjectWriter struct {
	entries []entry
}

// NewObjectWriter returns an empty object writer.
func NewObjectWriter() *ObjectWriter {
	return &ObjectWriter{}
}

// NewObjectWriterFromString parses json into an ObjectWriter, preserving the
// key order of the source document.
func NewObjectWriterFromString(data string) (*ObjectWriter, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	w, err := decodeObject(dec)
	if err != nil {
		return nil, fmt.Errorf("agentjson: parse object: %w", err)
	}
	return w, nil
}

func newDecoderFromString(data string) *json.Decoder {
	return json.NewDecoder(bytes.NewReader([]byte(data)))
}

func decodeObject(dec *json.Decoder) (*ObjectWriter, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected '{', got %v", tok)
	}

	w := NewObjectWriter()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", keyTok)
		}

		if err := decodeValueInto(dec, w, key); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, err
	}
	return w, nil
}

func decodeArray(dec *json.Decoder) (*ArrayWriter, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("expected '[', got %v", tok)
	}

	a := NewArrayWriter()
	for dec.More() {
		obj, err := decodeObject(dec)
		if err != nil {
			return nil, err
		}
		a.items = append(a.items, obj)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, err
	}
	return a, nil
}

// decodeValueInto reads one value and stores it under key in w.
func decodeValueInto(dec *json.Decoder, w *ObjectWriter, key string) error {
	var peek json.RawMessage
	if err := dec.Decode(&peek); err == nil {
		switch {
		case len(peek) > 0 && peek[0] == '{':
			sub, err := NewObjectWriterFromString(string(peek))
			if err != nil {
				return err
			}
			w.entries = append(w.entries, entry{key: key, kind: kindObject, obj: sub})
			return nil
		case len(peek) > 0 && peek[0] == '[':
			sub, err := newArrayWriterFromString(string(peek))
			if err != nil {
				return err
			}
			w.entries = append(w.entries, entry{key: key, kind: kindArray, arr: sub})
			return nil
		default:
			w.entries = append(w.entries, entry{key: key, kind: kindRaw, raw: peek})
			return nil
		}
	}
	return fmt.Errorf("agentjson: decode value for %q", key)
}

// WriteString sets key to a string value.
func (w *ObjectWriter) WriteString(key, value string) {
	w.set(entry{key: key, kind: kindString, str: value})
}

// WriteInt sets key to an integer value.
func (w *ObjectWriter) WriteInt(key string, value int64) {
	w.set(entry{key: key, kind: kindInt, num: value})
}

// WriteBool sets key to a boolean value.
func (w *ObjectWriter) WriteBool(key string, value bool) {
	w.set(entry{key: key, kind: kindBool, flag: value})
}

// WriteObject attaches object under key. object must not be reused by the
// caller afterwards — ownership transfers to w.
func (w *ObjectWriter) WriteObject(key string, object *ObjectWriter) {
	w.set(entry{key: key, kind: kindObject, obj: object})
}

// WriteArray attaches array under key. array must not be reused by the
// caller afterwards — ownership transfers to w.
func (w *ObjectWriter) WriteArray(key string, array *ArrayWriter) {
	w.set(entry{key: key, kind: kindArray, arr: array})
}

func (w *ObjectWriter) set(e entry) {
	for i := range w.entries {
		if w.entries[i].key == e.key {
			w.entries[i] = e
			return
		}
	}
	w.entries = append(w.entries, e)
}

// StepIn replaces the writer's root with the sub-object found at key,
// returning an error (leaving w untouched) if key is absent or not an
// object.
func (w *ObjectWriter) StepIn(key string) error {
	for _, e := range w.entries {
		if e.key == key {
			if e.kind != kindObject {
				return fmt.Errorf("agentjson: key %q is not an object", key)
			}
			w.entries = e.obj.entries
			return nil
		}
	}
	return fmt.Errorf("agentjson: key %q does not exist", key)
}

// GetSize returns the number of top-level keys.
func (w *ObjectWriter) GetSize() int {
	return len(w.entries)
}

// Copy returns a deep, independent copy of w.
func (w *ObjectWriter) Copy() *ObjectWriter {
	cp := &ObjectWriter{entries: make([]entry, len(w.entries))}
	for i, e := range w.entries {
		switch e.kind {
		case kindObject:
			e.obj = e.obj.Copy()
		case kindArray:
			e.arr = e.arr.Copy()
		}
		cp.entries[i] = e
	}
	return cp
}

// Equal reports whether a and b are structurally equal JSON (key order does
// not matter for equality, only presence and value).
func (a *ObjectWriter) Equal(b *ObjectWriter) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.entries) != len(b.entries) {
		return false
	}
	bv, err := b.Serialize()
	if err != nil {
		return false
	}
	av, err := a.Serialize()
	if err != nil {
		return false
	}
	var am, bm map[string]any
	if json.Unmarshal(av, &am) != nil || json.Unmarshal(bv, &bm) != nil {
		return false
	}
	return deepEqual(am, bm)
}

func deepEqual(a, b any) bool {
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	var an, bn any
	_ = json.Unmarshal(ab, &an)
	_ = json.Unmarshal(bb, &bn)
	return fmt.Sprint(an) == fmt.Sprint(bn) && canonicalEqual(a, b)
}

func canonicalEqual(a, b any) bool {
	am, aok := a.(map[string]any)
	bm, bok := b.(map[string]any)
	if aok != bok {
		return false
	}
	if aok {
		if len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !canonicalEqual(av, bv) {
				return false
			}
		}
		return true
	}
	al, alok := a.([]any)
	bl, blok := b.([]any)
	if alok != blok {
		return false
	}
	if alok {
		if len(al) != len(bl) {
			return false
		}
		for i := range al {
			if !canonicalEqual(al[i], bl[i]) {
				return false
			}
		}
		return true
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// Serialize renders w as canonical UTF-8 JSON bytes. It never mutates w.
func (w *ObjectWriter) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range w.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(e.key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		if err := writeEntryValue(&buf, e); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeEntryValue(buf *bytes.Buffer, e entry) error {
	switch e.kind {
	case kindString:
		b, err := json.Marshal(e.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case kindInt:
		fmt.Fprintf(buf, "%d", e.num)
	case kindBool:
		if e.flag {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case kindObject:
		b, err := e.obj.Serialize()
		if err != nil {
			return err
		}
		buf.Write(b)
	case kindArray:
		b, err := e.arr.Serialize()
		if err != nil {
			return err
		}
		buf.Write(b)
	case kindRaw:
		if len(e.raw) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(e.raw)
		}
	}
	return nil
}
