// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package aggregator collapses duplicate payloads of one event type within
// a rolling window into a single counted event, when the twin enables it
// for that type.
package aggregator

import (
	"sync"
	"time"

	"grimm.is/sentrycore/internal/agentjson"
)

// Result is the outcome of an aggregate call.
type Result int

const (
	ResultAggregated Result = iota
	ResultDisabled
)

type entry struct {
	sample *agentjson.ObjectWriter
	count  int
}

// twinView is the subset of twin.Twin the aggregator needs, kept narrow to
// avoid a dependency cycle between the aggregator and twin packages.
type twinView interface {
	AggregationEnabled(eventType string) bool
	AggregationInterval(eventType string) time.Duration
}

// Aggregator is a per-event-type singleton created at collector init.
type Aggregator struct {
	eventType string
	twin      twinView

	mu        sync.Mutex
	entries   map[string]*entry
	lastFlush time.Time
}

// New creates an aggregator for eventType, reading its enabled/window
// settings from twin on every call.
func New(eventType string, twin twinView) *Aggregator {
	return &Aggregator{
		eventType: eventType,
		twin:      twin,
		entries:   make(map[string]*entry),
		lastFlush: time.Now(),
	}
}

// Aggregate folds payload into the current window's entry set, keyed by
// its canonical serialized bytes. Returns ResultDisabled if aggregation is
// currently off for this event type — the caller must emit payload singly
// in that case.
func (a *Aggregator) Aggregate(payload *agentjson.ObjectWriter) (Result, error) {
	if !a.twin.AggregationEnabled(a.eventType) {
		return ResultDisabled, nil
	}

	key, err := canonicalKey(payload)
	if err != nil {
		return ResultDisabled, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.entries[key]; ok {
		e.count++
	} else {
		a.entries[key] = &entry{sample: payload, count: 1}
	}
	return ResultAggregated, nil
}

// Flush drains accumulated entries into queue as one event payload object
// per entry (the sample plus a Count field), if the window has elapsed or
// aggregation is currently disabled. Idempotent when no entries exist and
// the window has not elapsed.
func (a *Aggregator) Flush(push func(*agentjson.ObjectWriter) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	window := a.twin.AggregationInterval(a.eventType)
	enabled := a.twin.AggregationEnabled(a.eventType)
	if enabled && time.Since(a.lastFlush) < window {
		return nil
	}

	for _, e := range a.entries {
		out := e.sample.Copy()
		out.WriteInt("Count", int64(e.count))
		if err := push(out); err != nil {
			return err
		}
	}
	a.entries = make(map[string]*entry)
	a.lastFlush = time.Now()
	return nil
}

// canonicalKey serializes payload to bytes. Collectors always write a given
// payload's fields in the same fixed order, so two structurally-equal
// payloads from the same collector always serialize identically; this
// avoids a second, order-independent encoding pass on every aggregate call.
func canonicalKey(payload *agentjson.ObjectWriter) (string, error) {
	b, err := payload.Serialize()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
