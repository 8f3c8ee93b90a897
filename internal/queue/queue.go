// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package queue implements the synchronized, memory-bounded FIFO that sits
// between a collector and its downstream sender. It never blocks: a push
// that would exceed the queue's memory cap fails fast so the caller can
// choose its own back-pressure policy.
package queue

import (
	"sync"
	"sync/atomic"
)

// Result is the outcome of a queue operation.
type Result int

const (
	OK Result = iota
	Empty
	MaxMemoryExceeded
)

func (r Result) String() string {
	switch r {
	case OK:
		return "OK"
	case Empty:
		return "EMPTY"
	case MaxMemoryExceeded:
		return "MAX_MEMORY_EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// PopCondition decides whether PopFrontIf should remove the head item.
type PopCondition func(data []byte) bool

// Queue is a synchronized, memory-accounted bounded FIFO of byte buffers.
// The queue itself does no logging; it has no counterpart to the original
// C queue's shouldSendLogs flag.
type Queue struct {
	mu        sync.Mutex
	items     [][]byte
	curMemory int
	maxMemory int

	collected atomic.Uint64
	dropped   atomic.Uint64
}

// New returns an empty queue capped at maxMemoryBytes of buffered item data.
func New(maxMemoryBytes int) *Queue {
	return &Queue{maxMemory: maxMemoryBytes}
}

// SetMaxMemory adjusts the queue's memory cap, e.g. in response to a twin
// configuration update. It does not evict existing items even if the new
// cap is below current usage; only future pushes are affected.
func (q *Queue) SetMaxMemory(maxMemoryBytes int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.maxMemory = maxMemoryBytes
}

// PushBack appends data to the tail of the queue. It fails with
// MaxMemoryExceeded (and increments the dropped counter) without enqueuing
// anything if doing so would push total buffered bytes over the cap.
func (q *Queue) PushBack(data []byte) Result {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.curMemory+len(data) > q.maxMemory {
		q.dropped.Add(1)
		return MaxMemoryExceeded
	}

	q.items = append(q.items, data)
	q.curMemory += len(data)
	q.collected.Add(1)
	return OK
}

// PopFront removes and returns the item at the head of the queue.
func (q *Queue) PopFront() ([]byte, Result) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popFrontLocked()
}

func (q *Queue) popFrontLocked() ([]byte, Result) {
	if len(q.items) == 0 {
		return nil, Empty
	}
	item := q.items[0]
	q.items = q.items[1:]
	q.curMemory -= len(item)
	return item, OK
}

// PopFrontIf removes and returns the head item only if condition accepts
// it. If the queue is empty or condition rejects the head, nothing is
// removed.
func (q *Queue) PopFrontIf(condition PopCondition) ([]byte, Result) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, Empty
	}
	if !condition(q.items[0]) {
		return nil, Empty
	}
	return q.popFrontLocked()
}

// Size returns the current number of items in the queue.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// MemoryUsed returns the sum of buffered item lengths currently held.
func (q *Queue) MemoryUsed() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.curMemory
}

// Collected returns the all-time count of successful pushes.
func (q *Queue) Collected() uint64 {
	return q.collected.Load()
}

// Dropped returns the all-time count of pushes rejected for exceeding the
// memory cap.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// SnapshotAndReset atomically reads the collected/dropped counters and
// zeroes them, for the AgentTelemetry.DroppedEvents collector.
func (q *Queue) SnapshotAndReset() (collected, dropped uint64) {
	return q.collected.Swap(0), q.dropped.Swap(0)
}
