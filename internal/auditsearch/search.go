// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package auditsearch

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"grimm.is/sentrycore/internal/errors"
	"grimm.is/sentrycore/internal/privilege"
)

// Criteria selects which field on a raw record is matched against keys.
type Criteria int

const (
	CriteriaType Criteria = iota
	CriteriaSyscall
)

// GetNextResult is the outcome of advancing the iterator.
type GetNextResult int

const (
	HasMoreData GetNextResult = iota
	NoMoreData
)

// Event is one group of audit records sharing a timestamp:id pair — e.g. a
// SYSCALL record plus its EXECVE/CWD/PATH companions.
type Event struct {
	records   []record
	timestamp float64
}

func (e Event) matchesTime() float64 { return e.timestamp }

// findField returns the first record within the event carrying fieldName.
func (e Event) findField(fieldName string) (record, bool) {
	for _, r := range e.records {
		if _, ok := r.fields[fieldName]; ok {
			return r, true
		}
	}
	return record{}, false
}

// Search iterates audit events matching a fixed key set, filtered against a
// persisted checkpoint. Init elevates to root for the lifetime of the scan;
// Deinit always restores privileges, even on an aborted scan.
type Search struct {
	criteria       Criteria
	keys           map[string]bool
	checkpointPath string
	searchTime     time.Time
	token          *privilege.Token

	events  []Event
	current int // index of the current event; -1 before the first GetNext
}

// Init opens a scan over source (already-read audit log content, oldest
// first) for the given criteria/keys, elevates privileges, and loads the
// checkpoint. source is read to completion and buffered in memory; audit
// logs are rotated well before this becomes a practical concern.
func Init(criteria Criteria, keys []string, checkpointPath string, source io.Reader) (*Search, error) {
	s := &Search{
		criteria:       criteria,
		keys:           make(map[string]bool, len(keys)),
		checkpointPath: checkpointPath,
		searchTime:     time.Now(),
		token:          privilege.NewToken(),
		current:        -1,
	}
	for _, k := range keys {
		s.keys[k] = true
	}

	if err := s.token.ChangeToRoot(); err != nil {
		return nil, errors.Wrap(err, errors.KindPermission, "auditsearch: elevate privileges")
	}

	floor, _ := readCheckpoint(checkpointPath)

	events, err := groupRecords(source)
	if err != nil {
		s.token.Reset()
		return nil, errors.Wrap(err, errors.KindUnavailable, "auditsearch: read audit source")
	}

	for _, ev := range events {
		if ev.timestamp <= floor {
			continue
		}
		if !s.eventMatches(ev) {
			continue
		}
		s.events = append(s.events, ev)
	}

	return s, nil
}

func (s *Search) eventMatches(ev Event) bool {
	for _, r := range ev.records {
		var candidate string
		switch s.criteria {
		case CriteriaType:
			candidate = r.msgType
		case CriteriaSyscall:
			if name, ok := r.fields["syscall"]; ok {
				candidate = name
			}
		}
		if s.keys[candidate] {
			return true
		}
	}
	return false
}

// groupRecords parses every line from source and groups consecutive records
// sharing a timestamp:id pair into one Event, preserving log order.
func groupRecords(source io.Reader) ([]Event, error) {
	var events []Event
	var cur *Event
	var curID string

	scanner := bufio.NewScanner(source)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		r, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		if cur == nil || r.eventID != curID {
			if cur != nil {
				events = append(events, *cur)
			}
			cur = &Event{timestamp: r.timestamp}
			curID = r.eventID
		}
		cur.records = append(cur.records, r)
	}
	if cur != nil {
		events = append(events, *cur)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// GetNext advances to the next matching event.
func (s *Search) GetNext() GetNextResult {
	if s.current+1 >= len(s.events) {
		s.current = len(s.events)
		return NoMoreData
	}
	s.current++
	return HasMoreData
}

func (s *Search) currentEvent() (Event, bool) {
	if s.current < 0 || s.current >= len(s.events) {
		return Event{}, false
	}
	return s.events[s.current], true
}

// GetEventTime returns the current event's timestamp.
func (s *Search) GetEventTime() (time.Time, Result) {
	ev, ok := s.currentEvent()
	if !ok {
		return time.Time{}, ResultException
	}
	sec := int64(ev.timestamp)
	nsec := int64((ev.timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec), ResultOK
}

// ReadInt reads fieldName from the current event as an integer.
func (s *Search) ReadInt(fieldName string) (int, Result) {
	ev, ok := s.currentEvent()
	if !ok {
		return 0, ResultException
	}
	r, found := ev.findField(fieldName)
	if !found {
		return 0, ResultFieldDoesNotExist
	}
	return r.readInt(fieldName)
}

// ReadString reads fieldName from the current event, raw (uninterpreted).
func (s *Search) ReadString(fieldName string) (string, Result) {
	ev, ok := s.currentEvent()
	if !ok {
		return "", ResultException
	}
	r, found := ev.findField(fieldName)
	if !found {
		return "", ResultFieldDoesNotExist
	}
	return r.readString(fieldName)
}

// InterpretString reads fieldName from the current event, applying
// vendor-style translation (hex decoding).
func (s *Search) InterpretString(fieldName string) (string, Result) {
	ev, ok := s.currentEvent()
	if !ok {
		return "", ResultException
	}
	r, found := ev.findField(fieldName)
	if !found {
		return "", ResultFieldDoesNotExist
	}
	return r.interpretString(fieldName)
}

// ReadIndexedFields returns the values of every field in the current event
// whose name matches prefix followed by a decimal index (e.g. "a0", "a1",
// ...), in index order.
func (s *Search) ReadIndexedFields(prefix string) []string {
	ev, ok := s.currentEvent()
	if !ok {
		return nil
	}
	var out []string
	for i := 0; ; i++ {
		key := fmt.Sprintf("%s%d", prefix, i)
		found := false
		for _, r := range ev.records {
			if v, ok := r.fields[key]; ok {
				out = append(out, v)
				found = true
				break
			}
		}
		if !found {
			break
		}
	}
	return out
}

// CurrentRecordTypes returns the message type of every record making up
// the current event, in log order. Lets a caller branch on event shape
// (e.g. distinguishing an EXECVE+SYSCALL pair from a standalone
// INTEGRITY_RULE record) without a dedicated field reader for it.
func (s *Search) CurrentRecordTypes() []string {
	ev, ok := s.currentEvent()
	if !ok {
		return nil
	}
	types := make([]string, len(ev.records))
	for i, r := range ev.records {
		types[i] = r.msgType
	}
	return types
}

// SetCheckpoint persists the search time captured at Init so the next scan
// resumes strictly after this one started. Called on every exit path,
// including a scan that aborted partway through (§9: bounded progress is
// preferred over unbounded re-reads of a poisoned event).
func (s *Search) SetCheckpoint() error {
	return writeCheckpoint(s.checkpointPath, float64(s.searchTime.Unix())+float64(s.searchTime.Nanosecond())/1e9)
}

// Deinit restores privileges. Always safe to call, including after a
// partial scan.
func (s *Search) Deinit() error {
	return s.token.Reset()
}
