// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package twin holds the remotely-updatable configuration snapshot that
// drives scheduling and routing: snapshot/message-batching frequencies,
// per-event-type priority, and per-event-type aggregation settings. Reading
// the document from a real IoT Hub twin channel is out of scope — only
// consuming an already-fetched JSON document is implemented here.
package twin

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"grimm.is/sentrycore/internal/errors"
)

// Priority is the routing priority assigned to an event type.
type Priority string

const (
	PriorityOff         Priority = "Off"
	PriorityOperational Priority = "Operational"
	PriorityHigh        Priority = "High"
	PriorityLow         Priority = "Low"
)

func validPriority(p Priority) bool {
	switch p {
	case PriorityOff, PriorityOperational, PriorityHigh, PriorityLow:
		return true
	default:
		return false
	}
}

// Event type keys the twin document uses to suffix its per-type fields
// (eventPriority<Key>, aggregationEnabled<Key>, aggregationInterval<Key>).
// These match eventcore's event Name constants.
const (
	EventProcessCreate         = "ProcessCreate"
	EventConnectionCreate      = "ConnectionCreate"
	EventLogin                 = "Login"
	EventListeningPorts        = "ListeningPorts"
	EventLocalUsers            = "LocalUsers"
	EventSystemInformation     = "SystemInformation"
	EventFirewallConfiguration = "FirewallConfiguration"
	EventBaseline              = "Baseline"
	EventDiagnostic            = "Diagnostic"
	EventDroppedEvents         = "DroppedEvents"
	EventMessageStatistics     = "MessageStatistics"
	EventConfigurationError    = "ConfigurationError"
)

var allEventTypes = []string{
	EventProcessCreate, EventConnectionCreate, EventLogin,
	EventListeningPorts, EventLocalUsers, EventSystemInformation,
	EventFirewallConfiguration, EventBaseline, EventDiagnostic,
	EventDroppedEvents, EventMessageStatistics, EventConfigurationError,
}

const (
	defaultSnapshotFrequency   = 15 * time.Minute
	minSnapshotFrequency       = 5 * time.Minute
	defaultHighMessageFreq     = 10 * time.Second
	defaultLowMessageFreq      = 3 * time.Minute
	defaultMaxLocalCacheBytes  = 2_621_440
	defaultMaxMessageSizeBytes = 204_800
	defaultAggregationInterval = time.Hour
)

func defaultPriority(eventType string) Priority {
	switch eventType {
	case EventProcessCreate, EventConnectionCreate, EventLogin:
		return PriorityHigh
	case EventDiagnostic, EventDroppedEvents, EventMessageStatistics, EventConfigurationError:
		return PriorityOperational
	default:
		return PriorityLow
	}
}

// ValidationError records one field that the twin rejected during Update;
// the prior value for that field is retained.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Snapshot is an immutable, independently-readable copy of the twin's
// configuration at one instant.
type Snapshot struct {
	SnapshotFrequency            time.Duration
	HighPriorityMessageFrequency time.Duration
	LowPriorityMessageFrequency  time.Duration
	MaxLocalCacheSizeInBytes     int
	MaxMessageSizeInBytes        int
	HubResourceID                string

	Priority             map[string]Priority
	AggregationEnabled   map[string]bool
	AggregationInterval  map[string]time.Duration
}

func defaultSnapshot() Snapshot {
	s := Snapshot{
		SnapshotFrequency:            defaultSnapshotFrequency,
		HighPriorityMessageFrequency: defaultHighMessageFreq,
		LowPriorityMessageFrequency:  defaultLowMessageFreq,
		MaxLocalCacheSizeInBytes:     defaultMaxLocalCacheBytes,
		MaxMessageSizeInBytes:        defaultMaxMessageSizeBytes,
		Priority:                     map[string]Priority{},
		AggregationEnabled:           map[string]bool{},
		AggregationInterval:          map[string]time.Duration{},
	}
	for _, et := range allEventTypes {
		s.Priority[et] = defaultPriority(et)
		s.AggregationEnabled[et] = false
		s.AggregationInterval[et] = defaultAggregationInterval
	}
	return s
}

func (s Snapshot) clone() Snapshot {
	cp := s
	cp.Priority = make(map[string]Priority, len(s.Priority))
	cp.AggregationEnabled = make(map[string]bool, len(s.AggregationEnabled))
	cp.AggregationInterval = make(map[string]time.Duration, len(s.AggregationInterval))
	for k, v := range s.Priority {
		cp.Priority[k] = v
	}
	for k, v := range s.AggregationEnabled {
		cp.AggregationEnabled[k] = v
	}
	for k, v := range s.AggregationInterval {
		cp.AggregationInterval[k] = v
	}
	return cp
}

// Twin is the thread-safe holder of the configuration snapshot.
type Twin struct {
	mu         sync.RWMutex
	snapshot   Snapshot
	lastErrors []ValidationError
}

// New returns a Twin initialized to built-in defaults.
func New() *Twin {
	return &Twin{snapshot: defaultSnapshot()}
}

// Snapshot returns a copy of the current configuration. Safe for concurrent
// use; never observes a partially-applied Update.
func (t *Twin) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot.clone()
}

// Priority returns the routing priority for eventType.
func (t *Twin) Priority(eventType string) Priority {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if p, ok := t.snapshot.Priority[eventType]; ok {
		return p
	}
	return defaultPriority(eventType)
}

// AggregationEnabled returns whether aggregation is currently on for
// eventType.
func (t *Twin) AggregationEnabled(eventType string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot.AggregationEnabled[eventType]
}

// AggregationInterval returns the current aggregation window for
// eventType.
func (t *Twin) AggregationInterval(eventType string) time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if d, ok := t.snapshot.AggregationInterval[eventType]; ok {
		return d
	}
	return defaultAggregationInterval
}

// LastValidationErrors returns the diagnostics produced by the most recent
// Update call, for the ConfigurationError collector to surface.
func (t *Twin) LastValidationErrors() []ValidationError {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ValidationError, len(t.lastErrors))
	copy(out, t.lastErrors)
	return out
}

type twinValue struct {
	Value json.RawMessage `json:"value"`
}

// Update replaces fields present in doc, a JSON document shaped per spec §6
// (one wrapper object, host-configurable name, containing {"value": ...}-wrapped
// fields). Fields absent from doc keep their current value. Malformed JSON
// fails the whole update atomically, leaving the snapshot untouched.
// Per-field validation problems (e.g. a too-low snapshot frequency) are
// recorded as ValidationErrors and also leave that one field untouched,
// without failing the overall update.
func (t *Twin) Update(doc []byte) ([]ValidationError, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(doc, &top); err != nil {
		return nil, errors.Wrap(err, errors.KindValidation, "twin: malformed document")
	}

	var fields map[string]json.RawMessage
	for _, raw := range top {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, errors.Wrap(err, errors.KindValidation, "twin: malformed configuration object")
		}
		break // wrapper object name is host-configurable; take the one key present
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.snapshot.clone()
	var errs []ValidationError

	applyDuration := func(field string, target *time.Duration, floor time.Duration) {
		raw, ok := fields[field]
		if !ok {
			return
		}
		var tv twinValue
		if err := json.Unmarshal(raw, &tv); err != nil {
			errs = append(errs, ValidationError{Field: field, Message: "malformed value wrapper"})
			return
		}
		var s string
		if err := json.Unmarshal(tv.Value, &s); err != nil {
			errs = append(errs, ValidationError{Field: field, Message: "value is not a string"})
			return
		}
		d, err := parseISO8601Duration(s)
		if err != nil {
			errs = append(errs, ValidationError{Field: field, Message: err.Error()})
			return
		}
		if floor > 0 && d < floor {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("%s below floor %s", s, formatISO8601Duration(floor))})
			return
		}
		*target = d
	}

	applyInt := func(field string, target *int) {
		raw, ok := fields[field]
		if !ok {
			return
		}
		var tv twinValue
		if err := json.Unmarshal(raw, &tv); err != nil {
			errs = append(errs, ValidationError{Field: field, Message: "malformed value wrapper"})
			return
		}
		var n int
		if err := json.Unmarshal(tv.Value, &n); err != nil {
			errs = append(errs, ValidationError{Field: field, Message: "value is not an integer"})
			return
		}
		if n <= 0 {
			errs = append(errs, ValidationError{Field: field, Message: "value must be positive"})
			return
		}
		*target = n
	}

	applyString := func(field string, target *string) {
		raw, ok := fields[field]
		if !ok {
			return
		}
		var tv twinValue
		if err := json.Unmarshal(raw, &tv); err != nil {
			errs = append(errs, ValidationError{Field: field, Message: "malformed value wrapper"})
			return
		}
		var s string
		if err := json.Unmarshal(tv.Value, &s); err != nil {
			errs = append(errs, ValidationError{Field: field, Message: "value is not a string"})
			return
		}
		*target = s
	}

	applyDuration("snapshotFrequency", &next.SnapshotFrequency, minSnapshotFrequency)
	applyDuration("highPriorityMessageFrequency", &next.HighPriorityMessageFrequency, 0)
	applyDuration("lowPriorityMessageFrequency", &next.LowPriorityMessageFrequency, 0)
	applyInt("maxLocalCacheSizeInBytes", &next.MaxLocalCacheSizeInBytes)
	applyInt("maxMessageSizeInBytes", &next.MaxMessageSizeInBytes)
	applyString("hubResourceId", &next.HubResourceID)

	for _, et := range allEventTypes {
		priorityField := "eventPriority" + et
		if raw, ok := fields[priorityField]; ok {
			var tv twinValue
			var s string
			if err := json.Unmarshal(raw, &tv); err != nil {
				errs = append(errs, ValidationError{Field: priorityField, Message: "malformed value wrapper"})
			} else if err := json.Unmarshal(tv.Value, &s); err != nil {
				errs = append(errs, ValidationError{Field: priorityField, Message: "value is not a string"})
			} else if p := Priority(s); !validPriority(p) {
				errs = append(errs, ValidationError{Field: priorityField, Message: fmt.Sprintf("unknown priority %q", s)})
			} else {
				next.Priority[et] = p
			}
		}

		enabledField := "aggregationEnabled" + et
		if raw, ok := fields[enabledField]; ok {
			var tv twinValue
			var b bool
			if err := json.Unmarshal(raw, &tv); err != nil {
				errs = append(errs, ValidationError{Field: enabledField, Message: "malformed value wrapper"})
			} else if err := json.Unmarshal(tv.Value, &b); err != nil {
				errs = append(errs, ValidationError{Field: enabledField, Message: "value is not a boolean"})
			} else {
				next.AggregationEnabled[et] = b
			}
		}

		intervalField := "aggregationInterval" + et
		if raw, ok := fields[intervalField]; ok {
			var tv twinValue
			var s string
			if err := json.Unmarshal(raw, &tv); err != nil {
				errs = append(errs, ValidationError{Field: intervalField, Message: "malformed value wrapper"})
			} else if err := json.Unmarshal(tv.Value, &s); err != nil {
				errs = append(errs, ValidationError{Field: intervalField, Message: "value is not a string"})
			} else if d, err := parseISO8601Duration(s); err != nil {
				errs = append(errs, ValidationError{Field: intervalField, Message: err.Error()})
			} else {
				next.AggregationInterval[et] = d
			}
		}
	}

	t.snapshot = next
	t.lastErrors = errs
	return errs, nil
}
