// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package eventcore holds the cross-cutting pieces every collector shares:
// the event metadata/payload stamping helpers, and the fixed catalog of
// event names, schema versions, and routing types. These helpers are the
// only place ids and timestamps are produced — collectors must go through
// them rather than stamping events themselves.
package eventcore

import (
	"time"

	"github.com/google/uuid"

	"grimm.is/sentrycore/internal/agentjson"
)

// Category is the scheduling category an event was produced under.
type Category string

const (
	CategoryPeriodic   Category = "Periodic"
	CategoryTriggered  Category = "Triggered"
)

// Type is the routing classification of an event.
type Type string

const (
	TypeSecurity    Type = "Security"
	TypeOperational Type = "Operational"
	TypeDiagnostic  Type = "Diagnostic"
)

// Event names, fixed per collector (spec §3).
const (
	NameListeningPorts        = "ListeningPorts"
	NameProcessCreate         = "ProcessCreate"
	NameConnectionCreate      = "ConnectionCreate"
	NameLogin                 = "Login"
	NameLocalUsers            = "LocalUsers"
	NameSystemInformation     = "SystemInformation"
	NameFirewallConfiguration = "FirewallConfiguration"
	NameBaseline              = "Baseline"
	NameDiagnostic            = "Diagnostic"
	NameDroppedEvents         = "DroppedEvents"
	NameMessageStatistics     = "MessageStatistics"
	NameConfigurationError    = "ConfigurationError"
)

// SchemaVersions maps each event name to its fixed payload schema version.
var SchemaVersions = map[string]string{
	NameListeningPorts:        "1.0",
	NameProcessCreate:         "1.0",
	NameConnectionCreate:      "1.0",
	NameLogin:                 "1.0",
	NameLocalUsers:            "1.0",
	NameSystemInformation:     "1.0",
	NameFirewallConfiguration: "1.0",
	NameBaseline:              "1.0",
	NameDiagnostic:            "1.0",
	NameDroppedEvents:         "1.0",
	NameMessageStatistics:     "1.0",
	NameConfigurationError:    "1.0",
}

const isoLocalLayout = "2006-01-02T15:04:05.000-07:00"
const isoUTCLayout = "2006-01-02T15:04:05.000-0700"

// AddMetadata writes the fixed event header fields (Category, Name,
// PayloadSchemaVersion, EventType, Id, TimestampLocal, TimestampUTC) to
// writer. If eventTime is the zero Time, the current time is captured;
// otherwise the supplied time (e.g. an audit record's timestamp) is used.
// It is the only function in the module that generates an event id or the
// event timestamps.
func AddMetadata(writer *agentjson.ObjectWriter, category Category, name string, eventType Type, eventTime time.Time) {
	if eventTime.IsZero() {
		eventTime = time.Now()
	}

	writer.WriteString("Category", string(category))
	writer.WriteString("Name", name)
	writer.WriteString("PayloadSchemaVersion", SchemaVersions[name])
	writer.WriteString("EventType", string(eventType))
	writer.WriteString("Id", uuid.NewString())
	writer.WriteString("TimestampLocal", eventTime.Local().Format(isoLocalLayout))
	writer.WriteString("TimestampUTC", eventTime.UTC().Format(isoUTCLayout))
}

// AddPayload writes payload under the "Payload" key along with the derived
// "IsEmpty" boolean.
func AddPayload(writer *agentjson.ObjectWriter, payload *agentjson.ArrayWriter) {
	writer.WriteBool("IsEmpty", payload.GetSize() == 0)
	writer.WriteArray("Payload", payload)
}

// BuildEvent is a convenience wrapper producing a complete, serialized
// event: metadata plus a payload array, ready to push onto a queue.
func BuildEvent(category Category, name string, eventType Type, eventTime time.Time, payload *agentjson.ArrayWriter) ([]byte, error) {
	w := agentjson.NewObjectWriter()
	AddMetadata(w, category, name, eventType, eventTime)
	AddPayload(w, payload)
	return w.Serialize()
}

// SingleObjectEvent wraps one payload object in a one-element array and
// serializes a complete event — the common case for unaggregated triggered
// collectors.
func SingleObjectEvent(category Category, name string, eventType Type, eventTime time.Time, obj *agentjson.ObjectWriter) ([]byte, error) {
	arr := agentjson.NewArrayWriter()
	arr.AddObject(obj)
	return BuildEvent(category, name, eventType, eventTime, arr)
}
