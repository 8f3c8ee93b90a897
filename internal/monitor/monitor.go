// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package monitor implements the single-threaded cooperative scheduler
// that drives every collector: a periodic pass on the twin's
// snapshot_frequency interval, and a triggered pass on a fixed short
// interval, each routed to a queue by the twin's per-event-type priority.
package monitor

import (
	"io"
	"time"

	"grimm.is/sentrycore/internal/collectors"
	"grimm.is/sentrycore/internal/logging"
	"grimm.is/sentrycore/internal/queue"
	"grimm.is/sentrycore/internal/twin"
)

// triggeredInterval is the fixed cadence at which triggered collectors are
// checked for new audit activity (spec §4.8: "fixed, e.g. 1 s").
const triggeredInterval = 1 * time.Second

// PeriodicCollector is a collector that needs no audit source of its own.
type PeriodicCollector interface {
	Collect(q *queue.Queue) collectors.Result
}

// AuditCollector is a collector driven by a fresh read of the audit trail
// each pass (the triggered collectors proper: process, connection, login).
type AuditCollector interface {
	Collect(source io.Reader, q *queue.Queue) collectors.Result
}

type entry struct {
	eventType string
	run       func(q *queue.Queue) collectors.Result
}

// Monitor is the scheduler's mutable state.
type Monitor struct {
	Twin *twin.Twin

	Operational *queue.Queue
	High        *queue.Queue
	Low         *queue.Queue

	// OpenAuditSource returns a fresh reader over the audit trail for one
	// audit-driven collector invocation. Each collector reads it
	// independently, since it advances its own checkpoint.
	OpenAuditSource func() (io.ReadCloser, error)

	Logger *logging.Logger

	periodicPhase  []entry
	triggeredPhase []entry

	lastPeriodicAt  time.Time
	lastTriggeredAt time.Time
}

// RegisterPeriodic appends a collector to the periodic-cadence phase.
// Callers must register in the declared order (telemetry, local-users,
// system-info, listening-ports, firewall, baseline, diagnostic).
func (m *Monitor) RegisterPeriodic(eventType string, c PeriodicCollector) {
	m.periodicPhase = append(m.periodicPhase, entry{eventType, c.Collect})
}

// RegisterTriggeredAudit appends an audit-driven collector to the
// triggered-cadence phase, opening a fresh audit source for each
// invocation. Callers must register in the declared order
// (process-create, login, connection-create).
func (m *Monitor) RegisterTriggeredAudit(eventType string, c AuditCollector) {
	m.triggeredPhase = append(m.triggeredPhase, entry{eventType, func(q *queue.Queue) collectors.Result {
		source, err := m.OpenAuditSource()
		if err != nil {
			return collectors.Exception
		}
		defer source.Close()
		return c.Collect(source, q)
	}})
}

// RegisterTriggered appends a non-audit collector to the triggered-cadence
// phase (configuration-error, diagnostic — spec §5 lists these under the
// triggered execution order despite needing no audit source).
func (m *Monitor) RegisterTriggered(eventType string, c PeriodicCollector) {
	m.triggeredPhase = append(m.triggeredPhase, entry{eventType, c.Collect})
}

// queueFor resolves a routing priority to the destination queue.
func (m *Monitor) queueFor(p twin.Priority) *queue.Queue {
	switch p {
	case twin.PriorityOperational:
		return m.Operational
	case twin.PriorityHigh:
		return m.High
	case twin.PriorityLow:
		return m.Low
	default:
		return nil
	}
}

// Execute runs one scheduler tick: a periodic pass if snapshot_frequency
// has elapsed, and a triggered pass if triggeredInterval has elapsed. A
// collector returning Exception is logged and never aborts the others or
// the tick itself.
func (m *Monitor) Execute(now time.Time) {
	snapshotFrequency := m.Twin.Snapshot().SnapshotFrequency

	if m.lastPeriodicAt.IsZero() || now.Sub(m.lastPeriodicAt) >= snapshotFrequency {
		m.lastPeriodicAt = now
		m.runPhase(m.periodicPhase)
	}

	if m.lastTriggeredAt.IsZero() || now.Sub(m.lastTriggeredAt) >= triggeredInterval {
		m.lastTriggeredAt = now
		m.runPhase(m.triggeredPhase)
	}
}

func (m *Monitor) runPhase(phase []entry) {
	for _, e := range phase {
		priority := m.Twin.Priority(e.eventType)
		if priority == twin.PriorityOff {
			continue
		}
		q := m.queueFor(priority)
		if q == nil {
			continue
		}
		if res := e.run(q); res == collectors.Exception {
			if m.Logger != nil {
				m.Logger.Error("collector pass failed", "event", e.eventType, "result", res.String())
			}
		}
	}
}
