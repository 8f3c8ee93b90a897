// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command sentrycored wires the twin configuration, the three priority
// queues, every collector, and the scheduler that drives them, then runs
// the scheduler loop forever. It takes no flags and installs no signal
// handlers; process lifecycle is the caller's concern.
package main

import (
	"io"
	"time"

	"grimm.is/sentrycore/internal/aggregator"
	"grimm.is/sentrycore/internal/auditsearch"
	"grimm.is/sentrycore/internal/collectors"
	"grimm.is/sentrycore/internal/diagnostic"
	"grimm.is/sentrycore/internal/eventcore"
	"grimm.is/sentrycore/internal/logging"
	"grimm.is/sentrycore/internal/monitor"
	"grimm.is/sentrycore/internal/queue"
	"grimm.is/sentrycore/internal/telemetry"
	"grimm.is/sentrycore/internal/twin"
)

// tickInterval is how often the scheduler is asked whether a periodic or
// triggered pass is due. It is well below triggeredInterval so the 1s
// triggered cadence lands close to on time.
const tickInterval = 250 * time.Millisecond

func main() {
	logger := logging.New(logging.DefaultConfig()).WithComponent("sentrycored")
	logging.SetDefault(logger)

	tw := twin.New()
	cacheBytes := tw.Snapshot().MaxLocalCacheSizeInBytes

	operational := queue.New(cacheBytes)
	high := queue.New(cacheBytes)
	low := queue.New(cacheBytes)

	registry := telemetry.NewRegistry(operational, high, low)
	diagQueue := diagnostic.New()

	procAgg := aggregator.New(eventcore.NameProcessCreate, tw)
	connAgg := aggregator.New(eventcore.NameConnectionCreate, tw)
	loginAgg := aggregator.New(eventcore.NameLogin, tw)

	m := &monitor.Monitor{
		Twin:        tw,
		Operational: operational,
		High:        high,
		Low:         low,
		Logger:      logger,
		OpenAuditSource: func() (io.ReadCloser, error) {
			return auditsearch.OpenDefaultSource()
		},
	}

	diagCollector := collectors.DiagnosticCollector{Queue: diagQueue}

	m.RegisterPeriodic(twin.EventMessageStatistics, collectors.MessageStatisticsCollector{Counters: registry.Messages})
	m.RegisterPeriodic(twin.EventDroppedEvents, collectors.DroppedEventsCollector{High: high, Low: low})
	m.RegisterPeriodic(twin.EventLocalUsers, collectors.LocalUsersCollector{})
	m.RegisterPeriodic(twin.EventSystemInformation, collectors.SystemInformationCollector{})
	m.RegisterPeriodic(twin.EventListeningPorts, collectors.ListeningPortsCollector{})
	m.RegisterPeriodic(twin.EventFirewallConfiguration, collectors.FirewallConfigurationCollector{})
	m.RegisterPeriodic(twin.EventBaseline, collectors.BaselineCollector{Checks: collectors.DefaultBaselineChecks()})
	m.RegisterPeriodic(twin.EventDiagnostic, diagCollector)

	m.RegisterTriggered(twin.EventConfigurationError, collectors.ConfigurationErrorCollector{
		Errors: func() []collectors.ConfigurationIssue {
			verrs := tw.LastValidationErrors()
			issues := make([]collectors.ConfigurationIssue, len(verrs))
			for i, e := range verrs {
				issues[i] = collectors.ConfigurationIssue{Field: e.Field, Message: e.Message}
			}
			return issues
		},
	})
	m.RegisterTriggeredAudit(twin.EventProcessCreate, collectors.NewProcessCreateCollector(procAgg, logger.WithComponent("process-create")))
	m.RegisterTriggeredAudit(twin.EventLogin, &collectors.LoginCollector{Agg: loginAgg, Logger: logger.WithComponent("login")})
	m.RegisterTriggeredAudit(twin.EventConnectionCreate, &collectors.ConnectionCreateCollector{Agg: connAgg, Logger: logger.WithComponent("connection-create")})
	m.RegisterTriggered(twin.EventDiagnostic, diagCollector)

	logger.Info("sentrycored starting", "cache_bytes", cacheBytes)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		m.Execute(now)
	}
}
