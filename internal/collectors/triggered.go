// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"io"
	"time"

	"grimm.is/sentrycore/internal/aggregator"
	"grimm.is/sentrycore/internal/agentjson"
	"grimm.is/sentrycore/internal/auditsearch"
	"grimm.is/sentrycore/internal/eventcore"
	"grimm.is/sentrycore/internal/logging"
	"grimm.is/sentrycore/internal/queue"
)

// recordResult is what a per-collector field-extraction function reports
// for a single audit event.
type recordResult int

const (
	recordOK recordResult = iota
	recordSkip      // malformed/missing field: RECORD_HAS_ERRORS, continue
	recordFiltered  // policy filter: RECORD_FILTERED, continue
	recordException // unrecoverable: abort the pass
)

// buildPayloadFunc extracts one collector's payload fields from the
// current audit event. zeroForAggregation, if non-nil, is applied to a
// *copy* of the payload before it's handed to the aggregator, so the
// un-zeroed original is still available for singleton emission when
// aggregation is off.
type buildPayloadFunc func(s *auditsearch.Search) (*agentjson.ObjectWriter, recordResult)

// triggeredSpec bundles everything runTriggered needs to execute the
// shared per-record algorithm from one collector invocation.
type triggeredSpec struct {
	Source             io.Reader
	Criteria           auditsearch.Criteria
	Keys               []string
	CheckpointPath     string
	EventName          string
	EventType          eventcore.Type
	Agg                *aggregator.Aggregator
	Queue              *queue.Queue
	BuildPayload       buildPayloadFunc
	ZeroForAggregation func(*agentjson.ObjectWriter)
	Logger             *logging.Logger
}

// runTriggered implements the shared triggered-collector algorithm (spec
// §4.5): open an audit search, build a payload per matching event, feed
// the aggregator or emit singly, flush the aggregator, and always set the
// checkpoint and release the iterator regardless of outcome.
func runTriggered(spec triggeredSpec) Result {
	search, err := auditsearch.Init(spec.Criteria, spec.Keys, spec.CheckpointPath, spec.Source)
	if err != nil {
		if spec.Logger != nil {
			spec.Logger.Error("open audit search failed", "event", spec.EventName, "err", err)
		}
		return Exception
	}

	result := OK
	reachedEnd := false

loop:
	for {
		switch search.GetNext() {
		case auditsearch.NoMoreData:
			reachedEnd = true
			break loop
		case auditsearch.HasMoreData:
		}

		payload, rr := spec.BuildPayload(search)
		switch rr {
		case recordSkip:
			continue
		case recordFiltered:
			continue
		case recordException:
			result = Exception
			break loop
		}

		if spec.Agg != nil {
			aggPayload := payload
			if spec.ZeroForAggregation != nil {
				aggPayload = payload.Copy()
				spec.ZeroForAggregation(aggPayload)
			}
			aggResult, aggErr := spec.Agg.Aggregate(aggPayload)
			if aggErr != nil {
				result = Exception
				break loop
			}
			if aggResult == aggregator.ResultAggregated {
				continue
			}
		}

		evTime, _ := search.GetEventTime()
		raw, err := eventcore.SingleObjectEvent(eventcore.CategoryTriggered, spec.EventName, spec.EventType, evTime, payload)
		if err != nil {
			result = Exception
			break loop
		}
		if pr := spec.Queue.PushBack(raw); pr == queue.MaxMemoryExceeded && result == OK {
			result = OutOfMem
		}
	}

	if spec.Agg != nil {
		flushErr := spec.Agg.Flush(func(o *agentjson.ObjectWriter) error {
			raw, err := eventcore.SingleObjectEvent(eventcore.CategoryTriggered, spec.EventName, spec.EventType, time.Time{}, o)
			if err != nil {
				return err
			}
			spec.Queue.PushBack(raw)
			return nil
		})
		if flushErr != nil && result == OK {
			result = Exception
		}
	}

	// Always set the checkpoint, even on partial failure: bounded progress
	// over unbounded re-reads of a record that keeps poisoning the scan.
	if err := search.SetCheckpoint(); err != nil && spec.Logger != nil {
		spec.Logger.Error("set checkpoint failed", "event", spec.EventName, "err", err)
	}
	if err := search.Deinit(); err != nil && spec.Logger != nil {
		spec.Logger.Error("release audit search failed", "event", spec.EventName, "err", err)
	}

	if !reachedEnd && result == OK {
		result = Exception
	}
	return result
}
