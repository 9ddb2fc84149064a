package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewEvent creates an event with an opaque data map.
func NewEvent(runID string, eventType EventType, phase Phase, severity EventSeverity, message string, data map[string]interface{}) *Event {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &Event{
		ID:        uuid.New().String(),
		RunID:     runID,
		Type:      eventType,
		Phase:     phase,
		Timestamp: time.Now(),
		Severity:  severity,
		Message:   message,
		Data:      data,
	}
}

// NewMergeEvent creates an event for an absorption with type-safe data.
func NewMergeEvent(runID string, phase Phase, data MergeData) *Event {
	msg := fmt.Sprintf("%s absorbed %s (%s)", data.Winner, data.Loser, data.Strategy)
	return typed(runID, EventTypeMerge, phase, SeverityInfo, msg, data)
}

// NewRefusalEvent creates an event for a blocked merge with type-safe data.
func NewRefusalEvent(runID string, phase Phase, data RefusalData) *Event {
	msg := fmt.Sprintf("distinct entities will not be merged: %s (%s) vs %s (%s)",
		data.NameA, data.IDA, data.NameB, data.IDB)
	return typed(runID, EventTypeMergeRefused, phase, SeverityWarning, msg, data)
}

// NewAmbiguityEvent creates an event for an ambiguity call with type-safe data.
func NewAmbiguityEvent(runID string, phase Phase, data AmbiguityData) *Event {
	msg := fmt.Sprintf("%s is ambiguous across %d candidates", data.Name, len(data.Candidates))
	return typed(runID, EventTypeAmbiguityMarked, phase, SeverityWarning, msg, data)
}

// NewTossEvent creates an event for a party/counsel echo drop.
func NewTossEvent(runID string, data TossData) *Event {
	msg := fmt.Sprintf("tossed %q as %s echo of %q (score %d)",
		data.Name, data.Kind, data.MatchedAgainst, data.Score)
	return typed(runID, EventTypeMentionTossed, PhaseCase, SeverityInfo, msg, data)
}

// NewPhaseStartedEvent creates an event marking the start of a phase.
func NewPhaseStartedEvent(runID string, phase Phase, data PhaseData) *Event {
	msg := fmt.Sprintf("phase %s started: %d nodes in %d pools", phase, data.NodesIn, data.Pools)
	return typed(runID, EventTypePhaseStarted, phase, SeverityInfo, msg, data)
}

// NewPhaseCompletedEvent creates an event marking the completion of a phase.
func NewPhaseCompletedEvent(runID string, phase Phase, data PhaseData) *Event {
	msg := fmt.Sprintf("phase %s completed: %d merges, %d nodes remain", phase, data.Merges, data.NodesOut)
	return typed(runID, EventTypePhaseCompleted, phase, SeverityInfo, msg, data)
}

// NewDormantEvent creates an event for a dormant registry seed.
func NewDormantEvent(runID string, data DormantData) *Event {
	msg := fmt.Sprintf("%s set aside as dormant (terminated %s)", data.Name, data.LatestTermination)
	return typed(runID, EventTypeDormantSetAside, PhaseFree, SeverityInfo, msg, data)
}

// NewLabelDecisionEvent creates an event for a labeling decision.
func NewLabelDecisionEvent(runID string, data LabelDecisionData) *Event {
	var msg string
	if data.Denied {
		msg = fmt.Sprintf("denied %s: %s", data.Name, data.Label)
	} else {
		msg = fmt.Sprintf("labeled %s as %s (%s)", data.Name, data.Label, data.EntityID)
	}
	return typed(runID, EventTypeLabelDecision, PhaseLabel, SeverityInfo, msg, data)
}

// NewCatalogWrittenEvent creates an event for the final catalog write.
func NewCatalogWrittenEvent(runID string, data CatalogWrittenData) *Event {
	msg := fmt.Sprintf("catalog written: %d entries, %d mentions, %d shards",
		data.Entries, data.Mentions, data.Shards)
	return typed(runID, EventTypeCatalogWritten, PhaseIO, SeverityInfo, msg, data)
}

// NewErrorEvent creates an error event.
func NewErrorEvent(runID string, phase Phase, err error) *Event {
	return NewEvent(runID, EventTypeError, phase, SeverityError, err.Error(), nil)
}

// typed round-trips a typed data struct into the event's data map so every
// stored event carries plain JSON-compatible values.
func typed(runID string, eventType EventType, phase Phase, severity EventSeverity, message string, data interface{}) *Event {
	event := NewEvent(runID, eventType, phase, severity, message, nil)
	raw, err := json.Marshal(data)
	if err != nil {
		return event
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return event
	}
	event.Data = m
	return event
}
