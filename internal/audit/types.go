// Package audit provides the typed event stream emitted during a
// resolution run. Every merge, refusal, ambiguity call, and phase
// transition becomes a structured event that can be stored, queried, and
// reviewed after the run.
package audit

import (
	"context"
	"time"
)

// EventType represents the type of event that occurred during resolution.
type EventType string

const (
	// EventTypeMerge indicates one node absorbed another
	EventTypeMerge EventType = "merge"
	// EventTypeMergeRefused indicates a merge was blocked by ground-truth rules
	EventTypeMergeRefused EventType = "merge_refused"
	// EventTypeAmbiguityMarked indicates a node was marked ambiguous
	EventTypeAmbiguityMarked EventType = "ambiguity_marked"
	// EventTypeMentionTossed indicates a mention was dropped as a party/counsel echo
	EventTypeMentionTossed EventType = "mention_tossed"
	// EventTypePhaseStarted indicates a resolution phase began
	EventTypePhaseStarted EventType = "phase_started"
	// EventTypePhaseCompleted indicates a resolution phase finished
	EventTypePhaseCompleted EventType = "phase_completed"
	// EventTypeDormantSetAside indicates a registry seed sat out the sweep
	EventTypeDormantSetAside EventType = "dormant_set_aside"
	// EventTypeLabelDecision indicates the labeling tree decided an entity's fate
	EventTypeLabelDecision EventType = "label_decision"
	// EventTypeCatalogWritten indicates the catalog file set was written
	EventTypeCatalogWritten EventType = "catalog_written"
	// EventTypeProgress indicates a periodic progress update
	EventTypeProgress EventType = "progress"
	// EventTypeError indicates an error occurred
	EventTypeError EventType = "error"
)

// EventSeverity represents the severity level of an event.
type EventSeverity string

const (
	// SeverityInfo indicates informational events
	SeverityInfo EventSeverity = "info"
	// SeverityWarning indicates potentially problematic events
	SeverityWarning EventSeverity = "warning"
	// SeverityError indicates error events
	SeverityError EventSeverity = "error"
)

// Phase identifies which resolution scope produced an event.
type Phase string

const (
	PhaseCase  Phase = "case"
	PhaseCourt Phase = "court"
	PhaseFree  Phase = "free"
	PhaseLabel Phase = "label"
	PhaseIO    Phase = "io"
)

// Event is one audit record from a resolution run.
type Event struct {
	// ID is the unique identifier for this event
	ID string `json:"id"`
	// RunID ties the event to a resolution run
	RunID string `json:"run_id"`
	// Type is the type of event
	Type EventType `json:"type"`
	// Phase is the resolution scope that produced the event
	Phase Phase `json:"phase"`
	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`
	// Severity is the severity level of this event
	Severity EventSeverity `json:"severity"`
	// Message is a human-readable description of the event
	Message string `json:"message"`
	// Data contains structured, type-specific data (must be JSON-serializable)
	Data map[string]interface{} `json:"data"`
}

// MergeData contains structured data for merge events.
type MergeData struct {
	// Winner is the surviving node's name
	Winner string `json:"winner"`
	// Loser is the absorbed node's name
	Loser string `json:"loser"`
	// Strategy is the matching strategy that proposed the merge
	Strategy string `json:"strategy"`
	// Court is the court scope, empty in the free phase
	Court string `json:"court,omitempty"`
	// CaseID is the case scope, empty outside the case phase
	CaseID string `json:"case_id,omitempty"`
}

// RefusalData contains structured data for merge refusal events.
type RefusalData struct {
	NameA string `json:"name_a"`
	NameB string `json:"name_b"`
	// IDA and IDB are the conflicting ground-truth IDs
	IDA string `json:"id_a"`
	IDB string `json:"id_b"`
	// Strategy is the matching strategy whose proposal was refused
	Strategy string `json:"strategy"`
}

// AmbiguityData contains structured data for ambiguity events.
type AmbiguityData struct {
	// Name is the node that became ambiguous
	Name string `json:"name"`
	// Candidates are the names of the equally plausible targets
	Candidates []string `json:"candidates"`
	// Strategy is the strategy that detected the ambiguity
	Strategy string `json:"strategy"`
}

// TossData contains structured data for party/counsel echo drops.
type TossData struct {
	// Name is the dropped mention name
	Name string `json:"name"`
	// MatchedAgainst is the party or counsel name it echoed
	MatchedAgainst string `json:"matched_against"`
	// Kind is "party" or "counsel"
	Kind string `json:"kind"`
	// Score is the similarity percentage that triggered the drop
	Score int `json:"score"`
}

// PhaseData contains structured data for phase start/completion events.
type PhaseData struct {
	// Pools is the number of node pools swept (cases or courts)
	Pools int `json:"pools"`
	// NodesIn is the node count entering the phase
	NodesIn int `json:"nodes_in"`
	// NodesOut is the eligible node count leaving the phase (completion only)
	NodesOut int `json:"nodes_out,omitempty"`
	// Merges is the number of absorptions performed (completion only)
	Merges int `json:"merges,omitempty"`
	// DurationMs is the phase wall time in milliseconds (completion only)
	DurationMs int64 `json:"duration_ms,omitempty"`
}

// DormantData contains structured data for dormant set-aside events.
type DormantData struct {
	// Name is the set-aside node's name
	Name string `json:"name"`
	// FJCID is the codebook ID of the dormant judge
	FJCID string `json:"fjc_id"`
	// LatestTermination is the termination date that triggered set-aside
	LatestTermination string `json:"latest_termination"`
}

// LabelDecisionData contains structured data for labeling decisions.
type LabelDecisionData struct {
	// Name is the entity name that was labeled
	Name string `json:"name"`
	// Label is the assigned role label, or the deny reason
	Label string `json:"label"`
	// Denied indicates the entity was rejected from the catalog
	Denied bool `json:"denied"`
	// EntityID is the assigned stable ID, empty when denied
	EntityID string `json:"entity_id,omitempty"`
}

// CatalogWrittenData contains structured data for catalog write events.
type CatalogWrittenData struct {
	// Entries is the number of catalog rows written
	Entries int `json:"entries"`
	// Mentions is the number of mention rows written
	Mentions int `json:"mentions"`
	// Shards is the number of per-case shard files written
	Shards int `json:"shards"`
	// CatalogPath is the combined catalog file path
	CatalogPath string `json:"catalog_path"`
}

// Recorder receives audit events as they are produced.
type Recorder interface {
	// Record stores or forwards one event
	Record(ctx context.Context, event *Event) error
}

// Store defines the interface for persisting and querying audit events.
type Store interface {
	Recorder
	// GetEvents retrieves events matching the given filter
	GetEvents(ctx context.Context, filter Filter) ([]*Event, error)
	// GetRecentEvents retrieves the most recent events up to limit
	GetRecentEvents(ctx context.Context, limit int) ([]*Event, error)
}

// Filter defines criteria for querying stored events.
type Filter struct {
	// RunID filters events by run
	RunID string
	// Type filters events by event type
	Type EventType
	// Phase filters events by resolution phase
	Phase Phase
	// Severity filters events by severity level
	Severity EventSeverity
	// AfterTime filters events that occurred after this time
	AfterTime time.Time
	// BeforeTime filters events that occurred before this time
	BeforeTime time.Time
	// Limit limits the number of events returned
	Limit int
}
