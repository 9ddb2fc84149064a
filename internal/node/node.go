// Package node holds the candidate arena used during resolution. Nodes
// live in a slice owned by an Arena and refer to each other by integer ID,
// so parent/child links survive serialization and sweeps never chase
// pointers into absorbed subtrees.
package node

import (
	"context"
	"time"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/names"
)

// State is the lifecycle state of a candidate node.
type State string

const (
	// StateEligible means the node can still win or lose comparisons
	StateEligible State = "eligible"
	// StateAbsorbed means the node was merged into its parent
	StateAbsorbed State = "absorbed"
	// StateAmbiguous means the node matched several plausible ground
	// truths equally well and is excluded from further sweeps
	StateAmbiguous State = "ambiguous"
)

// Scope tags an arena with the resolution phase that owns it.
type Scope string

const (
	ScopeCase  Scope = "case"
	ScopeCourt Scope = "court"
	ScopeFree  Scope = "free"
)

// SelfParent is the Parent value of a node that points to itself.
const SelfParent = -1

// Node is one candidate entity in an arena.
type Node struct {
	// ID is the node's index in its arena
	ID int
	// Name is the cleaned lowercase representative name
	Name string
	// Forms holds every token representation of Name
	Forms names.Forms
	// AltForms holds token forms for additional representations
	// (registry seeds with curated alternate names)
	AltForms []names.Forms

	// UsageCount is the number of distinct cases the node appears on
	UsageCount int
	// Courts lists the courts the node appears in
	Courts []string
	// WasHeader records whether any mention came from case-header data
	WasHeader bool

	State State
	// Parent is the node ID this node points to, SelfParent when eligible
	Parent int
	// Children are absorbed node IDs, kept flat
	Children []int
	// PossibleMatches are candidate node IDs recorded at ambiguity marking
	PossibleMatches []int

	// Ground truth
	IsFJC      bool
	IsRegistry bool
	// FJCID is the FJC codebook NID
	FJCID string
	// RegistryID is the bankruptcy/magistrate roster ID
	RegistryID string
	// EntityID is the stable catalog ID once assigned
	EntityID string

	// Dormant marks FJC seeds set aside for the free sweep
	Dormant bool
	// LatestTermination is the FJC termination date used for dormancy
	LatestTermination time.Time
	// Terminated is false for sitting judges
	Terminated bool
}

// Eligible reports whether the node can still participate in sweeps.
func (n *Node) Eligible() bool {
	return n.State == StateEligible && !n.Dormant
}

// GroundTruthID returns the node's confirmed ID, FJC first.
func (n *Node) GroundTruthID() string {
	if n.IsFJC {
		return n.FJCID
	}
	if n.IsRegistry {
		return n.RegistryID
	}
	return ""
}

// SingleToken reports whether the node's name has one non-suffix token.
func (n *Node) SingleToken() bool {
	return n.Forms.TokenCount() <= 1
}

// Arena owns a pool of nodes for one resolution scope.
type Arena struct {
	Scope Scope
	// Court is the court pool this arena sweeps, empty in the free phase
	Court string
	// CaseID is the case pool this arena sweeps, empty outside case phase
	CaseID string

	nodes  []*Node
	runID  string
	rec    audit.Recorder
	merges int
}

// New creates an empty arena for the given scope.
func New(scope Scope, runID string, rec audit.Recorder) *Arena {
	return &Arena{Scope: scope, runID: runID, rec: rec}
}

// Add creates a node for name and returns it. The caller fills in counts
// and ground-truth fields.
func (a *Arena) Add(name string) *Node {
	n := &Node{
		ID:     len(a.nodes),
		Name:   name,
		Forms:  names.Build(name),
		State:  StateEligible,
		Parent: SelfParent,
	}
	a.nodes = append(a.nodes, n)
	return n
}

// Node returns the node with the given ID, or nil.
func (a *Arena) Node(id int) *Node {
	if id < 0 || id >= len(a.nodes) {
		return nil
	}
	return a.nodes[id]
}

// Nodes returns all nodes in insertion order.
func (a *Arena) Nodes() []*Node {
	return a.nodes
}

// Eligible returns the nodes still participating in sweeps.
func (a *Arena) Eligible() []*Node {
	var out []*Node
	for _, n := range a.nodes {
		if n.Eligible() {
			out = append(out, n)
		}
	}
	return out
}

// Merges returns the number of absorptions performed so far.
func (a *Arena) Merges() int {
	return a.merges
}

// Root follows parent links from id to the ultimate eligible parent.
func (a *Arena) Root(id int) *Node {
	n := a.Node(id)
	for n != nil && n.Parent != SelfParent {
		n = a.Node(n.Parent)
	}
	return n
}

// ChooseWinner applies the tie-break chain to an eligible pair and returns
// (winner, loser, refused). Refused pairs must not merge: both nodes carry
// distinct confirmed ground-truth IDs.
func (a *Arena) ChooseWinner(x, y *Node) (winner, loser *Node, refused bool) {
	xID, yID := x.GroundTruthID(), y.GroundTruthID()

	// distinct confirmed identities never merge
	if xID != "" && yID != "" && xID != yID {
		// an FJC seed outranks a registry seed: the registry entry is the
		// same person holding an earlier seat, not a distinct entity
		if x.IsFJC && y.IsRegistry && !y.IsFJC {
			return x, y, false
		}
		if y.IsFJC && x.IsRegistry && !x.IsFJC {
			return y, x, false
		}
		return nil, nil, true
	}
	if xID != "" && yID == "" {
		return x, y, false
	}
	if yID != "" && xID == "" {
		return y, x, false
	}

	// a lone surname never absorbs a fuller name
	if x.SingleToken() != y.SingleToken() {
		if x.SingleToken() {
			return y, x, false
		}
		return x, y, false
	}
	if x.UsageCount != y.UsageCount {
		if x.UsageCount > y.UsageCount {
			return x, y, false
		}
		return y, x, false
	}
	if len(x.Forms.Base) != len(y.Forms.Base) {
		if len(x.Forms.Base) > len(y.Forms.Base) {
			return x, y, false
		}
		return y, x, false
	}
	if len(x.Name) != len(y.Name) {
		if len(x.Name) > len(y.Name) {
			return x, y, false
		}
		return y, x, false
	}
	// full tie: first-encountered wins, keeping output stable
	if x.ID <= y.ID {
		return x, y, false
	}
	return y, x, false
}

// Absorb merges loser into winner: children transfer flat, ground truth
// propagates, usage evidence accumulates. Emits a merge audit event.
func (a *Arena) Absorb(ctx context.Context, winner, loser *Node, strategy string) {
	// re-parent the loser's subtree so children lists stay flat
	for _, childID := range loser.Children {
		child := a.Node(childID)
		child.Parent = winner.ID
		winner.Children = append(winner.Children, childID)
	}
	loser.Children = nil
	loser.Parent = winner.ID
	loser.State = StateAbsorbed

	// the winner adopts a ground truth only the loser held
	if winner.GroundTruthID() == "" && loser.GroundTruthID() != "" {
		winner.IsFJC = loser.IsFJC
		winner.IsRegistry = loser.IsRegistry
		winner.FJCID = loser.FJCID
		winner.RegistryID = loser.RegistryID
		winner.LatestTermination = loser.LatestTermination
		winner.Terminated = loser.Terminated
	}
	if winner.EntityID == "" && loser.EntityID != "" {
		winner.EntityID = loser.EntityID
	}

	winner.UsageCount += loser.UsageCount
	winner.WasHeader = winner.WasHeader || loser.WasHeader
	winner.Courts = unionCourts(winner.Courts, loser.Courts)
	a.merges++

	if a.rec != nil {
		a.rec.Record(ctx, audit.NewMergeEvent(a.runID, phaseFor(a.Scope), audit.MergeData{
			Winner:   winner.Name,
			Loser:    loser.Name,
			Strategy: strategy,
			Court:    a.Court,
			CaseID:   a.CaseID,
		}))
	}
}

// Refuse records a blocked merge between two confirmed identities.
func (a *Arena) Refuse(ctx context.Context, x, y *Node, strategy string) {
	if a.rec == nil {
		return
	}
	a.rec.Record(ctx, audit.NewRefusalEvent(a.runID, phaseFor(a.Scope), audit.RefusalData{
		NameA:    x.Name,
		IDA:      x.GroundTruthID(),
		NameB:    y.Name,
		IDB:      y.GroundTruthID(),
		Strategy: strategy,
	}))
}

// MarkAmbiguous takes the node and its subtree out of play, recording the
// equally plausible candidate targets.
func (a *Arena) MarkAmbiguous(ctx context.Context, n *Node, candidates []*Node, strategy string) {
	ids := make([]int, 0, len(candidates))
	candNames := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
		candNames = append(candNames, c.Name)
	}
	n.State = StateAmbiguous
	n.PossibleMatches = ids
	for _, childID := range n.Children {
		child := a.Node(childID)
		child.State = StateAmbiguous
		child.PossibleMatches = ids
	}

	if a.rec != nil {
		a.rec.Record(ctx, audit.NewAmbiguityEvent(a.runID, phaseFor(a.Scope), audit.AmbiguityData{
			Name:       n.Name,
			Candidates: candNames,
			Strategy:   strategy,
		}))
	}
}

func phaseFor(s Scope) audit.Phase {
	switch s {
	case ScopeCase:
		return audit.PhaseCase
	case ScopeCourt:
		return audit.PhaseCourt
	default:
		return audit.PhaseFree
	}
}

func unionCourts(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := a
	for _, c := range a {
		seen[c] = true
	}
	for _, c := range b {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
