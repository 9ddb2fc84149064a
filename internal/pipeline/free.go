package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/names"
	"github.com/scales-okn/jed/internal/node"
	"github.com/scales-okn/jed/internal/strategies"
)

// freeKey identifies a court-phase survivor entering the free pool.
type freeKey struct {
	court  string
	nodeID int
}

// freePhaseResult carries the court-agnostic outcome.
type freePhaseResult struct {
	arena *node.Arena
	// entry maps court-phase survivors to their free-arena node IDs.
	// Court nodes filtered out of the free pool have no entry.
	entry  map[freeKey]int
	merges int
}

// runFreePhase pools every court-phase survivor and the unallocated
// registry seeds into one arena and sweeps it with no court lock.
// Dormant codebook judges sit the sweep out and rejoin afterward.
func (r *Runner) runFreePhase(ctx context.Context, courtPhase *courtPhaseResult) (*freePhaseResult, error) {
	start := time.Now()

	arena := node.New(node.ScopeFree, r.opts.RunID, r.rec)
	entry := make(map[freeKey]int)
	seen := make(map[string]*node.Node)

	for court, courtArena := range courtPhase.arenas {
		for _, cn := range courtArena.Nodes() {
			if cn.State != node.StateEligible || cn.Parent != node.SelfParent {
				continue
			}
			if !freeEligible(cn) {
				continue
			}
			// duplicate ground-truth seeds across courts collapse to one
			// free node
			if id := cn.GroundTruthID(); id != "" {
				if have := seen[id]; have != nil {
					have.UsageCount += cn.UsageCount
					have.Courts = unionStrings(have.Courts, cn.Courts)
					entry[freeKey{court: court, nodeID: cn.ID}] = have.ID
					continue
				}
			}
			fn := arena.Add(cn.Name)
			fn.Forms = cn.Forms
			fn.AltForms = cn.AltForms
			fn.UsageCount = cn.UsageCount
			fn.Courts = cn.Courts
			fn.WasHeader = cn.WasHeader
			fn.IsFJC = cn.IsFJC
			fn.FJCID = cn.FJCID
			fn.IsRegistry = cn.IsRegistry
			fn.RegistryID = cn.RegistryID
			fn.LatestTermination = cn.LatestTermination
			fn.Terminated = cn.Terminated
			if id := fn.GroundTruthID(); id != "" {
				seen[id] = fn
			}
			entry[freeKey{court: court, nodeID: cn.ID}] = fn.ID
		}
	}
	for _, s := range courtPhase.unallocatedSeeds {
		if id := s.FJCID + s.RegistryID; seen[id] != nil {
			continue
		}
		fn := arena.Add(s.Name)
		fn.IsFJC = s.FJCID != ""
		fn.FJCID = s.FJCID
		fn.IsRegistry = s.RegistryID != ""
		fn.RegistryID = s.RegistryID
		fn.Courts = s.Courts
		fn.LatestTermination = s.LatestTermination
		fn.Terminated = s.Terminated
		for _, alt := range s.Alts {
			fn.AltForms = append(fn.AltForms, names.Build(alt))
		}
		seen[s.FJCID+s.RegistryID] = fn
	}

	r.record(ctx, audit.NewPhaseStartedEvent(r.opts.RunID, audit.PhaseFree, audit.PhaseData{
		Pools:   1,
		NodesIn: len(arena.Nodes()),
	}))

	r.setAsideDormant(ctx, arena)

	merges := strategies.Ladder(ctx, arena, strategies.FreeLadder(), strategies.Options{Conservative: true})

	// dormant judges rejoin the pool untouched
	for _, n := range arena.Nodes() {
		n.Dormant = false
	}

	eligible := 0
	for _, n := range arena.Nodes() {
		if n.Eligible() {
			eligible++
		}
	}
	r.record(ctx, audit.NewPhaseCompletedEvent(r.opts.RunID, audit.PhaseFree, audit.PhaseData{
		Pools:      1,
		NodesIn:    len(arena.Nodes()),
		NodesOut:   eligible,
		Merges:     merges,
		DurationMs: time.Since(start).Milliseconds(),
	}))

	return &freePhaseResult{arena: arena, entry: entry, merges: merges}, nil
}

// setAsideDormant marks codebook judges whose latest termination
// predates the cutoff. The sweep skips dormant nodes, keeping long-dead
// judges from claiming modern mentions.
func (r *Runner) setAsideDormant(ctx context.Context, arena *node.Arena) {
	cutoff := r.opts.DormancyCutoff
	if cutoff.IsZero() {
		return
	}
	for _, n := range arena.Nodes() {
		if !n.IsFJC || !n.Terminated || n.LatestTermination.After(cutoff) {
			continue
		}
		n.Dormant = true
		r.record(ctx, audit.NewDormantEvent(r.opts.RunID, audit.DormantData{
			Name:              n.Name,
			FJCID:             n.FJCID,
			LatestTermination: n.LatestTermination.Format("2006-01-02"),
		}))
	}
}

// freeEligible applies the free-pool filters: ambiguous and absorbed
// nodes stay behind, as do lone surnames and initial-like scraps the
// court-agnostic sweep could never place safely.
func freeEligible(n *node.Node) bool {
	if n.State != node.StateEligible {
		return false
	}
	if n.GroundTruthID() != "" {
		return true
	}
	if n.SingleToken() {
		return false
	}
	if tripleConsonant(n.Name) {
		return false
	}
	return maxTokenLen(n.Forms.Base) > 1
}

// tripleConsonant reports whether a short name is all consonants, which
// marks it as stray initials rather than a surname like Lee.
func tripleConsonant(name string) bool {
	if len(name) >= 4 {
		return false
	}
	for _, r := range name {
		if strings.ContainsRune("aeiouy", r) || r == ' ' {
			return false
		}
	}
	return len(name) > 0
}

func maxTokenLen(tokens []string) int {
	longest := 0
	for _, t := range tokens {
		if len(t) > longest {
			longest = len(t)
		}
	}
	return longest
}

func unionStrings(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, s := range b {
		have := false
		for _, t := range out {
			if s == t {
				have = true
				break
			}
		}
		if !have {
			out = append(out, s)
		}
	}
	return out
}
