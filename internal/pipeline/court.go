package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/labeling"
	"github.com/scales-okn/jed/internal/names"
	"github.com/scales-okn/jed/internal/node"
	"github.com/scales-okn/jed/internal/registry"
	"github.com/scales-okn/jed/internal/strategies"
	"github.com/scales-okn/jed/internal/types"
)

// courtEntity aggregates one case-phase parent within a court.
type courtEntity struct {
	name      string
	cases     map[string]bool
	wasHeader bool
	// judgeyPrefixes counts appearances with judge-like pretext.
	judgeyPrefixes int
}

// courtPhaseResult carries the per-court outcome forward.
type courtPhaseResult struct {
	// arenas holds the settled per-court arenas; free-phase pooling and
	// final repointing walk their parent chains.
	arenas map[string]*node.Arena
	// entry maps (court, case parent name) to its node ID in the court
	// arena.
	entry map[string]map[string]int
	// ignored marks (court, case parent) names filtered before the
	// sweep for being thin single-token evidence.
	ignored map[string]map[string]bool
	// unallocatedSeeds are registry seeds with no court to join; they
	// enter the free phase directly.
	unallocatedSeeds []registry.Seed
	merges           int
}

// runCourtPhase pools case-phase parents per court, seeds the ground
// truth registries for that court, and sweeps each pool.
func (r *Runner) runCourtPhase(ctx context.Context, mentions []*types.Mention,
	casePhase *casePhaseResult,
	fjcSeeds, rosterSeeds map[string][]registry.Seed) (*courtPhaseResult, error) {

	start := time.Now()

	// aggregate case parents per court
	pools := make(map[string]map[string]*courtEntity)
	for _, m := range mentions {
		if m.EntityID == types.EntityInconclusive {
			continue
		}
		key := caseKey{court: m.Court, caseID: m.CaseID}
		if casePhase.tossedNames[key][m.CleanedName] {
			continue
		}
		parent, ok := casePhase.parents[key][m.CleanedName]
		if !ok {
			parent = m.CleanedName
		}
		pool := pools[m.Court]
		if pool == nil {
			pool = make(map[string]*courtEntity)
			pools[m.Court] = pool
		}
		ent := pool[parent]
		if ent == nil {
			ent = &courtEntity{name: parent, cases: make(map[string]bool)}
			pool[parent] = ent
		}
		ent.cases[m.CaseID] = true
		if m.IsHeader() {
			ent.wasHeader = true
		}
		if labeling.Recode(m.Category).Judgey() {
			ent.judgeyPrefixes++
		}
	}

	totalNodes := 0
	for _, pool := range pools {
		totalNodes += len(pool)
	}
	r.record(ctx, audit.NewPhaseStartedEvent(r.opts.RunID, audit.PhaseCourt, audit.PhaseData{
		Pools:   len(pools),
		NodesIn: totalNodes,
	}))

	res := &courtPhaseResult{
		arenas:  make(map[string]*node.Arena, len(pools)),
		entry:   make(map[string]map[string]int, len(pools)),
		ignored: make(map[string]map[string]bool),
	}
	var mu sync.Mutex

	err := eachGroup(ctx, r.opts.concurrency(), pools, func(court string, pool map[string]*courtEntity) error {
		arena := node.New(node.ScopeCourt, r.opts.RunID, r.rec)
		arena.Court = court

		entry := make(map[string]int, len(pool))
		ignored := make(map[string]bool)
		for name, ent := range pool {
			// thin single-token names with never a judge-like prefix are
			// noise, not entities
			if len(ent.cases) <= 3 && singleToken(name) && ent.judgeyPrefixes == 0 {
				ignored[name] = true
				continue
			}
			n := arena.Add(name)
			n.UsageCount = len(ent.cases)
			n.Courts = []string{court}
			n.WasHeader = ent.wasHeader
			entry[name] = n.ID
		}
		seedArena(arena, fjcSeeds[court], rosterSeeds[court])

		merges := strategies.Ladder(ctx, arena, strategies.CourtLadder(), strategies.Options{Conservative: true})

		mu.Lock()
		res.arenas[court] = arena
		res.entry[court] = entry
		if len(ignored) > 0 {
			res.ignored[court] = ignored
		}
		res.merges += merges
		mu.Unlock()

		r.progress(ctx, audit.PhaseCourt, "court sweep "+court)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.unallocatedSeeds = append(fjcSeeds[registry.Unallocated], rosterSeeds[registry.Unallocated]...)

	r.record(ctx, audit.NewPhaseCompletedEvent(r.opts.RunID, audit.PhaseCourt, audit.PhaseData{
		Pools:      len(pools),
		NodesIn:    totalNodes,
		Merges:     res.merges,
		DurationMs: time.Since(start).Milliseconds(),
	}))
	return res, nil
}

// seedArena inserts registry seeds into a court arena.
func seedArena(arena *node.Arena, fjc, roster []registry.Seed) {
	for _, s := range fjc {
		n := arena.Add(s.Name)
		n.IsFJC = true
		n.FJCID = s.FJCID
		n.Courts = s.Courts
		n.LatestTermination = s.LatestTermination
		n.Terminated = s.Terminated
		for _, alt := range s.Alts {
			n.AltForms = append(n.AltForms, names.Build(alt))
		}
	}
	for _, s := range roster {
		n := arena.Add(s.Name)
		n.IsRegistry = true
		n.RegistryID = s.RegistryID
		n.Courts = s.Courts
	}
}

func singleToken(name string) bool {
	return names.Build(name).TokenCount() <= 1
}
