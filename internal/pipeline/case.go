package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/fuzz"
	"github.com/scales-okn/jed/internal/node"
	"github.com/scales-okn/jed/internal/registry"
	"github.com/scales-okn/jed/internal/strategies"
	"github.com/scales-okn/jed/internal/types"
)

// caseKey identifies one case within its court.
type caseKey struct {
	court  string
	caseID string
}

// casePhaseResult carries the per-case resolution outcome forward.
type casePhaseResult struct {
	// parents maps (case, cleaned name) to the case-level parent name.
	parents map[caseKey]map[string]string
	// tossedNames marks (case, name) pairs dropped as party echoes.
	tossedNames map[caseKey]map[string]bool
	tossed      int
	merges      int
}

// courtCaseCounts tallies, per court, how many distinct cases each
// cleaned name appears on.
func courtCaseCounts(mentions []*types.Mention) map[string]map[string]int {
	seen := make(map[string]map[string]map[string]bool)
	for _, m := range mentions {
		if m.EntityID == types.EntityInconclusive {
			continue
		}
		if seen[m.Court] == nil {
			seen[m.Court] = make(map[string]map[string]bool)
		}
		if seen[m.Court][m.CleanedName] == nil {
			seen[m.Court][m.CleanedName] = make(map[string]bool)
		}
		seen[m.Court][m.CleanedName][m.CaseID] = true
	}
	counts := make(map[string]map[string]int, len(seen))
	for court, ents := range seen {
		counts[court] = make(map[string]int, len(ents))
		for name, cases := range ents {
			counts[court][name] = len(cases)
		}
	}
	return counts
}

// headerNames groups cleaned party and counsel names per case.
func headerNames(parties, counsels []HeaderEntity) map[string][]string {
	out := make(map[string][]string)
	for _, list := range [][]HeaderEntity{parties, counsels} {
		for _, h := range list {
			cleaned := registry.CleanName(h.Name)
			if cleaned == "" {
				continue
			}
			out[h.CaseID] = append(out[h.CaseID], cleaned)
		}
	}
	return out
}

// runCasePhase resolves mentions within each case. Mentions whose name
// appears on a single case and closely matches a party or counsel on
// that case are dropped as extraction echoes before the sweep.
func (r *Runner) runCasePhase(ctx context.Context, mentions []*types.Mention,
	parties, counsels []HeaderEntity) (*casePhaseResult, error) {

	start := time.Now()
	counts := courtCaseCounts(mentions)
	headers := headerNames(parties, counsels)

	// distinct usage-weighted names per case
	type caseNames struct {
		usage map[string]int
	}
	cases := make(map[caseKey]*caseNames)
	for _, m := range mentions {
		if m.EntityID == types.EntityInconclusive {
			continue
		}
		key := caseKey{court: m.Court, caseID: m.CaseID}
		cn := cases[key]
		if cn == nil {
			cn = &caseNames{usage: make(map[string]int)}
			cases[key] = cn
		}
		cn.usage[m.CleanedName]++
	}

	r.record(ctx, audit.NewPhaseStartedEvent(r.opts.RunID, audit.PhaseCase, audit.PhaseData{
		Pools:   len(cases),
		NodesIn: len(mentions),
	}))

	res := &casePhaseResult{
		parents:     make(map[caseKey]map[string]string, len(cases)),
		tossedNames: make(map[caseKey]map[string]bool),
	}
	var mu sync.Mutex

	err := eachGroup(ctx, r.opts.concurrency(), cases, func(key caseKey, cn *caseNames) error {
		tossed := r.tossPartyEchoes(ctx, key, cn.usage, counts[key.court], headers[key.caseID])

		parents := make(map[string]string, len(cn.usage))
		merges := 0
		if len(cn.usage) > 1 {
			arena := node.New(node.ScopeCase, r.opts.RunID, r.rec)
			arena.Court = key.court
			arena.CaseID = key.caseID
			nodes := make(map[string]*node.Node, len(cn.usage))
			for name := range cn.usage {
				n := arena.Add(name)
				n.UsageCount = counts[key.court][name]
				n.Courts = []string{key.court}
				nodes[name] = n
			}
			merges = strategies.Ladder(ctx, arena, strategies.CaseLadder(), strategies.Options{})
			for name, n := range nodes {
				parents[name] = arena.Root(n.ID).Name
			}
		} else {
			for name := range cn.usage {
				parents[name] = name
			}
		}

		mu.Lock()
		res.parents[key] = parents
		if len(tossed) > 0 {
			res.tossedNames[key] = tossed
			res.tossed += len(tossed)
		}
		res.merges += merges
		mu.Unlock()

		r.progress(ctx, audit.PhaseCase, "case sweep "+key.caseID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.record(ctx, audit.NewPhaseCompletedEvent(r.opts.RunID, audit.PhaseCase, audit.PhaseData{
		Pools:      len(cases),
		NodesIn:    len(mentions),
		Merges:     res.merges,
		DurationMs: time.Since(start).Milliseconds(),
	}))
	return res, nil
}

// tossPartyEchoes returns the case's mention names dropped for matching
// a party or counsel. Only single-case names are candidates: a name on
// many cases is no party.
func (r *Runner) tossPartyEchoes(ctx context.Context, key caseKey,
	usage map[string]int, courtCounts map[string]int, caseParties []string) map[string]bool {

	if len(caseParties) == 0 {
		return nil
	}
	tossed := make(map[string]bool)
	for name := range usage {
		if courtCounts[name] != 1 {
			continue
		}
		for _, party := range caseParties {
			score := fuzz.Ratio(name, party)
			if score <= r.opts.TossThreshold {
				continue
			}
			tossed[name] = true
			delete(usage, name)
			r.record(ctx, audit.NewTossEvent(r.opts.RunID, audit.TossData{
				Name:           name,
				MatchedAgainst: party,
				Kind:           "party_or_counsel",
				Score:          score,
			}))
			break
		}
	}
	if len(tossed) == 0 {
		return nil
	}
	return tossed
}
