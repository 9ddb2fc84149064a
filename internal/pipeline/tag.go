package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/names"
	"github.com/scales-okn/jed/internal/node"
	"github.com/scales-okn/jed/internal/strategies"
	"github.com/scales-okn/jed/internal/types"
)

// tagLadder is the probe order for matching a resolved name against
// catalog entities. Stricter than the free ladder: tagging never mints
// IDs, so a miss is always recoverable by a later full run.
func tagLadder() []strategies.Matcher {
	return []strategies.Matcher{
		strategies.Exact{},
		strategies.TiT{Key: names.AbbrevKey{}, Pool: names.PoolPlain},
		strategies.TiT{Key: names.AbbrevKey{Middle: true}, Pool: names.PoolPlain},
		strategies.TiT{Key: names.AbbrevKey{}, Pool: names.PoolNicknames},
		strategies.Fuzzy{Threshold: 95, MultiTokenOnly: true},
	}
}

// Tag resolves mentions from new cases against an existing catalog. The
// case-phase sweep and party tossing run as usual, then each surviving
// parent is probed against the catalog entities. No new entity IDs are
// assigned: a parent matching exactly one entity takes its ID, several
// equally matched entities yield the ambiguous sentinel, and no match
// yields the inconclusive sentinel.
func (r *Runner) Tag(ctx context.Context, mentions []*types.Mention,
	parties, counsels []HeaderEntity, catalog []types.CatalogEntry) (*Result, error) {

	if len(mentions) == 0 {
		return nil, fmt.Errorf("no mentions to tag")
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("no catalog entities to tag against")
	}
	start := time.Now()
	prepareMentions(mentions)

	casePhase, err := r.runCasePhase(ctx, mentions, parties, counsels)
	if err != nil {
		return nil, fmt.Errorf("case phase: %w", err)
	}

	entities := node.New(node.ScopeFree, r.opts.RunID, r.rec)
	for i := range catalog {
		e := &catalog[i]
		n := entities.Add(e.Name)
		n.EntityID = e.EntityID
		n.IsFJC = e.IsFJC
		n.FJCID = e.FJCID
		n.IsRegistry = e.IsRegistry
		n.RegistryID = e.RegistryID
	}

	r.record(ctx, audit.NewPhaseStartedEvent(r.opts.RunID, audit.PhaseLabel, audit.PhaseData{
		Pools:   1,
		NodesIn: len(mentions),
	}))

	probes := node.New(node.ScopeFree, r.opts.RunID, nil)
	type probeResult struct {
		entityID   string
		candidates []string
	}
	cache := make(map[string]probeResult)
	probe := func(name string) probeResult {
		if res, ok := cache[name]; ok {
			return res
		}
		pn := probes.Add(name)
		res := probeResult{entityID: types.EntityInconclusive}
		for _, matcher := range tagLadder() {
			var matched []string
			seen := make(map[string]bool)
			for _, en := range entities.Nodes() {
				if matcher.Match(pn, en) && !seen[en.EntityID] {
					seen[en.EntityID] = true
					matched = append(matched, en.EntityID)
				}
			}
			if len(matched) == 1 {
				res.entityID = matched[0]
				break
			}
			if len(matched) > 1 {
				res.entityID = types.EntityAmbiguous
				res.candidates = matched
				break
			}
		}
		cache[name] = res
		return res
	}

	kept := make([]*types.Mention, 0, len(mentions))
	tagged := 0
	for _, m := range mentions {
		key := caseKey{court: m.Court, caseID: m.CaseID}
		if casePhase.tossedNames[key][m.CleanedName] {
			continue
		}
		if m.EntityID != types.EntityInconclusive {
			parent, ok := casePhase.parents[key][m.CleanedName]
			if !ok {
				parent = m.CleanedName
			}
			m.ParentName = parent
			res := probe(parent)
			m.EntityID = res.entityID
			m.AmbiguousEntityIDs = res.candidates
			if res.entityID != types.EntityInconclusive && res.entityID != types.EntityAmbiguous {
				tagged++
			}
		}
		if m.EntityID == types.EntityInconclusive && m.Category == types.CategoryNoKeywords {
			continue
		}
		kept = append(kept, m)
	}

	r.record(ctx, audit.NewPhaseCompletedEvent(r.opts.RunID, audit.PhaseLabel, audit.PhaseData{
		Pools:      1,
		NodesIn:    len(mentions),
		NodesOut:   tagged,
		Merges:     casePhase.merges,
		DurationMs: time.Since(start).Milliseconds(),
	}))

	return &Result{
		Mentions: kept,
		Catalog:  catalog,
		Tossed:   casePhase.tossed,
		Merges:   casePhase.merges,
	}, nil
}
