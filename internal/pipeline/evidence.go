package pipeline

import (
	"context"

	"github.com/scales-okn/jed/internal/labeling"
	"github.com/scales-okn/jed/internal/node"
	"github.com/scales-okn/jed/internal/types"
)

// identity is one final resolved entity: the root node a mention chain
// ends at, in either a court arena or the free arena.
type identity struct {
	ordinal int
	node    *node.Node
	arena   *node.Arena
	// evidence accumulators
	prefixCases map[types.PrefixCategory]map[string]bool
	headCases   map[string]bool
	totalCases  map[string]bool
}

// resolution is one mention's walk through the phase chain.
type resolution struct {
	final *identity
	// ambiguous carries the candidate identities when the chain ended
	// at an ambiguity mark.
	ambiguous []*identity
	dropped   bool
}

// buildResult walks every mention to its final parent, aggregates
// labeling evidence per final entity, builds the catalog, and writes
// entity IDs back onto the mentions.
func (r *Runner) buildResult(ctx context.Context, mentions []*types.Mention,
	casePhase *casePhaseResult, courtPhase *courtPhaseResult,
	freePhase *freePhaseResult) (*Result, error) {

	identities := make(map[*node.Node]*identity)
	var ordered []*identity

	intern := func(n *node.Node, arena *node.Arena) *identity {
		if id := identities[n]; id != nil {
			return id
		}
		id := &identity{
			ordinal:     len(ordered),
			node:        n,
			arena:       arena,
			prefixCases: make(map[types.PrefixCategory]map[string]bool),
			headCases:   make(map[string]bool),
			totalCases:  make(map[string]bool),
		}
		identities[n] = id
		ordered = append(ordered, id)
		return id
	}

	// finalNode walks a court-arena node to its ultimate root, crossing
	// into the free arena when the court root advanced there.
	finalNode := func(court string, courtNodeID int) (*node.Node, *node.Arena) {
		courtArena := courtPhase.arenas[court]
		root := courtArena.Root(courtNodeID)
		if fid, ok := freePhase.entry[freeKey{court: court, nodeID: root.ID}]; ok {
			return freePhase.arena.Root(fid), freePhase.arena
		}
		return root, courtArena
	}

	resolutions := make([]resolution, len(mentions))
	for i, m := range mentions {
		key := caseKey{court: m.Court, caseID: m.CaseID}
		if casePhase.tossedNames[key][m.CleanedName] {
			resolutions[i] = resolution{dropped: true}
			continue
		}
		if m.EntityID == types.EntityInconclusive {
			continue
		}
		parent, ok := casePhase.parents[key][m.CleanedName]
		if !ok {
			parent = m.CleanedName
		}
		if courtPhase.ignored[m.Court][parent] {
			m.ParentName = parent
			continue
		}
		courtID, ok := courtPhase.entry[m.Court][parent]
		if !ok {
			m.ParentName = parent
			continue
		}

		fin, arena := finalNode(m.Court, courtID)
		id := intern(fin, arena)
		res := resolution{final: id}

		if fin.State == node.StateAmbiguous {
			for _, cid := range fin.PossibleMatches {
				cand := arena.Root(cid)
				var candID *identity
				if arena == freePhase.arena {
					candID = intern(cand, arena)
				} else {
					cn, ca := finalNode(m.Court, cand.ID)
					candID = intern(cn, ca)
				}
				res.ambiguous = append(res.ambiguous, candID)
			}
		} else if fin.Eligible() {
			cat := labeling.Recode(m.Category)
			if id.prefixCases[cat] == nil {
				id.prefixCases[cat] = make(map[string]bool)
			}
			id.prefixCases[cat][m.CaseID] = true
			if m.IsHeader() {
				id.headCases[m.CaseID] = true
			}
			id.totalCases[m.CaseID] = true
		}
		resolutions[i] = res
	}

	// build labeling evidence in first-encountered order
	evidence := make([]labeling.Evidence, 0, len(ordered))
	for _, id := range ordered {
		if !id.node.Eligible() {
			continue
		}
		prefixes := make(map[types.PrefixCategory]int, len(id.prefixCases))
		for cat, cases := range id.prefixCases {
			prefixes[cat] = len(cases)
		}
		evidence = append(evidence, labeling.Evidence{
			Name:       id.node.Name,
			NodeID:     id.ordinal,
			IsFJC:      id.node.IsFJC,
			FJCID:      id.node.FJCID,
			IsRegistry: id.node.IsRegistry,
			RegistryID: id.node.RegistryID,
			Prefixes:   prefixes,
			HeadCases:  len(id.headCases),
			TotalCases: len(id.totalCases),
		})
	}

	catalog, assigned := labeling.BuildCatalog(ctx, r.opts.RunID, evidence, r.rec)

	entityID := func(id *identity) string {
		if sjid, ok := assigned[id.ordinal]; ok {
			return sjid
		}
		return types.EntityInconclusive
	}

	// write IDs back onto the mentions
	for i, m := range mentions {
		res := resolutions[i]
		if res.dropped || m.EntityID == types.EntityInconclusive {
			continue
		}
		if res.final == nil {
			m.EntityID = types.EntityInconclusive
			continue
		}
		m.ParentName = res.final.node.Name
		if len(res.ambiguous) > 0 {
			var candidates []string
			seen := make(map[string]bool)
			for _, cand := range res.ambiguous {
				sjid := entityID(cand)
				if sjid == types.EntityInconclusive || seen[sjid] {
					continue
				}
				seen[sjid] = true
				candidates = append(candidates, sjid)
			}
			if len(candidates) > 0 {
				m.EntityID = types.EntityAmbiguous
				m.AmbiguousEntityIDs = candidates
			} else {
				m.EntityID = types.EntityInconclusive
			}
			continue
		}
		m.EntityID = entityID(res.final)
	}

	labeling.FinalCleanup(mentions)

	// drop tossed echoes and inconclusive never-judge-like rows from the
	// output set
	kept := make([]*types.Mention, 0, len(mentions))
	for i, m := range mentions {
		if resolutions[i].dropped {
			continue
		}
		if m.EntityID == types.EntityInconclusive && m.Category == types.CategoryNoKeywords {
			continue
		}
		kept = append(kept, m)
	}

	return &Result{Mentions: kept, Catalog: catalog}, nil
}
