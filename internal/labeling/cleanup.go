package labeling

import (
	"sort"
	"strings"

	"github.com/scales-okn/jed/internal/fuzz"
	"github.com/scales-okn/jed/internal/types"
)

// caseEntity is one distinct (parent, original) pair on a case.
type caseEntity struct {
	parent   string
	original string
	entityID string
}

// FinalCleanup re-examines inconclusive mentions case by case: when an
// inconclusive mention strongly resembles exactly one cataloged entity
// appearing on the same case, and its name sits inside that entity's
// name, the mention is absorbed. This mops up lone surnames that the
// court-agnostic sweep could not safely claim. Returns the number of
// mentions updated.
func FinalCleanup(mentions []*types.Mention) int {
	type caseSet struct {
		good         []caseEntity
		inconclusive []caseEntity
	}
	byCase := make(map[string]*caseSet)
	var caseOrder []string

	seen := make(map[string]bool)
	for _, m := range mentions {
		key := m.CaseID + "\x00" + m.ParentName + "\x00" + m.CleanedName
		if seen[key] {
			continue
		}
		seen[key] = true

		cs := byCase[m.CaseID]
		if cs == nil {
			cs = &caseSet{}
			byCase[m.CaseID] = cs
			caseOrder = append(caseOrder, m.CaseID)
		}
		ent := caseEntity{parent: m.ParentName, original: m.CleanedName, entityID: m.EntityID}
		if m.EntityID == types.EntityInconclusive {
			cs.inconclusive = append(cs.inconclusive, ent)
		} else if m.EntityID != types.EntityAmbiguous && m.EntityID != "" {
			cs.good = append(cs.good, ent)
		}
	}
	sort.Strings(caseOrder)

	type rewrite struct{ parent, entityID string }
	updates := make(map[string]rewrite)

	for _, caseID := range caseOrder {
		cs := byCase[caseID]
		if len(cs.inconclusive) == 0 || len(cs.good) == 0 {
			continue
		}
		for _, bad := range cs.inconclusive {
			var matched []caseEntity
			for _, good := range cs.good {
				if fuzz.PartialRatio(bad.parent, good.parent) >= 90 ||
					fuzz.PartialRatio(bad.original, good.original) >= 90 {
					matched = append(matched, good)
				}
			}
			if len(matched) != 1 {
				continue
			}
			// the resemblance must be containment, and only one cataloged
			// entity on the case may contain the name
			containers := 0
			for _, good := range cs.good {
				if strings.Contains(good.parent, bad.parent) {
					containers++
				}
			}
			if containers != 1 || !strings.Contains(matched[0].parent, bad.parent) {
				continue
			}
			updates[caseID+"\x00"+bad.parent] = rewrite{
				parent:   matched[0].parent,
				entityID: matched[0].entityID,
			}
		}
	}

	changed := 0
	for _, m := range mentions {
		if m.EntityID != types.EntityInconclusive {
			continue
		}
		up, ok := updates[m.CaseID+"\x00"+m.ParentName]
		if !ok {
			continue
		}
		m.ParentName = up.parent
		m.EntityID = up.entityID
		m.AmbiguousEntityIDs = nil
		changed++
	}
	return changed
}
