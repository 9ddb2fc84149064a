// Package labeling turns resolved entities into catalog rows: it guesses
// a role label from prefix-category evidence, assigns stable entity IDs,
// and runs the final per-case crosscheck for stragglers.
package labeling

import (
	"context"
	"fmt"
	"strings"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/names"
	"github.com/scales-okn/jed/internal/types"
)

// Role labels the decision tree can produce.
const (
	LabelFJC         = "FJC Judge"
	LabelRegistry    = "BA-MAG Judge"
	LabelDistrict    = "District_Judge"
	LabelMagistrate  = "Magistrate_Judge"
	LabelBankruptcy  = "Bankruptcy_Judge"
	LabelCircuit     = "Circuit_Appeals"
	LabelNondescript = "Nondescript_Judge"
	LabelActor       = "Judicial_Actor"
)

// Evidence is everything the labeler knows about one resolved entity.
type Evidence struct {
	Name       string
	NodeID     int
	IsFJC      bool
	FJCID      string
	IsRegistry bool
	RegistryID string
	// Prefixes counts distinct cases per prefix category. Assigned and
	// referred header categories must be recoded before counting.
	Prefixes map[types.PrefixCategory]int
	// HeadCases counts distinct cases with non-line-entry appearances.
	HeadCases int
	// TotalCases counts distinct cases overall.
	TotalCases int
}

// Decision is the labeler's verdict on one entity.
type Decision struct {
	Label  string
	Denied bool
	// Reason explains a denial.
	Reason string
}

// Recode folds the header-assignment categories into the nondescript
// bucket; they signal "is a judge" without saying which kind.
func Recode(c types.PrefixCategory) types.PrefixCategory {
	if c == types.CategoryAssignedJudge || c == types.CategoryReferredJudge {
		return types.CategoryNondescriptJudge
	}
	return c
}

// proportions converts prefix counts to percentages and computes the
// share of appearances with judge-like pretext.
func proportions(prefixes map[types.PrefixCategory]int) (map[types.PrefixCategory]float64, float64) {
	total := 0
	for _, v := range prefixes {
		total += v
	}
	props := map[types.PrefixCategory]float64{
		types.CategoryBankruptcyJudge:  0,
		types.CategoryCircuitAppeals:   0,
		types.CategoryDistrictJudge:    0,
		types.CategoryMagistrateJudge:  0,
		types.CategoryNondescriptJudge: 0,
		types.CategoryJudicialActor:    0,
		types.CategoryNoKeywords:       0,
	}
	if total == 0 {
		return props, 0
	}
	judgey := 0.0
	for k, v := range prefixes {
		k = Recode(k)
		props[k] += 100 * float64(v) / float64(total)
		if k.Judgey() {
			judgey += 100 * float64(v) / float64(total)
		}
	}
	return props, judgey
}

// Label runs the decision tree. Rules fire in priority order and the
// first hit wins.
func Label(ev Evidence) Decision {
	if ev.IsFJC {
		return Decision{Label: LabelFJC}
	}
	if ev.IsRegistry {
		return Decision{Label: LabelRegistry}
	}

	forms := names.Build(ev.Name)
	if forms.TokenCount() <= 1 {
		return Decision{Denied: true, Reason: "single token name"}
	}

	if ev.TotalCases <= 3 {
		return Decision{Denied: true, Reason: "low occurrence"}
	}

	props, judgey := proportions(ev.Prefixes)

	if props[types.CategoryNoKeywords] == 100 {
		return Decision{Denied: true, Reason: "never judge-like pretext"}
	}

	// unanimous category
	for cat, p := range props {
		if p != 100 {
			continue
		}
		switch cat {
		case types.CategoryJudicialActor:
			if ev.TotalCases <= 3 && ev.HeadCases == 0 {
				return Decision{Denied: true, Reason: "judicial actor with thin evidence"}
			}
		case types.CategoryNondescriptJudge:
			if ev.TotalCases <= 3 && ev.HeadCases == 0 {
				return Decision{Denied: true, Reason: "nondescript with thin evidence"}
			}
		}
		return Decision{Label: string(cat)}
	}

	// family rules: the only specific category present decides
	if onlyFamily(props, types.CategoryMagistrateJudge) {
		return Decision{Label: LabelMagistrate}
	}
	if onlyFamily(props, types.CategoryDistrictJudge) && ev.TotalCases > 3 {
		return Decision{Label: LabelDistrict}
	}
	if onlyFamily(props, types.CategoryBankruptcyJudge) {
		return Decision{Label: LabelBankruptcy}
	}

	// outright majorities
	if props[types.CategoryMagistrateJudge] >= 50 {
		return Decision{Label: LabelMagistrate}
	}
	if props[types.CategoryDistrictJudge] >= 50 && ev.TotalCases > 3 {
		return Decision{Label: LabelDistrict}
	}
	if props[types.CategoryBankruptcyJudge] >= 50 {
		return Decision{Label: LabelBankruptcy}
	}

	// exclusive quarter-share
	mag := props[types.CategoryMagistrateJudge] >= 25
	dis := props[types.CategoryDistrictJudge] >= 25
	ban := props[types.CategoryBankruptcyJudge] >= 25
	switch {
	case mag && !dis && !ban:
		return Decision{Label: LabelMagistrate}
	case dis && !mag && !ban && ev.TotalCases > 3:
		return Decision{Label: LabelDistrict}
	case ban && !mag && !dis:
		return Decision{Label: LabelBankruptcy}
	}

	// weak signals corroborated by header appearances
	if ev.HeadCases > 0 {
		if props[types.CategoryDistrictJudge] > 5 {
			return Decision{Label: LabelDistrict}
		}
		if props[types.CategoryMagistrateJudge] > 5 {
			return Decision{Label: LabelMagistrate}
		}
		if props[types.CategoryBankruptcyJudge] > 5 {
			return Decision{Label: LabelBankruptcy}
		}
	}

	// heavy nondescript presence with a runner-up category
	if ev.TotalCases >= 25 && maxCategory(props) == types.CategoryNondescriptJudge {
		if ev.HeadCases >= 10 && props[types.CategoryDistrictJudge] > 5 {
			return Decision{Label: LabelDistrict}
		}
		if ev.HeadCases >= 10 && props[types.CategoryMagistrateJudge] > 5 {
			return Decision{Label: LabelMagistrate}
		}
		runnerUp := maxCategoryExcept(props, types.CategoryNondescriptJudge)
		if props[runnerUp] > 10 {
			return Decision{Label: string(runnerUp)}
		}
		return Decision{Label: LabelNondescript}
	}

	if maxCategory(props) == types.CategoryNoKeywords && props[types.CategoryNoKeywords] >= 90 {
		return Decision{Denied: true, Reason: "insufficient pretext data"}
	}
	if props[types.CategoryNoKeywords]+props[types.CategoryJudicialActor] > 60 {
		return Decision{Denied: true, Reason: "likely clerk or attorney"}
	}
	if judgey > 50 && ev.TotalCases >= 10 {
		return Decision{Label: LabelNondescript}
	}

	return Decision{Label: LabelNondescript}
}

// onlyFamily reports whether the given specific category is the only one
// present beyond nondescript, no-keyword, and actor noise.
func onlyFamily(props map[types.PrefixCategory]float64, family types.PrefixCategory) bool {
	for cat, p := range props {
		if p <= 0 {
			continue
		}
		switch cat {
		case family, types.CategoryNondescriptJudge, types.CategoryNoKeywords, types.CategoryJudicialActor:
		default:
			return false
		}
	}
	return props[family] > 0
}

func maxCategory(props map[types.PrefixCategory]float64) types.PrefixCategory {
	return maxCategoryExcept(props, "")
}

func maxCategoryExcept(props map[types.PrefixCategory]float64, skip types.PrefixCategory) types.PrefixCategory {
	var best types.PrefixCategory
	bestVal := -1.0
	// iterate the fixed list so ties break deterministically
	for _, cat := range []types.PrefixCategory{
		types.CategoryBankruptcyJudge, types.CategoryCircuitAppeals,
		types.CategoryDistrictJudge, types.CategoryMagistrateJudge,
		types.CategoryNondescriptJudge, types.CategoryJudicialActor,
		types.CategoryNoKeywords,
	} {
		if cat == skip {
			continue
		}
		if props[cat] > bestVal {
			best, bestVal = cat, props[cat]
		}
	}
	return best
}

// PrettyName renders a lowercase entity name for display: tokens
// capitalized, roman-numeral suffixes fully uppercased.
func PrettyName(name string) string {
	toks := strings.Fields(name)
	if len(toks) == 0 {
		return ""
	}
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = strings.ToUpper(tok[:1]) + tok[1:]
	}
	last := toks[len(toks)-1]
	if names.IsSuffix(last) && strings.HasPrefix(last, "i") {
		out[len(out)-1] = strings.ToUpper(last)
	}
	return strings.Join(out, " ")
}

// BuildCatalog labels every entity, assigns stable IDs to the kept ones
// in first-encountered order, and returns the catalog alongside the
// per-node decision map. Denied entities map to the inconclusive
// sentinel.
func BuildCatalog(ctx context.Context, runID string, evidence []Evidence, rec audit.Recorder) ([]types.CatalogEntry, map[int]string) {
	var catalog []types.CatalogEntry
	ids := make(map[int]string, len(evidence))
	serial := 0

	for _, ev := range evidence {
		decision := Label(ev)
		if decision.Denied {
			ids[ev.NodeID] = types.EntityInconclusive
			if rec != nil {
				rec.Record(ctx, audit.NewLabelDecisionEvent(runID, audit.LabelDecisionData{
					Name:   ev.Name,
					Label:  decision.Reason,
					Denied: true,
				}))
			}
			continue
		}
		entityID := fmt.Sprintf(types.EntityIDFormat, serial)
		serial++
		ids[ev.NodeID] = entityID
		if rec != nil {
			rec.Record(ctx, audit.NewLabelDecisionEvent(runID, audit.LabelDecisionData{
				Name:     ev.Name,
				Label:    decision.Label,
				EntityID: entityID,
			}))
		}
		catalog = append(catalog, types.CatalogEntry{
			Name:            ev.Name,
			PresentableName: PrettyName(ev.Name),
			EntityID:        entityID,
			Label:           decision.Label,
			HeadCaseCount:   ev.HeadCases,
			TotalCaseCount:  ev.TotalCases,
			IsFJC:           ev.IsFJC,
			IsRegistry:      ev.IsRegistry,
			FJCID:           ev.FJCID,
			RegistryID:      ev.RegistryID,
		})
	}
	return catalog, ids
}
