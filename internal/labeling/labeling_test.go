package labeling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/types"
)

func TestLabelGroundTruthShortCircuits(t *testing.T) {
	fjc := Label(Evidence{Name: "john paul stevens", IsFJC: true, FJCID: "100"})
	assert.Equal(t, LabelFJC, fjc.Label)
	assert.False(t, fjc.Denied)

	reg := Label(Evidence{Name: "paul o'grady", IsRegistry: true, RegistryID: "M002", TotalCases: 1})
	assert.Equal(t, LabelRegistry, reg.Label)
}

func TestLabelDenials(t *testing.T) {
	tests := []struct {
		name string
		ev   Evidence
	}{
		{
			name: "single token",
			ev: Evidence{Name: "stevens", TotalCases: 100,
				Prefixes: map[types.PrefixCategory]int{types.CategoryDistrictJudge: 100}},
		},
		{
			name: "low occurrence",
			ev: Evidence{Name: "john stevens", TotalCases: 3,
				Prefixes: map[types.PrefixCategory]int{types.CategoryDistrictJudge: 3}},
		},
		{
			name: "never judge-like",
			ev: Evidence{Name: "john stevens", TotalCases: 40,
				Prefixes: map[types.PrefixCategory]int{types.CategoryNoKeywords: 40}},
		},
		{
			name: "mostly no keywords",
			ev: Evidence{Name: "john stevens", TotalCases: 100,
				Prefixes: map[types.PrefixCategory]int{
					types.CategoryNoKeywords:      92,
					types.CategoryDistrictJudge:   4,
					types.CategoryMagistrateJudge: 4,
				}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Label(tt.ev)
			assert.True(t, d.Denied, "label %q", d.Label)
			assert.NotEmpty(t, d.Reason)
		})
	}
}

func TestLabelFamilies(t *testing.T) {
	tests := []struct {
		name string
		ev   Evidence
		want string
	}{
		{
			name: "unanimous magistrate",
			ev: Evidence{Name: "john stevens", TotalCases: 10,
				Prefixes: map[types.PrefixCategory]int{types.CategoryMagistrateJudge: 10}},
			want: LabelMagistrate,
		},
		{
			name: "magistrate with nondescript noise",
			ev: Evidence{Name: "john stevens", TotalCases: 10,
				Prefixes: map[types.PrefixCategory]int{
					types.CategoryMagistrateJudge:  4,
					types.CategoryNondescriptJudge: 5,
					types.CategoryNoKeywords:       1,
				}},
			want: LabelMagistrate,
		},
		{
			name: "district majority",
			ev: Evidence{Name: "john stevens", TotalCases: 12,
				Prefixes: map[types.PrefixCategory]int{
					types.CategoryDistrictJudge:   7,
					types.CategoryMagistrateJudge: 2,
					types.CategoryNoKeywords:      3,
				}},
			want: LabelDistrict,
		},
		{
			name: "exclusive bankruptcy quarter",
			ev: Evidence{Name: "john stevens", TotalCases: 20,
				Prefixes: map[types.PrefixCategory]int{
					types.CategoryBankruptcyJudge: 6,
					types.CategoryDistrictJudge:   2,
					types.CategoryMagistrateJudge: 2,
					types.CategoryNoKeywords:      10,
				}},
			want: LabelBankruptcy,
		},
		{
			name: "weak district signal with header",
			ev: Evidence{Name: "john stevens", TotalCases: 30, HeadCases: 2,
				Prefixes: map[types.PrefixCategory]int{
					types.CategoryDistrictJudge:   3,
					types.CategoryMagistrateJudge: 5,
					types.CategoryBankruptcyJudge: 5,
					types.CategoryNoKeywords:      17,
				}},
			want: LabelDistrict,
		},
		{
			name: "assigned header recodes to nondescript",
			ev: Evidence{Name: "john stevens", TotalCases: 10, HeadCases: 10,
				Prefixes: map[types.PrefixCategory]int{
					types.CategoryAssignedJudge: 6,
					types.CategoryReferredJudge: 4,
				}},
			want: LabelNondescript,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Label(tt.ev)
			require.False(t, d.Denied, "denied: %s", d.Reason)
			assert.Equal(t, tt.want, d.Label)
		})
	}
}

func TestLabelNondescriptDominantRunnerUp(t *testing.T) {
	d := Label(Evidence{Name: "john stevens", TotalCases: 40, HeadCases: 0,
		Prefixes: map[types.PrefixCategory]int{
			types.CategoryNondescriptJudge: 30,
			types.CategoryCircuitAppeals:   6,
			types.CategoryNoKeywords:       4,
		}})
	require.False(t, d.Denied)
	assert.Equal(t, string(types.CategoryCircuitAppeals), d.Label)
}

func TestPrettyName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"john paul stevens", "John Paul Stevens"},
		{"william horsley orrick iii", "William Horsley Orrick III"},
		{"fred biery jr", "Fred Biery Jr"},
		{"paul o'grady", "Paul O'grady"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PrettyName(tt.in))
	}
}

func TestBuildCatalogAssignsMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	rec := audit.NewMemoryRecorder()
	evidence := []Evidence{
		{Name: "john paul stevens", NodeID: 1, IsFJC: true, FJCID: "100"},
		{Name: "stevens", NodeID: 2, TotalCases: 50,
			Prefixes: map[types.PrefixCategory]int{types.CategoryDistrictJudge: 50}},
		{Name: "ruth ann smith", NodeID: 3, TotalCases: 20,
			Prefixes: map[types.PrefixCategory]int{types.CategoryMagistrateJudge: 20}},
	}

	catalog, ids := BuildCatalog(ctx, "run-1", evidence, rec)
	require.Len(t, catalog, 2)

	assert.Equal(t, "SJ000000", catalog[0].EntityID)
	assert.Equal(t, "SJ000001", catalog[1].EntityID)
	assert.Equal(t, LabelFJC, catalog[0].Label)
	assert.Equal(t, "John Paul Stevens", catalog[0].PresentableName)

	assert.Equal(t, "SJ000000", ids[1])
	assert.Equal(t, types.EntityInconclusive, ids[2])
	assert.Equal(t, "SJ000001", ids[3])

	for _, entry := range catalog {
		assert.NoError(t, entry.Validate())
	}

	events, err := rec.GetEvents(ctx, audit.Filter{Type: audit.EventTypeLabelDecision})
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func mention(caseID, name, parent, entityID string) *types.Mention {
	return &types.Mention{
		CaseID:      caseID,
		Court:       "ilnd",
		CleanedName: name,
		ParentName:  parent,
		EntityID:    entityID,
	}
}

func TestFinalCleanupAbsorbsLoneSurname(t *testing.T) {
	mentions := []*types.Mention{
		mention("ilnd;;1:16-cv-00001", "john paul stevens", "john paul stevens", "SJ000000"),
		mention("ilnd;;1:16-cv-00001", "stevens", "stevens", types.EntityInconclusive),
		mention("ilnd;;1:16-cv-00002", "stevens", "stevens", types.EntityInconclusive),
	}

	changed := FinalCleanup(mentions)
	assert.Equal(t, 1, changed)

	assert.Equal(t, "SJ000000", mentions[1].EntityID)
	assert.Equal(t, "john paul stevens", mentions[1].ParentName)
	// no cataloged entity shares the second case, so nothing changes there
	assert.Equal(t, types.EntityInconclusive, mentions[2].EntityID)
}

func TestFinalCleanupRefusesMultipleCandidates(t *testing.T) {
	mentions := []*types.Mention{
		mention("ilnd;;1:16-cv-00003", "john stevens", "john stevens", "SJ000000"),
		mention("ilnd;;1:16-cv-00003", "mary stevens", "mary stevens", "SJ000001"),
		mention("ilnd;;1:16-cv-00003", "stevens", "stevens", types.EntityInconclusive),
	}

	changed := FinalCleanup(mentions)
	assert.Zero(t, changed)
	assert.Equal(t, types.EntityInconclusive, mentions[2].EntityID)
}
