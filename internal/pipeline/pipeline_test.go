package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/types"
)

func mention(court, caseID, name string, cat types.PrefixCategory, source string) *types.Mention {
	return &types.Mention{
		Court:        court,
		CaseID:       caseID,
		CleanedName:  name,
		Category:     cat,
		DocketSource: source,
	}
}

func testRunner(t *testing.T, opts Options) (*Runner, *audit.MemoryRecorder) {
	t.Helper()
	rec := audit.NewMemoryRecorder()
	opts.RunID = "test-run"
	opts.Concurrency = 1
	return NewRunner(opts, rec), rec
}

func entityIDs(ms []*types.Mention) map[string]string {
	out := make(map[string]string, len(ms))
	for _, m := range ms {
		out[m.CleanedName] = m.EntityID
	}
	return out
}

func TestRunResolvesAcrossAllPhases(t *testing.T) {
	caseA := "ilnd;;1:16-cv-01000"
	caseB := "ilnd;;1:17-cv-02000"
	caseC := "ilnd;;1:18-cv-03000"

	mentions := []*types.Mention{
		mention("ilnd", caseA, "virginia m kendall", types.CategoryDistrictJudge, "case_header"),
		mention("ilnd", caseA, "virginia m kendal", types.CategoryNondescriptJudge, "line_entry"),
		mention("ilnd", caseA, "acme corp", types.CategoryNoKeywords, "line_entry"),
		mention("ilnd", caseB, "virginia m kendall", types.CategoryDistrictJudge, "line_entry"),
		mention("ilnd", caseB, "smith", types.CategoryJudicialActor, "line_entry"),
		mention("ilnd", caseC, "virginia m kendall", types.CategoryAssignedJudge, "case_header"),
		mention("ilnd", caseC, "john a smith", types.CategoryDistrictJudge, "line_entry"),
		mention("ilnd", caseC, "j", types.CategoryDistrictJudge, "line_entry"),
	}
	parties := []HeaderEntity{
		{CaseID: caseA, Role: "party", Name: "Acme Corp"},
	}
	fjc := []types.FJCJudge{
		{NID: "1111111", NameForms: []string{"virginia m kendall"}, Courts: []string{"ilnd"}},
		{NID: "2222222", NameForms: []string{"john andrew smith"}, Courts: []string{"ilnd"}},
		{NID: "3333333", NameForms: []string{"john albert smith"}, Courts: []string{"ilnd"}},
	}

	r, rec := testRunner(t, Options{TossThreshold: 95})
	result, err := r.Run(context.Background(), mentions, parties, nil, fjc, nil)
	require.NoError(t, err)

	// the party echo is tossed, everything else survives to the output
	assert.Equal(t, 1, result.Tossed)
	require.Len(t, result.Mentions, 7)
	for _, m := range result.Mentions {
		assert.NotEqual(t, "acme corp", m.CleanedName)
	}

	// typo merged within the case, mention name merged into the codebook
	// seed at court scope
	assert.Equal(t, 2, result.Merges)

	ids := entityIDs(result.Mentions)

	// all kendall variants land on the codebook judge
	assert.Equal(t, "SJ000000", ids["virginia m kendall"])
	assert.Equal(t, "SJ000000", ids["virginia m kendal"])

	// thin single-token evidence never enters the court arena
	assert.Equal(t, types.EntityInconclusive, ids["smith"])

	// one-character scraps are dropped before any sweep
	assert.Equal(t, types.EntityInconclusive, ids["j"])

	// the vague smith matches two distinct codebook judges equally
	assert.Equal(t, types.EntityAmbiguous, ids["john a smith"])
	for _, m := range result.Mentions {
		if m.CleanedName != "john a smith" {
			continue
		}
		assert.Equal(t, "john a smith", m.ParentName)
		assert.ElementsMatch(t, []string{"SJ000001", "SJ000002"}, m.AmbiguousEntityIDs)
	}

	require.Len(t, result.Catalog, 3)
	byID := make(map[string]types.CatalogEntry, len(result.Catalog))
	for _, e := range result.Catalog {
		require.NoError(t, e.Validate())
		byID[e.EntityID] = e
	}
	kendall := byID["SJ000000"]
	assert.Equal(t, "virginia m kendall", kendall.Name)
	assert.Equal(t, "Virginia M Kendall", kendall.PresentableName)
	assert.Equal(t, "FJC Judge", kendall.Label)
	assert.True(t, kendall.IsFJC)
	assert.Equal(t, "1111111", kendall.FJCID)
	assert.Equal(t, 2, kendall.HeadCaseCount)
	assert.Equal(t, 3, kendall.TotalCaseCount)

	assert.Equal(t, "john andrew smith", byID["SJ000001"].Name)
	assert.Equal(t, "john albert smith", byID["SJ000002"].Name)

	// the two identically keyed codebook judges must have refused each other
	refusals, err := rec.GetEvents(context.Background(), audit.Filter{Type: audit.EventTypeMergeRefused})
	require.NoError(t, err)
	assert.NotEmpty(t, refusals)

	tosses, err := rec.GetEvents(context.Background(), audit.Filter{Type: audit.EventTypeMentionTossed})
	require.NoError(t, err)
	require.Len(t, tosses, 1)
}

func TestRunDormancyBlocksFreeMerge(t *testing.T) {
	caseIDs := []string{
		"mdd;;1:16-cv-00100",
		"mdd;;1:16-cv-00200",
		"mdd;;1:17-cv-00300",
		"mdd;;1:18-cv-00400",
	}

	buildMentions := func() []*types.Mention {
		var out []*types.Mention
		for _, id := range caseIDs {
			out = append(out, mention("mdd", id, "harold h greene", types.CategoryDistrictJudge, "line_entry"))
		}
		return out
	}
	// no court in the codebook, so the seed joins at free scope
	buildFJC := func(terminated time.Time) []types.FJCJudge {
		return []types.FJCJudge{{
			NID:               "4444444",
			NameForms:         []string{"harold h greene"},
			LatestTermination: terminated,
			Terminated:        true,
		}}
	}
	cutoff := time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("terminated before cutoff sits out", func(t *testing.T) {
		r, rec := testRunner(t, Options{DormancyCutoff: cutoff})
		result, err := r.Run(context.Background(), buildMentions(), nil, nil,
			buildFJC(time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)), nil)
		require.NoError(t, err)

		// the mention pool keeps its own entity instead of the dead judge
		assert.Equal(t, 0, result.Merges)
		require.Len(t, result.Catalog, 1)
		entry := result.Catalog[0]
		assert.False(t, entry.IsFJC)
		assert.Equal(t, "District_Judge", entry.Label)
		assert.Equal(t, "SJ000000", entry.EntityID)

		dormant, err := rec.GetEvents(context.Background(), audit.Filter{Type: audit.EventTypeDormantSetAside})
		require.NoError(t, err)
		require.Len(t, dormant, 1)
	})

	t.Run("terminated after cutoff still matches", func(t *testing.T) {
		r, _ := testRunner(t, Options{DormancyCutoff: cutoff})
		result, err := r.Run(context.Background(), buildMentions(), nil, nil,
			buildFJC(time.Date(2000, 3, 1, 0, 0, 0, 0, time.UTC)), nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Merges)
		require.Len(t, result.Catalog, 1)
		entry := result.Catalog[0]
		assert.True(t, entry.IsFJC)
		assert.Equal(t, "4444444", entry.FJCID)
		assert.Equal(t, "FJC Judge", entry.Label)
		for _, m := range result.Mentions {
			assert.Equal(t, "SJ000000", m.EntityID)
		}
	})
}

func TestRunRejectsEmptyInput(t *testing.T) {
	r, _ := testRunner(t, Options{})
	_, err := r.Run(context.Background(), nil, nil, nil, nil, nil)
	require.Error(t, err)
}

func TestRunInconclusiveNoKeywordsDropped(t *testing.T) {
	caseA := "ilnd;;1:16-cv-01000"
	mentions := []*types.Mention{
		mention("ilnd", caseA, "scattered scraps llc", types.CategoryDistrictJudge, "line_entry"),
		mention("ilnd", caseA, "lee", types.CategoryNoKeywords, "line_entry"),
	}
	r, _ := testRunner(t, Options{})
	result, err := r.Run(context.Background(), mentions, nil, nil, nil, nil)
	require.NoError(t, err)

	// the lone never-judge-like surname is filtered from the output set
	require.Len(t, result.Mentions, 1)
	assert.Equal(t, "scattered scraps llc", result.Mentions[0].CleanedName)
}
