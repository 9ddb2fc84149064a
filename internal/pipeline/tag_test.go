package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/types"
)

func testCatalog() []types.CatalogEntry {
	return []types.CatalogEntry{
		{Name: "virginia m kendall", EntityID: "SJ000000", Label: "FJC Judge", IsFJC: true, FJCID: "1111111"},
		{Name: "john andrew smith", EntityID: "SJ000001", Label: "District_Judge"},
		{Name: "john albert smith", EntityID: "SJ000002", Label: "District_Judge"},
	}
}

func TestTagMatchesAgainstCatalog(t *testing.T) {
	caseX := "ilnd;;1:19-cv-01000"
	caseY := "ilnd;;1:19-cv-02000"
	caseZ := "ilnd;;1:19-cv-03000"
	caseW := "ilnd;;1:19-cv-03500"

	mentions := []*types.Mention{
		mention("ilnd", caseX, "virginia m kendall", types.CategoryDistrictJudge, "case_header"),
		mention("ilnd", caseX, "acme corp", types.CategoryNoKeywords, "line_entry"),
		mention("ilnd", caseY, "virginia m kendal", types.CategoryDistrictJudge, "line_entry"),
		mention("ilnd", caseY, "john andrew smith", types.CategoryDistrictJudge, "line_entry"),
		mention("ilnd", caseY, "thurgood marshall", types.CategoryDistrictJudge, "line_entry"),
		mention("ilnd", caseY, "lee", types.CategoryNoKeywords, "line_entry"),
		mention("ilnd", caseZ, "john a smith", types.CategoryDistrictJudge, "line_entry"),
		mention("ilnd", caseW, "smith", types.CategoryJudicialActor, "line_entry"),
	}
	parties := []HeaderEntity{
		{CaseID: caseX, Role: "party", Name: "Acme Corp"},
	}

	r, rec := testRunner(t, Options{TossThreshold: 95})
	result, err := r.Tag(context.Background(), mentions, parties, nil, testCatalog())
	require.NoError(t, err)

	// the party echo is tossed and the unmatched no-keywords mention is
	// dropped outright
	assert.Equal(t, 1, result.Tossed)
	assert.Equal(t, 0, result.Merges)
	require.Len(t, result.Mentions, 6)

	ids := entityIDs(result.Mentions)
	assert.Equal(t, "SJ000000", ids["virginia m kendall"])
	assert.Equal(t, "SJ000000", ids["virginia m kendal"])
	assert.Equal(t, "SJ000001", ids["john andrew smith"])
	assert.Equal(t, types.EntityInconclusive, ids["thurgood marshall"])
	assert.Equal(t, types.EntityAmbiguous, ids["john a smith"])
	assert.Equal(t, types.EntityAmbiguous, ids["smith"])

	for _, m := range result.Mentions {
		switch m.CleanedName {
		case "john a smith", "smith":
			assert.ElementsMatch(t, []string{"SJ000001", "SJ000002"}, m.AmbiguousEntityIDs)
		default:
			assert.Empty(t, m.AmbiguousEntityIDs)
		}
	}

	// tagging never rewrites the catalog
	assert.Equal(t, testCatalog(), result.Catalog)

	events, err := rec.GetEvents(context.Background(), audit.Filter{
		Type:  audit.EventTypePhaseCompleted,
		Phase: audit.PhaseLabel,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestTagShortNameStaysInconclusive(t *testing.T) {
	mentions := []*types.Mention{
		mention("ilnd", "ilnd;;1:19-cv-04000", "j", types.CategoryDistrictJudge, "line_entry"),
	}
	r, _ := testRunner(t, Options{TossThreshold: 95})
	result, err := r.Tag(context.Background(), mentions, nil, nil, testCatalog())
	require.NoError(t, err)
	require.Len(t, result.Mentions, 1)
	assert.Equal(t, types.EntityInconclusive, result.Mentions[0].EntityID)
}

func TestTagRejectsEmptyInput(t *testing.T) {
	r, _ := testRunner(t, Options{})
	_, err := r.Tag(context.Background(), nil, nil, nil, testCatalog())
	assert.Error(t, err)

	ms := []*types.Mention{
		mention("ilnd", "ilnd;;1:19-cv-05000", "jane doe", types.CategoryDistrictJudge, "line_entry"),
	}
	_, err = r.Tag(context.Background(), ms, nil, nil, nil)
	assert.Error(t, err)
}
