package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/types"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "jed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSchemaVersionStamp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	v, err := s.GetConfig(ctx, "schema_version")
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
}

func TestSchemaVersionMajorMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "jed.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.SetConfig(ctx, "schema_version", "v2.0.0"))
	require.NoError(t, s.Close())

	_, err = New(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incompatible")
}

func TestConfigRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v, err := s.GetConfig(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetConfig(ctx, "last_run", "abc"))
	require.NoError(t, s.SetConfig(ctx, "last_run", "def"))
	v, err = s.GetConfig(ctx, "last_run")
	require.NoError(t, err)
	assert.Equal(t, "def", v)
}

func TestEventStoreAndFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ev1 := audit.NewMergeEvent("run-1", audit.PhaseCourt, audit.MergeData{
		Winner: "virginia m kendall", Loser: "virginia m kendal", Strategy: "tokens_in_tokens",
	})
	ev2 := audit.NewTossEvent("run-1", audit.TossData{
		Name: "acme corp", MatchedAgainst: "acme corp", Kind: "party_or_counsel", Score: 100,
	})
	ev3 := audit.NewMergeEvent("run-2", audit.PhaseFree, audit.MergeData{
		Winner: "a", Loser: "b", Strategy: "exact",
	})
	for _, ev := range []*audit.Event{ev1, ev2, ev3} {
		require.NoError(t, s.Record(ctx, ev))
	}

	got, err := s.GetEvents(ctx, audit.Filter{RunID: "run-1"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.GetEvents(ctx, audit.Filter{Type: audit.EventTypeMerge})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "virginia m kendall", got[0].Data["winner"])

	got, err = s.GetEvents(ctx, audit.Filter{RunID: "run-1", Type: audit.EventTypeMentionTossed})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, float64(100), got[0].Data["score"])

	recent, err := s.GetRecentEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
}

func TestCatalogRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	entries := []types.CatalogEntry{
		{
			Name:            "virginia m kendall",
			PresentableName: "Virginia M Kendall",
			EntityID:        "SJ000000",
			Label:           "FJC Judge",
			HeadCaseCount:   2,
			TotalCaseCount:  3,
			IsFJC:           true,
			FJCID:           "1111111",
		},
		{
			Name:            "pat smith",
			PresentableName: "Pat Smith",
			EntityID:        "SJ000001",
			Label:           "Nondescript_Judge",
			TotalCaseCount:  30,
		},
	}
	require.NoError(t, s.SaveCatalog(ctx, "run-1", entries))

	got, err := s.GetCatalog(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, entries[0], got[0])
	assert.Equal(t, entries[1], got[1])

	// re-saving replaces the run's catalog
	require.NoError(t, s.SaveCatalog(ctx, "run-1", entries[:1]))
	got, err = s.GetCatalog(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.GetCatalog(ctx, "run-other")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMentionsByCase(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mentions := []*types.Mention{
		{
			CaseID: "ilnd;;1:16-cv-01000", Court: "ilnd",
			CleanedName: "virginia m kendall", ParentName: "virginia m kendall",
			EntityID: "SJ000000", DocketSource: "line_entry",
		},
		{
			CaseID: "ilnd;;1:17-cv-02000", Court: "ilnd",
			CleanedName: "john a smith", ParentName: "john a smith",
			EntityID: types.EntityAmbiguous, AmbiguousEntityIDs: []string{"SJ000001", "SJ000002"},
		},
	}
	require.NoError(t, s.SaveMentions(ctx, "run-1", mentions))

	got, err := s.GetMentionsByCase(ctx, "run-1", "ilnd;;1:17-cv-02000")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.EntityAmbiguous, got[0].EntityID)
	assert.Equal(t, []string{"SJ000001", "SJ000002"}, got[0].AmbiguousEntityIDs)
}

func TestAmbiguityReview(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mentions := []*types.Mention{
		{
			CaseID: "ilnd;;1:16-cv-01000", Court: "ilnd",
			CleanedName: "virginia m kendall", ParentName: "virginia m kendall",
			EntityID: "SJ000000",
		},
		{
			CaseID: "ilnd;;1:17-cv-02000", Court: "ilnd",
			CleanedName: "john a smith", ParentName: "john a smith",
			EntityID: types.EntityAmbiguous, AmbiguousEntityIDs: []string{"SJ000001", "SJ000002"},
		},
		{
			CaseID: "ilnd;;1:18-cv-03000", Court: "ilnd",
			CleanedName: "j a smith", ParentName: "john a smith",
			EntityID: types.EntityAmbiguous, AmbiguousEntityIDs: []string{"SJ000001", "SJ000002"},
		},
	}
	require.NoError(t, s.SaveMentions(ctx, "run-1", mentions))

	ambiguous, err := s.GetAmbiguousMentions(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, ambiguous, 2)

	n, err := s.ResolveAmbiguousMentions(ctx, "run-1", "john a smith", "SJ000002")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ambiguous, err = s.GetAmbiguousMentions(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, ambiguous)

	// the JSON copy follows the indexed column
	got, err := s.GetMentionsByCase(ctx, "run-1", "ilnd;;1:18-cv-03000")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SJ000002", got[0].EntityID)
	assert.Empty(t, got[0].AmbiguousEntityIDs)

	// a second pass finds nothing left to update
	n, err = s.ResolveAmbiguousMentions(ctx, "run-1", "john a smith", "SJ000001")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRunSummaries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	older := types.RunSummary{
		RunID:     "run-1",
		Name:      "weekly",
		StartedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Mentions:  100,
		Entities:  10,
	}
	newer := types.RunSummary{
		RunID:     "run-2",
		StartedAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Mentions:  200,
		Entities:  20,
		Tossed:    3,
		Merges:    40,
	}
	require.NoError(t, s.SaveRunSummary(ctx, older))
	require.NoError(t, s.SaveRunSummary(ctx, newer))

	got, err := s.GetRunSummaries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-2", got[0].RunID)
	assert.Equal(t, "run-1", got[1].RunID)

	// upsert overwrites
	older.Merges = 7
	require.NoError(t, s.SaveRunSummary(ctx, older))
	got, err = s.GetRunSummaries(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 7, got[1].Merges)
}
