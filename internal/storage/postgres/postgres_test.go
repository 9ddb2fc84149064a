package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/types"
)

func getTestConfig() *Config {
	cfg := DefaultConfig()
	if host := os.Getenv("JED_TEST_PG_HOST"); host != "" {
		cfg.Host = host
	}
	if db := os.Getenv("JED_TEST_PG_DATABASE"); db != "" {
		cfg.Database = db
	}
	if user := os.Getenv("JED_TEST_PG_USER"); user != "" {
		cfg.User = user
	}
	if pass := os.Getenv("JED_TEST_PG_PASSWORD"); pass != "" {
		cfg.Password = pass
	}
	return cfg
}

// setupTestStorage connects and truncates; the test skips when no
// database is reachable.
func setupTestStorage(t *testing.T) *PostgresStorage {
	t.Helper()
	ctx := context.Background()

	s, err := New(ctx, getTestConfig())
	if err != nil {
		t.Skipf("Skipping PostgreSQL test (database not available): %v", err)
	}
	_, err = s.pool.Exec(ctx, "TRUNCATE TABLE catalog, mentions, audit_events, runs")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresCatalogRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

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
	}
	require.NoError(t, s.SaveCatalog(ctx, "run-1", entries))

	got, err := s.GetCatalog(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entries[0], got[0])
}

func TestPostgresEventsAndMentions(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	ev := audit.NewMergeEvent("run-1", audit.PhaseFree, audit.MergeData{
		Winner: "a", Loser: "b", Strategy: "exact",
	})
	require.NoError(t, s.Record(ctx, ev))

	got, err := s.GetEvents(ctx, audit.Filter{RunID: "run-1", Type: audit.EventTypeMerge})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Data["winner"])

	mentions := []*types.Mention{{
		CaseID: "ilnd;;1:16-cv-01000", Court: "ilnd",
		CleanedName: "virginia m kendall", EntityID: "SJ000000",
	}}
	require.NoError(t, s.SaveMentions(ctx, "run-1", mentions))
	back, err := s.GetMentionsByCase(ctx, "run-1", "ilnd;;1:16-cv-01000")
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, "SJ000000", back[0].EntityID)
}

func TestPostgresRunSummaryUpsert(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	summary := types.RunSummary{
		RunID:     "run-1",
		StartedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Mentions:  100,
	}
	require.NoError(t, s.SaveRunSummary(ctx, summary))
	summary.Merges = 9
	require.NoError(t, s.SaveRunSummary(ctx, summary))

	got, err := s.GetRunSummaries(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 9, got[0].Merges)
}
