package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/config"
	"github.com/scales-okn/jed/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadMentions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.jsonl"),
		`{"ucid":"ilnd;;1:17-cv-02000","court":"ilnd","extracted_entity":"john a smith","docket_source":"line_entry"}
`)
	writeFile(t, filepath.Join(dir, "a.jsonl"),
		`{"ucid":"ilnd;;1:16-cv-01000","court":"ilnd","extracted_entity":"virginia m kendall","docket_source":"case_header","prefix_categories":"District_Judge"}

{"ucid":"ilnd;;1:16-cv-01000","court":"ilnd","extracted_entity":"virginia m kendal","docket_source":"line_entry"}
`)

	mentions, err := LoadMentions(context.Background(), filepath.Join(dir, "*.jsonl"), 2, nil, "")
	require.NoError(t, err)
	require.Len(t, mentions, 3)
	// files load in path order regardless of which goroutine finished first
	assert.Equal(t, "virginia m kendall", mentions[0].CleanedName)
	assert.Equal(t, types.CategoryDistrictJudge, mentions[0].Category)
	assert.True(t, mentions[0].IsHeader())
	assert.Equal(t, "john a smith", mentions[2].CleanedName)
}

func TestLoadMentionsKeepsInvalidRowsAsInconclusive(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mentions.jsonl"),
		`{"ucid":"ilnd;;1:16-cv-01000","court":"ilnd","extracted_entity":"virginia m kendall"}
{"ucid":"ilnd;;1:16-cv-01001","extracted_entity":"john a smith"}
{"ucid":"ilnd;;1:16-cv-01002","court":"ilnd","extracted_entity":"harold h greene"}
`)

	rec := audit.NewMemoryRecorder()
	mentions, err := LoadMentions(ctx, filepath.Join(dir, "*.jsonl"), 1, rec, "run-1")
	require.NoError(t, err)
	require.Len(t, mentions, 3)

	// the row missing its court survives, marked inconclusive
	assert.Equal(t, "", mentions[0].EntityID)
	assert.Equal(t, types.EntityInconclusive, mentions[1].EntityID)
	assert.Equal(t, "", mentions[2].EntityID)

	events, err := rec.GetEvents(ctx, audit.Filter{RunID: "run-1", Type: audit.EventTypeError})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.PhaseIO, events[0].Phase)
	assert.Equal(t, audit.SeverityWarning, events[0].Severity)
	assert.Contains(t, events[0].Message, "mentions.jsonl:2")
	assert.Equal(t, 2, events[0].Data["line"])
}

func TestLoadMentionsRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.jsonl"),
		`{"ucid":"ilnd;;1:16-cv-01000",
`)
	_, err := LoadMentions(context.Background(), filepath.Join(dir, "*.jsonl"), 1, nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.jsonl:1")
}

func TestLoadMentionsNoMatches(t *testing.T) {
	_, err := LoadMentions(context.Background(), filepath.Join(t.TempDir(), "*.jsonl"), 1, nil, "")
	require.Error(t, err)
}

func TestLoadHeaderEntities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parties.jsonl")
	writeFile(t, path,
		`{"ucid":"ilnd;;1:16-cv-01000","role":"party","entity":"Acme Corp"}
{"ucid":"ilnd;;1:16-cv-01000","role":"counsel","entity":"Jane Q Lawyer"}
`)
	rows, err := LoadHeaderEntities(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme Corp", rows[0].Name)
	assert.Equal(t, "counsel", rows[1].Role)

	rows, err = LoadHeaderEntities("")
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestWriteCatalogAndShards(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	entries := []types.CatalogEntry{{
		Name:            "virginia m kendall",
		PresentableName: "Virginia M Kendall",
		EntityID:        "SJ000000",
		Label:           "FJC Judge",
		TotalCaseCount:  3,
	}}
	catalogPath := filepath.Join(dir, "catalog.jsonl")
	require.NoError(t, WriteCatalog(catalogPath, entries))

	mentions := []*types.Mention{
		{CaseID: "ilnd;;1:16-cv-01000", Court: "ilnd", CleanedName: "virginia m kendall", EntityID: "SJ000000"},
		{CaseID: "ilnd;;1:17-cv-02000", Court: "ilnd", CleanedName: "virginia m kendall", EntityID: "SJ000000"},
		{CaseID: "mdd;;1:16-cv-00100", Court: "mdd", CleanedName: "harold h greene", EntityID: "SJ000001"},
	}
	written, err := WriteMentionShards(ctx, dir, mentions, 2, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	for _, shard := range []string{"ilnd/16.jsonl", "ilnd/17.jsonl", "mdd/16.jsonl"} {
		_, err := os.Stat(filepath.Join(dir, shard))
		assert.NoError(t, err, shard)
	}

	// written shards parse back as mention rows
	back, err := LoadMentions(ctx, filepath.Join(dir, "ilnd", "*.jsonl"), 1, nil, "")
	require.NoError(t, err)
	assert.Len(t, back, 2)
}

func TestWriteMentionShardsYearlessFallback(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	mentions := []*types.Mention{
		{CaseID: "ilnd;;1:16-cv-01000", Court: "ilnd", CleanedName: "virginia m kendall", EntityID: "SJ000000"},
		// passes validation but carries no parseable filing year
		{CaseID: "ilnd;;16-cv-01", Court: "ilnd", CleanedName: "harold h greene", EntityID: types.EntityInconclusive},
		{CaseID: "odd-row", Court: "", CleanedName: "john a smith", EntityID: types.EntityInconclusive},
	}
	rec := audit.NewMemoryRecorder()
	written, err := WriteMentionShards(ctx, dir, mentions, 2, rec, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	for _, shard := range []string{"ilnd/16.jsonl", "ilnd/unknown.jsonl", "unknown/unknown.jsonl"} {
		_, err := os.Stat(filepath.Join(dir, shard))
		assert.NoError(t, err, shard)
	}

	events, err := rec.GetEvents(ctx, audit.Filter{RunID: "run-1", Type: audit.EventTypeError})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.SeverityWarning, events[0].Severity)
}

func TestRunLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "jed.db")

	lockPath, err := AcquireRunLock(dbPath, "run-1")
	require.NoError(t, err)

	// a live holder blocks a second acquisition
	_, err = AcquireRunLock(dbPath, "run-2")
	require.Error(t, err)

	require.NoError(t, ReleaseRunLock(lockPath))
	lockPath, err = AcquireRunLock(dbPath, "run-3")
	require.NoError(t, err)
	require.NoError(t, ReleaseRunLock(lockPath))

	// releasing an empty path is a no-op
	require.NoError(t, ReleaseRunLock(""))
}

func TestRunLockOverwritesStale(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "jed.db")
	lockPath := filepath.Join(filepath.Dir(dbPath), ".run-lock")
	hostname, err := os.Hostname()
	require.NoError(t, err)
	// a PID beyond the kernel maximum never maps to a live process
	writeFile(t, lockPath,
		`{"holder":"jed","pid":99999999,"hostname":"`+hostname+`","started_at":"2020-01-01T00:00:00Z","run_id":"old"}`)

	got, err := AcquireRunLock(dbPath, "run-1")
	require.NoError(t, err)
	require.NoError(t, ReleaseRunLock(got))
}

func TestNewFactorySQLite(t *testing.T) {
	s, err := New(context.Background(), config.DatabaseConfig{
		Backend: "sqlite",
		Path:    filepath.Join(t.TempDir(), "jed.db"),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestNewFactoryUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.DatabaseConfig{Backend: "mysql"})
	require.Error(t, err)
}
