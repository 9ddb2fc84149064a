package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/types"
)

// scanBufferSize bounds a single JSONL line. Docket text runs long.
const scanBufferSize = 4 * 1024 * 1024

// LoadMentions reads every JSONL file matching the glob in parallel and
// returns the mentions in a deterministic order (file path, then line).
// Rows that fail validation are kept but marked inconclusive so they pass
// through to the output untouched; one bad row never aborts the batch.
// Only I/O and JSON syntax errors are returned.
func LoadMentions(ctx context.Context, glob string, concurrency int, rec audit.Recorder, runID string) ([]*types.Mention, error) {
	paths, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("bad mentions glob %q: %w", glob, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no mention files match %q", glob)
	}
	sort.Strings(paths)

	perFile := make([][]*types.Mention, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			ms, err := readMentionFile(ctx, path, rec, runID)
			if err != nil {
				return err
			}
			perFile[i] = ms
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*types.Mention
	for _, ms := range perFile {
		all = append(all, ms...)
	}
	return all, nil
}

func readMentionFile(ctx context.Context, path string, rec audit.Recorder, runID string) ([]*types.Mention, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mention file: %w", err)
	}
	defer f.Close()

	var out []*types.Mention
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), scanBufferSize)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var m types.Mention
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%s:%d: failed to parse mention: %w", path, line, err)
		}
		if err := m.Validate(); err != nil {
			// Malformed rows stay in the output as inconclusive
			// rather than aborting the batch.
			m.EntityID = types.EntityInconclusive
			recordBadRow(ctx, rec, runID, path, line, err)
		}
		out = append(out, &m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return out, nil
}

// recordBadRow logs one malformed input row to the audit trail.
func recordBadRow(ctx context.Context, rec audit.Recorder, runID, path string, line int, cause error) {
	if rec == nil {
		return
	}
	rec.Record(ctx, audit.NewEvent(runID, audit.EventTypeError, audit.PhaseIO, audit.SeverityWarning,
		fmt.Sprintf("%s:%d: %v; mention kept as inconclusive", path, line, cause),
		map[string]interface{}{
			"file":  path,
			"line":  line,
			"error": cause.Error(),
		}))
}

// LoadHeaderEntities reads a JSONL file of party or counsel rows. An
// empty path returns nil, since either file is optional.
func LoadHeaderEntities(path string) ([]HeaderRow, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open header entity file: %w", err)
	}
	defer f.Close()

	var out []HeaderRow
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), scanBufferSize)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var h HeaderRow
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, fmt.Errorf("%s:%d: failed to parse header entity: %w", path, line, err)
		}
		out = append(out, h)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return out, nil
}

// HeaderRow is one party or counsel name from case header metadata.
type HeaderRow struct {
	CaseID string `json:"ucid"`
	Role   string `json:"role"`
	Name   string `json:"entity"`
}

// WriteCatalog writes the entity catalog as one JSONL file.
func WriteCatalog(path string, entries []types.CatalogEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := range entries {
		if err := enc.Encode(&entries[i]); err != nil {
			return fmt.Errorf("failed to write catalog entry %s: %w", entries[i].EntityID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush catalog file: %w", err)
	}
	return nil
}

// WriteMentionShards writes the resolved mentions under dir, sharded per
// court and two-digit filing year ("ilnd/16.jsonl"), shards written in
// parallel. Mentions whose case ID yields no filing year land in an
// "unknown" shard instead of failing the write. Returns the number of
// shard files written.
func WriteMentionShards(ctx context.Context, dir string, mentions []*types.Mention, concurrency int, rec audit.Recorder, runID string) (int, error) {
	shards := make(map[string][]*types.Mention)
	for _, m := range mentions {
		court := m.Court
		if court == "" {
			court = "unknown"
		}
		year, err := m.CaseYearDigits()
		if err != nil {
			year = "unknown"
			if rec != nil {
				rec.Record(ctx, audit.NewEvent(runID, audit.EventTypeError, audit.PhaseIO, audit.SeverityWarning,
					fmt.Sprintf("%v; mention sharded under %s/unknown", err, court),
					map[string]interface{}{
						"case":  m.CaseID,
						"court": court,
					}))
			}
		}
		key := filepath.Join(court, year+".jsonl")
		shards[key] = append(shards[key], m)
	}

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	var mu sync.Mutex
	written := 0
	for key, ms := range shards {
		key, ms := key, ms
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := writeMentionShard(filepath.Join(dir, key), ms); err != nil {
				return err
			}
			mu.Lock()
			written++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return written, nil
}

func writeMentionShard(path string, mentions []*types.Mention) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create shard directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create shard file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, m := range mentions {
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("failed to write mention (case=%s): %w", m.CaseID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush shard file: %w", err)
	}
	return nil
}
