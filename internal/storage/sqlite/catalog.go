package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/scales-okn/jed/internal/types"
)

// SaveCatalog stores a run's entity catalog, replacing any previous
// catalog for the same run.
func (s *SQLiteStorage) SaveCatalog(ctx context.Context, runID string, entries []types.CatalogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM catalog WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear previous catalog: %w", err)
	}

	query := `
		INSERT INTO catalog (run_id, entity_id, name, presentable_name, label,
			head_case_count, total_case_count, is_fjc, is_registry, fjc_id, registry_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i := range entries {
		e := &entries[i]
		if _, err := tx.ExecContext(ctx, query,
			runID, e.EntityID, e.Name, e.PresentableName, e.Label,
			e.HeadCaseCount, e.TotalCaseCount, e.IsFJC, e.IsRegistry,
			e.FJCID, e.RegistryID); err != nil {
			return fmt.Errorf("failed to store catalog entry %s: %w", e.EntityID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

// GetCatalog returns a run's catalog ordered by entity ID.
func (s *SQLiteStorage) GetCatalog(ctx context.Context, runID string) ([]types.CatalogEntry, error) {
	query := `
		SELECT entity_id, name, presentable_name, label,
			head_case_count, total_case_count, is_fjc, is_registry, fjc_id, registry_id
		FROM catalog
		WHERE run_id = ?
		ORDER BY entity_id
	`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var entries []types.CatalogEntry
	for rows.Next() {
		var e types.CatalogEntry
		var fjcID, registryID sql.NullString
		if err := rows.Scan(&e.EntityID, &e.Name, &e.PresentableName, &e.Label,
			&e.HeadCaseCount, &e.TotalCaseCount, &e.IsFJC, &e.IsRegistry,
			&fjcID, &registryID); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		e.FJCID = fjcID.String
		e.RegistryID = registryID.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog: %w", err)
	}
	return entries, nil
}

// SaveMentions stores a run's resolved mentions. The full mention rides
// along as JSON; the indexed columns cover the common lookups.
func (s *SQLiteStorage) SaveMentions(ctx context.Context, runID string, mentions []*types.Mention) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM mentions WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear previous mentions: %w", err)
	}

	query := `
		INSERT INTO mentions (run_id, case_id, court, cleaned_name, parent_name, entity_id, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, m := range mentions {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal mention (case=%s): %w", m.CaseID, err)
		}
		if _, err := tx.ExecContext(ctx, query,
			runID, m.CaseID, m.Court, m.CleanedName, m.ParentName, m.EntityID,
			string(data)); err != nil {
			return fmt.Errorf("failed to store mention (case=%s): %w", m.CaseID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mentions: %w", err)
	}
	return nil
}

// GetMentionsByCase returns a run's resolved mentions for one case.
func (s *SQLiteStorage) GetMentionsByCase(ctx context.Context, runID, caseID string) ([]*types.Mention, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT data FROM mentions WHERE run_id = ? AND case_id = ?", runID, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mentions: %w", err)
	}
	defer rows.Close()

	var mentions []*types.Mention
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan mention: %w", err)
		}
		var m types.Mention
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mention: %w", err)
		}
		mentions = append(mentions, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mentions: %w", err)
	}
	return mentions, nil
}

// GetAmbiguousMentions returns a run's mentions carrying the ambiguous
// sentinel, grouped by parent name.
func (s *SQLiteStorage) GetAmbiguousMentions(ctx context.Context, runID string) ([]*types.Mention, error) {
	query := `
		SELECT data FROM mentions
		WHERE run_id = ? AND entity_id = ?
		ORDER BY parent_name, case_id
	`
	rows, err := s.db.QueryContext(ctx, query, runID, types.EntityAmbiguous)
	if err != nil {
		return nil, fmt.Errorf("failed to query ambiguous mentions: %w", err)
	}
	defer rows.Close()

	var mentions []*types.Mention
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan mention: %w", err)
		}
		var m types.Mention
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mention: %w", err)
		}
		mentions = append(mentions, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ambiguous mentions: %w", err)
	}
	return mentions, nil
}

// ResolveAmbiguousMentions assigns entityID to every ambiguous mention
// under parentName and returns the number of rows updated. The JSON copy
// is rewritten alongside the indexed column.
func (s *SQLiteStorage) ResolveAmbiguousMentions(ctx context.Context, runID, parentName, entityID string) (int, error) {
	query := `
		UPDATE mentions
		SET entity_id = ?,
			data = json_set(json_remove(data, '$.ambiguous_sjids'), '$.sjid', ?)
		WHERE run_id = ? AND parent_name = ? AND entity_id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		entityID, entityID, runID, parentName, types.EntityAmbiguous)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve ambiguous mentions for %q: %w", parentName, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count resolved mentions: %w", err)
	}
	return int(n), nil
}

// SaveRunSummary upserts one run's bookkeeping row.
func (s *SQLiteStorage) SaveRunSummary(ctx context.Context, summary types.RunSummary) error {
	query := `
		INSERT INTO runs (run_id, name, started_at, completed_at, mentions, entities, tossed, merges)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			name = excluded.name,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			mentions = excluded.mentions,
			entities = excluded.entities,
			tossed = excluded.tossed,
			merges = excluded.merges
	`
	_, err := s.db.ExecContext(ctx, query,
		summary.RunID, summary.Name, summary.StartedAt, summary.CompletedAt,
		summary.Mentions, summary.Entities, summary.Tossed, summary.Merges)
	if err != nil {
		return fmt.Errorf("failed to store run summary %s: %w", summary.RunID, err)
	}
	return nil
}

// GetRunSummaries returns the newest runs up to limit, newest first.
func (s *SQLiteStorage) GetRunSummaries(ctx context.Context, limit int) ([]types.RunSummary, error) {
	query := `
		SELECT run_id, name, started_at, completed_at, mentions, entities, tossed, merges
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run summaries: %w", err)
	}
	defer rows.Close()

	var summaries []types.RunSummary
	for rows.Next() {
		var r types.RunSummary
		if err := rows.Scan(&r.RunID, &r.Name, &r.StartedAt, &r.CompletedAt,
			&r.Mentions, &r.Entities, &r.Tossed, &r.Merges); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		summaries = append(summaries, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run summaries: %w", err)
	}
	return summaries, nil
}
