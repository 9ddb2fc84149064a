package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/scales-okn/jed/internal/types"
)

// SaveCatalog stores a run's entity catalog, replacing any previous
// catalog for the same run.
func (s *PostgresStorage) SaveCatalog(ctx context.Context, runID string, entries []types.CatalogEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM catalog WHERE run_id = $1", runID); err != nil {
		return fmt.Errorf("failed to clear previous catalog: %w", err)
	}

	query := `
		INSERT INTO catalog (run_id, entity_id, name, presentable_name, label,
			head_case_count, total_case_count, is_fjc, is_registry, fjc_id, registry_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for i := range entries {
		e := &entries[i]
		if _, err := tx.Exec(ctx, query,
			runID, e.EntityID, e.Name, e.PresentableName, e.Label,
			e.HeadCaseCount, e.TotalCaseCount, e.IsFJC, e.IsRegistry,
			e.FJCID, e.RegistryID); err != nil {
			return fmt.Errorf("failed to store catalog entry %s: %w", e.EntityID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

// GetCatalog returns a run's catalog ordered by entity ID.
func (s *PostgresStorage) GetCatalog(ctx context.Context, runID string) ([]types.CatalogEntry, error) {
	query := `
		SELECT entity_id, name, presentable_name, label,
			head_case_count, total_case_count, is_fjc, is_registry, fjc_id, registry_id
		FROM catalog
		WHERE run_id = $1
		ORDER BY entity_id
	`
	rows, err := s.pool.Query(ctx, query, runID)
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

// SaveMentions stores a run's resolved mentions.
func (s *PostgresStorage) SaveMentions(ctx context.Context, runID string, mentions []*types.Mention) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM mentions WHERE run_id = $1", runID); err != nil {
		return fmt.Errorf("failed to clear previous mentions: %w", err)
	}

	query := `
		INSERT INTO mentions (run_id, case_id, court, cleaned_name, parent_name, entity_id, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, m := range mentions {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal mention (case=%s): %w", m.CaseID, err)
		}
		if _, err := tx.Exec(ctx, query,
			runID, m.CaseID, m.Court, m.CleanedName, m.ParentName, m.EntityID,
			string(data)); err != nil {
			return fmt.Errorf("failed to store mention (case=%s): %w", m.CaseID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit mentions: %w", err)
	}
	return nil
}

// GetMentionsByCase returns a run's resolved mentions for one case.
func (s *PostgresStorage) GetMentionsByCase(ctx context.Context, runID, caseID string) ([]*types.Mention, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT data FROM mentions WHERE run_id = $1 AND case_id = $2", runID, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mentions: %w", err)
	}
	defer rows.Close()

	var mentions []*types.Mention
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan mention: %w", err)
		}
		var m types.Mention
		if err := json.Unmarshal(data, &m); err != nil {
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
func (s *PostgresStorage) GetAmbiguousMentions(ctx context.Context, runID string) ([]*types.Mention, error) {
	query := `
		SELECT data FROM mentions
		WHERE run_id = $1 AND entity_id = $2
		ORDER BY parent_name, case_id
	`
	rows, err := s.pool.Query(ctx, query, runID, types.EntityAmbiguous)
	if err != nil {
		return nil, fmt.Errorf("failed to query ambiguous mentions: %w", err)
	}
	defer rows.Close()

	var mentions []*types.Mention
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan mention: %w", err)
		}
		var m types.Mention
		if err := json.Unmarshal(data, &m); err != nil {
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
// under parentName and returns the number of rows updated. The JSONB copy
// is rewritten alongside the indexed column.
func (s *PostgresStorage) ResolveAmbiguousMentions(ctx context.Context, runID, parentName, entityID string) (int, error) {
	query := `
		UPDATE mentions
		SET entity_id = $1,
			data = jsonb_set(data - 'ambiguous_sjids', '{sjid}', to_jsonb($1::text))
		WHERE run_id = $2 AND parent_name = $3 AND entity_id = $4
	`
	tag, err := s.pool.Exec(ctx, query, entityID, runID, parentName, types.EntityAmbiguous)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve ambiguous mentions for %q: %w", parentName, err)
	}
	return int(tag.RowsAffected()), nil
}

// SaveRunSummary upserts one run's bookkeeping row.
func (s *PostgresStorage) SaveRunSummary(ctx context.Context, summary types.RunSummary) error {
	query := `
		INSERT INTO runs (run_id, name, started_at, completed_at, mentions, entities, tossed, merges)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO UPDATE SET
			name = EXCLUDED.name,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			mentions = EXCLUDED.mentions,
			entities = EXCLUDED.entities,
			tossed = EXCLUDED.tossed,
			merges = EXCLUDED.merges
	`
	_, err := s.pool.Exec(ctx, query,
		summary.RunID, summary.Name, summary.StartedAt, summary.CompletedAt,
		summary.Mentions, summary.Entities, summary.Tossed, summary.Merges)
	if err != nil {
		return fmt.Errorf("failed to store run summary %s: %w", summary.RunID, err)
	}
	return nil
}

// GetRunSummaries returns the newest runs up to limit, newest first.
func (s *PostgresStorage) GetRunSummaries(ctx context.Context, limit int) ([]types.RunSummary, error) {
	query := `
		SELECT run_id, name, started_at, completed_at, mentions, entities, tossed, merges
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run summaries: %w", err)
	}
	defer rows.Close()

	var summaries []types.RunSummary
	for rows.Next() {
		var r types.RunSummary
		var completed sql.NullTime
		if err := rows.Scan(&r.RunID, &r.Name, &r.StartedAt, &completed,
			&r.Mentions, &r.Entities, &r.Tossed, &r.Merges); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		r.CompletedAt = completed.Time
		summaries = append(summaries, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run summaries: %w", err)
	}
	return summaries, nil
}
