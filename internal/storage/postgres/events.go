package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/scales-okn/jed/internal/audit"
)

// Record stores one audit event.
func (s *PostgresStorage) Record(ctx context.Context, event *audit.Event) error {
	dataJSON, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	query := `
		INSERT INTO audit_events (id, run_id, type, phase, timestamp, severity, message, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.pool.Exec(ctx, query,
		event.ID,
		event.RunID,
		event.Type,
		event.Phase,
		event.Timestamp,
		event.Severity,
		event.Message,
		string(dataJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to store audit event (type=%s, run=%s): %w", event.Type, event.RunID, err)
	}
	return nil
}

// GetEvents retrieves events matching the filter, oldest first.
func (s *PostgresStorage) GetEvents(ctx context.Context, filter audit.Filter) ([]*audit.Event, error) {
	query := `
		SELECT id, run_id, type, phase, timestamp, severity, message, data
		FROM audit_events
		WHERE 1=1
	`
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.RunID != "" {
		query += " AND run_id = " + arg(filter.RunID)
	}
	if filter.Type != "" {
		query += " AND type = " + arg(string(filter.Type))
	}
	if filter.Phase != "" {
		query += " AND phase = " + arg(string(filter.Phase))
	}
	if filter.Severity != "" {
		query += " AND severity = " + arg(string(filter.Severity))
	}
	if !filter.AfterTime.IsZero() {
		query += " AND timestamp > " + arg(filter.AfterTime)
	}
	if !filter.BeforeTime.IsZero() {
		query += " AND timestamp < " + arg(filter.BeforeTime)
	}

	query += " ORDER BY timestamp ASC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetRecentEvents retrieves the newest events up to limit, newest first.
func (s *PostgresStorage) GetRecentEvents(ctx context.Context, limit int) ([]*audit.Event, error) {
	query := `
		SELECT id, run_id, type, phase, timestamp, severity, message, data
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]*audit.Event, error) {
	var events []*audit.Event
	for rows.Next() {
		var e audit.Event
		var dataJSON []byte
		if err := rows.Scan(&e.ID, &e.RunID, &e.Type, &e.Phase, &e.Timestamp,
			&e.Severity, &e.Message, &dataJSON); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		if err := json.Unmarshal(dataJSON, &e.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event data (id=%s): %w", e.ID, err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}
	return events, nil
}
