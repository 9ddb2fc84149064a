// Package storage persists resolution output: the entity catalog, the
// resolved mention set, run summaries, and the audit trail. Two database
// backends implement the same interface; JSONL file IO for the input
// mentions and the sharded output lives here as well.
package storage

import (
	"context"
	"fmt"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/config"
	"github.com/scales-okn/jed/internal/storage/postgres"
	"github.com/scales-okn/jed/internal/storage/sqlite"
	"github.com/scales-okn/jed/internal/types"
)

// Storage defines the interface for resolution storage backends.
type Storage interface {
	// Audit trail
	audit.Store

	// Catalog
	SaveCatalog(ctx context.Context, runID string, entries []types.CatalogEntry) error
	GetCatalog(ctx context.Context, runID string) ([]types.CatalogEntry, error)

	// Resolved mentions
	SaveMentions(ctx context.Context, runID string, mentions []*types.Mention) error
	GetMentionsByCase(ctx context.Context, runID, caseID string) ([]*types.Mention, error)

	// Ambiguity review
	GetAmbiguousMentions(ctx context.Context, runID string) ([]*types.Mention, error)
	ResolveAmbiguousMentions(ctx context.Context, runID, parentName, entityID string) (int, error)

	// Run summaries
	SaveRunSummary(ctx context.Context, summary types.RunSummary) error
	GetRunSummaries(ctx context.Context, limit int) ([]types.RunSummary, error)

	// Key/value config (schema version and friends)
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error

	// Lifecycle
	Close() error
}

// New creates a storage backend from the database configuration.
func New(ctx context.Context, cfg config.DatabaseConfig) (Storage, error) {
	switch cfg.Backend {
	case "sqlite", "":
		path := cfg.Path
		if path == "" {
			path = ".jed/jed.db"
		}
		return sqlite.New(path)
	case "postgres":
		return postgres.New(ctx, &postgres.Config{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Database: cfg.Database,
			User:     cfg.User,
			Password: cfg.Password,
			SSLMode:  cfg.SSLMode,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
