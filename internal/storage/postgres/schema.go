package postgres

// SchemaVersion is stamped into the config table on first open. Opening
// a database written by a different major version is refused.
const SchemaVersion = "v1.0.0"

const schema = `
CREATE TABLE IF NOT EXISTS catalog (
    run_id TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    name TEXT NOT NULL,
    presentable_name TEXT NOT NULL,
    label TEXT NOT NULL,
    head_case_count INTEGER NOT NULL DEFAULT 0,
    total_case_count INTEGER NOT NULL DEFAULT 0,
    is_fjc BOOLEAN NOT NULL DEFAULT FALSE,
    is_registry BOOLEAN NOT NULL DEFAULT FALSE,
    fjc_id TEXT,
    registry_id TEXT,
    PRIMARY KEY (run_id, entity_id)
);

CREATE INDEX IF NOT EXISTS idx_catalog_name ON catalog(name);

CREATE TABLE IF NOT EXISTS mentions (
    run_id TEXT NOT NULL,
    case_id TEXT NOT NULL,
    court TEXT NOT NULL,
    cleaned_name TEXT NOT NULL,
    parent_name TEXT NOT NULL DEFAULT '',
    entity_id TEXT NOT NULL,
    data JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_mentions_run_case ON mentions(run_id, case_id);
CREATE INDEX IF NOT EXISTS idx_mentions_entity ON mentions(run_id, entity_id);

CREATE TABLE IF NOT EXISTS audit_events (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,
    type TEXT NOT NULL,
    phase TEXT NOT NULL,
    timestamp TIMESTAMPTZ NOT NULL,
    severity TEXT NOT NULL,
    message TEXT NOT NULL,
    data JSONB NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_audit_events_run ON audit_events(run_id);
CREATE INDEX IF NOT EXISTS idx_audit_events_type ON audit_events(type);
CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events(timestamp);

CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    started_at TIMESTAMPTZ NOT NULL,
    completed_at TIMESTAMPTZ,
    mentions INTEGER NOT NULL DEFAULT 0,
    entities INTEGER NOT NULL DEFAULT 0,
    tossed INTEGER NOT NULL DEFAULT 0,
    merges INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
