// Package config holds the run configuration: input paths, resolution
// thresholds, and the database backend. Values load from a YAML file,
// then JED_* environment variables override, then Validate checks ranges.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full engine configuration.
type Config struct {
	Run      RunConfig      `yaml:"run"`
	Paths    PathsConfig    `yaml:"paths"`
	Database DatabaseConfig `yaml:"database"`
}

// RunConfig holds resolution parameters.
type RunConfig struct {
	// Name tags the run in audit events and output metadata. Empty means
	// a generated run ID.
	Name string `yaml:"name"`

	// TossThreshold is the similarity bound above which a single-case
	// mention matching a party or counsel is dropped.
	// Default: 95, Range: 50-100
	TossThreshold int `yaml:"toss_threshold"`

	// DormancyCutoff is the date, in 2006-01-02 form, before which a
	// terminated codebook judge sits out the global sweep. Empty disables
	// dormancy filtering.
	// Default: "1995-01-01"
	DormancyCutoff string `yaml:"dormancy_cutoff"`

	// Concurrency bounds parallel arena sweeps and shard writes.
	// Default: 0 (GOMAXPROCS), Range: 0-256
	Concurrency int `yaml:"concurrency"`

	// ProgressIntervalSeconds throttles progress audit events.
	// Default: 5, Range: 0 (disabled) or 1-3600
	ProgressIntervalSeconds int `yaml:"progress_interval_seconds"`
}

// PathsConfig holds the input and output file locations.
type PathsConfig struct {
	// Mentions is a glob over the extracted-mention JSONL files.
	Mentions string `yaml:"mentions"`
	// Parties and Counsels are JSONL files of case header entities.
	Parties  string `yaml:"parties"`
	Counsels string `yaml:"counsels"`
	// FJCCodebook is the FJC judges CSV export.
	FJCCodebook string `yaml:"fjc_codebook"`
	// RosterJudges and RosterPositions are the bankruptcy/magistrate
	// roster CSVs.
	RosterJudges    string `yaml:"roster_judges"`
	RosterPositions string `yaml:"roster_positions"`
	// OutputDir receives the catalog and the sharded mention files.
	OutputDir string `yaml:"output_dir"`
}

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	// Backend is "sqlite" or "postgres".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file. The special value ":memory:"
	// creates an in-memory database.
	// Default: ".jed/jed.db"
	Path string `yaml:"path"`

	// Postgres connection settings, used when Backend is "postgres".
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Run: RunConfig{
			TossThreshold:           95,
			DormancyCutoff:          "1995-01-01",
			Concurrency:             0,
			ProgressIntervalSeconds: 5,
		},
		Paths: PathsConfig{
			OutputDir: "out",
		},
		Database: DatabaseConfig{
			Backend:  "sqlite",
			Path:     ".jed/jed.db",
			Host:     "localhost",
			Port:     5432,
			Database: "jed",
			User:     "jed",
			SSLMode:  "prefer",
		},
	}
}

// Load reads the YAML file at path, applies JED_* environment overrides,
// and validates the result. An empty path loads defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides config values from environment variables:
//   - JED_RUN_NAME, JED_TOSS_THRESHOLD, JED_DORMANCY_CUTOFF,
//     JED_CONCURRENCY, JED_PROGRESS_INTERVAL_SECONDS
//   - JED_MENTIONS, JED_PARTIES, JED_COUNSELS, JED_FJC_CODEBOOK,
//     JED_ROSTER_JUDGES, JED_ROSTER_POSITIONS, JED_OUTPUT_DIR
//   - JED_DB_BACKEND, JED_DB_PATH, JED_DB_HOST, JED_DB_PORT,
//     JED_DB_NAME, JED_DB_USER, JED_DB_PASSWORD, JED_DB_SSLMODE
func (c *Config) applyEnv() error {
	parseEnvString("JED_RUN_NAME", &c.Run.Name)
	if err := parseEnvInt("JED_TOSS_THRESHOLD", &c.Run.TossThreshold); err != nil {
		return err
	}
	parseEnvString("JED_DORMANCY_CUTOFF", &c.Run.DormancyCutoff)
	if err := parseEnvInt("JED_CONCURRENCY", &c.Run.Concurrency); err != nil {
		return err
	}
	if err := parseEnvInt("JED_PROGRESS_INTERVAL_SECONDS", &c.Run.ProgressIntervalSeconds); err != nil {
		return err
	}

	parseEnvString("JED_MENTIONS", &c.Paths.Mentions)
	parseEnvString("JED_PARTIES", &c.Paths.Parties)
	parseEnvString("JED_COUNSELS", &c.Paths.Counsels)
	parseEnvString("JED_FJC_CODEBOOK", &c.Paths.FJCCodebook)
	parseEnvString("JED_ROSTER_JUDGES", &c.Paths.RosterJudges)
	parseEnvString("JED_ROSTER_POSITIONS", &c.Paths.RosterPositions)
	parseEnvString("JED_OUTPUT_DIR", &c.Paths.OutputDir)

	parseEnvString("JED_DB_BACKEND", &c.Database.Backend)
	parseEnvString("JED_DB_PATH", &c.Database.Path)
	parseEnvString("JED_DB_HOST", &c.Database.Host)
	if err := parseEnvInt("JED_DB_PORT", &c.Database.Port); err != nil {
		return err
	}
	parseEnvString("JED_DB_NAME", &c.Database.Database)
	parseEnvString("JED_DB_USER", &c.Database.User)
	parseEnvString("JED_DB_PASSWORD", &c.Database.Password)
	parseEnvString("JED_DB_SSLMODE", &c.Database.SSLMode)
	return nil
}

// Validate checks that the configuration has valid values.
func (c Config) Validate() error {
	if c.Run.TossThreshold < 50 || c.Run.TossThreshold > 100 {
		return fmt.Errorf("toss_threshold must be between 50 and 100 (got %d)", c.Run.TossThreshold)
	}
	if c.Run.DormancyCutoff != "" {
		if _, err := time.Parse("2006-01-02", c.Run.DormancyCutoff); err != nil {
			return fmt.Errorf("dormancy_cutoff must be a 2006-01-02 date (got %q)", c.Run.DormancyCutoff)
		}
	}
	if c.Run.Concurrency < 0 || c.Run.Concurrency > 256 {
		return fmt.Errorf("concurrency must be between 0 and 256 (got %d)", c.Run.Concurrency)
	}
	if c.Run.ProgressIntervalSeconds < 0 || c.Run.ProgressIntervalSeconds > 3600 {
		return fmt.Errorf("progress_interval_seconds must be between 0 and 3600 (got %d)",
			c.Run.ProgressIntervalSeconds)
	}

	switch c.Database.Backend {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite backend")
		}
	case "postgres":
		if c.Database.Host == "" || c.Database.Database == "" || c.Database.User == "" {
			return fmt.Errorf("host, database, and user are required for the postgres backend")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("database port must be between 1 and 65535 (got %d)", c.Database.Port)
		}
	default:
		return fmt.Errorf("database backend must be 'sqlite' or 'postgres' (got %q)", c.Database.Backend)
	}
	return nil
}

// DormancyCutoffTime parses the configured cutoff. A zero time means
// dormancy filtering is disabled.
func (c Config) DormancyCutoffTime() time.Time {
	if c.Run.DormancyCutoff == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", c.Run.DormancyCutoff)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func parseEnvString(key string, dest *string) {
	if value := os.Getenv(key); value != "" {
		*dest = value
	}
}
