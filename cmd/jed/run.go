package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/pipeline"
	"github.com/scales-okn/jed/internal/registry"
	"github.com/scales-okn/jed/internal/storage"
	"github.com/scales-okn/jed/internal/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolve judge mentions into an entity catalog",
	Long: `Run the full resolution pipeline over a batch of extracted mentions.

Mentions merge within each case, then against the FJC codebook and the
bankruptcy/magistrate roster within each court, then freely across the
whole corpus. Surviving entities are labeled and written to the catalog;
every mention gets its entity ID, the ambiguous sentinel, or the
inconclusive sentinel.

Input paths and thresholds come from the config file and can be
overridden per flag.

Examples:
  jed run --mentions 'data/mentions/*.jsonl' --fjc data/fjc.csv
  jed run --name weekly --toss-threshold 90
  jed run --dormancy-cutoff 1990-01-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyRunFlags(cmd)
		ctx := cmd.Context()
		runID := uuid.New().String()
		started := time.Now()

		lockPath, err := storage.AcquireRunLock(cfg.Database.Path, runID)
		if err != nil {
			return err
		}
		defer storage.ReleaseRunLock(lockPath)

		mentions, parties, counsels, fjc, roster, err := loadInputs(cmd, runID)
		if err != nil {
			return err
		}

		opts := pipeline.Options{
			RunID:          runID,
			DormancyCutoff: cfg.DormancyCutoffTime(),
			TossThreshold:  cfg.Run.TossThreshold,
			Concurrency:    cfg.Run.Concurrency,
		}
		if cfg.Run.ProgressIntervalSeconds > 0 {
			interval := time.Duration(cfg.Run.ProgressIntervalSeconds) * time.Second
			opts.ProgressEvents = rate.NewLimiter(rate.Every(interval), 1)
		}

		fmt.Printf("Resolving %d mentions (run %s)\n", len(mentions), runID)
		runner := pipeline.NewRunner(opts, store)
		result, err := runner.Run(ctx, mentions, parties, counsels, fjc, roster)
		if err != nil {
			return err
		}

		shards, catalogPath, err := writeOutputs(cmd, runID, result)
		if err != nil {
			return err
		}

		if err := store.SaveCatalog(ctx, runID, result.Catalog); err != nil {
			return err
		}
		if err := store.SaveMentions(ctx, runID, result.Mentions); err != nil {
			return err
		}
		if err := store.SaveRunSummary(ctx, types.RunSummary{
			RunID:       runID,
			Name:        cfg.Run.Name,
			StartedAt:   started,
			CompletedAt: time.Now(),
			Mentions:    len(result.Mentions),
			Entities:    len(result.Catalog),
			Tossed:      result.Tossed,
			Merges:      result.Merges,
		}); err != nil {
			return err
		}
		if err := store.Record(ctx, audit.NewCatalogWrittenEvent(runID, audit.CatalogWrittenData{
			Entries:     len(result.Catalog),
			Mentions:    len(result.Mentions),
			Shards:      shards,
			CatalogPath: catalogPath,
		})); err != nil {
			return err
		}

		printRunSummary(runID, result, time.Since(started))
		return nil
	},
}

func init() {
	runCmd.Flags().String("name", "", "Human-readable run name")
	runCmd.Flags().String("mentions", "", "Glob of mention JSONL files")
	runCmd.Flags().String("parties", "", "Party header JSONL file")
	runCmd.Flags().String("counsels", "", "Counsel header JSONL file")
	runCmd.Flags().String("fjc", "", "FJC codebook CSV")
	runCmd.Flags().String("roster-judges", "", "Bankruptcy/magistrate roster judges CSV")
	runCmd.Flags().String("roster-positions", "", "Bankruptcy/magistrate roster positions CSV")
	runCmd.Flags().StringP("out", "o", "", "Output directory")
	runCmd.Flags().Int("toss-threshold", 0, "Similarity bound for party/counsel echo drops")
	runCmd.Flags().String("dormancy-cutoff", "", "Set aside codebook judges terminated before this date (YYYY-MM-DD, empty disables)")
	runCmd.Flags().Int("concurrency", 0, "Parallel sweep bound (0 uses all CPUs)")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags folds explicit flags over the loaded config.
func applyRunFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("name") {
		cfg.Run.Name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("mentions") {
		cfg.Paths.Mentions, _ = cmd.Flags().GetString("mentions")
	}
	if cmd.Flags().Changed("parties") {
		cfg.Paths.Parties, _ = cmd.Flags().GetString("parties")
	}
	if cmd.Flags().Changed("counsels") {
		cfg.Paths.Counsels, _ = cmd.Flags().GetString("counsels")
	}
	if cmd.Flags().Changed("fjc") {
		cfg.Paths.FJCCodebook, _ = cmd.Flags().GetString("fjc")
	}
	if cmd.Flags().Changed("roster-judges") {
		cfg.Paths.RosterJudges, _ = cmd.Flags().GetString("roster-judges")
	}
	if cmd.Flags().Changed("roster-positions") {
		cfg.Paths.RosterPositions, _ = cmd.Flags().GetString("roster-positions")
	}
	if cmd.Flags().Changed("out") {
		cfg.Paths.OutputDir, _ = cmd.Flags().GetString("out")
	}
	if cmd.Flags().Changed("toss-threshold") {
		cfg.Run.TossThreshold, _ = cmd.Flags().GetInt("toss-threshold")
	}
	if cmd.Flags().Changed("dormancy-cutoff") {
		cfg.Run.DormancyCutoff, _ = cmd.Flags().GetString("dormancy-cutoff")
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Run.Concurrency, _ = cmd.Flags().GetInt("concurrency")
	}
}

// loadInputs reads every input the pipeline needs from the configured
// paths. The codebook and roster are optional; mentions are not.
func loadInputs(cmd *cobra.Command, runID string) (mentions []*types.Mention,
	parties, counsels []pipeline.HeaderEntity,
	fjc []types.FJCJudge, roster []types.RegistryJudge, err error) {

	ctx := cmd.Context()
	if cfg.Paths.Mentions == "" {
		return nil, nil, nil, nil, nil, fmt.Errorf("no mentions path configured (set paths.mentions or --mentions)")
	}
	mentions, err = storage.LoadMentions(ctx, cfg.Paths.Mentions, cfg.Run.Concurrency, store, runID)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to load mentions: %w", err)
	}

	partyRows, err := storage.LoadHeaderEntities(cfg.Paths.Parties)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to load parties: %w", err)
	}
	counselRows, err := storage.LoadHeaderEntities(cfg.Paths.Counsels)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to load counsels: %w", err)
	}
	parties = toHeaderEntities(partyRows)
	counsels = toHeaderEntities(counselRows)

	if cfg.Paths.FJCCodebook != "" {
		fjc, err = registry.LoadFJC(cfg.Paths.FJCCodebook, registry.FJCOptions{})
		if err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("failed to load FJC codebook: %w", err)
		}
	}
	if cfg.Paths.RosterJudges != "" {
		roster, err = registry.LoadRoster(cfg.Paths.RosterJudges, cfg.Paths.RosterPositions)
		if err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("failed to load roster: %w", err)
		}
	}
	return mentions, parties, counsels, fjc, roster, nil
}

func toHeaderEntities(rows []storage.HeaderRow) []pipeline.HeaderEntity {
	out := make([]pipeline.HeaderEntity, len(rows))
	for i, r := range rows {
		out[i] = pipeline.HeaderEntity{CaseID: r.CaseID, Role: r.Role, Name: r.Name}
	}
	return out
}

// writeOutputs writes the catalog and the sharded mentions under the
// output directory and returns the shard count and catalog path.
func writeOutputs(cmd *cobra.Command, runID string, result *pipeline.Result) (int, string, error) {
	outDir := cfg.Paths.OutputDir
	if outDir == "" {
		outDir = "out"
	}
	outDir = filepath.Join(outDir, runID)

	catalogPath := filepath.Join(outDir, "catalog.jsonl")
	if err := storage.WriteCatalog(catalogPath, result.Catalog); err != nil {
		return 0, "", fmt.Errorf("failed to write catalog: %w", err)
	}
	shards, err := storage.WriteMentionShards(cmd.Context(),
		filepath.Join(outDir, "mentions"), result.Mentions, cfg.Run.Concurrency, store, runID)
	if err != nil {
		return 0, "", fmt.Errorf("failed to write mention shards: %w", err)
	}
	return shards, catalogPath, nil
}

func printRunSummary(runID string, result *pipeline.Result, elapsed time.Duration) {
	green := color.New(color.FgGreen).SprintFunc()
	ambiguous, inconclusive := 0, 0
	for _, m := range result.Mentions {
		switch m.EntityID {
		case types.EntityAmbiguous:
			ambiguous++
		case types.EntityInconclusive:
			inconclusive++
		}
	}
	fmt.Printf("\n%s Run %s finished in %s\n", green("✓"), runID, elapsed.Round(time.Second))
	fmt.Printf("  %d entities in catalog\n", len(result.Catalog))
	fmt.Printf("  %d mentions resolved (%d merges, %d tossed)\n",
		len(result.Mentions), result.Merges, result.Tossed)
	if ambiguous > 0 {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("  %s %d ambiguous mentions, review with 'jed review --run %s'\n",
			yellow("!"), ambiguous, runID)
	}
	if inconclusive > 0 {
		fmt.Printf("  %d inconclusive mentions\n", inconclusive)
	}
}
