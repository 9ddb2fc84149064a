package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/scales-okn/jed/internal/pipeline"
	"github.com/scales-okn/jed/internal/types"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Tag new mentions against an existing catalog",
	Long: `Resolve a fresh batch of mentions against the catalog of a previous
run without rebuilding it.

Mentions merge within each case and drop party/counsel echoes as usual,
then each resolved name is probed against the catalog entities. No new
entity IDs are minted: a name matching nothing stays inconclusive and
can be picked up by the next full run.

Examples:
  jed tag --run 4f7d... --mentions 'new/mentions/*.jsonl'
  jed tag --mentions 'new/mentions/*.jsonl'    # latest run's catalog`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyRunFlags(cmd)
		ctx := cmd.Context()
		started := time.Now()

		sourceRun, _ := cmd.Flags().GetString("run")
		if sourceRun == "" {
			var err error
			sourceRun, err = latestRunID(cmd)
			if err != nil {
				return err
			}
		}
		catalog, err := store.GetCatalog(ctx, sourceRun)
		if err != nil {
			return err
		}
		if len(catalog) == 0 {
			return fmt.Errorf("run %s has no catalog", sourceRun)
		}

		runID := uuid.New().String()
		mentions, parties, counsels, _, _, err := loadInputs(cmd, runID)
		if err != nil {
			return err
		}

		opts := pipeline.Options{
			RunID:         runID,
			TossThreshold: cfg.Run.TossThreshold,
			Concurrency:   cfg.Run.Concurrency,
		}
		fmt.Printf("Tagging %d mentions against run %s (%d entities)\n",
			len(mentions), sourceRun, len(catalog))

		runner := pipeline.NewRunner(opts, store)
		result, err := runner.Tag(ctx, mentions, parties, counsels, catalog)
		if err != nil {
			return err
		}

		shards, _, err := writeOutputs(cmd, runID, result)
		if err != nil {
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
			Entities:    len(catalog),
			Tossed:      result.Tossed,
			Merges:      result.Merges,
		}); err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("\n%s Tagged run %s in %s (%d shards written)\n",
			green("✓"), runID, time.Since(started).Round(time.Second), shards)
		return nil
	},
}

func init() {
	tagCmd.Flags().String("run", "", "Source run whose catalog to tag against (default: latest)")
	tagCmd.Flags().String("name", "", "Human-readable run name")
	tagCmd.Flags().String("mentions", "", "Glob of mention JSONL files")
	tagCmd.Flags().String("parties", "", "Party header JSONL file")
	tagCmd.Flags().String("counsels", "", "Counsel header JSONL file")
	tagCmd.Flags().StringP("out", "o", "", "Output directory")
	tagCmd.Flags().Int("toss-threshold", 0, "Similarity bound for party/counsel echo drops")
	tagCmd.Flags().Int("concurrency", 0, "Parallel sweep bound (0 uses all CPUs)")
	rootCmd.AddCommand(tagCmd)
}

// latestRunID returns the newest stored run.
func latestRunID(cmd *cobra.Command) (string, error) {
	summaries, err := store.GetRunSummaries(cmd.Context(), 1)
	if err != nil {
		return "", err
	}
	if len(summaries) == 0 {
		return "", fmt.Errorf("no runs stored yet, run 'jed run' first")
	}
	return summaries[0].RunID, nil
}
