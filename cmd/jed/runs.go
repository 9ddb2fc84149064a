package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored resolution runs",
	Long: `List the resolution runs stored in the database, newest first.

Examples:
  jed runs
  jed runs -n 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		summaries, err := store.GetRunSummaries(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("failed to fetch runs: %w", err)
		}
		if len(summaries) == 0 {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Printf("\n%s No runs stored yet\n\n", yellow("✨"))
			return nil
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("\n%s Runs (%d):\n\n", cyan("📋"), len(summaries))
		for _, s := range summaries {
			name := s.Name
			if name == "" {
				name = "(unnamed)"
			}
			elapsed := s.CompletedAt.Sub(s.StartedAt).Round(time.Second)
			fmt.Printf("%s  %s  %s\n", green(s.RunID), name,
				s.StartedAt.Format("2006-01-02 15:04"))
			fmt.Printf("  %d mentions, %d entities, %d merges, %d tossed, %s\n",
				s.Mentions, s.Entities, s.Merges, s.Tossed, elapsed)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	runsCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
	rootCmd.AddCommand(runsCmd)
}
