package main

import (
	"github.com/spf13/cobra"

	"github.com/scales-okn/jed/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively settle ambiguous mentions",
	Long: `Step through the ambiguous names of a run and assign each to one of
its candidate entities, or leave it ambiguous.

Decisions rewrite the stored mentions only; the catalog is untouched.

Examples:
  jed review                 # review the latest run
  jed review --run 4f7d...   # review a specific run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, _ := cmd.Flags().GetString("run")
		if runID == "" {
			var err error
			runID, err = latestRunID(cmd)
			if err != nil {
				return err
			}
		}
		r, err := review.New(store, runID)
		if err != nil {
			return err
		}
		return r.Run(cmd.Context())
	},
}

func init() {
	reviewCmd.Flags().String("run", "", "Run to review (default: latest)")
	rootCmd.AddCommand(reviewCmd)
}
