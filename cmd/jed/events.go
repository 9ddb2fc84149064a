package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/scales-okn/jed/internal/audit"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show audit events from resolution runs",
	Long: `Display the audit trail of resolution runs.

Shows events including:
- Merges and refused merges
- Ambiguity calls
- Tossed party/counsel echoes
- Phase transitions
- Dormant codebook judges
- Labeling decisions

Use filters to narrow down events by run, type, phase, or severity.

Examples:
  jed events                           # Show last 20 events
  jed events -n 50                     # Show last 50 events
  jed events --run 4f7d...             # Show events for one run
  jed events --type merge_refused      # Show only refused merges
  jed events --phase court             # Show court-phase events
  jed events --severity warning        # Show warnings only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		runID, _ := cmd.Flags().GetString("run")
		eventType, _ := cmd.Flags().GetString("type")
		phase, _ := cmd.Flags().GetString("phase")
		severity, _ := cmd.Flags().GetString("severity")

		ctx := cmd.Context()

		var events []*audit.Event
		var err error
		if runID == "" && eventType == "" && phase == "" && severity == "" {
			events, err = store.GetRecentEvents(ctx, limit)
		} else {
			events, err = store.GetEvents(ctx, audit.Filter{
				RunID:    runID,
				Type:     audit.EventType(eventType),
				Phase:    audit.Phase(phase),
				Severity: audit.EventSeverity(severity),
				Limit:    limit,
			})
		}
		if err != nil {
			return fmt.Errorf("failed to fetch events: %w", err)
		}

		if len(events) == 0 {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Printf("\n%s No events found matching the criteria\n\n", yellow("✨"))
			return nil
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("\n%s Audit trail (%d events):\n\n", cyan("📋"), len(events))

		// GetRecentEvents returns newest first; show oldest first so the
		// trail reads top to bottom
		if runID == "" && eventType == "" && phase == "" && severity == "" {
			for i := len(events) - 1; i >= 0; i-- {
				displayAuditEvent(events[i])
			}
		} else {
			for _, ev := range events {
				displayAuditEvent(ev)
			}
		}

		fmt.Println()
		return nil
	},
}

func init() {
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().StringP("run", "r", "", "Filter events by run ID")
	eventsCmd.Flags().StringP("type", "t", "", "Filter by event type (e.g., merge, merge_refused, mention_tossed)")
	eventsCmd.Flags().StringP("phase", "p", "", "Filter by phase (case, court, free, label, io)")
	eventsCmd.Flags().StringP("severity", "s", "", "Filter by severity (info, warning, error)")
	rootCmd.AddCommand(eventsCmd)
}
