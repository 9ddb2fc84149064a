package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/scales-okn/jed/internal/audit"
)

// displayAuditEvent formats and prints a single event with consistent two-line format
func displayAuditEvent(event *audit.Event) {
	emoji := getEventEmoji(event)
	severityColor := getSeverityColor(event.Severity)

	timestamp := event.Timestamp.Format("15:04:05")

	phaseColor := color.New(color.FgGreen)
	phase := phaseColor.Sprint(event.Phase)

	typeColor := color.New(color.FgMagenta)
	eventType := typeColor.Sprint(event.Type)

	// Line 1: emoji + [timestamp] + phase + event_type: message
	// Truncate message to keep lines readable at terminal width
	maxMessageLen := 70 - len(event.Phase) - len(string(event.Type))
	message := truncateString(event.Message, maxMessageLen)

	fmt.Printf("%s [%s] %s %s: %s\n",
		emoji,
		timestamp,
		phase,
		eventType,
		severityColor.Sprint(message),
	)

	// Line 2: metadata fields (pipe-separated)
	metadata := extractEventMetadata(event)
	if len(metadata) > 0 {
		gray := color.New(color.FgHiBlack)
		fmt.Printf("  %s\n", gray.Sprint(metadata))
	} else {
		fmt.Println()
	}
}

// getEventEmoji returns the appropriate emoji for each event type
func getEventEmoji(event *audit.Event) string {
	switch event.Type {
	case audit.EventTypeMerge:
		return "🔗"
	case audit.EventTypeMergeRefused:
		return "🚫"
	case audit.EventTypeAmbiguityMarked:
		return "❓"
	case audit.EventTypeMentionTossed:
		return "🗑️"
	case audit.EventTypePhaseStarted:
		return "🚀"
	case audit.EventTypePhaseCompleted:
		return "✅"
	case audit.EventTypeDormantSetAside:
		return "💤"
	case audit.EventTypeLabelDecision:
		return "🏷️"
	case audit.EventTypeCatalogWritten:
		return "📦"
	case audit.EventTypeProgress:
		return "⏳"
	}

	// Fallback to severity-based icons
	switch event.Severity {
	case audit.SeverityInfo:
		return "ℹ️"
	case audit.SeverityWarning:
		return "⚠️"
	case audit.SeverityError:
		return "❌"
	default:
		return "•"
	}
}

// getSeverityColor returns the appropriate color for a severity level
func getSeverityColor(severity audit.EventSeverity) *color.Color {
	switch severity {
	case audit.SeverityInfo:
		return color.New(color.FgCyan)
	case audit.SeverityWarning:
		return color.New(color.FgYellow)
	case audit.SeverityError:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgWhite)
	}
}

// extractEventMetadata pulls the key fields for each event type.
// Returns a pipe-separated string.
func extractEventMetadata(event *audit.Event) string {
	var fields []string

	switch event.Type {
	case audit.EventTypeMerge:
		winner := getStringField(event.Data, "winner", "")
		loser := getStringField(event.Data, "loser", "")
		strategy := getStringField(event.Data, "strategy", "unknown")
		fields = []string{truncateString(winner, 25), "< " + truncateString(loser, 25), strategy}

	case audit.EventTypeMergeRefused:
		idA := getStringField(event.Data, "id_a", "")
		idB := getStringField(event.Data, "id_b", "")
		strategy := getStringField(event.Data, "strategy", "unknown")
		fields = []string{idA + " vs " + idB, strategy}

	case audit.EventTypeAmbiguityMarked:
		name := getStringField(event.Data, "name", "")
		candidates := getIntField(event.Data, "candidate_count", 0)
		if candidates == 0 {
			if list, ok := event.Data["candidates"].([]interface{}); ok {
				candidates = len(list)
			}
		}
		strategy := getStringField(event.Data, "strategy", "unknown")
		fields = []string{truncateString(name, 25), fmt.Sprintf("%d candidates", candidates), strategy}

	case audit.EventTypeMentionTossed:
		matched := getStringField(event.Data, "matched_against", "")
		kind := getStringField(event.Data, "kind", "party")
		score := getIntField(event.Data, "score", 0)
		fields = []string{truncateString(matched, 30), kind, fmt.Sprintf("%d%%", score)}

	case audit.EventTypePhaseStarted:
		pools := fmt.Sprintf("%d pools", getIntField(event.Data, "pools", 0))
		nodesIn := fmt.Sprintf("%d nodes", getIntField(event.Data, "nodes_in", 0))
		fields = []string{pools, nodesIn}

	case audit.EventTypePhaseCompleted:
		merges := fmt.Sprintf("%d merges", getIntField(event.Data, "merges", 0))
		nodesOut := fmt.Sprintf("%d nodes out", getIntField(event.Data, "nodes_out", 0))
		duration := formatDurationMs(getIntField(event.Data, "duration_ms", 0))
		fields = []string{merges, nodesOut, duration}

	case audit.EventTypeDormantSetAside:
		fjcID := getStringField(event.Data, "fjc_id", "")
		terminated := getStringField(event.Data, "latest_termination", "")
		fields = []string{"FJC " + fjcID, "terminated " + terminated}

	case audit.EventTypeLabelDecision:
		label := getStringField(event.Data, "label", "unknown")
		entityID := getStringField(event.Data, "entity_id", "denied")
		fields = []string{label, entityID}

	case audit.EventTypeCatalogWritten:
		entries := fmt.Sprintf("%d entries", getIntField(event.Data, "entries", 0))
		mentions := fmt.Sprintf("%d mentions", getIntField(event.Data, "mentions", 0))
		shards := fmt.Sprintf("%d shards", getIntField(event.Data, "shards", 0))
		fields = []string{entries, mentions, shards}

	default:
		if errMsg, ok := event.Data["error"].(string); ok {
			fields = append(fields, truncateString(errMsg, 50))
		}
		if duration := getIntField(event.Data, "duration_ms", 0); duration > 0 {
			fields = append(fields, formatDurationMs(duration))
		}
	}

	var nonEmpty []string
	for _, f := range fields {
		if f != "" {
			nonEmpty = append(nonEmpty, f)
		}
	}
	return strings.Join(nonEmpty, " | ")
}

func getStringField(data map[string]interface{}, key, defaultValue string) string {
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// getIntField reads an integer field, tolerating the float64 that JSON
// round-trips produce.
func getIntField(data map[string]interface{}, key string, defaultValue int) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultValue
}

func formatDurationMs(ms int) string {
	if ms <= 0 {
		return ""
	}
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	minutes := int(seconds) / 60
	remaining := int(seconds) % 60
	return fmt.Sprintf("%dm%ds", minutes, remaining)
}

func truncateString(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
