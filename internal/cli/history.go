package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pngstash/pngstash/internal/observability"
)

var (
	historySince   string
	historyOp      string
	historyJSON    bool
	historySummary bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past pngstash operations",
	Long: `Display the operation log: every encode, decode, remove, inspect, and
verify this tool has recorded, with timestamps and file paths.

Filter with --since (e.g. 7d, 24h) and --op (e.g. png.encoded). Use
--summary for aggregated counts over the window instead of individual
events, and --json for machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized (observability may be disabled)")
		}

		sinceTime, err := parseSinceDuration(historySince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		if historySummary {
			return printHistorySummary(cmd, sinceTime)
		}

		filter := observability.EventFilter{Since: &sinceTime, Op: historyOp}
		events, err := EventLog.Read(filter)
		if err != nil {
			return fmt.Errorf("reading event log: %w", err)
		}

		if historyJSON {
			data, err := json.MarshalIndent(events, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting events as JSON: %w", err)
			}
			cmd.Println(string(data))
			return nil
		}

		if len(events) == 0 {
			cmd.Println("No operations recorded.")
			return nil
		}

		for _, e := range events {
			line := fmt.Sprintf("%s  %-17s %s", e.Time.Format("2006-01-02 15:04"), e.Op, e.Path)
			// JSON numbers decode as float64.
			if bytes, ok := e.Data["bytes"].(float64); ok {
				line += fmt.Sprintf("  (%d bytes)", int64(bytes))
			}
			cmd.Println(line)
		}
		return nil
	},
}

// printHistorySummary prints aggregated metrics for the window.
func printHistorySummary(cmd *cobra.Command, since time.Time) error {
	if MetricsCalc == nil {
		return fmt.Errorf("metrics calculator not initialized (observability may be disabled)")
	}

	metrics, err := MetricsCalc.Calculate(since)
	if err != nil {
		return fmt.Errorf("calculating metrics: %w", err)
	}

	if historyJSON {
		data, err := json.MarshalIndent(metrics, "", "  ")
		if err != nil {
			return fmt.Errorf("formatting metrics as JSON: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Operations (since %s)\n\n", since.Format("2006-01-02"))
	cmd.Printf("  %-24s %d\n", "Events recorded:", metrics.EventCount)
	cmd.Printf("  %-24s %d\n", "Messages embedded:", metrics.MessagesEmbedded)
	cmd.Printf("  %-24s %d\n", "Messages extracted:", metrics.MessagesExtracted)
	cmd.Printf("  %-24s %d\n", "Chunks removed:", metrics.ChunksRemoved)
	cmd.Printf("  %-24s %d\n", "Files inspected:", metrics.FilesInspected)
	cmd.Printf("  %-24s %d\n", "Files verified:", metrics.FilesVerified)
	cmd.Printf("  %-24s %d\n", "Bytes embedded:", metrics.BytesEmbedded)

	if len(metrics.OpsByType) > 0 {
		cmd.Println("\n  Operations by type:")
		for op, count := range metrics.OpsByType {
			cmd.Printf("    %-20s %d\n", op+":", count)
		}
	}

	if metrics.OldestEvent != nil {
		cmd.Printf("\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
	}
	if metrics.NewestEvent != nil {
		cmd.Printf("  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
	}

	return nil
}

// parseSinceDuration parses a human-friendly duration string like "7d", "30d",
// or "24h" and returns the corresponding time in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func init() {
	historyCmd.Flags().StringVar(&historySince, "since", "7d", "Time window (e.g. 7d, 30d, 24h)")
	historyCmd.Flags().StringVar(&historyOp, "op", "", "Filter by operation type (e.g. png.encoded)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	historyCmd.Flags().BoolVar(&historySummary, "summary", false, "Show aggregated counts instead of individual events")
	_ = historyCmd.RegisterFlagCompletionFunc("op", completeOps)
	rootCmd.AddCommand(historyCmd)
}
