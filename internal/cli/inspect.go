package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pngstash/pngstash/internal/core"
	"github.com/pngstash/pngstash/internal/observability"
)

var (
	inspectFormat  string
	inspectNoColor bool
)

// Table styles.
var (
	inspectHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	inspectSummaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	inspectCritStyle    = lipgloss.NewStyle().Bold(true)
	inspectBadStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <png>",
	Short: "Show a structured chunk report for a PNG file",
	Long: `Inspect a PNG file chunk by chunk: type, length, CRC, property flags,
and a printable data preview, plus file-level summary fields.

The FLAGS column encodes the four chunk type properties: C/a for
critical/ancillary, P/p for public/private, ! when the reserved bit is
set, S for safe-to-copy.

The default format follows output.format from the configuration; --format
overrides it per invocation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil || Inspector == nil {
			return fmt.Errorf("services not initialized")
		}

		path := args[0]
		f, err := Store.Load(path)
		if err != nil {
			return err
		}

		report := Inspector.Inspect(f)
		report.Path = path

		format := core.FormatTable
		if Cfg != nil && Cfg.Format != "" {
			format = Cfg.Format
		}
		if cmd.Flags().Changed("format") {
			format = inspectFormat
		}

		var rendered string
		switch format {
		case core.FormatJSON:
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting report as JSON: %w", err)
			}
			rendered = string(data)
		case core.FormatYAML:
			data, err := yaml.Marshal(report)
			if err != nil {
				return fmt.Errorf("formatting report as YAML: %w", err)
			}
			rendered = strings.TrimRight(string(data), "\n")
		case core.FormatTable:
			rendered = renderChunkTable(report, colorEnabled())
		default:
			return fmt.Errorf("invalid format %q, must be one of: table, yaml, json", format)
		}

		observability.Record(EventLog, observability.OpInspected, path, "file inspected",
			map[string]any{"chunks": report.ChunkCount})

		cmd.Println(rendered)
		return nil
	},
}

// colorEnabled reports whether table output should be styled, combining the
// configured output.color mode with the --no-color flag.
func colorEnabled() bool {
	if inspectNoColor {
		return false
	}
	mode := core.ColorAuto
	if Cfg != nil && Cfg.Color != "" {
		mode = Cfg.Color
	}
	// ColorAuto leaves degradation to lipgloss's terminal detection.
	return mode != core.ColorNever
}

// renderChunkTable renders the report in the fixed-width table format.
func renderChunkTable(report *core.ChunkReport, useColor bool) string {
	header := inspectHeaderStyle
	summary := inspectSummaryStyle
	crit := inspectCritStyle
	bad := inspectBadStyle
	if !useColor {
		plain := lipgloss.NewStyle()
		header, summary, crit, bad = plain, plain, plain, plain
	}

	var b strings.Builder

	b.WriteString(summary.Render(fmt.Sprintf("%s: %d chunks, %d data bytes, IHDR %s, IEND %s",
		report.Path, report.ChunkCount, report.DataBytes,
		yesNo(report.HasIHDR), yesNo(report.HasIEND))))
	b.WriteString("\n\n")

	b.WriteString(header.Render(fmt.Sprintf("%4s  %-4s  %8s  %10s  %-5s  %s",
		"#", "TYPE", "LENGTH", "CRC", "FLAGS", "PREVIEW")))
	b.WriteString("\n")

	for _, ci := range report.Chunks {
		line := fmt.Sprintf("%4d  %-4s  %8d  %10d  %-5s  %s",
			ci.Index, ci.Type, ci.Length, ci.CRC, flagsOf(ci), ci.Preview)
		switch {
		case !ci.ReservedValid:
			line = bad.Render(line)
		case ci.Critical:
			line = crit.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// flagsOf encodes the chunk type properties as a compact four-letter string.
func flagsOf(ci core.ChunkInfo) string {
	f := []byte{'a', 'p', '-', '.'}
	if ci.Critical {
		f[0] = 'C'
	}
	if ci.Public {
		f[1] = 'P'
	}
	if !ci.ReservedValid {
		f[2] = '!'
	}
	if ci.SafeToCopy {
		f[3] = 'S'
	}
	return string(f)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "table", "Report format: table, yaml, or json")
	inspectCmd.Flags().BoolVar(&inspectNoColor, "no-color", false, "Disable styled table output")
	_ = inspectCmd.RegisterFlagCompletionFunc("format", completeFormats)
	rootCmd.AddCommand(inspectCmd)
}
