package report

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/bank-ingest/internal/models"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	warning = lipgloss.Color("#FFAA00")
	white   = lipgloss.Color("#FFFFFF")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(warning).Bold(true)
)

const rule = "  ─────────────────────────────────────"

// RenderSummary formats the outcome of a run for the terminal.
func RenderSummary(summary *models.RunSummary) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(statusLine(summary))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(rule) + "\n")

	loaded, skipped := summary.FileCounts()
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render("Run:"), titleStyle.Render(summary.RunID))
	fmt.Fprintf(&b, "  %s %s loaded, %s skipped\n",
		mutedStyle.Render("Files:"),
		titleStyle.Render(fmt.Sprint(loaded)),
		titleStyle.Render(fmt.Sprint(skipped)))
	if !summary.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render("Time:"),
			titleStyle.Render(summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond).String()))
	}

	for _, mt := range orderedTypes(summary) {
		ts := summary.Types[mt]
		line := fmt.Sprintf("produced %d, existing %d, new %d", ts.Produced, ts.Existing, ts.New)
		if ts.Duplicates > 0 {
			line += fmt.Sprintf(", batch duplicates %d", ts.Duplicates)
		}
		if !summary.DryRun {
			line += fmt.Sprintf(", uploaded %d", ts.Uploaded)
		}
		fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render(mt+":"), titleStyle.Render(line))
		if ts.Err != nil {
			fmt.Fprintf(&b, "    %s\n", accentStyle.Render("✗ "+ts.Err.Error()))
		}
	}

	for _, f := range summary.Files {
		if f.Status == models.FileStatusSkipped {
			fmt.Fprintf(&b, "  %s %s %s\n", warningStyle.Render("!"), f.FileName, mutedStyle.Render(f.Reason))
		}
	}
	b.WriteString(mutedStyle.Render(rule) + "\n")
	return b.String()
}

func statusLine(summary *models.RunSummary) string {
	switch {
	case summary.DryRun:
		return warningStyle.Render("  ✓ DRY RUN COMPLETE (nothing written)")
	case summary.Status() == models.RunStatusSuccess:
		return successStyle.Render("  ✓ INGESTION COMPLETE")
	default:
		return accentStyle.Render("  ✗ INGESTION " + strings.ToUpper(string(summary.Status())))
	}
}
