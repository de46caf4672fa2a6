package report

import (
	"fmt"
	"strings"

	"fjacquet/bank-ingest/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// RenderHistory formats ingestion history rows as a table, newest first as given.
func RenderHistory(entries []store.IngestionHistory) string {
	if len(entries) == 0 {
		return mutedStyle.Render("  No ingestion runs recorded.") + "\n"
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("RUN", "STARTED", "STATUS", "FILES", "STM", "SEC", "DURATION")

	for _, e := range entries {
		t.Row(
			e.RunID,
			e.StartedAt.Format(historyTimeLayout),
			strings.ToUpper(e.Status),
			fmt.Sprintf("%d/%d", e.FilesLoaded, e.FilesLoaded+e.FilesSkipped),
			fmt.Sprintf("%d/%d", e.StmUploaded, e.StmProduced),
			fmt.Sprintf("%d/%d", e.SecUploaded, e.SecProduced),
			e.FinishedAt.Sub(e.StartedAt).String(),
		)
	}
	return t.Render() + "\n"
}
