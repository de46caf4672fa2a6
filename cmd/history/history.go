// Package history provides the command that lists past ingestion runs.
package history

import (
	"context"
	"fmt"
	"io"

	"fjacquet/bank-ingest/cmd/root"
	"fjacquet/bank-ingest/internal/container"
	"fjacquet/bank-ingest/internal/report"

	"github.com/spf13/cobra"
)

// Cmd represents the history command
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "List recent ingestion runs",
	Long: `List the most recent ingestion runs recorded in the database, newest first.

Example:
  bank-ingest history --limit 20`,
	RunE: historyFunc,
}

var limit int

func init() {
	Cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
}

func historyFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}
	return Run(cmd.Context(), c, limit, cmd.OutOrStdout())
}

// Run prints the latest limit runs to out.
func Run(ctx context.Context, c *container.Container, limit int, out io.Writer) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	storage, err := c.GetStorage()
	if err != nil {
		return err
	}
	entries, err := storage.IngestionHistory.GetLatest(ctx, limit)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(out, report.RenderHistory(entries))
	return err
}
