// Package ingest provides the command that loads CSV exports into the database.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/bank-ingest/cmd/root"
	"fjacquet/bank-ingest/internal/container"
	"fjacquet/bank-ingest/internal/fileutils"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/report"
	"fjacquet/bank-ingest/internal/validation"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest CSV exports into the database",
	Long: `Ingest every CSV export found in the input directory.

Each file is classified by its name, transformed with the matching mapping
profile and accumulated per mapping type. Records whose surrogate key is
already stored are skipped, the rest are appended. A file that cannot be
processed is reported and skipped without stopping the run.

Example:
  bank-ingest ingest -i data/ --report run.csv
  bank-ingest ingest --dry-run`,
	RunE: ingestFunc,
}

var (
	dryRun     bool
	reportPath string
	noProgress bool
)

func init() {
	Cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Transform and report without touching the database")
	Cmd.Flags().StringVar(&reportPath, "report", "", "Write a per-file report (.csv or .json)")
	Cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Hide the progress bar")
}

// Options controls one ingestion run.
type Options struct {
	InputDir     string
	DryRun       bool
	ReportPath   string
	ShowProgress bool
}

func ingestFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}
	cfg := c.GetConfig()

	opts := Options{
		InputDir:     root.SharedFlags.Input,
		DryRun:       dryRun || cfg.Ingest.DryRun,
		ReportPath:   reportPath,
		ShowProgress: !noProgress,
	}
	if opts.ReportPath == "" {
		opts.ReportPath = cfg.Ingest.ReportPath
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Run(ctx, c, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// Run ingests the files of the input directory, prints the run summary to out
// and writes the report file when one is requested. It returns an error for
// fatal problems and cancellation; a partial run is not an error.
func Run(ctx context.Context, c *container.Container, opts Options, out, progressOut io.Writer) error {
	cfg := c.GetConfig()
	logger := c.GetLogger()

	dir := opts.InputDir
	if dir == "" {
		dir = cfg.Data.CSVDir
	}
	ext := cfg.Data.Extension
	if ext == "" {
		ext = ".csv"
	}

	if err := validation.IsValidInputDir(dir); err != nil {
		return err
	}
	if opts.ReportPath != "" {
		if err := validation.IsValidReportPath(opts.ReportPath); err != nil {
			return err
		}
	}

	paths, err := fileutils.ListFiles(dir, ext)
	if err != nil {
		return err
	}
	logger.Info("Found input files",
		logging.Field{Key: logging.FieldDirectory, Value: dir},
		logging.Field{Key: logging.FieldCount, Value: len(paths)})

	pipeline, err := c.NewPipeline(opts.DryRun)
	if err != nil {
		return err
	}
	acc, err := c.GetAccumulator()
	if err != nil {
		return err
	}

	bar := newProgressBar(len(paths), progressOut, opts.ShowProgress)
	acc.OnFile(func(models.FileResult) { _ = bar.Add(1) })
	defer acc.OnFile(nil)

	summary, runErr := pipeline.Run(ctx, paths)
	_ = bar.Finish()

	if _, err := fmt.Fprintln(out, report.RenderSummary(summary)); err != nil {
		logger.WithError(err).Warn("Failed to print run summary")
	}

	if opts.ReportPath != "" {
		if err := c.GetReportGenerator().WriteReport(opts.ReportPath, summary); err != nil {
			return err
		}
	}

	if runErr != nil {
		return fmt.Errorf("ingestion interrupted: %w", runErr)
	}
	return nil
}

func newProgressBar(total int, w io.Writer, visible bool) *progressbar.ProgressBar {
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions64(int64(total),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionSetDescription("Ingesting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
