// Package report renders the outcome of an ingestion run: a per-file report
// written to disk and a styled summary for the terminal.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fjacquet/bank-ingest/internal/fileutils"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"

	"github.com/gocarina/gocsv"
)

// Supported report formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// FileRow is one line of the per-file report.
type FileRow struct {
	File         string `csv:"file" json:"file"`
	Bank         string `csv:"bank" json:"bank"`
	AccountType  string `csv:"acc_type" json:"acc_type"`
	MappingType  string `csv:"mapping_type" json:"mapping_type"`
	Status       string `csv:"status" json:"status"`
	Reason       string `csv:"reason" json:"reason,omitempty"`
	Rows         int    `csv:"rows" json:"rows"`
	SoftFailures int    `csv:"soft_failures" json:"soft_failures"`
}

// TypeRow holds the counts of one mapping type in the JSON report.
type TypeRow struct {
	MappingType string `json:"mapping_type"`
	Produced    int    `json:"produced"`
	Existing    int    `json:"existing"`
	New         int    `json:"new"`
	Duplicates  int    `json:"duplicates"`
	Uploaded    int    `json:"uploaded"`
	Error       string `json:"error,omitempty"`
}

// RunReport is the JSON form of a run.
type RunReport struct {
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Types      []TypeRow `json:"types"`
	Files      []FileRow `json:"files"`
}

// FileRows converts file results into report rows, in input order.
func FileRows(files []models.FileResult) []FileRow {
	rows := make([]FileRow, 0, len(files))
	for _, f := range files {
		rows = append(rows, FileRow{
			File:         f.FileName,
			Bank:         f.Identity.Bank,
			AccountType:  f.Identity.AccountType,
			MappingType:  f.Identity.MappingType,
			Status:       string(f.Status),
			Reason:       f.Reason,
			Rows:         f.Rows,
			SoftFailures: f.SoftFailures,
		})
	}
	return rows
}

// NewRunReport builds the JSON form of summary.
func NewRunReport(summary *models.RunSummary) *RunReport {
	r := &RunReport{
		RunID:      summary.RunID,
		Status:     string(summary.Status()),
		DryRun:     summary.DryRun,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		Files:      FileRows(summary.Files),
	}
	for _, mt := range orderedTypes(summary) {
		ts := summary.Types[mt]
		row := TypeRow{
			MappingType: mt,
			Produced:    ts.Produced,
			Existing:    ts.Existing,
			New:         ts.New,
			Duplicates:  ts.Duplicates,
			Uploaded:    ts.Uploaded,
		}
		if ts.Err != nil {
			row.Error = ts.Err.Error()
		}
		r.Types = append(r.Types, row)
	}
	return r
}

// ReportGenerator renders run reports in various formats.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	return &ReportGenerator{
		logger: logger.WithField(logging.FieldComponent, "ReportGenerator"),
	}
}

// GenerateReport renders summary in the specified format (csv or json).
// The csv form has one row per input file.
func (g *ReportGenerator) GenerateReport(summary *models.RunSummary, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		if err := g.writeCSV(&buf, FileRows(summary.Files)); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		out, err := json.MarshalIndent(NewRunReport(summary), "", "  ")
		if err != nil {
			g.logger.WithError(err).Error("Failed to marshal JSON report")
			return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteReport writes summary to path, choosing the format from its extension
// (.json, anything else is csv).
func (g *ReportGenerator) WriteReport(path string, summary *models.RunSummary) error {
	format := FormatCSV
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}

	data, err := g.GenerateReport(summary, format)
	if err != nil {
		return err
	}

	file, err := fileutils.CreateFile(path)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("error writing report: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing report: %w", err)
	}

	g.logger.Info("Report written",
		logging.Field{Key: logging.FieldPath, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(summary.Files)})
	return nil
}

func (g *ReportGenerator) writeCSV(w io.Writer, rows []FileRow) error {
	csvWriter := csv.NewWriter(w)
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		g.logger.WithError(err).Error("Failed to marshal CSV report")
		return fmt.Errorf("error writing CSV report: %w", err)
	}
	return nil
}

func orderedTypes(summary *models.RunSummary) []string {
	out := make([]string, 0, len(summary.Types))
	seen := make(map[string]bool, len(summary.Types))
	for _, mt := range models.MappingTypes {
		if _, ok := summary.Types[mt]; ok {
			out = append(out, mt)
			seen[mt] = true
		}
	}
	var extra []string
	for mt := range summary.Types {
		if !seen[mt] {
			extra = append(extra, mt)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
