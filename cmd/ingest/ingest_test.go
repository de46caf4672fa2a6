package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/bank-ingest/cmd/ingest"
	"fjacquet/bank-ingest/internal/config"
	"fjacquet/bank-ingest/internal/container"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/parsererror"
	"fjacquet/bank-ingest/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataConfig = `
file_pattern: '^(BankA)_(CHK)_(stm)_.*\.csv$'
mapping:
  stm:
    BankA:
      csv_separator: ';'
      original_fields: {acc: acc_number, dt: dt, sum: sum, dc: dc}
      desired_fields: [surrogate_key, acc_number, acc_name, dt, sum, file_name]
      surrogate_key_columns: [acc_number, dt, sum]
      date_format: '%Y-%m-%d'
      accounts: {1001: Household}
      debit_multiplier: {D: -1, C: 1}
`

type fixture struct {
	container *container.Container
	records   *store.MockRecordStore
	history   *store.MockIngestionHistoryStore
	inputDir  string
}

func newFixture(t *testing.T, withStorage bool) *fixture {
	t.Helper()
	base := t.TempDir()
	configPath := filepath.Join(base, "data_config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(dataConfig), 0600))

	inputDir := filepath.Join(base, "in")
	require.NoError(t, os.MkdirAll(inputDir, 0750))
	files := map[string]string{
		"BankA_CHK_stm_01.csv": "acc;dt;sum;dc\n1001;2024-01-05;100,50;D\n1001;2024-01-06;1,00;C\n",
		"BankA_CHK_stm_02.csv": "acc;dt;sum;dc\n1001;2024-01-07;2,00;C\n",
		"unknown_export.csv":   "a;b\n1;2\n",
		"readme.txt":           "not an export\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(inputDir, name), []byte(content), 0600))
	}

	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Data.ConfigPath = configPath
	cfg.Data.CSVDir = inputDir
	cfg.Data.Extension = ".csv"
	cfg.Ingest.DropBatchDuplicates = true

	f := &fixture{inputDir: inputDir}
	opts := []container.Option{container.WithLogger(logging.NewMockLogger())}
	if withStorage {
		var storage *store.Storage
		storage, f.records, f.history = store.NewMockStorage()
		opts = append(opts, container.WithStorage(storage))
	}
	c, err := container.NewContainer(cfg, opts...)
	require.NoError(t, err)
	f.container = c
	return f
}

func TestIngestCommand_Metadata(t *testing.T) {
	assert.Equal(t, "ingest", ingest.Cmd.Use)
	assert.Contains(t, ingest.Cmd.Short, "Ingest CSV exports")
	assert.Contains(t, ingest.Cmd.Long, "Example")
	assert.NotNil(t, ingest.Cmd.RunE)

	for _, name := range []string{"dry-run", "report", "no-progress"} {
		assert.NotNil(t, ingest.Cmd.Flags().Lookup(name), name)
	}
}

func TestRun_UploadsNewRecordsAndWritesReport(t *testing.T) {
	f := newFixture(t, true)
	reportPath := filepath.Join(t.TempDir(), "run.csv")
	var out bytes.Buffer

	err := ingest.Run(context.Background(), f.container, ingest.Options{ReportPath: reportPath}, &out, nil)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "INGESTION COMPLETE")
	assert.Contains(t, out.String(), "unknown_export.csv")
	assert.Equal(t, 1, f.records.AppendCalls("stm"))

	require.Len(t, f.history.Entries, 1)
	entry := f.history.Entries[0]
	assert.Equal(t, "success", entry.Status)
	assert.Equal(t, 2, entry.FilesLoaded)
	assert.Equal(t, 1, entry.FilesSkipped)
	assert.Equal(t, 3, entry.StmProduced)
	assert.Equal(t, 3, entry.StmUploaded)

	content, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "file,bank,acc_type,mapping_type,status,reason,rows,soft_failures")
	assert.Contains(t, string(content), "BankA_CHK_stm_01.csv,BankA,CHK,stm,loaded,,2,0")
}

func TestRun_RerunUploadsNothing(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, ingest.Run(context.Background(), f.container, ingest.Options{}, &bytes.Buffer{}, nil))
	require.NoError(t, ingest.Run(context.Background(), f.container, ingest.Options{}, &bytes.Buffer{}, nil))

	require.Len(t, f.history.Entries, 2)
	assert.Equal(t, 3, f.history.Entries[1].StmProduced)
	assert.Equal(t, 0, f.history.Entries[1].StmUploaded)
	assert.Equal(t, 1, f.records.AppendCalls("stm"))
}

func TestRun_DryRunNeverOpensTheDatabase(t *testing.T) {
	f := newFixture(t, false)
	var out bytes.Buffer

	err := ingest.Run(context.Background(), f.container, ingest.Options{DryRun: true}, &out, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "DRY RUN COMPLETE")
}

func TestRun_WithoutDatabaseURLIsFatal(t *testing.T) {
	f := newFixture(t, false)

	err := ingest.Run(context.Background(), f.container, ingest.Options{}, &bytes.Buffer{}, nil)
	var cfgErr *parsererror.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestRun_NoInputFiles(t *testing.T) {
	f := newFixture(t, true)

	err := ingest.Run(context.Background(), f.container, ingest.Options{InputDir: t.TempDir()}, &bytes.Buffer{}, nil)
	assert.ErrorIs(t, err, parsererror.ErrNoInputFiles)
	assert.Empty(t, f.history.Entries)
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer

	err := ingest.Run(ctx, f.container, ingest.Options{}, &out, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, out.String(), "INGESTION FAILURE")
	require.Len(t, f.history.Entries, 1)
	assert.Equal(t, "failure", f.history.Entries[0].Status)
	assert.Equal(t, 0, f.records.AppendCalls("stm"))
}

func TestRun_RejectsBadArgumentsBeforeIngesting(t *testing.T) {
	f := newFixture(t, true)

	err := ingest.Run(context.Background(), f.container,
		ingest.Options{ReportPath: filepath.Join(t.TempDir(), "run.xml")}, &bytes.Buffer{}, nil)
	assert.ErrorContains(t, err, "unsupported report format")

	err = ingest.Run(context.Background(), f.container,
		ingest.Options{InputDir: filepath.Join(t.TempDir(), "absent")}, &bytes.Buffer{}, nil)
	assert.ErrorContains(t, err, "path does not exist")

	assert.Empty(t, f.history.Entries)
	assert.Equal(t, 0, f.records.AppendCalls("stm"))
}
