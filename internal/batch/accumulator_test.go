package batch

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/mapping"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/parsererror"
	"fjacquet/bank-ingest/internal/tabular"
	"fjacquet/bank-ingest/internal/transform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataConfig = `
file_pattern: '^(BankA|BankB)_(CHK|SAV)_(stm|sec)_.*\.csv$'
mapping:
  stm:
    BankA:
      csv_separator: ';'
      original_fields: {acc: acc_number, dt: dt, sum: sum, dc: dc}
      desired_fields: [surrogate_key, acc_number, dt, sum, file_name]
      surrogate_key_columns: [acc_number, dt, sum]
      date_format: '%Y-%m-%d'
      accounts: {1001: Household}
      debit_multiplier: {D: -1, C: 1}
  sec:
    BankB:
      csv_separator: ','
      original_fields: {ISIN: isin, Sent: send_dt, Effective: effect_dt}
      desired_fields: [surrogate_key, isin, effect_ym]
      surrogate_key_columns: [isin, send_dt]
      date_format: '%d.%m.%Y'
`

// cryptoRandIntn returns a random int in [0, n) using crypto/rand
func cryptoRandIntn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(result.Int64())
}

func newIntegrationAccumulator(t *testing.T) (*Accumulator, *logging.MockLogger) {
	t.Helper()
	cfg, err := mapping.ParseConfig([]byte(dataConfig), "data_config.yaml")
	require.NoError(t, err)
	logger := logging.NewMockLogger()
	transformer := transform.NewTransformer(tabular.NewReader(), logger,
		transform.WithClock(func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) }))
	acc, err := New(cfg, transformer, logger)
	require.NoError(t, err)
	return acc, logger
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}
	return dir
}

func TestAccumulator_Run(t *testing.T) {
	acc, logger := newIntegrationAccumulator(t)
	dir := writeFiles(t, map[string]string{
		"BankA_CHK_stm_01.csv": "acc;dt;sum;dc\n1001;2024-01-05;100,50;D\n1001;2024-01-06;1,00;C\n",
		"BankA_CHK_stm_02.csv": "acc;dt;sum;dc\n1001;2024-01-07;2,00;C\n",
		"BankB_SAV_sec_01.csv": "ISIN,Sent,Effective\nCH0012032048,30.01.2024,01.02.2024\n",
		"notes.csv":            "whatever\n1\n",
		"BankB_CHK_stm_01.csv": "acc;dt;sum;dc\n1001;2024-01-05;1,00;D\n",
		"BankA_SAV_stm_bad.csv": "acc;dt;sum\n1001;2024-01-05;1,00\n",
	})
	paths := []string{
		filepath.Join(dir, "BankA_CHK_stm_01.csv"),
		filepath.Join(dir, "notes.csv"),
		filepath.Join(dir, "BankB_SAV_sec_01.csv"),
		filepath.Join(dir, "BankB_CHK_stm_01.csv"),
		filepath.Join(dir, "BankA_SAV_stm_bad.csv"),
		filepath.Join(dir, "BankA_CHK_stm_02.csv"),
	}

	out, err := acc.Run(context.Background(), paths)
	require.NoError(t, err)

	stm := out.Table(models.MappingTypeStatement)
	require.Equal(t, 3, stm.Len())
	assert.Equal(t, []string{"surrogate_key", "acc_number", "dt", "sum", "file_name"}, stm.Columns())
	assert.Equal(t, "BankA_CHK_stm_01.csv", stm.Text(0, "file_name"))
	assert.Equal(t, "BankA_CHK_stm_01.csv", stm.Text(1, "file_name"))
	assert.Equal(t, "BankA_CHK_stm_02.csv", stm.Text(2, "file_name"))

	sec := out.Table(models.MappingTypeSecurity)
	require.Equal(t, 1, sec.Len())
	assert.Equal(t, "2024-02", sec.Text(0, "effect_ym"))

	require.Len(t, out.Files, 6)
	statuses := make([]models.FileStatus, len(out.Files))
	for i, f := range out.Files {
		statuses[i] = f.Status
	}
	assert.Equal(t, []models.FileStatus{
		models.FileStatusLoaded,
		models.FileStatusSkipped,
		models.FileStatusLoaded,
		models.FileStatusSkipped,
		models.FileStatusSkipped,
		models.FileStatusLoaded,
	}, statuses)
	assert.Equal(t, 2, out.Files[0].Rows)
	assert.Equal(t, models.FileIdentity{Bank: "BankB", AccountType: "CHK", MappingType: "stm"}, out.Files[3].Identity)
	assert.Contains(t, out.Files[4].Reason, "column 'dc' missing")

	assert.Len(t, logger.GetEntriesByLevel("ERROR"), 3)
}

func TestNew_FatalConfiguration(t *testing.T) {
	cfg, err := mapping.ParseConfig([]byte(dataConfig), "data_config.yaml")
	require.NoError(t, err)

	cfg.FilePattern = "(unclosed"
	_, err = New(cfg, nil, logging.NewMockLogger())
	var cfgErr *parsererror.ConfigError
	assert.True(t, errors.As(err, &cfgErr))

	cfg.FilePattern = ""
	_, err = New(cfg, nil, logging.NewMockLogger())
	assert.True(t, errors.As(err, &cfgErr))
}

// stubResolver classifies every name as stm for BankA unless listed as bad.
type stubResolver struct {
	bad map[string]bool
}

func (r stubResolver) Resolve(fileName string) (models.FileIdentity, *mapping.Profile, error) {
	if r.bad[fileName] {
		return models.FileIdentity{}, nil, &parsererror.PatternMismatchError{FileName: fileName, Groups: -1}
	}
	return models.FileIdentity{Bank: "BankA", AccountType: "CHK", MappingType: models.MappingTypeStatement}, &mapping.Profile{}, nil
}

// stubTransformer returns one row holding the file name.
type stubTransformer struct {
	calls  int
	cancel context.CancelFunc
}

func (s *stubTransformer) Transform(path string, _ models.FileIdentity, _ *mapping.Profile) (*transform.Result, error) {
	s.calls++
	if s.cancel != nil {
		s.cancel()
	}
	name := filepath.Base(path)
	return &transform.Result{Table: tabular.FromRecords([]string{"file_name"}, [][]string{{name}})}, nil
}

func TestAccumulator_CancellationFinishesCurrentFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transformer := &stubTransformer{cancel: cancel}
	acc := NewAccumulator(stubResolver{}, transformer, logging.NewMockLogger())

	out, err := acc.Run(ctx, []string{"a.csv", "b.csv", "c.csv"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, transformer.calls)
	assert.Equal(t, 1, out.Table(models.MappingTypeStatement).Len())
	assert.Len(t, out.Files, 1)
}

func TestAccumulator_OnFileCallback(t *testing.T) {
	acc := NewAccumulator(stubResolver{bad: map[string]bool{"b.csv": true}}, &stubTransformer{}, logging.NewMockLogger())

	var seen []string
	acc.OnFile(func(r models.FileResult) { seen = append(seen, r.FileName+":"+string(r.Status)) })

	_, err := acc.Run(context.Background(), []string{"a.csv", "b.csv"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv:loaded", "b.csv:skipped"}, seen)
}

// Property: whatever subset of files fails, the output is the in-order
// concatenation of the files that succeeded.
func TestProperty_FileIsolation(t *testing.T) {
	for i := 0; i < 50; i++ {
		t.Run(fmt.Sprintf("iteration_%d", i), func(t *testing.T) {
			n := cryptoRandIntn(10) + 1
			paths := make([]string, n)
			bad := make(map[string]bool)
			var expected []string
			for j := 0; j < n; j++ {
				name := fmt.Sprintf("file_%02d.csv", j)
				paths[j] = name
				if cryptoRandIntn(3) == 0 {
					bad[name] = true
				} else {
					expected = append(expected, name)
				}
			}

			acc := NewAccumulator(stubResolver{bad: bad}, &stubTransformer{}, logging.NewMockLogger())
			out, err := acc.Run(context.Background(), paths)
			require.NoError(t, err)

			stm := out.Table(models.MappingTypeStatement)
			var got []string
			for r := 0; r < stm.Len(); r++ {
				got = append(got, stm.Text(r, "file_name"))
			}
			assert.Equal(t, expected, got)
			assert.Len(t, out.Files, n)
		})
	}
}
