package mapping

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/bank-ingest/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	profile, ok := cfg.Profile("stm", "BankA")
	require.True(t, ok)
	assert.Equal(t, ';', profile.Separator())
	assert.Equal(t, []string{"Account", "Date", "Amount", "DC", "Reference"}, profile.OriginalFields.Keys())
	assert.Equal(t, "%Y-%m-%d", profile.DateFormat)

	name, ok := profile.AccountName("40817")
	require.True(t, ok)
	assert.Equal(t, "Main", name)
	name, ok = profile.AccountName("0042")
	require.True(t, ok)
	assert.Equal(t, "Savings", name)

	factor, ok := profile.Multiplier("D")
	require.True(t, ok)
	assert.True(t, factor.Equal(decimal.NewFromInt(-1)))
	_, ok = profile.Multiplier("X")
	assert.False(t, ok)

	sec, ok := cfg.Profile("sec", "BankB")
	require.True(t, ok)
	assert.Equal(t, "windows-1252", sec.Encoding)

	_, ok = cfg.Profile("sec", "BankA")
	assert.False(t, ok)
	_, ok = cfg.Profile("fx", "BankA")
	assert.False(t, ok)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	var cfgErr *parsererror.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		reason  string
	}{
		{
			name:    "missing pattern",
			content: "mapping:\n  stm: {}\n",
			reason:  "missing mandatory file_pattern or mapping",
		},
		{
			name:    "missing mapping",
			content: "file_pattern: '(a)(b)(c)'\n",
			reason:  "missing mandatory file_pattern or mapping",
		},
		{
			name:    "broken yaml",
			content: "file_pattern: [",
			reason:  "cannot parse YAML",
		},
		{
			name: "multi character separator",
			content: `
file_pattern: '(a)(b)(c)'
mapping:
  stm:
    BankA:
      csv_separator: ';;'
      original_fields: {A: a}
      desired_fields: [a]
      surrogate_key_columns: [a]
`,
			reason: "profile stm/BankA",
		},
		{
			name: "non numeric multiplier",
			content: `
file_pattern: '(a)(b)(c)'
mapping:
  stm:
    BankA:
      csv_separator: ';'
      original_fields: {A: a}
      desired_fields: [a]
      surrogate_key_columns: [a]
      debit_multiplier: {D: minus}
`,
			reason: "profile stm/BankA",
		},
		{
			name: "duplicate source column",
			content: `
file_pattern: '(a)(b)(c)'
mapping:
  stm:
    BankA:
      csv_separator: ';'
      original_fields:
        A: a
        A: b
      desired_fields: [a]
      surrogate_key_columns: [a]
`,
			reason: "cannot parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.content), "data_config.yaml")
			var cfgErr *parsererror.ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.reason, cfgErr.Reason)
		})
	}
}

func TestLoadConfig_ShippedExample(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "data_config.yaml"))
	require.NoError(t, err)

	resolver, err := NewResolver(cfg)
	require.NoError(t, err)

	identity, profile, err := resolver.Resolve("BankA_CHK_stm_2024-01.csv")
	require.NoError(t, err)
	assert.Equal(t, "CHK", identity.AccountType)
	assert.Equal(t, "windows-1252", profile.Encoding)

	_, _, err = resolver.Resolve("BankB_DEP_sec_2024-01.csv")
	require.NoError(t, err)
}
