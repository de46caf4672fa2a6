package store

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

const sampleDBConfig = `
schema: bank
tables:
  stm:
    table_name: statements
    fields:
      surrogate_key: {type: String, length: 32, primary_key: true}
      acc_number: {type: String}
      dt: {type: Date, nullable: false}
      year: {type: Integer}
      sum: {type: Decimal, precision: 12}
      processed_at: {type: Timestamp}
  sec:
    table_name: securities
    fields:
      surrogate_key: {type: String, length: 32, primary_key: true}
      isin: {type: String, length: 12}
      effect_dt: {type: Date}
`

func sampleConfig(t *testing.T) *DBConfig {
	t.Helper()
	cfg, err := ParseDBConfig([]byte(sampleDBConfig), "db_config.yaml")
	require.NoError(t, err)
	return cfg
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}
