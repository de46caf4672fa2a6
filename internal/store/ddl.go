package store

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// HistoryTable is the name of the ingestion history table.
const HistoryTable = "ingestion_history"

func columnType(f Field) (string, error) {
	switch f.Type {
	case FieldTypeInteger:
		return "INTEGER", nil
	case FieldTypeString:
		length := f.Length
		if length == 0 {
			length = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", length), nil
	case FieldTypeDate:
		return "DATE", nil
	case FieldTypeDecimal:
		precision, scale := f.Precision, 2
		if precision == 0 {
			precision = 10
		}
		if f.Scale != nil {
			scale = *f.Scale
		}
		return fmt.Sprintf("NUMERIC(%d, %d)", precision, scale), nil
	case FieldTypeTimestamp:
		if f.Timezone {
			return "TIMESTAMP WITH TIME ZONE", nil
		}
		return "TIMESTAMP WITHOUT TIME ZONE", nil
	default:
		return "", fmt.Errorf("field '%s' has unsupported type '%s'", f.Name, f.Type)
	}
}

func qualified(schema, table string) string {
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table)
}

// CreateTableSQL renders the CREATE TABLE statement of one configured table.
func CreateTableSQL(schema string, table TableConfig) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", qualified(schema, table.TableName))

	var keys []string
	for i, f := range table.Fields {
		typ, err := columnType(f)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\t%s %s", pq.QuoteIdentifier(f.Name), typ)
		if !f.IsNullable() {
			b.WriteString(" NOT NULL")
		}
		if f.PrimaryKey {
			keys = append(keys, pq.QuoteIdentifier(f.Name))
		}
		if i < len(table.Fields)-1 || len(keys) > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	if len(keys) > 0 {
		fmt.Fprintf(&b, "\tPRIMARY KEY (%s)\n", strings.Join(keys, ", "))
	}
	b.WriteString(")")
	return b.String(), nil
}

// SchemaStatements returns the statements provisioning every configured table.
// Existing data tables are dropped; the history table is kept.
func SchemaStatements(cfg *DBConfig) ([]string, error) {
	stmts := []string{"CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(cfg.Schema)}
	for _, mt := range cfg.MappingTypes() {
		table := cfg.Tables[mt]
		create, err := CreateTableSQL(cfg.Schema, table)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, "DROP TABLE IF EXISTS "+qualified(cfg.Schema, table.TableName), create)
	}
	return append(stmts, historyTableSQL(cfg.Schema)), nil
}

func historyTableSQL(schema string) string {
	return `CREATE TABLE IF NOT EXISTS ` + qualified(schema, HistoryTable) + ` (
	run_id UUID PRIMARY KEY,
	started_at TIMESTAMP WITHOUT TIME ZONE NOT NULL,
	finished_at TIMESTAMP WITHOUT TIME ZONE NOT NULL,
	status VARCHAR(16) NOT NULL,
	files_loaded INTEGER NOT NULL,
	files_skipped INTEGER NOT NULL,
	stm_produced INTEGER NOT NULL,
	stm_uploaded INTEGER NOT NULL,
	sec_produced INTEGER NOT NULL,
	sec_uploaded INTEGER NOT NULL,
	processed_files TEXT[] NOT NULL
)`
}
