package store

import (
	"fmt"
	"os"
	"sort"

	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/parsererror"

	"gopkg.in/yaml.v3"
)

// Field types understood by the DDL builder.
const (
	FieldTypeInteger   = "Integer"
	FieldTypeString    = "String"
	FieldTypeDate      = "Date"
	FieldTypeDecimal   = "Decimal"
	FieldTypeTimestamp = "Timestamp"
)

// DBConfig is the parsed database configuration file.
type DBConfig struct {
	Schema string                 `yaml:"schema"`
	Tables map[string]TableConfig `yaml:"tables"`
}

// TableConfig describes the table receiving one mapping type.
type TableConfig struct {
	TableName string    `yaml:"table_name"`
	Fields    FieldList `yaml:"fields"`
}

// Field is one column definition.
type Field struct {
	Name       string `yaml:"-"`
	Type       string `yaml:"type"`
	Length     int    `yaml:"length"`
	Precision  int    `yaml:"precision"`
	Scale      *int   `yaml:"scale"`
	Timezone   bool   `yaml:"timezone"`
	PrimaryKey bool   `yaml:"primary_key"`
	Nullable   *bool  `yaml:"nullable"`
}

// IsNullable reports whether the column accepts nulls. Primary key columns never do.
func (f Field) IsNullable() bool {
	if f.PrimaryKey {
		return false
	}
	return f.Nullable == nil || *f.Nullable
}

// FieldList keeps column definitions in document order.
type FieldList []Field

// UnmarshalYAML decodes a mapping of column name to definition.
func (l *FieldList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: fields must be a mapping", node.Line)
	}
	out := make(FieldList, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if seen[name] {
			return fmt.Errorf("line %d: duplicate field '%s'", node.Content[i].Line, name)
		}
		seen[name] = true

		var f Field
		if err := node.Content[i+1].Decode(&f); err != nil {
			return fmt.Errorf("field '%s': %w", name, err)
		}
		f.Name = name
		out = append(out, f)
	}
	*l = out
	return nil
}

// Names returns the column names in order.
func (l FieldList) Names() []string {
	names := make([]string, len(l))
	for i, f := range l {
		names[i] = f.Name
	}
	return names
}

// LoadDBConfig reads and validates a database configuration file.
func LoadDBConfig(path string) (*DBConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from trusted configuration
	if err != nil {
		return nil, &parsererror.ConfigError{Path: path, Reason: "cannot read file", Err: err}
	}
	return ParseDBConfig(data, path)
}

// ParseDBConfig parses a database configuration document. source names it in errors.
func ParseDBConfig(data []byte, source string) (*DBConfig, error) {
	var cfg DBConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &parsererror.ConfigError{Path: source, Reason: "cannot parse YAML", Err: err}
	}
	if err := cfg.validate(); err != nil {
		return nil, &parsererror.ConfigError{Path: source, Reason: err.Error()}
	}
	return &cfg, nil
}

func (c *DBConfig) validate() error {
	if c.Schema == "" {
		return fmt.Errorf("missing mandatory schema")
	}
	for _, mt := range models.MappingTypes {
		if _, ok := c.Tables[mt]; !ok {
			return fmt.Errorf("missing table for mapping type '%s'", mt)
		}
	}
	for _, mt := range c.MappingTypes() {
		table := c.Tables[mt]
		if table.TableName == "" {
			return fmt.Errorf("table '%s' has no table_name", mt)
		}
		if len(table.Fields) == 0 {
			return fmt.Errorf("table '%s' has no fields", mt)
		}
		for _, f := range table.Fields {
			if _, err := columnType(f); err != nil {
				return fmt.Errorf("table '%s': %w", mt, err)
			}
		}
	}
	return nil
}

// Table returns the table configuration of a mapping type.
func (c *DBConfig) Table(mappingType string) (TableConfig, error) {
	table, ok := c.Tables[mappingType]
	if !ok {
		return TableConfig{}, &parsererror.UnsupportedMappingTypeError{MappingType: mappingType}
	}
	return table, nil
}

// MappingTypes lists the configured mapping types, known ones first.
func (c *DBConfig) MappingTypes() []string {
	out := make([]string, 0, len(c.Tables))
	known := make(map[string]bool, len(models.MappingTypes))
	for _, mt := range models.MappingTypes {
		known[mt] = true
		if _, ok := c.Tables[mt]; ok {
			out = append(out, mt)
		}
	}
	var extra []string
	for mt := range c.Tables {
		if !known[mt] {
			extra = append(extra, mt)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
