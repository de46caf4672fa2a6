// Package mapping loads the data configuration that classifies bank export files
// and describes how each (mapping type, bank) pair is transformed.
package mapping

import (
	"fmt"
	"os"
	"sort"

	"fjacquet/bank-ingest/internal/parsererror"

	"gopkg.in/yaml.v3"
)

// DataConfig is the parsed data configuration file.
type DataConfig struct {
	FilePattern string                         `yaml:"file_pattern"`
	Mapping     map[string]map[string]*Profile `yaml:"mapping"`

	source string
}

// LoadConfig reads and validates a data configuration file.
func LoadConfig(path string) (*DataConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from trusted configuration
	if err != nil {
		return nil, &parsererror.ConfigError{Path: path, Reason: "cannot read file", Err: err}
	}
	return ParseConfig(data, path)
}

// ParseConfig parses a data configuration document. source names it in errors.
func ParseConfig(data []byte, source string) (*DataConfig, error) {
	var cfg DataConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &parsererror.ConfigError{Path: source, Reason: "cannot parse YAML", Err: err}
	}
	cfg.source = source

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the mandatory sections are present and every profile is usable.
func (c *DataConfig) Validate() error {
	if c.FilePattern == "" || len(c.Mapping) == 0 {
		return &parsererror.ConfigError{Path: c.source, Reason: "missing mandatory file_pattern or mapping"}
	}

	for _, mappingType := range sortedKeys(c.Mapping) {
		for _, bank := range sortedKeys(c.Mapping[mappingType]) {
			profile := c.Mapping[mappingType][bank]
			if profile == nil {
				return &parsererror.ConfigError{Path: c.source, Reason: fmt.Sprintf("profile %s/%s is empty", mappingType, bank)}
			}
			if err := profile.prepare(); err != nil {
				return &parsererror.ConfigError{Path: c.source, Reason: fmt.Sprintf("profile %s/%s", mappingType, bank), Err: err}
			}
		}
	}
	return nil
}

// Profile returns the profile for an exact (mapping type, bank) pair.
func (c *DataConfig) Profile(mappingType, bank string) (*Profile, bool) {
	banks, ok := c.Mapping[mappingType]
	if !ok {
		return nil, false
	}
	profile, ok := banks[bank]
	return profile, ok && profile != nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
