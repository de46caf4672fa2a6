// Package parsererror defines the typed errors raised while classifying, reading and
// transforming bank export files. Callers inspect them with errors.As to decide whether
// a failure skips one file or aborts the run.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrNoInputFiles is returned when the input directory holds no matching file.
var ErrNoInputFiles = errors.New("no input files found")

// ParseError represents a row-level value that could not be coerced.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigError is a fatal problem with a configuration file: missing section,
// unparseable document or a classification pattern that does not compile.
type ConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("invalid configuration %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// PatternMismatchError means a file name did not yield exactly bank, account type
// and mapping type from the classification pattern.
type PatternMismatchError struct {
	FileName string
	Pattern  string
	Groups   int
}

func (e *PatternMismatchError) Error() string {
	if e.Groups < 0 {
		return fmt.Sprintf("file name '%s' does not match pattern %s", e.FileName, e.Pattern)
	}
	return fmt.Sprintf("file name '%s' yields %d groups from pattern %s, expected 3",
		e.FileName, e.Groups, e.Pattern)
}

// ProfileNotFoundError means no mapping profile exists for the (mapping type, bank) pair.
type ProfileNotFoundError struct {
	MappingType string
	Bank        string
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("no mapping profile for mapping type '%s' and bank '%s'", e.MappingType, e.Bank)
}

// ReadError wraps a failure to read or parse a source file as a table.
type ReadError struct {
	FilePath string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.FilePath, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// MissingColumnError means a column required by a profile is absent from a table.
type MissingColumnError struct {
	FilePath string
	Column   string
	Stage    string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column '%s' missing in %s during %s", e.Column, e.FilePath, e.Stage)
}

// UnsupportedMappingTypeError means a profile names a mapping type with no derivation rules.
type UnsupportedMappingTypeError struct {
	MappingType string
}

func (e *UnsupportedMappingTypeError) Error() string {
	return fmt.Sprintf("unsupported mapping type '%s'", e.MappingType)
}
