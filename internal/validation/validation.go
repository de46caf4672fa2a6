// Package validation checks command arguments before a run starts, so that a
// bad argument fails before anything is read or written.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsValidInputDir checks that path exists and is a directory.
func IsValidInputDir(path string) error {
	if path == "" {
		return fmt.Errorf("input directory is not set (use --input or CSV_FILES_DIR)")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %s is not a directory", path)
	}
	return nil
}

// IsValidReportPath checks that a report can be written to path: the extension
// selects a supported format and the parent directory exists.
func IsValidReportPath(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".json":
	default:
		return fmt.Errorf("unsupported report format: %s. Supported extensions are '.csv', '.json'", path)
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("report directory %s is not accessible: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("report directory %s is not a directory", dir)
	}
	return nil
}
