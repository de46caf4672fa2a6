package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// runLogLayout names one log file per run, e.g. 20240105_134501.log.
const runLogLayout = "20060102_150405"

// OpenRunLogFile creates dir if needed, removes the oldest *.log files so that at most
// maxFiles remain once the new one exists, and opens a fresh log file named after now.
func OpenRunLogFile(dir string, maxFiles int, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("error creating log directory: %w", err)
	}

	if err := pruneRunLogs(dir, maxFiles-1); err != nil {
		// a failed cleanup must not prevent logging
		fmt.Fprintf(os.Stderr, "log cleanup failed in %s: %v\n", dir, err)
	}

	path := filepath.Join(dir, now.Format(runLogLayout)+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640) // #nosec G304 -- path built from configured log dir
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}
	return f, nil
}

// pruneRunLogs keeps the newest keep log files in dir, newest by modification time.
func pruneRunLogs(dir string, keep int) error {
	if keep < 0 {
		keep = 0
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.log"))
	if err != nil {
		return err
	}

	type logFile struct {
		path    string
		modTime time.Time
	}
	files := make([]logFile, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		files = append(files, logFile{path: m, modTime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	for i := keep; i < len(files); i++ {
		if err := os.Remove(files[i].path); err != nil {
			return err
		}
	}
	return nil
}
