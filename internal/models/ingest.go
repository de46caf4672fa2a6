package models

import "time"

// FileIdentity is what a file name classifies to.
type FileIdentity struct {
	Bank        string `json:"bank" yaml:"bank"`
	AccountType string `json:"acc_type" yaml:"acc_type"`
	MappingType string `json:"mapping_type" yaml:"mapping_type"`
}

// FileStatus is the outcome of processing one input file.
type FileStatus string

const (
	// FileStatusLoaded means the file was transformed and its rows accumulated.
	FileStatusLoaded FileStatus = "loaded"
	// FileStatusSkipped means the file was rejected and contributed no rows.
	FileStatusSkipped FileStatus = "skipped"
)

// FileResult records what happened to one input file during a run.
type FileResult struct {
	Path         string
	FileName     string
	Identity     FileIdentity
	Status       FileStatus
	Reason       string
	Rows         int
	SoftFailures int
}

// RunStatus is the overall outcome of an ingestion run.
type RunStatus string

const (
	// RunStatusSuccess means every mapping type was uploaded (or had nothing new).
	RunStatusSuccess RunStatus = "success"
	// RunStatusPartial means at least one mapping type could not be fetched or uploaded.
	RunStatusPartial RunStatus = "partial"
	// RunStatusFailure means the run aborted before the upload stage.
	RunStatusFailure RunStatus = "failure"
)

// TypeSummary holds the counts of one mapping type for a run.
type TypeSummary struct {
	MappingType string
	Produced    int
	Existing    int
	New         int
	Duplicates  int
	Uploaded    int
	Err         error
}

// RunSummary aggregates a whole ingestion run.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Files      []FileResult
	Types      map[string]*TypeSummary
	// Err is set when the run stopped before every file was processed.
	Err error
}

// NewRunSummary creates a summary with an entry for every mapping type.
func NewRunSummary(runID string, startedAt time.Time) *RunSummary {
	s := &RunSummary{
		RunID:     runID,
		StartedAt: startedAt,
		Types:     make(map[string]*TypeSummary, len(MappingTypes)),
	}
	for _, mt := range MappingTypes {
		s.Types[mt] = &TypeSummary{MappingType: mt}
	}
	return s
}

// Type returns the summary of a mapping type, creating it if needed.
func (s *RunSummary) Type(mappingType string) *TypeSummary {
	ts, ok := s.Types[mappingType]
	if !ok {
		ts = &TypeSummary{MappingType: mappingType}
		s.Types[mappingType] = ts
	}
	return ts
}

// FileCounts returns the number of loaded and skipped files.
func (s *RunSummary) FileCounts() (loaded, skipped int) {
	for _, f := range s.Files {
		if f.Status == FileStatusLoaded {
			loaded++
		} else {
			skipped++
		}
	}
	return loaded, skipped
}

// FileNames returns the base names of the processed files in input order.
func (s *RunSummary) FileNames() []string {
	names := make([]string, 0, len(s.Files))
	for _, f := range s.Files {
		names = append(names, f.FileName)
	}
	return names
}

// Status derives the run status from the run and per-type errors.
func (s *RunSummary) Status() RunStatus {
	if s.Err != nil {
		return RunStatusFailure
	}
	for _, ts := range s.Types {
		if ts.Err != nil {
			return RunStatusPartial
		}
	}
	return RunStatusSuccess
}
