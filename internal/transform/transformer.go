// Package transform turns one bank export file into canonical records by
// executing its mapping profile.
package transform

import (
	"path/filepath"
	"sort"
	"time"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/mapping"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/parsererror"
	"fjacquet/bank-ingest/internal/tabular"
)

// TableReader loads a source file as a table of raw strings.
type TableReader interface {
	Read(path string, opts tabular.Options) (*tabular.Table, error)
}

// Result is the canonical table produced from one file.
type Result struct {
	Table        *tabular.Table
	SoftFailures int
}

// Transformer executes mapping profiles.
type Transformer struct {
	reader TableReader
	logger logging.Logger
	now    func() time.Time
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithClock replaces the clock used for processed_at.
func WithClock(now func() time.Time) Option {
	return func(t *Transformer) {
		t.now = now
	}
}

// NewTransformer creates a Transformer reading files with reader.
func NewTransformer(reader TableReader, logger logging.Logger, opts ...Option) *Transformer {
	t := &Transformer{
		reader: reader,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform reads the file at path and returns its canonical records, holding
// exactly the profile's desired fields in order. Any error means the file
// contributes nothing.
func (t *Transformer) Transform(path string, identity models.FileIdentity, profile *mapping.Profile) (*Result, error) {
	fileName := filepath.Base(path)
	log := t.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: fileName},
		logging.Field{Key: logging.FieldMappingType, Value: identity.MappingType},
	)

	raw, err := t.reader.Read(path, tabular.Options{Separator: profile.Separator(), Encoding: profile.Encoding})
	if err != nil {
		return nil, &parsererror.ReadError{FilePath: path, Err: err}
	}
	if raw.Len() == 0 {
		log.Info("File has no data rows")
		return &Result{Table: tabular.NewTable(profile.DesiredFields...)}, nil
	}

	// 1. project and rename
	sourceColumns := profile.OriginalFields.Keys()
	if missing := raw.MissingColumns(sourceColumns); len(missing) > 0 {
		return nil, &parsererror.MissingColumnError{FilePath: path, Column: missing[0], Stage: "rename"}
	}
	projected, err := raw.Select(sourceColumns...)
	if err != nil {
		return nil, err
	}
	tbl, err := projected.Rename(profile.OriginalFields.Map())
	if err != nil {
		return nil, err
	}

	// 2. identity, taken before any value is reinterpreted
	if missing := tbl.MissingColumns(profile.SurrogateKeyColumns); len(missing) > 0 {
		return nil, &parsererror.MissingColumnError{FilePath: path, Column: missing[0], Stage: "surrogate key"}
	}
	if err := tbl.SetColumn(models.ColumnSurrogateKey, surrogateKeys(tbl, profile.SurrogateKeyColumns)); err != nil {
		return nil, err
	}

	// 3. common fields
	tbl.Fill(models.ColumnBankName, identity.Bank)
	tbl.Fill(models.ColumnAccType, identity.AccountType)
	tbl.Fill(models.ColumnFileName, fileName)
	tbl.Fill(models.ColumnProcessedAt, t.now().UTC())

	// 4. mapping type derivation
	soft := newSoftFailures(identity.MappingType)
	if required := requiredSourceColumns(identity.MappingType); required != nil {
		if missing := tbl.MissingColumns(required); len(missing) > 0 {
			return nil, &parsererror.MissingColumnError{FilePath: path, Column: missing[0], Stage: "derive"}
		}
	}
	switch identity.MappingType {
	case models.MappingTypeStatement:
		err = deriveStatement(tbl, profile, soft)
	case models.MappingTypeSecurity:
		err = deriveSecurity(tbl, profile, soft)
	default:
		return nil, &parsererror.UnsupportedMappingTypeError{MappingType: identity.MappingType}
	}
	if err != nil {
		return nil, err
	}
	t.logSoftFailures(log, soft)

	// 5. final projection
	if missing := tbl.MissingColumns(profile.DesiredFields); len(missing) > 0 {
		return nil, &parsererror.MissingColumnError{FilePath: path, Column: missing[0], Stage: "projection"}
	}
	out, err := tbl.Select(profile.DesiredFields...)
	if err != nil {
		return nil, err
	}

	log.Debug("File transformed", logging.Field{Key: logging.FieldCount, Value: out.Len()})
	return &Result{Table: out, SoftFailures: soft.total}, nil
}

func (t *Transformer) logSoftFailures(log logging.Logger, soft *softFailures) {
	columns := make([]string, 0, len(soft.byColumn))
	for col := range soft.byColumn {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	for _, col := range columns {
		sample := soft.samples[col]
		log.WithError(sample).Warn("Values set to null",
			logging.Field{Key: logging.FieldColumn, Value: col},
			logging.Field{Key: logging.FieldCount, Value: soft.byColumn[col]},
			logging.Field{Key: logging.FieldValue, Value: sample.Value})
	}
}
