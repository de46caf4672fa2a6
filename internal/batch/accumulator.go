// Package batch runs the per-file ingestion loop: classify, transform and
// accumulate every input file, isolating failures to the file that caused them.
package batch

import (
	"context"
	"path/filepath"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/mapping"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/tabular"
	"fjacquet/bank-ingest/internal/transform"
)

// ProfileResolver classifies a file name and returns its mapping profile.
type ProfileResolver interface {
	Resolve(fileName string) (models.FileIdentity, *mapping.Profile, error)
}

// FileTransformer executes a mapping profile against one file.
type FileTransformer interface {
	Transform(path string, identity models.FileIdentity, profile *mapping.Profile) (*transform.Result, error)
}

// Output holds the accumulated canonical tables and the outcome of every file.
type Output struct {
	Tables map[string]*tabular.Table
	Files  []models.FileResult
}

// Table returns the accumulated table of a mapping type, empty if nothing was loaded.
func (o *Output) Table(mappingType string) *tabular.Table {
	if t, ok := o.Tables[mappingType]; ok {
		return t
	}
	return tabular.NewTable()
}

// Accumulator processes input files sequentially.
type Accumulator struct {
	resolver    ProfileResolver
	transformer FileTransformer
	logger      logging.Logger
	onFile      func(models.FileResult)
}

// NewAccumulator creates an Accumulator from explicit dependencies.
func NewAccumulator(resolver ProfileResolver, transformer FileTransformer, logger logging.Logger) *Accumulator {
	return &Accumulator{
		resolver:    resolver,
		transformer: transformer,
		logger:      logger,
	}
}

// New builds the resolver from the data configuration. A configuration without
// file_pattern or mapping, or with a pattern that does not compile, is fatal.
func New(cfg *mapping.DataConfig, transformer FileTransformer, logger logging.Logger) (*Accumulator, error) {
	resolver, err := mapping.NewResolver(cfg)
	if err != nil {
		return nil, err
	}
	return NewAccumulator(resolver, transformer, logger), nil
}

// OnFile registers a callback invoked after each file, in input order.
func (a *Accumulator) OnFile(fn func(models.FileResult)) {
	a.onFile = fn
}

// Run processes paths in order. A failing file is logged, recorded as skipped
// and never stops the batch. Cancelling ctx lets the current file finish and
// returns what was accumulated so far together with ctx.Err().
func (a *Accumulator) Run(ctx context.Context, paths []string) (*Output, error) {
	out := &Output{
		Tables: make(map[string]*tabular.Table, len(models.MappingTypes)),
		Files:  make([]models.FileResult, 0, len(paths)),
	}
	for _, mt := range models.MappingTypes {
		out.Tables[mt] = tabular.NewTable()
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			a.logger.Warn("Ingestion cancelled, remaining files not processed",
				logging.Field{Key: logging.FieldCount, Value: len(paths) - len(out.Files)})
			return out, err
		}

		result := a.processFile(path, out)
		out.Files = append(out.Files, result)
		if a.onFile != nil {
			a.onFile(result)
		}
	}

	for _, mt := range models.MappingTypes {
		a.logger.Info("Accumulated records",
			logging.Field{Key: logging.FieldMappingType, Value: mt},
			logging.Field{Key: logging.FieldTotal, Value: out.Tables[mt].Len()})
	}
	return out, nil
}

func (a *Accumulator) processFile(path string, out *Output) models.FileResult {
	fileName := filepath.Base(path)
	result := models.FileResult{Path: path, FileName: fileName, Status: models.FileStatusSkipped}
	log := a.logger.WithField(logging.FieldFile, fileName)

	log.Info("Processing file")

	identity, profile, err := a.resolver.Resolve(fileName)
	result.Identity = identity
	if err != nil {
		result.Reason = err.Error()
		log.WithError(err).Error("File cannot be processed")
		return result
	}

	res, err := a.transformer.Transform(path, identity, profile)
	if err != nil {
		result.Reason = err.Error()
		log.WithError(err).Error("File skipped",
			logging.Field{Key: logging.FieldBank, Value: identity.Bank},
			logging.Field{Key: logging.FieldMappingType, Value: identity.MappingType})
		return result
	}

	result.Status = models.FileStatusLoaded
	result.Rows = res.Table.Len()
	result.SoftFailures = res.SoftFailures
	if res.Table.Len() == 0 {
		return result
	}

	acc, ok := out.Tables[identity.MappingType]
	if !ok {
		acc = tabular.NewTable()
		out.Tables[identity.MappingType] = acc
	}
	acc.Append(res.Table)

	log.Info("Added records",
		logging.Field{Key: logging.FieldMappingType, Value: identity.MappingType},
		logging.Field{Key: logging.FieldCount, Value: res.Table.Len()},
		logging.Field{Key: logging.FieldTotal, Value: acc.Len()})
	return result
}
