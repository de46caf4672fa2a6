package dedup

import (
	"context"
	"fmt"
	"sort"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/parsererror"
	"fjacquet/bank-ingest/internal/tabular"
)

// KeyStore reads persisted surrogate keys and appends new records.
type KeyStore interface {
	ExistingKeys(ctx context.Context, mappingType string) ([]string, error)
	Append(ctx context.Context, mappingType string, table *tabular.Table) (int, error)
}

// State is a step of the coordinator run.
type State int

const (
	StateInit State = iota
	StateFetchExistingKeys
	StateDedup
	StateUpload
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateFetchExistingKeys:
		return "fetch_existing_keys"
	case StateDedup:
		return "dedup"
	case StateUpload:
		return "upload"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBatchDuplicateDrop controls whether rows repeating a key already seen
// earlier in the same batch are dropped after the existing-key subtraction.
func WithBatchDuplicateDrop(enabled bool) Option {
	return func(c *Coordinator) {
		c.dropBatchDuplicates = enabled
	}
}

// Coordinator runs the dedup and upload stage of an ingestion run.
type Coordinator struct {
	store               KeyStore
	logger              logging.Logger
	dropBatchDuplicates bool
	state               State
}

// NewCoordinator creates a Coordinator writing to store.
func NewCoordinator(store KeyStore, logger logging.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  store,
		logger: logger,
		state:  StateInit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the step the coordinator reached.
func (c *Coordinator) State() State {
	return c.state
}

// Run fetches the existing keys of every mapping type, then deduplicates and
// uploads each table. A failure for one mapping type is logged and recorded in
// summary and does not stop the others. Only a cancelled ctx ends the run early.
func (c *Coordinator) Run(ctx context.Context, tables map[string]*tabular.Table, summary *models.RunSummary) error {
	mappingTypes := orderedTypes(tables)
	for _, mt := range mappingTypes {
		summary.Type(mt).Produced = tables[mt].Len()
	}

	c.transition(StateFetchExistingKeys)
	existing := make(map[string]KeySet, len(mappingTypes))
	for _, mt := range mappingTypes {
		if err := ctx.Err(); err != nil {
			return err
		}
		keys, err := c.store.ExistingKeys(ctx, mt)
		if err != nil {
			c.fail(summary.Type(mt), "Failed to fetch existing keys", err)
			continue
		}
		existing[mt] = NewKeySet(keys...)
		summary.Type(mt).Existing = len(keys)
	}

	for _, mt := range mappingTypes {
		if err := ctx.Err(); err != nil {
			return err
		}
		keys, ok := existing[mt]
		if !ok {
			continue
		}
		c.process(ctx, mt, tables[mt], keys, summary.Type(mt))
	}

	c.transition(StateDone)
	return nil
}

func (c *Coordinator) process(ctx context.Context, mt string, table *tabular.Table, existing KeySet, ts *models.TypeSummary) {
	log := c.logger.WithField(logging.FieldMappingType, mt)

	c.transition(StateDedup)
	if table.Len() > 0 && !table.HasColumn(models.ColumnSurrogateKey) {
		c.fail(ts, "Records cannot be deduplicated", &parsererror.MissingColumnError{
			FilePath: mt + " records", Column: models.ColumnSurrogateKey, Stage: "dedup",
		})
		return
	}

	fresh := SelectNew(table, existing)
	if c.dropBatchDuplicates {
		var dropped int
		fresh, dropped = DropDuplicateKeys(fresh)
		ts.Duplicates = dropped
		if dropped > 0 {
			log.Warn("Dropped records repeating a key within the batch",
				logging.Field{Key: logging.FieldCount, Value: dropped})
		}
	}
	ts.New = fresh.Len()

	log.Info("Selected new records",
		logging.Field{Key: logging.FieldTotal, Value: table.Len()},
		logging.Field{Key: logging.FieldCount, Value: fresh.Len()})

	if fresh.Len() == 0 {
		log.Info("No new records to upload")
		return
	}

	c.transition(StateUpload)
	uploaded, err := c.store.Append(ctx, mt, fresh)
	if err != nil {
		c.fail(ts, "Failed to upload records", err)
		return
	}
	ts.Uploaded = uploaded
	log.Info("Uploaded records", logging.Field{Key: logging.FieldCount, Value: uploaded})
}

func (c *Coordinator) fail(ts *models.TypeSummary, msg string, err error) {
	ts.Err = err
	c.logger.WithError(err).Error(msg, logging.Field{Key: logging.FieldMappingType, Value: ts.MappingType})
}

func (c *Coordinator) transition(next State) {
	c.logger.Debug("Coordinator state",
		logging.Field{Key: "from", Value: c.state.String()},
		logging.Field{Key: "to", Value: next.String()})
	c.state = next
}

// orderedTypes lists the known mapping types first, then any other in name order.
func orderedTypes(tables map[string]*tabular.Table) []string {
	out := make([]string, 0, len(tables))
	known := make(map[string]bool, len(models.MappingTypes))
	for _, mt := range models.MappingTypes {
		known[mt] = true
		if _, ok := tables[mt]; ok {
			out = append(out, mt)
		}
	}
	var extra []string
	for mt := range tables {
		if !known[mt] {
			extra = append(extra, mt)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
