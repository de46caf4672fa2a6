// Package container provides dependency injection for the bank-ingest application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"
	"sync"

	"fjacquet/bank-ingest/internal/batch"
	"fjacquet/bank-ingest/internal/config"
	"fjacquet/bank-ingest/internal/db"
	"fjacquet/bank-ingest/internal/ingest"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/mapping"
	"fjacquet/bank-ingest/internal/parsererror"
	"fjacquet/bank-ingest/internal/report"
	"fjacquet/bank-ingest/internal/store"
	"fjacquet/bank-ingest/internal/tabular"
	"fjacquet/bank-ingest/internal/transform"

	"github.com/jmoiron/sqlx"
)

// Option customizes a Container.
type Option func(*Container)

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger logging.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithStorage supplies the storage instead of connecting to the database.
func WithStorage(storage *store.Storage) Option {
	return func(c *Container) {
		c.storage = storage
	}
}

// Container holds all application dependencies and provides methods to access them.
//
// The data configuration and the database are loaded on first use, so commands
// that need only one of them do not fail on the other.
type Container struct {
	logger  logging.Logger
	config  *config.Config
	reports *report.ReportGenerator

	mu          sync.Mutex
	dataConfig  *mapping.DataConfig
	accumulator *batch.Accumulator
	dbConfig    *store.DBConfig
	db          *sqlx.DB
	storage     *store.Storage
}

// NewContainer creates and wires the application dependencies.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	c := &Container{config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}
	c.reports = report.NewReportGenerator(c.logger)

	c.logger.Debug("Container initialized",
		logging.Field{Key: "data_config", Value: cfg.Data.ConfigPath},
		logging.Field{Key: "db_config", Value: cfg.Database.ConfigPath})
	return c, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetReportGenerator returns the run report generator.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reports
}

// GetDataConfig loads the data configuration. Failure is fatal for ingestion.
func (c *Container) GetDataConfig() (*mapping.DataConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadDataConfig()
}

func (c *Container) loadDataConfig() (*mapping.DataConfig, error) {
	if c.dataConfig != nil {
		return c.dataConfig, nil
	}
	cfg, err := mapping.LoadConfig(locate(c.config.Data.ConfigPath))
	if err != nil {
		return nil, err
	}
	c.dataConfig = cfg
	return cfg, nil
}

// GetAccumulator returns the ingestion accumulator built from the data configuration.
func (c *Container) GetAccumulator() (*batch.Accumulator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accumulator != nil {
		return c.accumulator, nil
	}
	dataConfig, err := c.loadDataConfig()
	if err != nil {
		return nil, err
	}
	transformer := transform.NewTransformer(tabular.NewReader(), c.logger)
	acc, err := batch.New(dataConfig, transformer, c.logger)
	if err != nil {
		return nil, err
	}
	c.accumulator = acc
	return acc, nil
}

// GetDBConfig loads the database configuration.
func (c *Container) GetDBConfig() (*store.DBConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadDBConfig()
}

func (c *Container) loadDBConfig() (*store.DBConfig, error) {
	if c.dbConfig != nil {
		return c.dbConfig, nil
	}
	cfg, err := store.LoadDBConfig(locate(c.config.Database.ConfigPath))
	if err != nil {
		return nil, err
	}
	c.dbConfig = cfg
	return cfg, nil
}

// GetStorage connects to the database on first use. A missing URL, an invalid
// database configuration or a failed ping is fatal.
func (c *Container) GetStorage() (*store.Storage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.storage != nil {
		return c.storage, nil
	}
	if c.config.Database.URL == "" {
		return nil, &parsererror.ConfigError{Path: "database.url", Reason: "DATABASE_URL is not set"}
	}
	dbConfig, err := c.loadDBConfig()
	if err != nil {
		return nil, err
	}

	conn, err := db.New(c.config.Database.URL,
		c.config.Database.MaxOpenConns,
		c.config.Database.MaxIdleConns,
		c.config.Database.MaxIdleTime)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Database connection established",
		logging.Field{Key: "schema", Value: dbConfig.Schema})

	c.db = conn
	c.storage = store.NewStorage(conn, dbConfig)
	return c.storage, nil
}

// NewPipeline builds an ingestion pipeline. A dry run never touches the database.
func (c *Container) NewPipeline(dryRun bool) (*ingest.Pipeline, error) {
	acc, err := c.GetAccumulator()
	if err != nil {
		return nil, err
	}

	opts := []ingest.Option{ingest.WithBatchDuplicateDrop(c.config.Ingest.DropBatchDuplicates)}
	if !dryRun {
		storage, err := c.GetStorage()
		if err != nil {
			return nil, err
		}
		opts = append(opts, ingest.WithStore(storage.Records, storage.IngestionHistory))
	}
	return ingest.NewPipeline(acc, c.logger, opts...), nil
}

// Close releases the database connection, if one was opened.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	c.logger.Debug("Database connection closed")
	return err
}

// locate resolves a configuration file in the standard locations, falling back
// to the path as given so that the loader reports it.
func locate(path string) string {
	if found, err := store.FindConfigFile(path); err == nil {
		return found
	}
	return path
}
