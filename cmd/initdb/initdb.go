// Package initdb provides the command that provisions the database schema.
package initdb

import (
	"context"
	"fmt"
	"io"

	"fjacquet/bank-ingest/cmd/root"
	"fjacquet/bank-ingest/internal/container"
	"fjacquet/bank-ingest/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the init-db command
var Cmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the schema and the record tables",
	Long: `Create the database schema and (re)create the statement and securities
tables described by the database configuration. The ingestion history table is
created when missing and never dropped.

Existing record tables are DROPPED, so the command refuses to run without --force.

Example:
  bank-ingest init-db --force`,
	RunE: initDBFunc,
}

var force bool

func init() {
	Cmd.Flags().BoolVar(&force, "force", false, "Confirm that existing record tables may be dropped")
}

func initDBFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}
	return Run(cmd.Context(), c, force, cmd.OutOrStdout())
}

// Run provisions the database. Without force it changes nothing and returns an error.
func Run(ctx context.Context, c *container.Container, force bool, out io.Writer) error {
	if !force {
		return fmt.Errorf("init-db drops the record tables; rerun with --force to confirm")
	}

	dbConfig, err := c.GetDBConfig()
	if err != nil {
		return err
	}
	storage, err := c.GetStorage()
	if err != nil {
		return err
	}

	if err := storage.Schema.Initialize(ctx); err != nil {
		return err
	}

	c.GetLogger().Info("Database initialized",
		logging.Field{Key: "schema", Value: dbConfig.Schema},
		logging.Field{Key: logging.FieldCount, Value: len(dbConfig.Tables)})
	_, err = fmt.Fprintf(out, "Schema %q initialized (%d tables)\n", dbConfig.Schema, len(dbConfig.Tables))
	return err
}
