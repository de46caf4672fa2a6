// Package root contains the root command for the application
package root

import (
	"fmt"
	"io"
	"os"
	"time"

	"fjacquet/bank-ingest/internal/config"
	"fjacquet/bank-ingest/internal/container"
	"fjacquet/bank-ingest/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input     string
	LogLevel  string
	NoLogFile bool
}

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "bank-ingest",
		Short: "A CLI tool to load bank statement and securities CSV exports into PostgreSQL.",
		Long: `bank-ingest classifies bank CSV exports by file name, transforms them into
canonical statement (stm) and securities (sec) records, and appends only the
records that are not yet stored in the database.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { Shutdown() },
	}

	// SharedFlags holds the flags accessible to all commands
	SharedFlags = CommonFlags{}

	appContainer *container.Container
	runLogFile   *os.File
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Directory holding the CSV exports (overrides data.csv_dir)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	Cmd.PersistentFlags().BoolVar(&SharedFlags.NoLogFile, "no-log-file", false, "Log to the console only")
}

// GetContainer returns the container built for the running command.
func GetContainer() *container.Container {
	return appContainer
}

// SetContainer replaces the command container. Tests use it to inject mocks.
func SetContainer(c *container.Container) {
	appContainer = c
}

// GetLogger returns the logger of the running command.
func GetLogger() logging.Logger {
	if appContainer == nil {
		return logging.NewLogrusAdapter("info", "text")
	}
	return appContainer.GetLogger()
}

func setup(cmd *cobra.Command, args []string) error {
	if appContainer != nil {
		return nil
	}

	if _, err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.InitializeConfig()
	if err != nil {
		return err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}

	var out io.Writer = os.Stderr
	if !SharedFlags.NoLogFile && cfg.Log.Dir != "" {
		f, err := logging.OpenRunLogFile(cfg.Log.Dir, cfg.Log.MaxFiles, time.Now())
		if err != nil {
			return err
		}
		runLogFile = f
		out = io.MultiWriter(os.Stderr, f)
	}

	logger := logging.NewLogrusAdapterWithOutput(cfg.Log.Level, cfg.Log.Format, out)
	c, err := container.NewContainer(cfg, container.WithLogger(logger))
	if err != nil {
		return err
	}
	appContainer = c
	return nil
}

// Shutdown closes the database connection and the run log file. It is safe to
// call more than once; main calls it because cobra skips post-run hooks on error.
func Shutdown() {
	if appContainer != nil {
		if err := appContainer.Close(); err != nil {
			appContainer.GetLogger().WithError(err).Warn("Failed to close database connection")
		}
	}
	if runLogFile != nil {
		_ = runLogFile.Close()
		runLogFile = nil
	}
}
