// Package main provides the schemagraph CLI.
//
// schemagraph loads schema datasets (global schemas, document schemas,
// properties and the mappings between them), projects them into
// relationship diagrams and drives the reviewer validation workflow.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"schemagraph/internal/config"

	// SQL drivers for export.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "schemagraph"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the state shared by every command of one invocation.
type app struct {
	configPath string
	logLevel   string
	datasets   []string
	store      string
	reviewer   string

	cfg    *config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Schema relationship model, diagrams and review workflow",
		Long: `schemagraph aggregates schemas extracted from jurisdictional documents
into a global schema hierarchy and tracks how local properties map onto
global ones.

It provides:
  - validation and indexing of schema datasets
  - hierarchy, property-mapping and jurisdiction diagrams (Mermaid, DOT, JSON)
  - reviewer decisions on properties and mappings, single or in bulk
  - validation-sheet export to CSV or SQL
  - ingestion of raw extraction exports`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file path (default: nearest "+config.ProjectConfigFile+")")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringSliceVarP(&a.datasets, "dataset", "d", nil, "Dataset file or glob (repeatable)")
	flags.StringVar(&a.store, "store", "", "Dataset file that decisions and ingested documents are written to")
	flags.StringVar(&a.reviewer, "reviewer", "", "Reviewer recorded on decisions")

	cmd.AddCommand(
		validateCmd(a),
		indexCmd(a),
		summaryCmd(a),
		diagramCmd(a),
		decideCmd(a),
		suggestCmd(a),
		resolveCmd(a),
		exportCmd(a),
		ingestCmd(a),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

// setup loads the configuration, applies flag overrides and installs the logger.
func (a *app) setup() error {
	bootstrap := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.NewLoader(bootstrap).Load(a.configPath)
	if err != nil {
		return err
	}

	cfg.Merge(&config.Config{
		Dataset: config.DatasetConfig{Paths: a.datasets, Store: a.store},
		Review:  config.ReviewConfig{Reviewer: a.reviewer},
		Log:     config.LogConfig{Level: a.logLevel},
	})

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	return nil
}
